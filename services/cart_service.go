package services

import (
	"context"
	"errors"
	"fmt"

	"littlelemon/entity"
	"littlelemon/pkg/apperr"
	"littlelemon/pkg/validate"
	"littlelemon/policy"
	"littlelemon/repository"

	"gorm.io/gorm"
)

// MaxCartQuantity bounds a single line's quantity. It matches the lte rule on AddToCartIn.
const MaxCartQuantity = 32767

type CartService struct {
	CartRepo *repository.CartRepository
	MenuRepo *repository.MenuItemRepository
}

func NewCartService(cr *repository.CartRepository, mr *repository.MenuItemRepository) *CartService {
	return &CartService{CartRepo: cr, MenuRepo: mr}
}

type AddToCartIn struct {
	MenuItemID uint `json:"menuitem_id" binding:"required"`
	Quantity   int  `json:"quantity" binding:"gt=0,lte=32767"`
}

func (s *CartService) List(ctx context.Context, p policy.Principal) ([]entity.CartItem, error) {
	if err := policy.RequireCustomer(p); err != nil {
		return nil, err
	}
	return s.CartRepo.ListByUser(ctx, p.UserID)
}

func (s *CartService) Add(ctx context.Context, p policy.Principal, in AddToCartIn) (*entity.CartItem, error) {
	if err := policy.RequireCustomer(p); err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	m, err := s.MenuRepo.FindByID(ctx, in.MenuItemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("menu item %d not found", in.MenuItemID)
	}
	if err != nil {
		return nil, fmt.Errorf("load menu item: %w", err)
	}

	dup, err := s.CartRepo.Contains(ctx, p.UserID, m.ID)
	if err != nil {
		return nil, fmt.Errorf("check cart: %w", err)
	}
	if dup {
		return nil, apperr.Conflict("menu item %d is already in the cart", m.ID)
	}

	line := &entity.CartItem{
		UserID:     p.UserID,
		MenuItemID: m.ID,
		Quantity:   in.Quantity,
		UnitPrice:  m.Price,
		Price:      m.Price.Times(in.Quantity),
	}
	if err := s.CartRepo.Create(ctx, line); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("menu item %d is already in the cart", m.ID)
		}
		return nil, fmt.Errorf("create cart line: %w", err)
	}
	line.MenuItem = *m
	return line, nil
}

// Clear empties the cart. An empty cart is not an error.
func (s *CartService) Clear(ctx context.Context, p policy.Principal) (int64, error) {
	if err := policy.RequireCustomer(p); err != nil {
		return 0, err
	}
	return s.CartRepo.ClearCart(ctx, p.UserID)
}
