package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"littlelemon/entity"
	"littlelemon/pkg/apperr"
	"littlelemon/pkg/paginate"
	"littlelemon/pkg/validate"
	"littlelemon/policy"
	"littlelemon/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var maxPrice = decimal.NewFromInt(10000)

type MenuService struct {
	MenuRepo     *repository.MenuItemRepository
	CategoryRepo *repository.CategoryRepository
}

func NewMenuService(mr *repository.MenuItemRepository, cr *repository.CategoryRepository) *MenuService {
	return &MenuService{MenuRepo: mr, CategoryRepo: cr}
}

// MenuItemIn carries create and update payloads. Nil fields are absent.
type MenuItemIn struct {
	Title      *string       `json:"title" binding:"omitempty,min=1,max=255"`
	Price      *entity.Money `json:"price"`
	Featured   *bool         `json:"featured"`
	CategoryID *uint         `json:"category_id" binding:"omitempty,gt=0"`
}

func ParseMenuQuery(categoryID, category, featured, search, ordering string) (repository.MenuItemFilter, error) {
	f := repository.MenuItemFilter{
		CategoryTitle: strings.TrimSpace(category),
		Search:        strings.TrimSpace(search),
		Ordering:      ordering,
	}
	if categoryID != "" {
		n, err := strconv.ParseUint(categoryID, 10, 64)
		if err != nil {
			return f, apperr.Validation("category_id must be a number")
		}
		id := uint(n)
		f.CategoryID = &id
	}
	if featured != "" {
		v, ok := parseBoolString(featured)
		if !ok {
			return f, apperr.Validation("featured must be true or false")
		}
		f.Featured = &v
	}
	return f, nil
}

func (s *MenuService) List(ctx context.Context, f repository.MenuItemFilter, page paginate.Params) ([]entity.MenuItem, int64, error) {
	return s.MenuRepo.List(ctx, f, page)
}

func (s *MenuService) Get(ctx context.Context, id uint) (*entity.MenuItem, error) {
	m, err := s.MenuRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("menu item %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load menu item %d: %w", id, err)
	}
	return m, nil
}

func (s *MenuService) Create(ctx context.Context, p policy.Principal, in MenuItemIn) (*entity.MenuItem, error) {
	if err := policy.RequireManager(p); err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if err := requireFields(in); err != nil {
		return nil, err
	}
	m := &entity.MenuItem{}
	if err := s.apply(ctx, m, in); err != nil {
		return nil, err
	}
	if err := s.MenuRepo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create menu item: %w", err)
	}
	return s.Get(ctx, m.ID)
}

// Update replaces the item (partial=false, PUT) or patches it (PATCH).
func (s *MenuService) Update(ctx context.Context, p policy.Principal, id uint, in MenuItemIn, partial bool) (*entity.MenuItem, error) {
	if err := policy.RequireManager(p); err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if !partial {
		if err := requireFields(in); err != nil {
			return nil, err
		}
		if in.Featured == nil {
			f := false
			in.Featured = &f
		}
	}
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, m, in); err != nil {
		return nil, err
	}
	if err := s.MenuRepo.Save(ctx, m); err != nil {
		return nil, fmt.Errorf("update menu item %d: %w", id, err)
	}
	return s.Get(ctx, id)
}

// Delete removes the item from every cart. Items already ordered cannot be deleted.
func (s *MenuService) Delete(ctx context.Context, p policy.Principal, id uint) error {
	if err := policy.RequireManager(p); err != nil {
		return err
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	refs, err := s.MenuRepo.CountOrderReferences(ctx, id)
	if err != nil {
		return fmt.Errorf("count order references: %w", err)
	}
	if refs > 0 {
		return apperr.Conflict("menu item %d appears in existing orders", id)
	}
	err = s.MenuRepo.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("menu item %d not found", id)
	}
	return err
}

func requireFields(in MenuItemIn) error {
	var missing []string
	if in.Title == nil {
		missing = append(missing, "title")
	}
	if in.Price == nil {
		missing = append(missing, "price")
	}
	if in.CategoryID == nil {
		missing = append(missing, "category_id")
	}
	if len(missing) > 0 {
		return apperr.Validation("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (s *MenuService) apply(ctx context.Context, m *entity.MenuItem, in MenuItemIn) error {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return apperr.Validation("title may not be blank")
		}
		m.Title = title
	}
	if in.Price != nil {
		if err := ValidatePrice(*in.Price); err != nil {
			return err
		}
		m.Price = *in.Price
	}
	if in.Featured != nil {
		m.Featured = *in.Featured
	}
	if in.CategoryID != nil {
		c, err := s.CategoryRepo.FindByID(ctx, *in.CategoryID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Validation("category %d does not exist", *in.CategoryID)
		}
		if err != nil {
			return fmt.Errorf("load category: %w", err)
		}
		m.CategoryID = c.ID
		m.Category = *c
	}
	return nil
}

// ValidatePrice requires 0 < price < 10000 with at most two decimal places.
func ValidatePrice(price entity.Money) error {
	if !price.IsPositive() {
		return apperr.Validation("price must be greater than zero")
	}
	if !price.Equal(price.Truncate(2)) {
		return apperr.Validation("price must have at most 2 decimal places")
	}
	if price.GreaterThanOrEqual(maxPrice) {
		return apperr.Validation("price must be less than %s", maxPrice.String())
	}
	return nil
}
