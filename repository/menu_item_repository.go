package repository

import (
	"context"

	"littlelemon/entity"
	"littlelemon/pkg/paginate"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var menuItemOrdering = map[string]string{
	"title":    "title",
	"price":    "price",
	"category": "category_id",
}

type MenuItemFilter struct {
	CategoryID    *uint
	CategoryTitle string
	Featured      *bool
	Search        string
	Ordering      string
}

type MenuItemRepository struct{ DB *gorm.DB }

func NewMenuItemRepository(db *gorm.DB) *MenuItemRepository { return &MenuItemRepository{DB: db} }

func (r *MenuItemRepository) List(ctx context.Context, f MenuItemFilter, p paginate.Params) ([]entity.MenuItem, int64, error) {
	q := r.DB.WithContext(ctx).Model(&entity.MenuItem{})
	if f.CategoryID != nil {
		q = q.Where("menu_items.category_id = ?", *f.CategoryID)
	}
	if f.CategoryTitle != "" {
		q = q.Where("menu_items.category_id IN (?)",
			r.DB.Model(&entity.Category{}).Select("id").Where("LOWER(title) = LOWER(?)", f.CategoryTitle))
	}
	if f.Featured != nil {
		q = q.Where("menu_items.featured = ?", *f.Featured)
	}
	if f.Search != "" {
		q = q.Where("LOWER(menu_items.title) LIKE LOWER(?)", "%"+f.Search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []entity.MenuItem
	err := applyOrdering(q, "menu_items", f.Ordering, menuItemOrdering).
		Preload("Category").Scopes(p.Scope).Find(&rows).Error
	return rows, total, err
}

func (r *MenuItemRepository) FindByID(ctx context.Context, id uint) (*entity.MenuItem, error) {
	var m entity.MenuItem
	if err := r.DB.WithContext(ctx).Preload("Category").First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MenuItemRepository) Create(ctx context.Context, m *entity.MenuItem) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(m).Error
}

func (r *MenuItemRepository) Save(ctx context.Context, m *entity.MenuItem) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Save(m).Error
}

func (r *MenuItemRepository) CountOrderReferences(ctx context.Context, id uint) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&entity.OrderItem{}).Where("menu_item_id = ?", id).Count(&n).Error
	return n, err
}

// Delete removes the item and any cart lines pointing at it.
func (r *MenuItemRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("menu_item_id = ?", id).Delete(&entity.CartItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&entity.MenuItem{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
