package repository

import (
	"context"

	"littlelemon/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository struct{ DB *gorm.DB }

func NewCartRepository(db *gorm.DB) *CartRepository { return &CartRepository{DB: db} }

func (r *CartRepository) ListByUser(ctx context.Context, userID uint) ([]entity.CartItem, error) {
	var rows []entity.CartItem
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("MenuItem.Category").
		Order("id").
		Find(&rows).Error
	return rows, err
}

func (r *CartRepository) Contains(ctx context.Context, userID, menuItemID uint) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&entity.CartItem{}).
		Where("user_id = ? AND menu_item_id = ?", userID, menuItemID).
		Count(&n).Error
	return n > 0, err
}

func (r *CartRepository) Create(ctx context.Context, line *entity.CartItem) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(line).Error
}

func (r *CartRepository) ClearCart(ctx context.Context, userID uint) (int64, error) {
	res := r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&entity.CartItem{})
	return res.RowsAffected, res.Error
}

// LockLines reads the user's cart inside tx. Postgres takes row locks; sqlite
// serialises writers on the database lock instead.
func (r *CartRepository) LockLines(tx *gorm.DB, userID uint) ([]entity.CartItem, error) {
	q := tx.Where("user_id = ?", userID).Order("id")
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}
	var rows []entity.CartItem
	err := q.Find(&rows).Error
	return rows, err
}

// DeleteLines removes the given lines of one user and returns how many went away.
func (r *CartRepository) DeleteLines(tx *gorm.DB, userID uint, ids []uint) (int64, error) {
	res := tx.Where("user_id = ? AND id IN ?", userID, ids).Delete(&entity.CartItem{})
	return res.RowsAffected, res.Error
}
