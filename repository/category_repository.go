package repository

import (
	"context"

	"littlelemon/entity"
	"littlelemon/pkg/paginate"

	"gorm.io/gorm"
)

type CategoryRepository struct{ DB *gorm.DB }

func NewCategoryRepository(db *gorm.DB) *CategoryRepository { return &CategoryRepository{DB: db} }

func (r *CategoryRepository) List(ctx context.Context, p paginate.Params) ([]entity.Category, int64, error) {
	q := r.DB.WithContext(ctx).Model(&entity.Category{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []entity.Category
	err := q.Scopes(p.Scope).Order("id").Find(&rows).Error
	return rows, total, err
}

func (r *CategoryRepository) FindByID(ctx context.Context, id uint) (*entity.Category, error) {
	var c entity.Category
	if err := r.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) TitleTaken(ctx context.Context, title string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&entity.Category{}).Where("LOWER(title) = LOWER(?)", title).Count(&n).Error
	return n > 0, err
}

func (r *CategoryRepository) Create(ctx context.Context, c *entity.Category) error {
	return r.DB.WithContext(ctx).Create(c).Error
}
