package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"littlelemon/entity"
	"littlelemon/pkg/apperr"
	"littlelemon/pkg/paginate"
	"littlelemon/pkg/validate"
	"littlelemon/policy"
	"littlelemon/repository"

	"gorm.io/gorm"
)

// Managers create categories; superusers are accepted as a fallback.
var categoryWriteGate = policy.AnyOf(policy.RequireManager, policy.RequireSuperuser)

type CategoryService struct {
	Repo *repository.CategoryRepository
}

func NewCategoryService(r *repository.CategoryRepository) *CategoryService {
	return &CategoryService{Repo: r}
}

type CategoryIn struct {
	Title string `json:"title" binding:"required,max=255"`
}

func (s *CategoryService) List(ctx context.Context, page paginate.Params) ([]entity.Category, int64, error) {
	return s.Repo.List(ctx, page)
}

func (s *CategoryService) Create(ctx context.Context, p policy.Principal, in CategoryIn) (*entity.Category, error) {
	if err := categoryWriteGate(p); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	title := in.Title
	taken, err := s.Repo.TitleTaken(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("check category title: %w", err)
	}
	if taken {
		return nil, apperr.Conflict("category %q already exists", title)
	}
	c := &entity.Category{Title: title}
	if err := s.Repo.Create(ctx, c); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("category %q already exists", title)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}
