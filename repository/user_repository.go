package repository

import (
	"context"

	"littlelemon/entity"
	"littlelemon/pkg/paginate"

	"gorm.io/gorm"
)

type UserRepository struct{ DB *gorm.DB }

func NewUserRepository(db *gorm.DB) *UserRepository { return &UserRepository{DB: db} }

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	return r.DB.WithContext(ctx).Omit("Groups").Create(u).Error
}

// FindByID loads the user with current group memberships.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var u entity.User
	if err := r.DB.WithContext(ctx).Preload("Groups").First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var u entity.User
	if err := r.DB.WithContext(ctx).Preload("Groups").Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&entity.User{}).Where("username = ?", username).Count(&n).Error
	return n > 0, err
}

// EnsureGroup returns the named group, creating it when missing.
func (r *UserRepository) EnsureGroup(ctx context.Context, name string) (*entity.Group, error) {
	var g entity.Group
	if err := r.DB.WithContext(ctx).Where(entity.Group{Name: name}).FirstOrCreate(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *UserRepository) InGroup(ctx context.Context, userID, groupID uint) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Table("user_groups").
		Where("user_id = ? AND group_id = ?", userID, groupID).
		Count(&n).Error
	return n > 0, err
}

func (r *UserRepository) ListGroupMembers(ctx context.Context, groupID uint, p paginate.Params) ([]entity.User, int64, error) {
	q := r.DB.WithContext(ctx).Model(&entity.User{}).
		Where("id IN (?)", r.DB.Table("user_groups").Select("user_id").Where("group_id = ?", groupID))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []entity.User
	err := q.Scopes(p.Scope).Order("id").Find(&users).Error
	return users, total, err
}

func (r *UserRepository) AddToGroup(ctx context.Context, u *entity.User, g *entity.Group) error {
	return r.DB.WithContext(ctx).Model(u).Association("Groups").Append(g)
}

func (r *UserRepository) RemoveFromGroup(ctx context.Context, u *entity.User, g *entity.Group) error {
	return r.DB.WithContext(ctx).Model(u).Association("Groups").Delete(g)
}
