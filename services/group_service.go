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

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// ManagedGroup describes a group whose membership is administered over HTTP.
type ManagedGroup struct {
	Name string
	Gate policy.Check
	// Member completes "user is already ..." and "user is not ...".
	Member string
}

var (
	ManagerGroup      = ManagedGroup{Name: entity.GroupManager, Gate: policy.RequireSuperuser, Member: "a manager"}
	DeliveryCrewGroup = ManagedGroup{Name: entity.GroupDeliveryCrew, Gate: policy.RequireManager, Member: "in the delivery crew"}
)

type GroupService struct {
	UserRepo *repository.UserRepository
	Log      zerolog.Logger
}

func NewGroupService(ur *repository.UserRepository, log zerolog.Logger) *GroupService {
	return &GroupService{UserRepo: ur, Log: log}
}

// MemberIn names a user by username or id.
type MemberIn struct {
	Username string `json:"username" binding:"omitempty,max=150"`
	UserID   uint   `json:"user_id"`
}

func (s *GroupService) ListMembers(ctx context.Context, p policy.Principal, g ManagedGroup, page paginate.Params) ([]entity.User, int64, error) {
	if err := g.Gate(p); err != nil {
		return nil, 0, err
	}
	group, err := s.UserRepo.EnsureGroup(ctx, g.Name)
	if err != nil {
		return nil, 0, fmt.Errorf("load group %s: %w", g.Name, err)
	}
	return s.UserRepo.ListGroupMembers(ctx, group.ID, page)
}

func (s *GroupService) AddMember(ctx context.Context, p policy.Principal, g ManagedGroup, in MemberIn) (*entity.User, error) {
	if err := g.Gate(p); err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	u, err := s.findMember(ctx, in)
	if err != nil {
		return nil, err
	}
	group, err := s.UserRepo.EnsureGroup(ctx, g.Name)
	if err != nil {
		return nil, fmt.Errorf("load group %s: %w", g.Name, err)
	}
	member, err := s.UserRepo.InGroup(ctx, u.ID, group.ID)
	if err != nil {
		return nil, err
	}
	if member {
		return nil, apperr.Conflict("user is already %s", g.Member)
	}
	if err := s.UserRepo.AddToGroup(ctx, u, group); err != nil {
		return nil, fmt.Errorf("add %s to %s: %w", u.Username, g.Name, err)
	}
	s.Log.Info().Uint("actor_id", p.UserID).Uint("user_id", u.ID).Str("group", g.Name).Msg("group member added")
	return u, nil
}

func (s *GroupService) RemoveMember(ctx context.Context, p policy.Principal, g ManagedGroup, userID uint) (*entity.User, error) {
	if err := g.Gate(p); err != nil {
		return nil, err
	}
	u, err := s.findMember(ctx, MemberIn{UserID: userID})
	if err != nil {
		return nil, err
	}
	group, err := s.UserRepo.EnsureGroup(ctx, g.Name)
	if err != nil {
		return nil, fmt.Errorf("load group %s: %w", g.Name, err)
	}
	member, err := s.UserRepo.InGroup(ctx, u.ID, group.ID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperr.NotFound("user is not %s", g.Member)
	}
	if err := s.UserRepo.RemoveFromGroup(ctx, u, group); err != nil {
		return nil, fmt.Errorf("remove %s from %s: %w", u.Username, g.Name, err)
	}
	s.Log.Info().Uint("actor_id", p.UserID).Uint("user_id", u.ID).Str("group", g.Name).Msg("group member removed")
	return u, nil
}

func (s *GroupService) findMember(ctx context.Context, in MemberIn) (*entity.User, error) {
	var (
		u   *entity.User
		err error
	)
	switch username := strings.TrimSpace(in.Username); {
	case username != "":
		u, err = s.UserRepo.FindByUsername(ctx, username)
	case in.UserID != 0:
		u, err = s.UserRepo.FindByID(ctx, in.UserID)
	default:
		return nil, apperr.Validation("username or user_id is required")
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}
