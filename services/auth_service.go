package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"littlelemon/entity"
	"littlelemon/pkg/apperr"
	"littlelemon/pkg/validate"
	"littlelemon/repository"
	"littlelemon/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const msgBadCredentials = "Unable to log in with provided credentials"

type AuthService struct {
	UserRepo  *repository.UserRepository
	JWTSecret string
	JWTTTL    time.Duration
}

func NewAuthService(ur *repository.UserRepository, secret string, ttl time.Duration) *AuthService {
	return &AuthService{UserRepo: ur, JWTSecret: secret, JWTTTL: ttl}
}

type RegisterIn struct {
	Username string `json:"username" binding:"required,max=150,username"`
	Email    string `json:"email" binding:"omitempty,email,max=254"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type LoginIn struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a customer account (no groups, not superuser).
func (s *AuthService) Register(ctx context.Context, in RegisterIn) (*entity.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	// max=72 counts runes; bcrypt counts bytes
	if len(in.Password) > entity.MaxPasswordBytes {
		return nil, apperr.Validation("password must be at most %d bytes", entity.MaxPasswordBytes)
	}
	username, email := in.Username, in.Email

	taken, err := s.UserRepo.UsernameTaken(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return nil, apperr.Conflict("a user with that username already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{Username: username, Email: email, Password: string(hash)}
	if err := s.UserRepo.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("a user with that username already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginIn) (string, error) {
	if err := validate.Struct(in); err != nil {
		return "", err
	}
	u, err := s.UserRepo.FindByUsername(ctx, strings.TrimSpace(in.Username))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperr.Unauthorized(msgBadCredentials)
	}
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(in.Password)) != nil {
		return "", apperr.Unauthorized(msgBadCredentials)
	}
	return utils.GenerateToken(u.ID, s.JWTSecret, s.JWTTTL)
}

// Authenticate resolves a bearer token to the user with fresh group memberships.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	claims, err := utils.ParseToken(token, s.JWTSecret)
	if err != nil {
		return nil, apperr.Unauthorized("invalid token")
	}
	u, err := s.UserRepo.FindByID(ctx, claims.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Unauthorized("invalid token")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}
