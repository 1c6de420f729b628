package configs

import (
	"errors"
	"fmt"

	"littlelemon/entity"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func SeedGroups(db *gorm.DB) error {
	for _, name := range []string{entity.GroupManager, entity.GroupDeliveryCrew} {
		if err := db.FirstOrCreate(&entity.Group{}, entity.Group{Name: name}).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedAdmin creates the configured superuser once. It reports whether a user was created.
func SeedAdmin(db *gorm.DB, cfg *Config) (bool, error) {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return false, nil
	}

	if len(cfg.AdminPassword) > entity.MaxPasswordBytes {
		return false, fmt.Errorf("admin password must be at most %d bytes", entity.MaxPasswordBytes)
	}

	var existing entity.User
	err := db.Where("username = ?", cfg.AdminUsername).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	admin := entity.User{
		Username:    cfg.AdminUsername,
		Email:       cfg.AdminEmail,
		Password:    string(hash),
		IsSuperuser: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return false, err
	}
	return true, nil
}
