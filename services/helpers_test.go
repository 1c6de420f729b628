package services

import (
	"path/filepath"
	"sync"
	"testing"

	"littlelemon/configs"
	"littlelemon/entity"
	"littlelemon/policy"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := configs.OpenDatabase("sqlite", filepath.Join(t.TempDir(), "littlelemon.db"))
	require.NoError(t, err)
	require.NoError(t, configs.Migrate(db))
	require.NoError(t, configs.SeedGroups(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func makeUser(t *testing.T, db *gorm.DB, username string, groups ...string) policy.Principal {
	t.Helper()
	u := entity.User{Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(t, db.Omit("Groups").Create(&u).Error)
	for _, name := range groups {
		var g entity.Group
		require.NoError(t, db.Where("name = ?", name).First(&g).Error)
		require.NoError(t, db.Model(&u).Association("Groups").Append(&g))
	}
	require.NoError(t, db.Preload("Groups").First(&u, u.ID).Error)
	return policy.FromUser(&u)
}

func makeSuperuser(t *testing.T, db *gorm.DB, username string) policy.Principal {
	t.Helper()
	u := entity.User{Username: username, Password: "x", IsSuperuser: true}
	require.NoError(t, db.Omit("Groups").Create(&u).Error)
	return policy.FromUser(&u)
}

func makeCategory(t *testing.T, db *gorm.DB, title string) entity.Category {
	t.Helper()
	var c entity.Category
	require.NoError(t, db.Where(entity.Category{Title: title}).FirstOrCreate(&c).Error)
	return c
}

func makeMenuItem(t *testing.T, db *gorm.DB, title, price string) entity.MenuItem {
	t.Helper()
	c := makeCategory(t, db, "Mains")
	m := entity.MenuItem{Title: title, Price: entity.MustMoney(price), CategoryID: c.ID}
	require.NoError(t, db.Omit("Category").Create(&m).Error)
	return m
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []OrderEvent
}

func (r *recordingNotifier) Publish(e OrderEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingNotifier) Events() []OrderEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]OrderEvent(nil), r.events...)
}
