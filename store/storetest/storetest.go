// Package storetest opens throwaway SQLite databases with the production
// schema for package tests.
package storetest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"teamcal/config"
	"teamcal/models"
	"teamcal/utils"
)

// Open returns a migrated in-memory database private to t. The pool is
// pinned to one connection so every query sees the same memory database.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := config.OpenDB(sqlite.Open("file::memory:"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.MigrateDB(db))
	return db
}

// CreateUser inserts a user with the given role and password "password".
func CreateUser(t testing.TB, db *gorm.DB, role models.Role) *models.User {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)

	hashed, err := utils.HashPassword("password")
	require.NoError(t, err)

	user := models.User{
		Email:        fmt.Sprintf("%s%d@example.com", role, n+1),
		PasswordHash: hashed,
		Name:         fmt.Sprintf("%s %d", role, n+1),
		Role:         role,
		Active:       true,
	}
	require.NoError(t, db.WithContext(context.Background()).Create(&user).Error)
	return &user
}
