// Package testhelpers builds throwaway databases and fixtures for package tests.
package testhelpers

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/MungomeniTM/VSX-changeZA-web/internal/config"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/database"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/models"
	"github.com/MungomeniTM/VSX-changeZA-web/pkg/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewDatabase opens a migrated, private in-memory SQLite database that is
// closed when the test ends.
func NewDatabase(t *testing.T) *database.Database {
	t.Helper()
	dsn := fmt.Sprintf("file:test-%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open("sqlite", dsn, database.Options{LogLevel: "silent"})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// NewFileDatabase opens a migrated SQLite file in a temporary directory with a
// pool of up to maxConns connections, for tests that need concurrent transactions.
func NewFileDatabase(t *testing.T, maxConns int) *database.Database {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=10000"
	db, err := database.Open("sqlite", dsn, database.Options{
		Pool:     config.PoolConfig{MaxOpenConns: maxConns, MaxIdleConns: maxConns},
		LogLevel: "silent",
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// NewDB is NewDatabase for callers that only need the gorm handle.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	return NewDatabase(t).DB
}

// CreateUser inserts a user whose password is "password1".
func CreateUser(t *testing.T, db *gorm.DB, email, first, last string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword("password1")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &models.User{Email: email, FirstName: first, LastName: last, PasswordHash: hash}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// CreatePost inserts a text post by userID.
func CreatePost(t *testing.T, db *gorm.DB, userID uint, text string) *models.Post {
	t.Helper()
	p := &models.Post{UserID: userID, Text: &text}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}
