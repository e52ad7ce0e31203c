// Package test provides store fixtures for package tests.
package test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/duetcast/duetcast/internal/profile"
	"github.com/duetcast/duetcast/store"
	"github.com/duetcast/duetcast/store/db/sqlite"
)

// NewTestingStore returns a Store backed by a throwaway SQLite database.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()

	p := &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "duetcast_test.db"),
	}

	driver, err := sqlite.NewDB(p)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	ts := store.New(driver, p)
	if err := ts.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return ts
}

// CreateTestingUser provisions a user for ownership tests.
func CreateTestingUser(ctx context.Context, t *testing.T, ts *store.Store, username string) *store.User {
	t.Helper()

	user, err := ts.CreateUser(ctx, &store.User{Username: username})
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}
