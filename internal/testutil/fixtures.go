// Package testutil holds shared fixtures for handler and integration tests.
package testutil

import (
	"testing"

	"github.com/dalemusser/edulibrary/internal/app/seed"
	"github.com/dalemusser/edulibrary/internal/app/store/libraries"
	"github.com/dalemusser/edulibrary/internal/domain/models"
	"go.uber.org/zap"
)

// Catalog returns the built-in seed catalog or fails the test.
func Catalog(t testing.TB) []models.Resource {
	t.Helper()
	catalog, err := seed.Default()
	if err != nil {
		t.Fatalf("seed.Default: %v", err)
	}
	return catalog
}

// NewLibraries returns a registry seeded with the built-in catalog.
func NewLibraries(t testing.TB) *libraries.Registry {
	t.Helper()
	libs, err := libraries.New(Catalog(t), zap.NewNop())
	if err != nil {
		t.Fatalf("libraries.New: %v", err)
	}
	return libs
}

// FindResource returns the resource with id from rs, failing if absent.
func FindResource(t testing.TB, rs []models.Resource, id int) models.Resource {
	t.Helper()
	for _, r := range rs {
		if r.ID == id {
			return r
		}
	}
	t.Fatalf("resource %d not found", id)
	return models.Resource{}
}
