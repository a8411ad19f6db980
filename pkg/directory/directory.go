// Package directory consumes the platform's participant directory: it
// resolves an authenticated principal id to identity attributes. Careline
// does not own these records; the store-backed resolver here mirrors
// whatever the identity service provisions (seeded at startup, kept fresh
// through the admin upsert endpoint).
package directory

import (
	"careline/pkg/models"
	"careline/pkg/store"
)

// Resolver resolves a principal id to its identity attributes. Returns
// errs.ErrNotFound for unknown principals.
type Resolver interface {
	Resolve(id string) (models.Identity, error)
}

// StoreResolver reads directory records from the pebble store.
type StoreResolver struct{}

func (StoreResolver) Resolve(id string) (models.Identity, error) {
	return store.GetPrincipal(id)
}

// Seed upserts the given identities into the store-backed directory.
// Records with an empty id are skipped.
func Seed(ids []models.Identity) error {
	for _, id := range ids {
		if id.ID == "" {
			continue
		}
		if err := store.SavePrincipal(id); err != nil {
			return err
		}
	}
	return nil
}
