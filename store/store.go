// Package store persists scraped content. Two implementations share the
// Store interface: a SQLite database and a bounded in-memory map.
package store

import (
	"context"
	"encoding/hex"

	"github.com/cespare/xxhash/v2"

	"github.com/use-agent/clipper/models"
)

// Store is the persistence contract used by the API layer. Lookups that
// find nothing return a NOT_FOUND ScrapeError.
type Store interface {
	// Create assigns ID, ContentHash and CreatedAt, then saves c.
	Create(ctx context.Context, c *models.Content) error
	FindByID(ctx context.Context, id string) (*models.Content, error)
	// FindByURL returns the newest record for url.
	FindByURL(ctx context.Context, url string) (*models.Content, error)
	// Update overwrites the record with c.ID and refreshes ContentHash.
	Update(ctx context.Context, c *models.Content) error
	// Kind names the backend for health output.
	Kind() string
	Close() error
}

// hashContent computes xxHash of content and returns hex string.
func hashContent(content string) string {
	h := xxhash.Sum64String(content)
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(h >> (56 - 8*i))
	}
	return hex.EncodeToString(b)
}

func notFound(what string) error {
	return models.NewScrapeError(models.ErrCodeNotFound, what+" not found", nil)
}
