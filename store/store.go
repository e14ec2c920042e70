// Package store keeps versioned policy weight blobs
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidName = errors.New("invalid name")
)

// Version describes one stored blob
type Version struct {
	ID        string    `json:"id"`
	Hash      string    `json:"hash"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	Active    bool      `json:"active"`
}

// Store keeps every blob put under a name. The latest Put becomes the active
// version until another one is activated.
type Store interface {
	Put(ctx context.Context, name string, blob []byte) (string, error)
	// Get returns the active version
	Get(ctx context.Context, name string) ([]byte, error)
	GetVersion(ctx context.Context, name, version string) ([]byte, error)
	// Versions in creation order
	Versions(ctx context.Context, name string) ([]Version, error)
	Activate(ctx context.Context, name, version string) error
	Close() error
}

func validateName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\:`) || name == "." || name == ".." {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	return nil
}

func hashOf(blob []byte) string {
	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:])
}
