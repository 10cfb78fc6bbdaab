package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when no record is stored under the key.
var ErrNotFound = errors.New("record not found")

// Well-known record keys. The book and the user profile live in separate
// slots so either can be replaced without touching the other.
const (
	ActiveBookKey  = "active_book"
	UserProfileKey = "user_profile"
)

// Store persists opaque records by key.
type Store interface {
	Save(ctx context.Context, key string, data []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, pattern string) ([]string, error)
}
