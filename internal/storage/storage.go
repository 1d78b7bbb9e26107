package storage

import (
	"context"
	"errors"
)

// KeyValue is the asynchronous slot store the cart persists into.
// Implementations must be safe for concurrent use.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

var ErrNotFound = errors.New("key not found")
