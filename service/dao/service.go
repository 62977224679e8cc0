// Package dao defines the minimal persistence contract shared by the
// bridge's record stores. Concrete stores add their own query methods on
// top; this interface only fixes the common Save/Load/Delete/List surface.
package dao

import (
	"context"
)

type Service[K comparable, T any] interface {
	Save(ctx context.Context, t *T) error

	// Load returns the record for id, or (nil, nil) when absent.
	Load(ctx context.Context, id K) (*T, error)

	Delete(ctx context.Context, id K) error

	List(ctx context.Context) ([]*T, error)
}
