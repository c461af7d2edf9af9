package pathstore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("saved path not found")

// StoreError wraps a failure of the backing storage engine.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("path store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Store persists completed sessions. Paths are scoped by owner; an empty
// owner id is a valid scope of its own.
type Store interface {
	// Append adds a new path and returns its id. Existing paths are never
	// modified, and a failed append leaves no trace.
	Append(ctx context.Context, ownerID string, encoded []byte, recordedAt time.Time) (string, error)
	// ListAll returns the owner's paths in insertion order.
	ListAll(ctx context.Context, ownerID string) ([]SavedPath, error)
	Get(ctx context.Context, ownerID, id string) (SavedPath, error)
	Delete(ctx context.Context, ownerID, id string) error
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
