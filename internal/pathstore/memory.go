package pathstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps paths for the lifetime of the process. It backs the API
// when Postgres is unreachable.
type MemoryStore struct {
	mu    sync.RWMutex
	paths []SavedPath
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(ctx context.Context, ownerID string, encoded []byte, recordedAt time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &StoreError{Op: "append", Err: err}
	}
	p := SavedPath{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		RecordedAt:  recordedAt,
		EncodedPath: cloneBytes(encoded),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths = append(s.paths, p)
	return p.ID, nil
}

func (s *MemoryStore) ListAll(ctx context.Context, ownerID string) ([]SavedPath, error) {
	if err := ctx.Err(); err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []SavedPath{}
	for _, p := range s.paths {
		if p.OwnerID == ownerID {
			p.EncodedPath = cloneBytes(p.EncodedPath)
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, ownerID, id string) (SavedPath, error) {
	if err := ctx.Err(); err != nil {
		return SavedPath{}, &StoreError{Op: "get", Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.paths {
		if p.ID == id && p.OwnerID == ownerID {
			p.EncodedPath = cloneBytes(p.EncodedPath)
			return p, nil
		}
	}
	return SavedPath{}, ErrNotFound
}

func (s *MemoryStore) Delete(ctx context.Context, ownerID, id string) error {
	if err := ctx.Err(); err != nil {
		return &StoreError{Op: "delete", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.paths {
		if p.ID == id && p.OwnerID == ownerID {
			s.paths = append(s.paths[:i:i], s.paths[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
