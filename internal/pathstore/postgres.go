package pathstore

import (
	"context"
	"errors"
	"time"

	"backend-pathtracker/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var _ Store = (*PostgresStore)(nil)

type PostgresStore struct {
	db db.Querier
}

func NewPostgresStore(db db.Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, ownerID string, encoded []byte, recordedAt time.Time) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(ctx, `
		INSERT INTO saved_paths (id, owner_id, recorded_at, encoded_path)
		VALUES ($1,$2,$3,$4)
	`, id, ownerID, recordedAt, encoded)
	if err != nil {
		return "", &StoreError{Op: "append", Err: err}
	}
	return id, nil
}

func (s *PostgresStore) ListAll(ctx context.Context, ownerID string) ([]SavedPath, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, owner_id, recorded_at, encoded_path
		FROM saved_paths WHERE owner_id=$1
		ORDER BY seq
	`, ownerID)
	if err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}
	defer rows.Close()

	paths := []SavedPath{}
	for rows.Next() {
		var p SavedPath
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.RecordedAt, &p.EncodedPath); err != nil {
			return nil, &StoreError{Op: "list", Err: err}
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}
	return paths, nil
}

// Ids that are not UUIDs cannot match a row; they are reported as missing
// rather than sent to Postgres.
func (s *PostgresStore) Get(ctx context.Context, ownerID, id string) (SavedPath, error) {
	if _, err := uuid.Parse(id); err != nil {
		return SavedPath{}, ErrNotFound
	}
	var p SavedPath
	row := s.db.QueryRow(ctx, `
		SELECT id, owner_id, recorded_at, encoded_path
		FROM saved_paths WHERE id=$1 AND owner_id=$2
	`, id, ownerID)
	if err := row.Scan(&p.ID, &p.OwnerID, &p.RecordedAt, &p.EncodedPath); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SavedPath{}, ErrNotFound
		}
		return SavedPath{}, &StoreError{Op: "get", Err: err}
	}
	return p, nil
}

func (s *PostgresStore) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM saved_paths WHERE id=$1 AND owner_id=$2`, id, ownerID)
	if err != nil {
		return &StoreError{Op: "delete", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
