package pathstore

import (
	"time"

	"backend-pathtracker/internal/codec"
	"backend-pathtracker/internal/shared/geo"
)

// SavedPath is one completed session. EncodedPath is whatever the codec
// produced at save time; the store never looks inside it.
type SavedPath struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	RecordedAt  time.Time `json:"recorded_at"`
	EncodedPath []byte    `json:"-"`
}

// Decode restores the coordinates stored in p.
func (p SavedPath) Decode() (geo.Path, error) {
	return codec.Decode(p.EncodedPath)
}

type PathSummary struct {
	ID         string    `json:"id"`
	RecordedAt time.Time `json:"recorded_at"`
	Points     int       `json:"points"`
	Valid      bool      `json:"valid"`
}

type PathDetail struct {
	ID          string           `json:"id"`
	RecordedAt  time.Time        `json:"recorded_at"`
	Coordinates []geo.Coordinate `json:"coordinates"`
}
