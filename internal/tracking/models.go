package tracking

import (
	"time"

	"backend-pathtracker/internal/pathstore"
	"backend-pathtracker/internal/shared/geo"
)

type State int

const (
	Idle State = iota
	Recording
)

func (s State) String() string {
	if s == Recording {
		return "recording"
	}
	return "idle"
}

type EventType string

const (
	// EventLocation fires for every accepted coordinate, recording or not.
	EventLocation EventType = "location"
	// EventRecorded fires when a coordinate is appended to the session buffer.
	EventRecorded     EventType = "recorded"
	EventPathsChanged EventType = "paths_changed"
	EventSaveFailed   EventType = "save_failed"
	EventState        EventType = "state"
)

// Event is what subscribers receive through the hub, JSON encoded.
type Event struct {
	Type       EventType       `json:"type"`
	TrackerID  string          `json:"tracker_id"`
	Coordinate *geo.Coordinate `json:"coordinate,omitempty"`
	// Center is set on the first location a session observes unless the
	// session was created as already centered.
	Center    bool      `json:"center,omitempty"`
	State     string    `json:"state,omitempty"`
	Discarded int       `json:"discarded,omitempty"`
	PathID    string    `json:"path_id,omitempty"`
	Points    int       `json:"points,omitempty"`
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}

// SaveResult is delivered once per stopped session.
type SaveResult struct {
	Path   pathstore.SavedPath
	Points int
	Err    error
}

type Status struct {
	TrackerID     string          `json:"tracker_id"`
	State         string          `json:"state"`
	Points        int             `json:"points"`
	LastRecorded  *geo.Coordinate `json:"last_recorded,omitempty"`
	LastSeen      *geo.Coordinate `json:"last_seen,omitempty"`
	LastSaveError string          `json:"last_save_error,omitempty"`
}
