package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"backend-pathtracker/internal/codec"
	"backend-pathtracker/internal/pathstore"
	"backend-pathtracker/internal/shared/geo"
)

const (
	defaultSaveTimeout = 5 * time.Second
	saveQueueSize      = 16
)

var ErrClosed = errors.New("tracking session closed")

// Broadcaster publishes encoded events for one tracker. *stream.Hub
// satisfies it.
type Broadcaster interface {
	Broadcast(trackerID string, payload []byte)
}

// Sink is anything a location provider can push coordinates into.
type Sink interface {
	Deliver(c geo.Coordinate) error
}

type Option func(*Session)

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func WithSaveTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.saveTimeout = d
		}
	}
}

// WithCentered marks the presentation camera as already centered, so no
// location event carries the center hint.
func WithCentered(centered bool) Option {
	return func(s *Session) { s.centered = centered }
}

var _ Sink = (*Session)(nil)

// Session records one tracker's coordinates between Start and Stop and hands
// each finished buffer to a background writer. It can be started and stopped
// any number of times until Close.
type Session struct {
	trackerID   string
	store       pathstore.Store
	events      Broadcaster
	now         func() time.Time
	saveTimeout time.Duration

	mu           sync.Mutex
	state        State
	buffer       geo.Path
	lastRecorded *geo.Coordinate
	lastSeen     *geo.Coordinate
	centered     bool
	lastSaveErr  error

	// emitMu keeps events in the order of the state changes that produced
	// them. It is taken while mu is held and outlives it.
	emitMu sync.Mutex

	// closeMu guards closed and the saves channel against Close.
	closeMu sync.RWMutex
	closed  bool
	saves   chan saveJob
	wg      sync.WaitGroup
}

type saveJob struct {
	path       geo.Path
	recordedAt time.Time
	result     chan SaveResult
}

func NewSession(trackerID string, store pathstore.Store, events Broadcaster, opts ...Option) *Session {
	s := &Session{
		trackerID:   trackerID,
		store:       store,
		events:      events,
		now:         time.Now,
		saveTimeout: defaultSaveTimeout,
		saves:       make(chan saveJob, saveQueueSize),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.wg.Add(1)
	go s.runSaves()
	return s
}

func (s *Session) TrackerID() string { return s.trackerID }

// Start begins a fresh recording. Starting while already recording drops the
// in-progress buffer.
func (s *Session) Start() error {
	s.closeMu.RLock()
	defer s.closeMu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	s.mu.Lock()
	discarded := 0
	if s.state == Recording {
		discarded = len(s.buffer)
	}
	s.state = Recording
	s.buffer = geo.Path{}
	s.lastRecorded = nil
	s.emitAndUnlock(Event{Type: EventState, State: Recording.String(), Discarded: discarded})

	if discarded > 0 {
		log.Printf("tracker %q restarted recording, dropped %d points", s.trackerID, discarded)
	}
	return nil
}

// Deliver accepts one coordinate from a location provider. Every valid
// coordinate produces a location event; only a recording session buffers it.
func (s *Session) Deliver(c geo.Coordinate) error {
	if err := c.Validate(); err != nil {
		return err
	}

	s.closeMu.RLock()
	defer s.closeMu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	s.mu.Lock()
	recording := s.state == Recording
	if recording {
		s.buffer = append(s.buffer, c)
		s.lastRecorded = &c
	}
	s.lastSeen = &c
	events := []Event{{Type: EventLocation, Coordinate: &c, Center: !s.centered}}
	s.centered = true
	if recording {
		events = append(events, Event{Type: EventRecorded, Coordinate: &c})
	}
	s.emitAndUnlock(events...)
	return nil
}

// Stop ends the recording and queues its buffer for saving. The returned
// channel receives exactly one SaveResult. Stop on an idle session does
// nothing and reports false.
func (s *Session) Stop() (<-chan SaveResult, bool) {
	s.closeMu.RLock()
	defer s.closeMu.RUnlock()
	if s.closed {
		return nil, false
	}

	s.mu.Lock()
	if s.state != Recording {
		s.mu.Unlock()
		return nil, false
	}
	job := s.stopLocked()
	s.saves <- job
	return job.result, true
}

// stopLocked moves a recording session to Idle and returns its save job.
// Called with mu held; it releases mu.
func (s *Session) stopLocked() saveJob {
	job := saveJob{
		path:       s.buffer,
		recordedAt: s.now(),
		result:     make(chan SaveResult, 1),
	}
	s.buffer = nil
	s.state = Idle
	s.emitAndUnlock(Event{Type: EventState, State: Idle.String(), Points: len(job.path)})
	return job
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		TrackerID:    s.trackerID,
		State:        s.state.String(),
		Points:       len(s.buffer),
		LastRecorded: copyCoordinate(s.lastRecorded),
		LastSeen:     copyCoordinate(s.lastSeen),
	}
	if s.lastSaveErr != nil {
		st.LastSaveError = s.lastSaveErr.Error()
	}
	return st
}

// SavedPaths lists the tracker's saved paths in insertion order.
func (s *Session) SavedPaths(ctx context.Context) ([]pathstore.SavedPath, error) {
	return s.store.ListAll(ctx, s.trackerID)
}

func (s *Session) Decode(p pathstore.SavedPath) (geo.Path, error) {
	return codec.Decode(p.EncodedPath)
}

// Close saves an in-progress recording, waits for queued saves and stops the
// writer. Start, Deliver and Stop fail with ErrClosed afterwards.
func (s *Session) Close() {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return
	}
	s.closed = true

	s.mu.Lock()
	if s.state == Recording {
		s.saves <- s.stopLocked()
	} else {
		s.mu.Unlock()
	}
	close(s.saves)
	s.closeMu.Unlock()

	s.wg.Wait()
}

func (s *Session) runSaves() {
	defer s.wg.Done()
	for job := range s.saves {
		job.result <- s.save(job)
	}
}

func (s *Session) save(job saveJob) SaveResult {
	encoded, err := codec.Encode(job.path)
	if err != nil {
		return s.saveFailed(job, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	defer cancel()

	id, err := s.store.Append(ctx, s.trackerID, encoded, job.recordedAt)
	if err != nil {
		var storeErr *pathstore.StoreError
		if !errors.As(err, &storeErr) {
			err = &pathstore.StoreError{Op: "append", Err: err}
		}
		return s.saveFailed(job, err)
	}

	s.mu.Lock()
	s.lastSaveErr = nil
	s.emitAndUnlock(Event{Type: EventPathsChanged, PathID: id, Points: len(job.path)})
	return SaveResult{
		Path: pathstore.SavedPath{
			ID:          id,
			OwnerID:     s.trackerID,
			RecordedAt:  job.recordedAt,
			EncodedPath: encoded,
		},
		Points: len(job.path),
	}
}

func (s *Session) saveFailed(job saveJob, err error) SaveResult {
	log.Printf("save path for tracker %q (%d points): %v", s.trackerID, len(job.path), err)

	s.mu.Lock()
	s.lastSaveErr = err
	s.emitAndUnlock(Event{Type: EventSaveFailed, Points: len(job.path), Error: err.Error()})
	return SaveResult{Points: len(job.path), Err: err}
}

func copyCoordinate(c *geo.Coordinate) *geo.Coordinate {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}

// emitAndUnlock publishes events in state-change order. Called with mu held;
// it releases mu before the events go out.
func (s *Session) emitAndUnlock(events ...Event) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	s.mu.Unlock()
	for _, ev := range events {
		s.emit(ev)
	}
}

func (s *Session) emit(ev Event) {
	if s.events == nil {
		return
	}
	ev.TrackerID = s.trackerID
	ev.At = s.now()
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("encode %s event: %v", ev.Type, err)
		return
	}
	s.events.Broadcast(s.trackerID, payload)
}
