package ingest

import (
	"errors"
	"testing"

	"backend-pathtracker/internal/pathstore"
	"backend-pathtracker/internal/shared/geo"
	"backend-pathtracker/internal/tracking"
)

type routed struct {
	trackerID string
	coord     geo.Coordinate
}

type mockRouter struct {
	calls []routed
	err   error
}

func (m *mockRouter) Deliver(trackerID string, c geo.Coordinate) error {
	m.calls = append(m.calls, routed{trackerID, c})
	return m.err
}

type fakeMQTTMessage struct {
	topic   string
	payload []byte
}

func (f *fakeMQTTMessage) Duplicate() bool   { return false }
func (f *fakeMQTTMessage) Qos() byte         { return qos }
func (f *fakeMQTTMessage) Retained() bool    { return false }
func (f *fakeMQTTMessage) Topic() string     { return f.topic }
func (f *fakeMQTTMessage) MessageID() uint16 { return 0 }
func (f *fakeMQTTMessage) Payload() []byte   { return f.payload }
func (f *fakeMQTTMessage) Ack()              {}

func TestHandleMessageDelivers(t *testing.T) {
	router := &mockRouter{}
	sub := NewSubscriber(nil, router)

	sub.handleMessage(nil, &fakeMQTTMessage{
		topic:   "pathtracker/tracker-1/location",
		payload: []byte(`{"latitude":24.7,"longitude":46.6,"timestamp":1726128000}`),
	})

	if len(router.calls) != 1 {
		t.Fatalf("expected one delivery, got %d", len(router.calls))
	}
	got := router.calls[0]
	if got.trackerID != "tracker-1" || got.coord != (geo.Coordinate{Latitude: 24.7, Longitude: 46.6}) {
		t.Errorf("unexpected delivery %+v", got)
	}
}

func TestHandleMessageRejectsBadInput(t *testing.T) {
	router := &mockRouter{}
	sub := NewSubscriber(nil, router)

	cases := []*fakeMQTTMessage{
		{topic: "pathtracker/tracker-1/location", payload: []byte(`{bad`)},
		{topic: "pathtracker/tracker-1/location", payload: []byte(`{"latitude":24.7}`)},
		{topic: "pathtracker/tracker-1/location", payload: []byte(`{"latitude":95,"longitude":0}`)},
		{topic: "fleet/tracker-1/location", payload: []byte(`{"latitude":1,"longitude":1}`)},
		{topic: "pathtracker//location", payload: []byte(`{"latitude":1,"longitude":1}`)},
	}
	for _, msg := range cases {
		sub.handleMessage(nil, msg)
	}
	if len(router.calls) != 0 {
		t.Fatalf("expected no deliveries, got %+v", router.calls)
	}
}

func TestHandleMessageRouterError(t *testing.T) {
	router := &mockRouter{err: errors.New("closed")}
	sub := NewSubscriber(nil, router)

	sub.handleMessage(nil, &fakeMQTTMessage{
		topic:   "pathtracker/tracker-1/location",
		payload: []byte(`{"latitude":1,"longitude":1}`),
	})
	if len(router.calls) != 1 {
		t.Fatalf("expected delivery attempt")
	}
}

func TestHandleMessageIntoManager(t *testing.T) {
	store := pathstore.NewMemoryStore()
	mgr := tracking.NewManager(store, nil)
	defer mgr.Close()

	session, _ := mgr.Session("tracker-9")
	_ = session.Start()

	sub := NewSubscriber(nil, mgr)
	sub.handleMessage(nil, &fakeMQTTMessage{
		topic:   "pathtracker/tracker-9/location",
		payload: []byte(`{"latitude":-6.2088,"longitude":106.8456}`),
	})

	if st := session.Status(); st.Points != 1 {
		t.Fatalf("expected recorded point, got %+v", st)
	}
}

func TestTrackerFromTopic(t *testing.T) {
	if id, err := trackerFromTopic("/pathtracker/abc/location"); err != nil || id != "abc" {
		t.Fatalf("expected abc, got %q %v", id, err)
	}
	if _, err := trackerFromTopic("pathtracker/abc/speed"); err == nil {
		t.Fatalf("expected error")
	}
}
