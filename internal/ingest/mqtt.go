// Package ingest feeds coordinates published by devices over MQTT into
// tracking sessions.
package ingest

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"backend-pathtracker/internal/shared/geo"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	TopicPattern = "pathtracker/+/location"
	qos          = 1
)

// Router delivers a coordinate to the named tracker's session.
// *tracking.Manager satisfies it.
type Router interface {
	Deliver(trackerID string, c geo.Coordinate) error
}

type locationMessage struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Timestamp int64    `json:"timestamp"`
}

type Subscriber struct {
	client mqtt.Client
	router Router
}

func NewSubscriber(client mqtt.Client, router Router) *Subscriber {
	return &Subscriber{client: client, router: router}
}

func (s *Subscriber) Start() error {
	token := s.client.Subscribe(TopicPattern, qos, s.handleMessage)
	token.Wait()
	return token.Error()
}

func (s *Subscriber) Stop() error {
	token := s.client.Unsubscribe(TopicPattern)
	token.Wait()
	return token.Error()
}

func (s *Subscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	trackerID, err := trackerFromTopic(msg.Topic())
	if err != nil {
		log.Printf("location message: %v", err)
		return
	}

	coord, err := parseLocation(msg.Payload())
	if err != nil {
		log.Printf("location message from %q: %v", trackerID, err)
		return
	}

	if err := s.router.Deliver(trackerID, coord); err != nil {
		log.Printf("deliver location for %q: %v", trackerID, err)
	}
}

func parseLocation(payload []byte) (geo.Coordinate, error) {
	var raw locationMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return geo.Coordinate{}, fmt.Errorf("invalid payload: %w", err)
	}
	if raw.Latitude == nil || raw.Longitude == nil {
		return geo.Coordinate{}, fmt.Errorf("latitude and longitude required")
	}
	c := geo.Coordinate{Latitude: *raw.Latitude, Longitude: *raw.Longitude}
	if err := c.Validate(); err != nil {
		return geo.Coordinate{}, err
	}
	return c, nil
}

// trackerFromTopic extracts the tracker id from pathtracker/{id}/location.
func trackerFromTopic(topic string) (string, error) {
	parts := strings.Split(strings.TrimPrefix(topic, "/"), "/")
	if len(parts) != 3 || parts[0] != "pathtracker" || parts[2] != "location" || parts[1] == "" {
		return "", fmt.Errorf("unexpected topic %q", topic)
	}
	return parts[1], nil
}
