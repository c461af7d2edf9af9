package stream

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	channelPrefix  = "pathtracker:"
	channelSuffix  = ":events"
	channelPattern = channelPrefix + "*" + channelSuffix

	clientBuffer   = 64
	publishQueue   = 256
	publishTimeout = 2 * time.Second
)

// Hub fans tracker events out to local subscribers and, when Redis is
// configured, to subscribers connected to other API instances. Redis traffic
// runs on the hub's own goroutines; Broadcast never waits for it.
type Hub struct {
	redis    *redis.Client
	origin   string
	clients  map[string]map[*Client]struct{}
	mu       sync.RWMutex
	outbound chan outbound

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	// ready is closed once the Redis subscription is confirmed or has failed.
	ready  chan struct{}
	subMu  sync.Mutex
	pubsub *redis.PubSub
}

type Client struct {
	TrackerID string
	Send      chan []byte
}

type outbound struct {
	channel string
	msg     []byte
}

// envelope lets a hub skip its own messages coming back from Redis.
type envelope struct {
	Origin  string          `json:"origin"`
	Payload json.RawMessage `json:"payload"`
}

func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		redis:   redisClient,
		origin:  uuid.NewString(),
		clients: map[string]map[*Client]struct{}{},
		ctx:     ctx,
		cancel:  cancel,
		ready:   make(chan struct{}),
	}

	if redisClient == nil {
		close(h.ready)
		return h
	}
	h.outbound = make(chan outbound, publishQueue)
	h.wg.Add(2)
	go h.subscribeRedis()
	go h.publishRedis()
	return h
}

func (h *Hub) Register(trackerID string) *Client {
	client := &Client{
		TrackerID: trackerID,
		Send:      make(chan []byte, clientBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[trackerID] == nil {
		h.clients[trackerID] = map[*Client]struct{}{}
	}
	h.clients[trackerID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	trackerClients, ok := h.clients[client.TrackerID]
	if !ok {
		return
	}
	if _, ok := trackerClients[client]; !ok {
		return
	}
	delete(trackerClients, client)
	if len(trackerClients) == 0 {
		delete(h.clients, client.TrackerID)
	}
	close(client.Send)
}

// Broadcast never blocks: a subscriber whose buffer is full misses the
// payload, and so does Redis when its publish queue is full.
func (h *Hub) Broadcast(trackerID string, payload []byte) {
	h.deliver(trackerID, payload)

	if h.outbound == nil {
		return
	}
	msg, err := json.Marshal(envelope{Origin: h.origin, Payload: payload})
	if err != nil {
		log.Printf("redis envelope error: %v", err)
		return
	}
	select {
	case h.outbound <- outbound{channel: redisChannel(trackerID), msg: msg}:
	default:
		log.Printf("redis publish queue full, dropped event for tracker %q", trackerID)
	}
}

// Close stops the Redis goroutines. It is safe to call more than once.
func (h *Hub) Close() error {
	h.cancel()

	h.subMu.Lock()
	if h.pubsub != nil {
		_ = h.pubsub.Close()
	}
	h.subMu.Unlock()

	h.wg.Wait()
	return nil
}

func (h *Hub) deliver(trackerID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[trackerID] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis() {
	defer h.wg.Done()

	pubsub := h.redis.PSubscribe(h.ctx, channelPattern)
	defer pubsub.Close()

	h.subMu.Lock()
	h.pubsub = pubsub
	h.subMu.Unlock()
	if h.ctx.Err() != nil {
		close(h.ready)
		return
	}

	if _, err := pubsub.Receive(h.ctx); err != nil {
		if h.ctx.Err() == nil {
			log.Printf("redis subscribe error: %v", err)
		}
		close(h.ready)
		return
	}
	close(h.ready)

	messages := pubsub.Channel()
	for {
		select {
		case <-h.ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Printf("redis message error: %v", err)
				continue
			}
			if env.Origin == h.origin {
				continue
			}
			trackerID, ok := trackerIDFromChannel(msg.Channel)
			if !ok {
				continue
			}
			h.deliver(trackerID, env.Payload)
		}
	}
}

func (h *Hub) publishRedis() {
	defer h.wg.Done()
	for {
		select {
		case <-h.ctx.Done():
			return
		case out := <-h.outbound:
			ctx, cancel := context.WithTimeout(h.ctx, publishTimeout)
			err := h.redis.Publish(ctx, out.channel, out.msg).Err()
			cancel()
			if err != nil && h.ctx.Err() == nil {
				log.Printf("redis publish error: %v", err)
			}
		}
	}
}

func redisChannel(trackerID string) string {
	return channelPrefix + trackerID + channelSuffix
}

func trackerIDFromChannel(ch string) (string, bool) {
	if !strings.HasPrefix(ch, channelPrefix) || !strings.HasSuffix(ch, channelSuffix) {
		return "", false
	}
	if len(ch) < len(channelPrefix)+len(channelSuffix) {
		return "", false
	}
	return ch[len(channelPrefix) : len(ch)-len(channelSuffix)], true
}
