// Package sse streams access events to browsers as Server-Sent Events.
package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/starford/cookhub/internal/models"
)

// frame is one SSE message: an event name and a JSON payload.
type frame struct {
	name string
	data any
}

// Broker manages SSE client connections and broadcasts events.
//
// A single event loop goroutine owns the client set and the traffic counter;
// public methods talk to it over channels.
type Broker struct {
	tickMin time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	accessCh      chan models.AccessEvent
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker that emits at most one traffic.tick per
// tickThrottle.
func NewBroker(tickThrottle time.Duration) *Broker {
	if tickThrottle <= 0 {
		tickThrottle = 2 * time.Second
	}

	b := &Broker{
		tickMin:       tickThrottle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		accessCh:      make(chan models.AccessEvent, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var lastTick time.Time
	var sinceTick int

	broadcast := func(f frame) {
		payload, err := json.Marshal(f.data)
		if err != nil {
			return
		}
		msg := fmt.Sprintf("event: %s\ndata: %s\n\n", f.name, payload)
		raw := []byte(msg)

		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking broker loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case ev := <-b.accessCh:
			// Request metadata stays out of the public feed.
			broadcast(frame{name: "access." + string(ev.Kind), data: map[string]string{
				"slug":   ev.Slug,
				"branch": ev.Branch,
			}})

			sinceTick++
			now := time.Now()
			if now.Sub(lastTick) >= b.tickMin {
				lastTick = now
				broadcast(frame{name: "traffic.tick", data: map[string]int{"requests": sinceTick}})
				sinceTick = 0
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected feed clients. It is reported
// by the readiness endpoint.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// PublishAccess publishes an access.<kind> event and a throttled traffic.tick.
func (b *Broker) PublishAccess(ev models.AccessEvent) {
	if b.closed.Load() {
		return
	}
	select {
	case b.accessCh <- ev:
	case <-b.stopped:
	}
}

// Record implements analytics.Sink so the feed can sit next to a store.
func (b *Broker) Record(_ context.Context, ev models.AccessEvent) error {
	b.PublishAccess(ev)
	return nil
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
