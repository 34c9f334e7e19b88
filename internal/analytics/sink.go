// Package analytics records access events. Recording is fire-and-forget:
// failures are logged and never reach the request that produced the event.
package analytics

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/starford/cookhub/internal/models"
)

const (
	DefaultQueueSize = 256
	writeTimeout     = 5 * time.Second
)

// Sink persists or forwards access events.
type Sink interface {
	Record(ctx context.Context, ev models.AccessEvent) error
}

// Nop discards every event.
type Nop struct{}

// Record implements Sink.
func (Nop) Record(context.Context, models.AccessEvent) error { return nil }

// Multi fans an event out to every sink and joins their errors.
type Multi []Sink

// Record implements Sink.
func (m Multi) Record(ctx context.Context, ev models.AccessEvent) error {
	var errs []error
	for _, s := range m {
		if err := s.Record(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder writes events to a Sink on a background goroutine fed by a
// bounded queue. Enqueue never blocks.
type Recorder struct {
	sink    Sink
	queue   chan models.AccessEvent
	logger  *slog.Logger
	dropped atomic.Int64
}

// NewRecorder creates a recorder. size <= 0 selects DefaultQueueSize.
func NewRecorder(sink Sink, size int, logger *slog.Logger) *Recorder {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		sink:   sink,
		queue:  make(chan models.AccessEvent, size),
		logger: logger,
	}
}

// Enqueue schedules ev for recording. It returns false when the queue is
// full and the event was dropped.
func (r *Recorder) Enqueue(ev models.AccessEvent) bool {
	select {
	case r.queue <- ev:
		return true
	default:
		n := r.dropped.Add(1)
		r.logger.Warn("analytics: queue full, event dropped",
			slog.String("kind", string(ev.Kind)),
			slog.String("slug", ev.Slug),
			slog.Int64("dropped_total", n))
		return false
	}
}

// Dropped returns the number of events dropped because the queue was full.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Run writes queued events until ctx is cancelled, then flushes whatever is
// still queued.
func (r *Recorder) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			r.flush()
			return nil
		case ev := <-r.queue:
			r.write(ev)
		}
	}
}

func (r *Recorder) flush() {
	for {
		select {
		case ev := <-r.queue:
			r.write(ev)
		default:
			return
		}
	}
}

func (r *Recorder) write(ev models.AccessEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := r.sink.Record(ctx, ev); err != nil {
		r.logger.Warn("analytics: record failed",
			slog.String("kind", string(ev.Kind)),
			slog.String("slug", ev.Slug),
			slog.String("branch", ev.Branch),
			slog.String("error", err.Error()))
	}
}
