package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/cookhub/internal/models"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishAccess(models.AccessEvent{Kind: models.EventMarkdown, Slug: "foo", Branch: "main"})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: access.markdown") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"slug":"foo"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishAccess_TickThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// First event triggers traffic.tick; the second one is throttled.
	b.PublishAccess(models.AccessEvent{Kind: models.EventCatalog, Slug: models.NoSlug, Branch: "main"})
	b.PublishAccess(models.AccessEvent{Kind: models.EventCode, Slug: "foo", Branch: "main", ClientIP: "10.1.1.1"})

	time.Sleep(50 * time.Millisecond)
	tickCount := 0
	accessCount := 0
loop:
	for {
		select {
		case msg := <-ch:
			s := string(msg)
			if strings.Contains(s, "traffic.tick") {
				tickCount++
			} else {
				accessCount++
			}
			if strings.Contains(s, "10.1.1.1") {
				t.Errorf("client ip leaked into feed: %q", s)
			}
		default:
			break loop
		}
	}

	if accessCount != 2 {
		t.Errorf("access events = %d, want 2", accessCount)
	}
	if tickCount != 1 {
		t.Errorf("tick events = %d, want 1 (throttled)", tickCount)
	}
}

func TestRecordPublishesAccessEvent(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	if err := b.Record(context.Background(), models.AccessEvent{Kind: models.EventMarkdown, Slug: "foo", Branch: "dev"}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: access.markdown") || !strings.Contains(s, `"branch":"dev"`) {
			t.Errorf("unexpected message %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	// Start handler in background.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishAccess(models.AccessEvent{Kind: models.EventCode, Slug: "x", Branch: "main"})
	time.Sleep(50 * time.Millisecond)

	// Cancel context to disconnect.
	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: access.code") {
		t.Errorf("handler output missing event: %q", body)
	}

	// Client should be cleaned up.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Fill buffer (capacity 64) and then one more should not block.
	for i := 0; i < 70; i++ {
		b.PublishAccess(models.AccessEvent{Kind: models.EventCatalog, Slug: models.NoSlug, Branch: "main"})
	}
	// If we reach here without deadlock, the test passes.
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Should be safe no-op after close.
	b.PublishAccess(models.AccessEvent{Kind: models.EventCode, Slug: "x"})
}
