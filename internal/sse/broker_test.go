package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drain waits briefly, then returns every frame buffered on ch.
func drain(ch chan []byte) []string {
	time.Sleep(50 * time.Millisecond)
	var out []string
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func ofType(frames []string, typ string) []string {
	var out []string
	for _, f := range frames {
		if strings.Contains(f, "\nevent: "+typ+"\n") {
			out = append(out, f)
		}
	}
	return out
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	assert.Equal(t, 0, b.ClientCount())
	ch := b.Subscribe()
	assert.Equal(t, 1, b.ClientCount())
	b.Unsubscribe(ch)
	assert.Equal(t, 0, b.ClientCount())

	_, ok := <-ch
	assert.False(t, ok, "unsubscribed channel should be closed")
}

func TestPublishContentEvent(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishContentEvent("created", "a.md")
	b.PublishContentEvent("updated", "a.md")
	b.PublishContentEvent("deleted", "b.md")
	b.PublishContentEvent("renamed", "c.md")

	frames := drain(ch)
	require.Len(t, frames, 3)
	assert.Len(t, ofType(frames, TypeContentCreated), 1)
	assert.Len(t, ofType(frames, TypeContentUpdated), 1)
	assert.Len(t, ofType(frames, TypeContentDeleted), 1)
	assert.Equal(t, "id: 3\nevent: content.deleted\ndata: {\"path\":\"b.md\"}\n\n", frames[2])
}

func TestSubscribeFiltersTypes(t *testing.T) {
	b := NewBroker(10 * time.Millisecond)
	defer b.Close()
	all := b.Subscribe()
	rebuilds := b.Subscribe(TypeIndexRebuilt, " ")
	defer b.Unsubscribe(all)
	defer b.Unsubscribe(rebuilds)

	b.PublishContentEvent("updated", "a.md")
	b.PublishRebuilt(Rebuilt{Generation: 1, Posts: 2})

	assert.Len(t, drain(all), 2)
	frames := drain(rebuilds)
	require.Len(t, frames, 1)
	assert.Contains(t, frames[0], `"generation":1`)
}

func TestPublishRebuilt_Throttled(t *testing.T) {
	b := NewBroker(200 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// The first rebuild goes out immediately; the next two fall in the
	// window and only the newest is delivered when it closes.
	b.PublishRebuilt(Rebuilt{Generation: 1, Posts: 3})
	b.PublishRebuilt(Rebuilt{Generation: 2, Posts: 4})
	b.PublishRebuilt(Rebuilt{Generation: 3, Posts: 5})

	first := ofType(drain(ch), TypeIndexRebuilt)
	require.Len(t, first, 1)
	assert.Contains(t, first[0], `"generation":1`)

	time.Sleep(250 * time.Millisecond)
	rest := ofType(drain(ch), TypeIndexRebuilt)
	require.Len(t, rest, 1)
	assert.Contains(t, rest[0], `"generation":3`)
	assert.Contains(t, rest[0], `"posts":5`)
}

func TestHeartbeat(t *testing.T) {
	b := NewBroker(time.Second, WithHeartbeat(20*time.Millisecond))
	defer b.Close()
	ch := b.Subscribe(TypeIndexRebuilt)
	defer b.Unsubscribe(ch)

	select {
	case frame := <-ch:
		assert.Equal(t, ": ping\n\n", string(frame))
	case <-time.After(time.Second):
		t.Fatal("no heartbeat")
	}
}

func TestSlowClientDoesNotBlock(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for i := 0; i < clientBuffer+10; i++ {
		b.PublishContentEvent("updated", "x.md")
	}
	// The loop is still responsive with a full client buffer.
	assert.Equal(t, 1, b.ClientCount())
	assert.Len(t, drain(ch), clientBuffer)
}

func TestServeHTTP(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events?types=content.updated", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	b.PublishContentEvent("created", "skip.md")
	b.PublishContentEvent("updated", "x.md")
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body, "retry: 3000\n\n"), body)
	assert.Contains(t, body, "event: content.updated")
	assert.NotContains(t, body, "skip.md")

	require.Eventually(t, func() bool { return b.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestCloseStopsEverything(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	require.Equal(t, 1, b.ClientCount())

	b.Close()
	b.Close()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "subscriber channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}
	assert.Equal(t, 0, b.ClientCount())

	// No-ops after close.
	b.PublishContentEvent("updated", "x.md")
	b.PublishRebuilt(Rebuilt{Generation: 9})
	b.Unsubscribe(ch)
	late := b.Subscribe()
	_, ok := <-late
	assert.False(t, ok)
}
