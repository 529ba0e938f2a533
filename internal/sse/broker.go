// Package sse implements a Server-Sent Events broker for content and index
// change notifications.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// Event types sent to clients.
const (
	TypeContentCreated = "content.created"
	TypeContentUpdated = "content.updated"
	TypeContentDeleted = "content.deleted"
	TypeIndexRebuilt   = "index.rebuilt"
)

const (
	// DefaultThrottle is the minimum interval between index.rebuilt events.
	DefaultThrottle = 2 * time.Second
	// DefaultHeartbeat is the interval of keep-alive comments.
	DefaultHeartbeat = 30 * time.Second
	// ReconnectDelay is the retry hint sent to EventSource clients.
	ReconnectDelay = 3 * time.Second

	clientBuffer = 64
)

var contentTypes = map[string]string{
	"created": TypeContentCreated,
	"updated": TypeContentUpdated,
	"deleted": TypeContentDeleted,
}

// Event is one message for connected clients.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ContentChange is the payload of content.* events.
type ContentChange struct {
	Path string `json:"path"`
}

// Rebuilt is the payload of index.rebuilt events.
type Rebuilt struct {
	Generation uint64 `json:"generation"`
	Posts      int    `json:"posts"`
}

// Option configures a Broker.
type Option func(*Broker)

// WithHeartbeat sets the keep-alive interval. Non-positive values keep the
// default.
func WithHeartbeat(d time.Duration) Option {
	return func(b *Broker) {
		if d > 0 {
			b.heartbeat = d
		}
	}
}

type subscriber struct {
	send  chan []byte
	types map[string]struct{}
}

func (s *subscriber) accepts(eventType string) bool {
	if len(s.types) == 0 {
		return true
	}
	_, ok := s.types[eventType]
	return ok
}

// Broker fans events out to SSE clients.
//
// All client bookkeeping happens on one loop goroutine; public methods hand
// it closures or events over channels. index.rebuilt is throttled with a
// trailing edge: inside the window only the newest rebuild is kept and it
// is sent when the window ends.
type Broker struct {
	throttle  time.Duration
	heartbeat time.Duration

	ops     chan func()
	events  chan Event
	rebuilt chan Rebuilt

	done    chan struct{}
	stopped chan struct{}
	closed  atomic.Bool

	// Loop goroutine only.
	subs map[chan []byte]*subscriber
	seq  uint64
}

// NewBroker starts a broker. A non-positive throttle uses DefaultThrottle.
func NewBroker(throttle time.Duration, opts ...Option) *Broker {
	if throttle <= 0 {
		throttle = DefaultThrottle
	}
	b := &Broker{
		throttle:  throttle,
		heartbeat: DefaultHeartbeat,
		ops:       make(chan func()),
		events:    make(chan Event, 256),
		rebuilt:   make(chan Rebuilt, 16),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
		subs:      make(map[chan []byte]*subscriber),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	heartbeat := time.NewTicker(b.heartbeat)
	defer heartbeat.Stop()

	var (
		lastRebuilt time.Time
		pending     *Rebuilt
		flushTimer  *time.Timer
		flush       <-chan time.Time
	)
	sendRebuilt := func(r Rebuilt) {
		lastRebuilt = time.Now()
		b.broadcast(Event{Type: TypeIndexRebuilt, Data: r})
	}

	for {
		select {
		case <-b.done:
			if flushTimer != nil {
				flushTimer.Stop()
			}
			for ch := range b.subs {
				close(ch)
			}
			clear(b.subs)
			return

		case fn := <-b.ops:
			fn()

		case e := <-b.events:
			b.broadcast(e)

		case r := <-b.rebuilt:
			wait := b.throttle - time.Since(lastRebuilt)
			if wait <= 0 {
				sendRebuilt(r)
				continue
			}
			pending = &r
			if flushTimer == nil {
				flushTimer = time.NewTimer(wait)
				flush = flushTimer.C
			}

		case <-flush:
			flushTimer, flush = nil, nil
			if pending != nil {
				sendRebuilt(*pending)
				pending = nil
			}

		case <-heartbeat.C:
			b.deliver([]byte(": ping\n\n"), "")
		}
	}
}

func (b *Broker) broadcast(e Event) {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return
	}
	b.seq++
	frame := fmt.Appendf(nil, "id: %d\nevent: %s\ndata: %s\n\n", b.seq, e.Type, payload)
	b.deliver(frame, e.Type)
}

// deliver sends frame to every subscriber that accepts eventType; an empty
// eventType reaches everyone. Slow clients with a full buffer miss the frame.
func (b *Broker) deliver(frame []byte, eventType string) {
	for ch, sub := range b.subs {
		if eventType != "" && !sub.accepts(eventType) {
			continue
		}
		select {
		case ch <- frame:
		default:
		}
	}
}

// do runs fn on the loop goroutine. It reports false once the broker is
// closed.
func (b *Broker) do(fn func()) bool {
	if b.closed.Load() {
		return false
	}
	select {
	case b.ops <- fn:
		return true
	case <-b.stopped:
		return false
	}
}

// Close stops the loop and closes every client channel. It is safe to call
// more than once.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.done)
	}
	<-b.stopped
}

// Subscribe registers a client for the given event types (all types when
// none are given) and returns its frame channel. The channel is closed by
// Unsubscribe or Close.
func (b *Broker) Subscribe(types ...string) chan []byte {
	ch := make(chan []byte, clientBuffer)
	sub := &subscriber{send: ch}
	for _, t := range types {
		if t = strings.TrimSpace(t); t != "" {
			if sub.types == nil {
				sub.types = make(map[string]struct{})
			}
			sub.types[t] = struct{}{}
		}
	}
	if !b.do(func() { b.subs[ch] = sub }) {
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.do(func() {
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
	})
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	n := make(chan int, 1)
	if !b.do(func() { n <- len(b.subs) }) {
		return 0
	}
	return <-n
}

// Publish queues an event for all interested clients.
func (b *Broker) Publish(e Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.events <- e:
	case <-b.stopped:
	}
}

// PublishContentEvent publishes a content file change. kind is one of
// "created", "updated", "deleted"; other kinds are ignored.
func (b *Broker) PublishContentEvent(kind, path string) {
	if t, ok := contentTypes[kind]; ok {
		b.Publish(Event{Type: t, Data: ContentChange{Path: path}})
	}
}

// PublishRebuilt publishes a throttled index.rebuilt event.
func (b *Broker) PublishRebuilt(r Rebuilt) {
	if b.closed.Load() {
		return
	}
	select {
	case b.rebuilt <- r:
	case <-b.stopped:
	}
}

// ServeHTTP streams events to one client (GET /api/events). The optional
// types query parameter is a comma separated list of event types.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	var types []string
	if v := r.URL.Query().Get("types"); v != "" {
		types = strings.Split(v, ",")
	}
	ch := b.Subscribe(types...)
	defer b.Unsubscribe(ch)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "retry: %d\n\n", ReconnectDelay.Milliseconds())
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case frame, ok := <-ch:
			if !ok {
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
