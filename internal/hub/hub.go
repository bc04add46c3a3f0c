// Package hub fans decoded daemon events out to the agent's optional
// consumers (mDNS advertiser, API stream) and caches the last-seen network
// state for status reporting.
package hub

import (
	"encoding/hex"
	"sync"

	"github.com/thread-tools/wpanbus/internal/runtime"
	"github.com/thread-tools/wpanbus/internal/wpan"
)

// State is the last-seen view of the network, assembled from events.
type State struct {
	Associated  bool
	NetworkName string
	ExtPanID    string // lowercase hex, empty until first seen
}

// Hub implements wpan.Sink. HandleEvent never blocks: each subscriber gets
// its own queue that absorbs bursts.
type Hub struct {
	subsMu sync.Mutex
	subs   map[int]*runtime.SubQueue[wpan.Event]
	nextID int

	mu    sync.Mutex
	state State
}

func New() *Hub {
	return &Hub{
		subs: make(map[int]*runtime.SubQueue[wpan.Event]),
	}
}

// HandleEvent updates the cached state and enqueues the event for every
// subscriber. subsMu is held across both so an event is either reflected
// in a concurrent Subscribe's snapshot or enqueued to it, never both and
// never neither.
func (h *Hub) HandleEvent(ev wpan.Event) {
	h.subsMu.Lock()
	h.mu.Lock()
	switch ev := ev.(type) {
	case wpan.ThreadStateChanged:
		h.state.Associated = ev.Associated
	case wpan.NetworkNameChanged:
		h.state.NetworkName = ev.Name
	case wpan.ExtPanIDChanged:
		h.state.ExtPanID = hex.EncodeToString(ev.ExtPanID[:])
	}
	h.mu.Unlock()

	for _, sub := range h.subs {
		sub.Enqueue(ev)
	}
	h.subsMu.Unlock()
}

// State returns the cached network state.
func (h *Hub) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Subscribe registers a consumer. The cached state is replayed as synthetic
// events before live delivery begins, so late subscribers converge. The
// returned function unsubscribes and closes the channel.
func (h *Hub) Subscribe() (<-chan wpan.Event, func()) {
	// Snapshot and registration happen under one subsMu hold, so no
	// event can slip between them.
	h.subsMu.Lock()
	snapshot := h.snapshotEvents()
	sub := runtime.NewSubQueue[wpan.Event](len(snapshot) + 16)
	id := h.nextID
	h.nextID++
	h.subs[id] = sub
	h.subsMu.Unlock()

	for _, ev := range snapshot {
		sub.SnapshotSend(ev)
	}
	sub.SetPaused(false)

	unsub := func() {
		h.subsMu.Lock()
		if q, ok := h.subs[id]; ok {
			delete(h.subs, id)
			q.Close()
		}
		h.subsMu.Unlock()
	}
	return sub.Chan(), unsub
}

func (h *Hub) snapshotEvents() []wpan.Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	var events []wpan.Event
	if h.state.NetworkName != "" {
		events = append(events, wpan.NetworkNameChanged{Name: h.state.NetworkName})
	}
	if h.state.ExtPanID != "" {
		raw, err := hex.DecodeString(h.state.ExtPanID)
		if err == nil && len(raw) == wpan.SizeExtPanID {
			ev := wpan.ExtPanIDChanged{}
			copy(ev.ExtPanID[:], raw)
			events = append(events, ev)
		}
	}
	if h.state.Associated {
		events = append(events, wpan.ThreadStateChanged{Associated: true})
	}
	return events
}

// Close shuts down all remaining subscriptions.
func (h *Hub) Close() error {
	h.subsMu.Lock()
	defer h.subsMu.Unlock()
	for id, sub := range h.subs {
		delete(h.subs, id)
		sub.Close()
	}
	return nil
}
