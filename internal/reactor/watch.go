// Package reactor projects bus connection descriptors into the fd sets of an
// external select-style loop. The loop owns the blocking wait; nothing in
// this package blocks.
package reactor

// Flags describes descriptor interest, or readiness when passed to Handle.
type Flags uint

const (
	Readable Flags = 1 << iota
	Writable
	Error
)

// Watch is one monitored descriptor owned by the connection layer.
type Watch interface {
	// Fd returns the descriptor, or a negative value once it is closed.
	Fd() int
	// Flags returns the watch's interest set.
	Flags() Flags
	// Enabled reports the connection's live enabled state for this watch.
	Enabled() bool
	// Handle consumes readiness reported by the reactor.
	Handle(ready Flags)
}

// Sink receives watch lifecycle callbacks from the connection layer. All
// calls happen on the reactor's thread of control.
type Sink interface {
	AddWatch(Watch)
	RemoveWatch(Watch)
	ToggleWatch(Watch)
}
