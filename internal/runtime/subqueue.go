package runtime

import "sync"

// SubQueue decouples an event producer from one subscriber: the producer's
// Enqueue never blocks on a slow reader, and a new subscriber can receive a
// state snapshot before live events flow. Queues start paused; snapshot
// entries go straight to the channel, then SetPaused(false) releases the
// live stream.
type SubQueue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []T
	closed bool

	outCh  chan T
	paused bool
}

func NewSubQueue[T any](outBuf int) *SubQueue[T] {
	sq := &SubQueue[T]{
		outCh:  make(chan T, outBuf),
		paused: true,
	}
	sq.cond = sync.NewCond(&sq.mu)
	go sq.dispatch()
	return sq
}

// Chan is the subscriber's receive end. Closed when the queue is closed.
func (sq *SubQueue[T]) Chan() <-chan T { return sq.outCh }

// Enqueue appends a live event and wakes the dispatcher.
func (sq *SubQueue[T]) Enqueue(ev T) {
	sq.mu.Lock()
	if !sq.closed {
		sq.queue = append(sq.queue, ev)
		sq.cond.Signal()
	}
	sq.mu.Unlock()
}

// SnapshotSend pushes an event directly to the subscriber channel, bypassing
// the queue. Only valid while the queue is still paused and the channel was
// sized to hold the whole snapshot.
func (sq *SubQueue[T]) SnapshotSend(ev T) {
	sq.outCh <- ev
}

// SetPaused gates live dispatch; unpausing flushes anything queued while the
// snapshot was being sent.
func (sq *SubQueue[T]) SetPaused(v bool) {
	sq.mu.Lock()
	sq.paused = v
	sq.cond.Broadcast()
	sq.mu.Unlock()
}

// Close stops the dispatcher and closes the subscriber channel.
func (sq *SubQueue[T]) Close() {
	sq.mu.Lock()
	sq.closed = true
	sq.cond.Broadcast()
	sq.mu.Unlock()
}

func (sq *SubQueue[T]) dispatch() {
	for {
		sq.mu.Lock()
		for !sq.closed && (sq.paused || len(sq.queue) == 0) {
			sq.cond.Wait()
		}
		if sq.closed {
			sq.mu.Unlock()
			close(sq.outCh)
			return
		}
		ev := sq.queue[0]
		copy(sq.queue, sq.queue[1:])
		sq.queue = sq.queue[:len(sq.queue)-1]
		sq.mu.Unlock()

		sq.outCh <- ev
	}
}
