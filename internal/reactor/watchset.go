package reactor

import "golang.org/x/sys/unix"

// WatchSet tracks the registered watches and their enabled flags. It is the
// Sink the connection layer reports into, and the source the reactor's
// populate/process steps iterate. Mutations only happen from connection
// callbacks during Process, so no locking is needed.
type WatchSet struct {
	watches   map[Watch]bool
	hasOutput func() bool
}

// NewWatchSet builds an empty set. hasOutput reports whether the connection
// has outbound data queued; it gates write-interest so an idle connection
// does not wake the reactor on an always-writable socket.
func NewWatchSet(hasOutput func() bool) *WatchSet {
	if hasOutput == nil {
		hasOutput = func() bool { return false }
	}
	return &WatchSet{
		watches:   make(map[Watch]bool),
		hasOutput: hasOutput,
	}
}

func (s *WatchSet) AddWatch(w Watch) {
	s.watches[w] = w.Enabled()
}

func (s *WatchSet) RemoveWatch(w Watch) {
	delete(s.watches, w)
}

// ToggleWatch refreshes the enabled flag from the watch's live state.
func (s *WatchSet) ToggleWatch(w Watch) {
	if _, ok := s.watches[w]; ok {
		s.watches[w] = w.Enabled()
	}
}

// Len returns the number of registered watches.
func (s *WatchSet) Len() int {
	return len(s.watches)
}

// Populate adds every enabled watch's descriptor to the fd sets according to
// its interest and bumps maxFd. Disabled watches and closed descriptors are
// skipped.
func (s *WatchSet) Populate(readSet, writeSet, errSet *unix.FdSet, maxFd *int) {
	for w, enabled := range s.watches {
		if !enabled {
			continue
		}
		fd := w.Fd()
		if fd < 0 {
			continue
		}

		flags := w.Flags()
		if flags&Readable != 0 {
			readSet.Set(fd)
		}
		if flags&Writable != 0 && s.hasOutput() {
			writeSet.Set(fd)
		}
		errSet.Set(fd)

		if fd > *maxFd {
			*maxFd = fd
		}
	}
}

// Process forwards readiness from the fd sets back to each enabled watch,
// masking interest down to what actually fired and adding Error for
// descriptors in the error set.
func (s *WatchSet) Process(readSet, writeSet, errSet *unix.FdSet) {
	for w, enabled := range s.watches {
		if !enabled {
			continue
		}
		fd := w.Fd()
		if fd < 0 {
			continue
		}

		ready := w.Flags()
		if ready&Readable != 0 && !readSet.IsSet(fd) {
			ready &^= Readable
		}
		if ready&Writable != 0 && !writeSet.IsSet(fd) {
			ready &^= Writable
		}
		if errSet.IsSet(fd) {
			ready |= Error
		}

		if ready != 0 {
			w.Handle(ready)
		}
	}
}
