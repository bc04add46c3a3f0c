package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

type fakeWatch struct {
	fd      int
	flags   Flags
	enabled bool
	handled []Flags
}

func (w *fakeWatch) Fd() int            { return w.fd }
func (w *fakeWatch) Flags() Flags       { return w.flags }
func (w *fakeWatch) Enabled() bool      { return w.enabled }
func (w *fakeWatch) Handle(ready Flags) { w.handled = append(w.handled, ready) }

func TestWatchSet_PopulateReadable(t *testing.T) {
	s := NewWatchSet(nil)
	s.AddWatch(&fakeWatch{fd: 5, flags: Readable, enabled: true})

	var rset, wset, eset unix.FdSet
	maxFd := -1
	s.Populate(&rset, &wset, &eset, &maxFd)

	assert.True(t, rset.IsSet(5))
	assert.False(t, wset.IsSet(5))
	assert.True(t, eset.IsSet(5), "error set always includes the descriptor")
	assert.Equal(t, 5, maxFd)
}

func TestWatchSet_PopulateSkipsDisabled(t *testing.T) {
	s := NewWatchSet(nil)
	s.AddWatch(&fakeWatch{fd: 5, flags: Readable | Writable, enabled: false})

	var rset, wset, eset unix.FdSet
	maxFd := -1
	s.Populate(&rset, &wset, &eset, &maxFd)

	assert.False(t, rset.IsSet(5))
	assert.False(t, eset.IsSet(5))
	assert.Equal(t, -1, maxFd)
}

func TestWatchSet_PopulateSkipsClosedFd(t *testing.T) {
	s := NewWatchSet(nil)
	s.AddWatch(&fakeWatch{fd: -1, flags: Readable, enabled: true})

	var rset, wset, eset unix.FdSet
	maxFd := -1
	s.Populate(&rset, &wset, &eset, &maxFd)

	assert.Equal(t, -1, maxFd)
}

func TestWatchSet_PopulateWriteGatedOnOutput(t *testing.T) {
	hasOutput := false
	s := NewWatchSet(func() bool { return hasOutput })
	s.AddWatch(&fakeWatch{fd: 7, flags: Writable, enabled: true})

	var rset, wset, eset unix.FdSet
	maxFd := -1
	s.Populate(&rset, &wset, &eset, &maxFd)
	assert.False(t, wset.IsSet(7), "no queued output, no write interest")

	hasOutput = true
	s.Populate(&rset, &wset, &eset, &maxFd)
	assert.True(t, wset.IsSet(7))
}

func TestWatchSet_PopulateTracksMaxFd(t *testing.T) {
	s := NewWatchSet(nil)
	s.AddWatch(&fakeWatch{fd: 3, flags: Readable, enabled: true})
	s.AddWatch(&fakeWatch{fd: 12, flags: Readable, enabled: true})
	s.AddWatch(&fakeWatch{fd: 8, flags: Readable, enabled: true})

	var rset, wset, eset unix.FdSet
	maxFd := -1
	s.Populate(&rset, &wset, &eset, &maxFd)

	assert.Equal(t, 12, maxFd)
}

func TestWatchSet_ToggleRefreshesEnabled(t *testing.T) {
	w := &fakeWatch{fd: 4, flags: Readable, enabled: true}
	s := NewWatchSet(nil)
	s.AddWatch(w)

	w.enabled = false
	s.ToggleWatch(w)

	var rset, wset, eset unix.FdSet
	maxFd := -1
	s.Populate(&rset, &wset, &eset, &maxFd)
	assert.False(t, rset.IsSet(4))

	w.enabled = true
	s.ToggleWatch(w)
	s.Populate(&rset, &wset, &eset, &maxFd)
	assert.True(t, rset.IsSet(4))
}

func TestWatchSet_ToggleUnknownWatchIsNoop(t *testing.T) {
	s := NewWatchSet(nil)
	s.ToggleWatch(&fakeWatch{fd: 4, enabled: true})

	assert.Equal(t, 0, s.Len())
}

func TestWatchSet_RemoveAbsentWatch(t *testing.T) {
	s := NewWatchSet(nil)
	s.RemoveWatch(&fakeWatch{fd: 4})

	assert.Equal(t, 0, s.Len())
}

func TestWatchSet_ProcessMasksReadiness(t *testing.T) {
	w := &fakeWatch{fd: 6, flags: Readable | Writable, enabled: true}
	s := NewWatchSet(func() bool { return true })
	s.AddWatch(w)

	var rset, wset, eset unix.FdSet
	rset.Set(6) // readable fired, writable did not

	s.Process(&rset, &wset, &eset)

	assert.Equal(t, []Flags{Readable}, w.handled)
}

func TestWatchSet_ProcessAddsError(t *testing.T) {
	w := &fakeWatch{fd: 6, flags: Readable, enabled: true}
	s := NewWatchSet(nil)
	s.AddWatch(w)

	var rset, wset, eset unix.FdSet
	rset.Set(6)
	eset.Set(6)

	s.Process(&rset, &wset, &eset)

	assert.Equal(t, []Flags{Readable | Error}, w.handled)
}

func TestWatchSet_ProcessSkipsIdleAndDisabled(t *testing.T) {
	idle := &fakeWatch{fd: 6, flags: Readable, enabled: true}
	disabled := &fakeWatch{fd: 7, flags: Readable, enabled: false}
	s := NewWatchSet(nil)
	s.AddWatch(idle)
	s.AddWatch(disabled)

	var rset, wset, eset unix.FdSet
	rset.Set(7) // late readiness for a watch that has since been disabled

	s.Process(&rset, &wset, &eset)

	assert.Empty(t, idle.handled)
	assert.Empty(t, disabled.handled)
}
