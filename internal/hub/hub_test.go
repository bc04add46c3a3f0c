package hub

import (
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thread-tools/wpanbus/internal/wpan"
)

func recv(t *testing.T, ch <-chan wpan.Event) wpan.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestHub_FansOutToAllSubscribers(t *testing.T) {
	h := New()
	defer h.Close()

	a, unsubA := h.Subscribe()
	b, unsubB := h.Subscribe()
	defer unsubA()
	defer unsubB()

	h.HandleEvent(wpan.NetworkNameChanged{Name: "TestNet"})

	assert.Equal(t, wpan.NetworkNameChanged{Name: "TestNet"}, recv(t, a))
	assert.Equal(t, wpan.NetworkNameChanged{Name: "TestNet"}, recv(t, b))
}

func TestHub_TracksState(t *testing.T) {
	h := New()
	defer h.Close()

	h.HandleEvent(wpan.ThreadStateChanged{Associated: true})
	h.HandleEvent(wpan.NetworkNameChanged{Name: "TestNet"})
	h.HandleEvent(wpan.ExtPanIDChanged{ExtPanID: [8]byte{0xDE, 0xAD, 0x00, 0xBE, 0xEF, 0x00, 0xCA, 0xFE}})

	state := h.State()
	assert.True(t, state.Associated)
	assert.Equal(t, "TestNet", state.NetworkName)
	assert.Equal(t, "dead00beef00cafe", state.ExtPanID)

	h.HandleEvent(wpan.ThreadStateChanged{Associated: false})
	assert.False(t, h.State().Associated)
}

func TestHub_LateSubscriberGetsSnapshot(t *testing.T) {
	h := New()
	defer h.Close()

	h.HandleEvent(wpan.NetworkNameChanged{Name: "TestNet"})
	h.HandleEvent(wpan.ThreadStateChanged{Associated: true})

	ch, unsub := h.Subscribe()
	defer unsub()

	assert.Equal(t, wpan.NetworkNameChanged{Name: "TestNet"}, recv(t, ch))
	assert.Equal(t, wpan.ThreadStateChanged{Associated: true}, recv(t, ch))
}

func TestHub_SubscribeConcurrentWithEventsMissesNothing(t *testing.T) {
	h := New()
	defer h.Close()

	h.HandleEvent(wpan.NetworkNameChanged{Name: "net-0"})

	published := make(chan struct{})
	go func() {
		defer close(published)
		for i := 1; i <= 200; i++ {
			h.HandleEvent(wpan.NetworkNameChanged{Name: fmt.Sprintf("net-%d", i)})
		}
	}()

	ch, unsub := h.Subscribe()
	defer unsub()
	<-published
	h.HandleEvent(wpan.ThreadStateChanged{Associated: true})

	// The subscriber sees a contiguous suffix of the name stream: the
	// snapshot carries some net-k, and everything after arrives in order
	// with no gaps and no duplicates, ending at the final name.
	prev := -1
	for {
		ev := recv(t, ch)
		name, ok := ev.(wpan.NetworkNameChanged)
		if !ok {
			break
		}
		idx, err := strconv.Atoi(strings.TrimPrefix(name.Name, "net-"))
		require.NoError(t, err)
		if prev >= 0 {
			require.Equal(t, prev+1, idx, "event lost or duplicated around subscribe")
		}
		prev = idx
	}
	assert.Equal(t, 200, prev)
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	h := New()
	defer h.Close()

	ch, unsub := h.Subscribe()
	unsub()

	select {
	case _, ok := <-ch:
		require.False(t, ok, "channel must be closed after unsubscribe")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for close")
	}

	// Events after unsubscribe must not panic.
	assert.NotPanics(t, func() {
		h.HandleEvent(wpan.ThreadStateChanged{Associated: true})
	})
}
