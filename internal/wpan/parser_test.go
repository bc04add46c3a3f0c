package wpan

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvent_ThreadState(t *testing.T) {
	tests := []struct {
		state      string
		associated bool
	}{
		{"associated", true},
		{"offline", false},
		{"associating", false},
		{"", false},
	}

	for _, tc := range tests {
		ev, err := ParseEvent(PropNCPState, tc.state)
		require.NoError(t, err)
		assert.Equal(t, ThreadStateChanged{Associated: tc.associated}, ev)
	}
}

func TestParseEvent_ThreadState_WrongType(t *testing.T) {
	_, err := ParseEvent(PropNCPState, uint32(1))
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestParseEvent_NetworkName(t *testing.T) {
	ev, err := ParseEvent(PropNetworkName, "OpenThreadDemo")

	require.NoError(t, err)
	assert.Equal(t, NetworkNameChanged{Name: "OpenThreadDemo"}, ev)
}

func TestParseEvent_ExtPanID_EncodingsConverge(t *testing.T) {
	canonical := [8]byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xAB, 0xCD, 0xEF}

	fromInt, err := ParseEvent(PropNetworkXPANID, uint64(0x0123456789ABCDEF))
	require.NoError(t, err)

	fromBytes, err := ParseEvent(PropNetworkXPANID, canonical[:])
	require.NoError(t, err)

	assert.Equal(t, ExtPanIDChanged{ExtPanID: canonical}, fromInt)
	assert.Equal(t, fromInt, fromBytes)
}

func TestParseEvent_ExtPanID_WrongLength(t *testing.T) {
	for _, n := range []int{0, 7, 9, 16} {
		_, err := ParseEvent(PropNetworkXPANID, make([]byte, n))
		assert.ErrorIs(t, err, ErrProtocol, "length %d", n)
	}
}

func TestParseEvent_PSKc(t *testing.T) {
	pskc := make([]byte, SizePSKc)
	for i := range pskc {
		pskc[i] = byte(i)
	}

	ev, err := ParseEvent(PropNetworkPSKc, pskc)

	require.NoError(t, err)
	want := PSKcChanged{}
	copy(want.PSKc[:], pskc)
	assert.Equal(t, want, ev)
}

func TestParseEvent_PSKc_WrongLength(t *testing.T) {
	for _, n := range []int{0, 8, 15, 17} {
		_, err := ParseEvent(PropNetworkPSKc, make([]byte, n))
		assert.ErrorIs(t, err, ErrProtocol, "length %d", n)
	}
}

func TestParseEvent_ProxyStream(t *testing.T) {
	ev, err := ParseEvent(PropTmfProxyStream, []byte{0xAB, 0xCD, 0x00, 0x10, 0x1F, 0x90})

	require.NoError(t, err)
	assert.Equal(t, ProxyStreamReceived{
		Payload: []byte{0xAB, 0xCD},
		Locator: 0x0010,
		Port:    0x1F90,
	}, ev)
}

func TestParseEvent_ProxyStream_DoesNotAliasInput(t *testing.T) {
	frame := []byte{0xAB, 0xCD, 0x00, 0x10, 0x1F, 0x90}

	ev, err := ParseEvent(PropTmfProxyStream, frame)
	require.NoError(t, err)
	frame[0] = 0x00

	assert.Equal(t, []byte{0xAB, 0xCD}, ev.(ProxyStreamReceived).Payload)
}

func TestParseEvent_ProxyStream_TooShort(t *testing.T) {
	_, err := ParseEvent(PropTmfProxyStream, []byte{0x01, 0x02, 0x03})
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestParseEvent_UnknownKeyIgnored(t *testing.T) {
	ev, err := ParseEvent("Daemon:Version", "0.08.00d")

	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestParseEvent_UnwrapsVariants(t *testing.T) {
	ev, err := ParseEvent(PropNetworkName, dbus.MakeVariant("wrapped"))

	require.NoError(t, err)
	assert.Equal(t, NetworkNameChanged{Name: "wrapped"}, ev)
}
