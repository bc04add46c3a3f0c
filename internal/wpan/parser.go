package wpan

import (
	"encoding/binary"

	"github.com/godbus/dbus/v5"
)

type decoder func(value any) (Event, error)

// Decode table, keyed by property name. Keys absent from the table are
// properties this agent does not consume and are ignored without error.
var decoders = map[PropertyKey]decoder{
	PropNCPState:       decodeThreadState,
	PropNetworkName:    decodeNetworkName,
	PropNetworkXPANID:  decodeExtPanID,
	PropNetworkPSKc:    decodePSKc,
	PropTmfProxyStream: decodeProxyStream,
}

// ParseEvent decodes a property value, from either a PropertyChanged signal
// or a PropGet reply, into its domain event. Unknown keys yield (nil, nil).
func ParseEvent(key PropertyKey, value any) (Event, error) {
	dec, ok := decoders[key]
	if !ok {
		return nil, nil
	}
	return dec(Unwrap(value))
}

// Unwrap strips any variant wrapping from a bus value. The daemon sends some
// properties bare and some boxed, depending on its own code path.
func Unwrap(value any) any {
	for {
		v, ok := value.(dbus.Variant)
		if !ok {
			return value
		}
		value = v.Value()
	}
}

func decodeThreadState(value any) (Event, error) {
	state, ok := value.(string)
	if !ok {
		return nil, Protocolf("thread state: want string, got %T", value)
	}
	return ThreadStateChanged{Associated: state == ThreadStateAssociated}, nil
}

func decodeNetworkName(value any) (Event, error) {
	name, ok := value.(string)
	if !ok {
		return nil, Protocolf("network name: want string, got %T", value)
	}
	return NetworkNameChanged{Name: name}, nil
}

// The extended PAN id arrives in one of two encodings: a native uint64, or
// the canonical 8-byte blob. Encoding the integer big-endian makes the two
// forms converge without any host byte-order check.
func decodeExtPanID(value any) (Event, error) {
	var ev ExtPanIDChanged
	switch v := value.(type) {
	case uint64:
		binary.BigEndian.PutUint64(ev.ExtPanID[:], v)
	case []byte:
		if len(v) != SizeExtPanID {
			return nil, Protocolf("extended PAN id: want %d bytes, got %d", SizeExtPanID, len(v))
		}
		copy(ev.ExtPanID[:], v)
	default:
		return nil, Protocolf("extended PAN id: want uint64 or byte array, got %T", value)
	}
	return ev, nil
}

func decodePSKc(value any) (Event, error) {
	pskc, ok := value.([]byte)
	if !ok {
		return nil, Protocolf("PSKc: want byte array, got %T", value)
	}
	var ev PSKcChanged
	if len(pskc) != SizePSKc {
		return nil, Protocolf("PSKc: want %d bytes, got %d", SizePSKc, len(pskc))
	}
	copy(ev.PSKc[:], pskc)
	return ev, nil
}

func decodeProxyStream(value any) (Event, error) {
	frame, ok := value.([]byte)
	if !ok {
		return nil, Protocolf("proxy stream: want byte array, got %T", value)
	}
	payload, locator, port, err := DeframeProxyStream(frame)
	if err != nil {
		return nil, err
	}
	// Copy out of the bus message before it is recycled.
	ev := ProxyStreamReceived{
		Payload: append([]byte(nil), payload...),
		Locator: locator,
		Port:    port,
	}
	return ev, nil
}
