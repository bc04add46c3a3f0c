package wpan

import "encoding/binary"

// FrameProxyStream builds the TmfProxy:Stream wire form: the payload followed
// by a 4-byte big-endian trailer of locator then port.
func FrameProxyStream(payload []byte, locator, port uint16) []byte {
	frame := make([]byte, len(payload)+proxyTrailerSize)
	n := copy(frame, payload)
	binary.BigEndian.PutUint16(frame[n:], locator)
	binary.BigEndian.PutUint16(frame[n+2:], port)
	return frame
}

// DeframeProxyStream splits a TmfProxy:Stream value back into payload,
// locator and port. The returned payload aliases the input.
func DeframeProxyStream(frame []byte) (payload []byte, locator, port uint16, err error) {
	if len(frame) < proxyTrailerSize {
		return nil, 0, 0, Protocolf("proxy stream frame too short (%d bytes)", len(frame))
	}
	n := len(frame) - proxyTrailerSize
	locator = binary.BigEndian.Uint16(frame[n:])
	port = binary.BigEndian.Uint16(frame[n+2:])
	return frame[:n], locator, port, nil
}
