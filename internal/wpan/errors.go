package wpan

import (
	"errors"
	"fmt"
)

// The two failure classes of the daemon channel. Transport failures cover the
// connection itself (lost bus, timeout, name claim); protocol failures cover
// well-delivered but malformed or rejected payloads. Classify with errors.Is.
var (
	ErrTransport = errors.New("transport failure")
	ErrProtocol  = errors.New("protocol failure")
)

// Transportf formats an error wrapping ErrTransport.
func Transportf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrTransport)...)
}

// Protocolf formats an error wrapping ErrProtocol.
func Protocolf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrProtocol)...)
}
