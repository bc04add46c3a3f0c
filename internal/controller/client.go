package controller

import (
	log "github.com/sirupsen/logrus"

	"github.com/thread-tools/wpanbus/internal/wpan"
)

// RequestProperty issues a blocking PropGet for key and returns the raw
// reply body. Requires a resolved daemon identity (TmfProxyStart).
func (c *Controller) RequestProperty(key wpan.PropertyKey) ([]any, error) {
	if !c.daemon.resolved() {
		return nil, wpan.Transportf("daemon identity not resolved")
	}
	return c.bus.Call(c.daemon.name, c.daemon.path, wpan.DBusInterface,
		wpan.MethodPropGet, requestTimeout, string(key))
}

// RequestEvent fetches the named event's property synchronously, decodes the
// reply with the same table as unsolicited signals, and forwards the event
// to the sink.
func (c *Controller) RequestEvent(id wpan.EventID) error {
	key, ok := id.Key()
	if !ok {
		return wpan.Protocolf("unknown event id %d", int(id))
	}
	log.WithField("property", key).Debug("Requesting daemon property")

	body, err := c.RequestProperty(key)
	if err != nil {
		return err
	}
	value, err := splitStatus(body)
	if err != nil {
		return err
	}

	ev, err := wpan.ParseEvent(key, value)
	if err != nil {
		return err
	}
	if ev != nil && c.sink != nil {
		c.sink.HandleEvent(ev)
	}
	return nil
}

// GetProperty fetches a byte-array property: a PropGet reply of status code
// followed by the bytes. The returned slice is the caller's to keep.
func (c *Controller) GetProperty(key wpan.PropertyKey) ([]byte, error) {
	body, err := c.RequestProperty(key)
	if err != nil {
		return nil, err
	}
	value, err := splitStatus(body)
	if err != nil {
		return nil, err
	}

	data, ok := wpan.Unwrap(value).([]byte)
	if !ok {
		return nil, wpan.Protocolf("%s: want byte array, got %T", key, value)
	}
	return append([]byte(nil), data...), nil
}

// GetEui64 returns the NCP hardware address, querying the daemon on first
// use and serving the cached copy afterwards.
func (c *Controller) GetEui64() ([]byte, error) {
	if c.eui64 != nil {
		return c.eui64, nil
	}
	data, err := c.GetProperty(wpan.PropNCPHardwareAddress)
	if err != nil {
		return nil, err
	}
	if len(data) != wpan.SizeHardwareAddress {
		return nil, wpan.Protocolf("hardware address: want %d bytes, got %d",
			wpan.SizeHardwareAddress, len(data))
	}
	c.eui64 = data
	return c.eui64, nil
}

// splitStatus validates the leading status code of a PropGet reply and
// returns the remaining value, if any.
func splitStatus(body []any) (any, error) {
	if len(body) == 0 {
		return nil, wpan.Protocolf("reply missing status code")
	}
	status, ok := statusCode(body[0])
	if !ok {
		return nil, wpan.Protocolf("reply status: unexpected type %T", body[0])
	}
	if status != 0 {
		return nil, wpan.Protocolf("daemon returned status %d", status)
	}
	if len(body) < 2 {
		return nil, nil
	}
	return body[1], nil
}

// The daemon encodes the status as int32 in some replies and uint32 in
// others; accept both.
func statusCode(v any) (uint32, bool) {
	switch s := wpan.Unwrap(v).(type) {
	case uint32:
		return s, true
	case int32:
		return uint32(s), true
	}
	return 0, false
}
