// Package busio adapts a godbus connection to the agent's cooperative
// reactor: synchronous calls with a bounded timeout, match-rule management,
// and signal delivery re-queued onto the reactor's thread of control.
package busio

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	log "github.com/sirupsen/logrus"

	"github.com/thread-tools/wpanbus/internal/reactor"
	"github.com/thread-tools/wpanbus/internal/wpan"
)

const signalBuffer = 128

// Conn wraps one bus connection. godbus runs its own reader internally, so
// inbound signals are parked in a queue and a self-pipe watch wakes the
// reactor; Dispatch then runs the handler on the reactor's goroutine,
// keeping everything above this package single-threaded.
type Conn struct {
	bus     *dbus.Conn
	signals chan *dbus.Signal
	notify  *notifyWatch
	sink    reactor.Sink
	handler func(*dbus.Signal)

	mu     sync.Mutex
	queue  []*dbus.Signal
	closed bool
}

// Connect acquires a bus connection, preferring the starter bus the process
// was activated from and falling back to the system bus.
func Connect() (*Conn, error) {
	bus, err := connectStarterBus()
	if err != nil {
		bus, err = dbus.ConnectSystemBus()
	}
	if err != nil {
		return nil, wpan.Transportf("connect bus: %v", err)
	}

	notify, err := newNotifyWatch()
	if err != nil {
		bus.Close()
		return nil, wpan.Transportf("create notify pipe: %v", err)
	}

	c := &Conn{
		bus:     bus,
		signals: make(chan *dbus.Signal, signalBuffer),
		notify:  notify,
	}
	bus.Signal(c.signals)
	go c.pump()
	return c, nil
}

func connectStarterBus() (*dbus.Conn, error) {
	addr := os.Getenv("DBUS_STARTER_ADDRESS")
	if addr == "" {
		return nil, errors.New("no starter bus address")
	}
	return dbus.Connect(addr)
}

// pump parks inbound signals for Dispatch and wakes the reactor. This is the
// only goroutine touching the queue besides the reactor itself.
func (c *Conn) pump() {
	for sig := range c.signals {
		c.mu.Lock()
		c.queue = append(c.queue, sig)
		c.mu.Unlock()
		c.notify.wake()
	}
}

// SetWatchSink registers the connection's descriptors with the reactor.
func (c *Conn) SetWatchSink(sink reactor.Sink) {
	c.sink = sink
	sink.AddWatch(c.notify)
}

// SetSignalHandler installs the function Dispatch invokes per queued signal.
func (c *Conn) SetSignalHandler(handler func(*dbus.Signal)) {
	c.handler = handler
}

// HasMessagesToSend reports whether outbound data is queued. godbus flushes
// writes from the sending caller, so the adapter never queues output itself.
func (c *Conn) HasMessagesToSend() bool {
	return false
}

// Dispatch drains the signal queue, invoking the handler for each signal on
// the caller's goroutine.
func (c *Conn) Dispatch() {
	for {
		c.mu.Lock()
		if len(c.queue) == 0 {
			c.mu.Unlock()
			return
		}
		sig := c.queue[0]
		c.queue = c.queue[1:]
		c.mu.Unlock()

		if c.handler != nil {
			c.handler(sig)
		}
	}
}

// RequestName claims a well-known name without queueing; any outcome other
// than primary ownership is an error, since another agent instance already
// owning the name must fail fast.
func (c *Conn) RequestName(name string) error {
	reply, err := c.bus.RequestName(name, dbus.NameFlagDoNotQueue)
	if err != nil {
		return wpan.Transportf("request name %q: %v", name, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return wpan.Transportf("bus name %q already taken", name)
	}
	return nil
}

// AddMatch installs a signal match rule on the bus daemon.
func (c *Conn) AddMatch(rule string) error {
	call := c.bus.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, rule)
	if call.Err != nil {
		return wpan.Transportf("add match %q: %v", rule, call.Err)
	}
	return nil
}

// NameOwner resolves a well-known name to its current unique owner.
func (c *Conn) NameOwner(name string) (string, error) {
	var owner string
	err := c.bus.BusObject().Call("org.freedesktop.DBus.GetNameOwner", 0, name).Store(&owner)
	if err != nil {
		return "", wpan.Transportf("no owner for name %q: %v", name, err)
	}
	return owner, nil
}

// Call issues a method call and blocks for the reply, up to timeout.
func (c *Conn) Call(dest string, path dbus.ObjectPath, iface, method string, timeout time.Duration, args ...any) ([]any, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	call := c.bus.Object(dest, path).CallWithContext(ctx, iface+"."+method, 0, args...)
	if call.Err != nil {
		if ctx.Err() != nil {
			return nil, wpan.Transportf("%s %s timed out after %s", method, path, timeout)
		}
		return nil, classifyCallError(method, path, call.Err)
	}
	return call.Body, nil
}

// classifyCallError separates daemon-originated error replies, which
// are protocol failures, from connection-level faults.
func classifyCallError(method string, path dbus.ObjectPath, err error) error {
	var busErr dbus.Error
	if errors.As(err, &busErr) {
		return wpan.Protocolf("%s %s: %v", method, path, err)
	}
	return wpan.Transportf("%s %s: %v", method, path, err)
}

// Send issues a method call with no reply expected; it does not block on the
// remote end.
func (c *Conn) Send(dest string, path dbus.ObjectPath, iface, method string, args ...any) error {
	call := c.bus.Object(dest, path).Call(iface+"."+method, dbus.FlagNoReplyExpected, args...)
	if call.Err != nil {
		return wpan.Transportf("%s %s: %v", method, path, call.Err)
	}
	return nil
}

// Close releases the connection exactly once. Safe to call repeatedly.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	if c.sink != nil {
		c.sink.RemoveWatch(c.notify)
	}
	// Closing the bus terminates the signal handler, which closes c.signals
	// and lets the pump goroutine exit.
	err := c.bus.Close()
	c.notify.close()
	if err != nil {
		log.WithError(err).Debug("Bus connection closed with error")
	}
	return err
}
