// Package controller drives one wpantund instance over the bus: session
// lifecycle, synchronous property requests, the TMF proxy, and decoding of
// unsolicited property-change signals into domain events.
package controller

import (
	"time"

	"github.com/godbus/dbus/v5"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/thread-tools/wpanbus/internal/reactor"
	"github.com/thread-tools/wpanbus/internal/wpan"
)

const (
	agentNamePrefix = "otbr.agent"
	requestTimeout  = 3 * time.Second

	matchPropChanged = "type='signal',interface='" + wpan.DBusInterface +
		"',member='" + wpan.SignalPropertyChanged + "'"
)

// Controller is the per-interface session with the daemon. All methods run
// on the reactor's thread of control; none of them are safe for concurrent
// use from other goroutines.
type Controller struct {
	ifname  string
	sink    wpan.Sink
	watches *reactor.WatchSet

	bus    Bus
	daemon identityMonitor
	eui64  []byte
}

// New builds a controller bound to one network interface. Call Init before
// anything else.
func New(ifname string, sink wpan.Sink) *Controller {
	c := &Controller{
		ifname: ifname,
		sink:   sink,
		daemon: identityMonitor{
			path: dbus.ObjectPath(wpan.DBusPathPrefix + "/" + ifname),
		},
	}
	c.watches = reactor.NewWatchSet(func() bool {
		return c.bus != nil && c.bus.HasMessagesToSend()
	})
	return c
}

// Init acquires the bus connection, claims the agent's per-interface name,
// and installs the match rule and signal handler. On any failure the
// connection is released and the controller is unusable; there is no
// partial-retry.
func (c *Controller) Init() error {
	bus, err := connectBus()
	if err != nil {
		return err
	}

	name := agentNamePrefix + "." + c.ifname
	log.WithField("name", name).Info("Claiming agent bus name")
	if err := bus.RequestName(name); err != nil {
		bus.Close()
		return err
	}

	bus.SetWatchSink(c.watches)

	if err := bus.AddMatch(matchPropChanged); err != nil {
		bus.Close()
		return err
	}
	bus.SetSignalHandler(c.handleSignal)

	c.bus = bus
	return nil
}

// Close disables an active proxy (best effort) and releases the connection.
// Subsequent calls are no-ops.
func (c *Controller) Close() error {
	if c.bus == nil {
		return nil
	}
	if err := c.TmfProxyStop(); err != nil {
		log.WithError(err).Warn("Failed to disable TMF proxy during shutdown")
	}
	err := c.bus.Close()
	c.bus = nil
	return err
}

// TmfProxyStart resolves the daemon's current bus identity for this
// interface and enables the proxy. Idempotent; also the re-establishment
// path after a daemon restart.
func (c *Controller) TmfProxyStart() error {
	owner, err := c.bus.NameOwner(wpan.DBusName)
	if err != nil {
		return err
	}
	c.daemon.name = owner
	log.WithFields(log.Fields{"owner": owner, "path": c.daemon.path}).Info("Resolved daemon bus identity")

	return c.setProxyEnabled(true)
}

// TmfProxyStop disables the proxy. A proxy that was never started stops
// silently.
func (c *Controller) TmfProxyStop() error {
	if !c.daemon.resolved() {
		return nil
	}
	return c.setProxyEnabled(false)
}

// TmfProxySend tunnels a payload to the given mesh locator and port through
// the proxy stream property.
func (c *Controller) TmfProxySend(payload []byte, locator, port uint16) error {
	if !c.daemon.resolved() {
		return wpan.Transportf("TMF proxy not started")
	}
	frame := wpan.FrameProxyStream(payload, locator, port)
	return c.bus.Send(c.daemon.name, c.daemon.path, wpan.DBusInterface,
		wpan.MethodPropSet, string(wpan.PropTmfProxyStream), frame)
}

func (c *Controller) setProxyEnabled(enable bool) error {
	return c.bus.Send(c.daemon.name, c.daemon.path, wpan.DBusInterface,
		wpan.MethodPropSet, string(wpan.PropTmfProxyEnabled), enable)
}

// UpdateFdSet projects the connection's descriptors into the reactor's fd
// sets. Part of the populate/wait/process cycle the external loop drives.
func (c *Controller) UpdateFdSet(readSet, writeSet, errSet *unix.FdSet, maxFd *int) {
	c.watches.Populate(readSet, writeSet, errSet, maxFd)
}

// Process forwards readiness to the connection's watches and drains pending
// signal dispatch. The signal handler runs synchronously inside this call.
func (c *Controller) Process(readSet, writeSet, errSet *unix.FdSet) {
	c.watches.Process(readSet, writeSet, errSet)
	if c.bus != nil {
		c.bus.Dispatch()
	}
}
