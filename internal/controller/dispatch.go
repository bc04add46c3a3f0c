package controller

import (
	"github.com/godbus/dbus/v5"
	log "github.com/sirupsen/logrus"

	"github.com/thread-tools/wpanbus/internal/wpan"
)

// identityMonitor tracks the daemon's last-resolved bus identity so a
// restarted daemon (same object path, fresh unique name) can be detected
// from any signal it emits. The object path is fixed per interface; only
// the unique name churns.
type identityMonitor struct {
	path dbus.ObjectPath // the daemon's per-interface object path
	name string          // unique owner name, empty until resolved
}

func (m *identityMonitor) resolved() bool {
	return m.name != ""
}

// changed reports whether a signal's origin calls for (re-)establishing the
// proxy: it comes from the daemon's exact object path, and either no
// identity is resolved yet or the sender is not the resolved owner.
func (m *identityMonitor) changed(sender string, path dbus.ObjectPath) bool {
	if path != m.path {
		return false
	}
	return m.name == "" || sender != m.name
}

// handleSignal is invoked synchronously from Dispatch for every inbound
// signal the match rules let through.
func (c *Controller) handleSignal(sig *dbus.Signal) {
	if c.daemon.changed(sig.Sender, sig.Path) {
		// The daemon (re)appeared under a fresh bus identity; this is
		// liveness, not an error. (Re-)establish the proxy.
		log.WithFields(log.Fields{
			"old": c.daemon.name,
			"new": sig.Sender,
		}).Warn("Daemon bus identity changed, restarting TMF proxy")
		if err := c.TmfProxyStart(); err != nil {
			log.WithError(err).Error("Failed to restart TMF proxy")
		}
	}

	if sig.Name != wpan.DBusInterface+"."+wpan.SignalPropertyChanged {
		return
	}
	if len(sig.Body) == 0 {
		return
	}
	key, ok := sig.Body[0].(string)
	if !ok {
		return
	}
	var value any
	if len(sig.Body) > 1 {
		value = sig.Body[1]
	}

	log.WithField("property", key).Debug("Daemon property changed")
	ev, err := wpan.ParseEvent(wpan.PropertyKey(key), value)
	if err != nil {
		// One malformed notification must not break the dispatch loop.
		log.WithField("property", key).WithError(err).Warn("Discarding malformed property notification")
		return
	}
	if ev != nil && c.sink != nil {
		c.sink.HandleEvent(ev)
	}
}
