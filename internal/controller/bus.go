package controller

import (
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/thread-tools/wpanbus/internal/busio"
	"github.com/thread-tools/wpanbus/internal/reactor"
)

// Bus is the slice of the connection adapter the controller uses. Narrowed
// to an interface so tests can run against a scripted fake without a live
// bus daemon.
type Bus interface {
	RequestName(name string) error
	AddMatch(rule string) error
	NameOwner(name string) (string, error)
	Call(dest string, path dbus.ObjectPath, iface, method string, timeout time.Duration, args ...any) ([]any, error)
	Send(dest string, path dbus.ObjectPath, iface, method string, args ...any) error
	SetSignalHandler(func(*dbus.Signal))
	SetWatchSink(reactor.Sink)
	HasMessagesToSend() bool
	Dispatch()
	Close() error
}

// connectBus is overridden in tests.
var connectBus = func() (Bus, error) {
	conn, err := busio.Connect()
	if err != nil {
		return nil, err
	}
	return conn, nil
}
