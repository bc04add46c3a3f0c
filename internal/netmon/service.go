// Package netmon watches the single managed network interface and logs its
// presence transitions, so operator logs show whether the daemon's
// interface actually exists while the agent waits for it.
package netmon

import (
	"context"
	"net"

	log "github.com/sirupsen/logrus"
)

// Watcher reports presence changes of one interface using a
// platform-specific mechanism (netlink on Linux, polling elsewhere).
type Watcher interface {
	// Start blocks until the context is cancelled, invoking callback on
	// each presence change of the named interface.
	Start(ctx context.Context, ifname string, callback func(present bool)) error
}

type Service struct {
	ifname  string
	watcher Watcher
}

func NewService(ifname string) *Service {
	return &Service{
		ifname:  ifname,
		watcher: newWatcher(),
	}
}

func (s *Service) Start(ctx context.Context) error {
	log.WithField("interface", s.ifname).Info("Starting interface monitor")
	defer log.Info("Stopping interface monitor")

	if InterfaceExists(s.ifname) {
		log.WithField("interface", s.ifname).Info("Interface present")
	} else {
		log.WithField("interface", s.ifname).Warn("Interface not present")
	}

	return s.watcher.Start(ctx, s.ifname, func(present bool) {
		if present {
			log.WithField("interface", s.ifname).Info("Interface appeared")
		} else {
			log.WithField("interface", s.ifname).Warn("Interface disappeared")
		}
	})
}

func (s *Service) Close() error {
	return nil
}

// InterfaceExists reports whether the named interface currently exists.
func InterfaceExists(ifname string) bool {
	_, err := net.InterfaceByName(ifname)
	return err == nil
}
