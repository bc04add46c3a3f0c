//go:build !linux

package netmon

import (
	"context"
	"time"
)

const pollInterval = 5 * time.Second

type pollWatcher struct{}

// newWatcher returns a polling watcher for platforms without netlink.
func newWatcher() Watcher {
	return &pollWatcher{}
}

func (w *pollWatcher) Start(ctx context.Context, ifname string, callback func(present bool)) error {
	present := InterfaceExists(ifname)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			now := InterfaceExists(ifname)
			if now != present {
				present = now
				callback(now)
			}
		}
	}
}
