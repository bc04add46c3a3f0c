//go:build linux

package netmon

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

type linuxWatcher struct{}

// newWatcher returns a netlink-backed watcher.
func newWatcher() Watcher {
	return &linuxWatcher{}
}

func (w *linuxWatcher) Start(ctx context.Context, ifname string, callback func(present bool)) error {
	linkCh := make(chan netlink.LinkUpdate)
	done := make(chan struct{})

	if err := netlink.LinkSubscribe(linkCh, done); err != nil {
		return err
	}
	defer close(done)

	present := InterfaceExists(ifname)

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-linkCh:
			if !ok {
				log.Warn("Netlink subscription closed")
				return nil
			}
			if update.Link.Attrs().Name != ifname {
				continue
			}
			now := update.Header.Type != unix.RTM_DELLINK
			if now != present {
				present = now
				callback(now)
			}
		}
	}
}
