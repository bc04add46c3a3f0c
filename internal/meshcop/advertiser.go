// Package meshcop publishes the border agent's MeshCoP mDNS service while
// the node is attached, so commissioners can discover it. TXT records carry
// the network name and extended PAN id decoded from daemon events.
package meshcop

import (
	"context"
	"encoding/hex"
	"net"

	"github.com/dmdmdm-nz/zeroconf"
	log "github.com/sirupsen/logrus"

	"github.com/thread-tools/wpanbus/internal/wpan"
)

const (
	serviceType   = "_meshcop._udp"
	serviceDomain = "local."

	// Well-known border agent commissioning port.
	borderAgentPort = 49191
)

type publisher interface {
	Shutdown()
}

// registerService is overridden in tests.
var registerService = func(instance, service, domain string, port int, text []string, ifaces []net.Interface) (publisher, error) {
	return zeroconf.Register(instance, service, domain, port, text, ifaces)
}

// Advertiser consumes hub events and keeps a zeroconf registration alive
// while the thread state is associated.
type Advertiser struct {
	ifname string
	events <-chan wpan.Event
	unsub  func()

	server      publisher
	associated  bool
	networkName string
	extPanID    string
}

func NewAdvertiser(ifname string) *Advertiser {
	return &Advertiser{ifname: ifname}
}

// Attach wires the event subscription. Must be called before Start.
func (a *Advertiser) Attach(ch <-chan wpan.Event, unsub func()) {
	a.events = ch
	a.unsub = unsub
}

// Start consumes events until the context is cancelled or the subscription
// closes, re-registering the service whenever the advertised data changes.
func (a *Advertiser) Start(ctx context.Context) error {
	log.Info("Starting MeshCoP advertiser")
	defer log.Info("Stopping MeshCoP advertiser")

	if a.events == nil {
		log.Error("Attach was not called before Start")
		<-ctx.Done()
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			a.unpublish()
			return nil
		case ev, ok := <-a.events:
			if !ok {
				a.unpublish()
				return nil
			}
			a.apply(ev)
		}
	}
}

func (a *Advertiser) Close() error {
	if a.unsub != nil {
		a.unsub()
	}
	return nil
}

func (a *Advertiser) apply(ev wpan.Event) {
	switch ev := ev.(type) {
	case wpan.ThreadStateChanged:
		a.associated = ev.Associated
	case wpan.NetworkNameChanged:
		a.networkName = ev.Name
	case wpan.ExtPanIDChanged:
		a.extPanID = hex.EncodeToString(ev.ExtPanID[:])
	default:
		return
	}
	a.refresh()
}

// refresh tears down and re-registers; zeroconf registrations are cheap and
// this avoids depending on in-place TXT updates.
func (a *Advertiser) refresh() {
	a.unpublish()

	if !a.associated || a.networkName == "" {
		return
	}

	txt := []string{"nn=" + a.networkName}
	if a.extPanID != "" {
		txt = append(txt, "xp="+a.extPanID)
	}

	var ifaces []net.Interface
	if iface, err := net.InterfaceByName(a.ifname); err == nil {
		ifaces = []net.Interface{*iface}
	} else {
		log.WithField("interface", a.ifname).WithError(err).Warn("Advertising on all interfaces")
	}

	server, err := registerService(a.networkName, serviceType, serviceDomain, borderAgentPort, txt, ifaces)
	if err != nil {
		log.WithError(err).Error("Failed to register MeshCoP service")
		return
	}
	a.server = server
	log.WithFields(log.Fields{"network": a.networkName, "txt": txt}).Info("MeshCoP service registered")
}

func (a *Advertiser) unpublish() {
	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}
