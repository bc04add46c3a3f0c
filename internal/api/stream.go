package api

import (
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/thread-tools/wpanbus/internal/wpan"
)

// wireEvent is the JSON rendering of a domain event. PSKc material is never
// sent; only the fact that it changed.
type wireEvent struct {
	Type        string `json:"type"`
	Associated  *bool  `json:"associated,omitempty"`
	NetworkName string `json:"networkName,omitempty"`
	ExtPanID    string `json:"extPanId,omitempty"`
	Payload     string `json:"payload,omitempty"`
	Locator     uint16 `json:"locator,omitempty"`
	Port        uint16 `json:"port,omitempty"`
}

func toWire(ev wpan.Event) wireEvent {
	switch ev := ev.(type) {
	case wpan.ThreadStateChanged:
		return wireEvent{Type: "threadState", Associated: &ev.Associated}
	case wpan.NetworkNameChanged:
		return wireEvent{Type: "networkName", NetworkName: ev.Name}
	case wpan.ExtPanIDChanged:
		return wireEvent{Type: "extPanId", ExtPanID: hex.EncodeToString(ev.ExtPanID[:])}
	case wpan.PSKcChanged:
		return wireEvent{Type: "pskc"}
	case wpan.ProxyStreamReceived:
		return wireEvent{
			Type:    "proxyStream",
			Payload: hex.EncodeToString(ev.Payload),
			Locator: ev.Locator,
			Port:    ev.Port,
		}
	}
	return wireEvent{Type: "unknown"}
}

func (s *Service) handleEvents(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.WithError(err).Error("Failed to accept event stream client")
		return
	}
	defer c.Close(websocket.StatusNormalClosure, "closing")

	ctx := r.Context()
	events, unsub := s.hub.Subscribe()
	defer unsub()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(toWire(ev))
			if err != nil {
				log.WithError(err).Debug("Failed to encode event")
				continue
			}
			if err := c.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		}
	}
}
