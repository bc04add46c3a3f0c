package wpan

// Event is a decoded daemon notification. Values are transient: the parser
// constructs one, the controller hands it to the sink, and nothing is kept.
type Event interface {
	event()
}

// ThreadStateChanged reports whether the NCP is attached to a partition.
type ThreadStateChanged struct {
	Associated bool
}

// NetworkNameChanged carries the network name verbatim.
type NetworkNameChanged struct {
	Name string
}

// ExtPanIDChanged carries the extended PAN id in canonical big-endian form.
type ExtPanIDChanged struct {
	ExtPanID [SizeExtPanID]byte
}

// PSKcChanged carries the pre-shared commissioner key.
type PSKcChanged struct {
	PSKc [SizePSKc]byte
}

// ProxyStreamReceived is an inbound TMF proxy frame with its trailer split off.
type ProxyStreamReceived struct {
	Payload []byte
	Locator uint16
	Port    uint16
}

func (ThreadStateChanged) event()  {}
func (NetworkNameChanged) event()  {}
func (ExtPanIDChanged) event()     {}
func (PSKcChanged) event()         {}
func (ProxyStreamReceived) event() {}

// Sink consumes decoded events, fire-and-forget. Called synchronously from
// the dispatch path, so implementations must not block.
type Sink interface {
	HandleEvent(Event)
}

// EventID names an event that can be fetched synchronously from the daemon.
type EventID int

const (
	EventThreadState EventID = iota
	EventNetworkName
	EventExtPanID
	EventPSKc
)

// Key maps the event to the property it is decoded from.
func (id EventID) Key() (PropertyKey, bool) {
	switch id {
	case EventThreadState:
		return PropNCPState, true
	case EventNetworkName:
		return PropNetworkName, true
	case EventExtPanID:
		return PropNetworkXPANID, true
	case EventPSKc:
		return PropNetworkPSKc, true
	}
	return "", false
}
