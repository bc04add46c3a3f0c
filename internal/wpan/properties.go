// Package wpan defines the wpantund property namespace, the decoded event
// types, and the byte-level codecs shared by the controller.
package wpan

// D-Bus identifiers of the wpantund v1 API.
const (
	DBusName       = "org.wpantund"
	DBusPathPrefix = "/org/wpantund"
	DBusInterface  = "org.wpantund.v1"

	SignalPropertyChanged = "PropertyChanged"
	MethodPropGet         = "PropGet"
	MethodPropSet         = "PropSet"
)

// PropertyKey names a value exposed by the daemon. The set below is the
// complete set this agent consumes; the daemon exposes many more.
type PropertyKey string

const (
	PropNCPState           PropertyKey = "NCP:State"
	PropNCPHardwareAddress PropertyKey = "NCP:HardwareAddress"
	PropNetworkName        PropertyKey = "Network:Name"
	PropNetworkXPANID      PropertyKey = "Network:XPANID"
	PropNetworkPSKc        PropertyKey = "Network:PSKc"
	PropTmfProxyEnabled    PropertyKey = "TmfProxy:Enabled"
	PropTmfProxyStream     PropertyKey = "TmfProxy:Stream"
)

// ThreadStateAssociated is the NCP:State value reported while the node is
// attached to a Thread partition.
const ThreadStateAssociated = "associated"

// Fixed sizes of the binary properties.
const (
	SizeExtPanID        = 8
	SizePSKc            = 16
	SizeHardwareAddress = 6

	proxyTrailerSize = 4
)
