package protocol

type Marshaler interface {
	Marshal() ([]byte, error)
}

type Unmarshaler interface {
	Unmarshal(data []byte) error
}

// Message is implemented by every request and reply exchanged with the daemon.
type Message interface {
	Marshaler
	Unmarshaler
}

var _ Message = (*RpcMessage)(nil)
var _ Message = (*Ack)(nil)
var _ Message = (*PluginListRequest)(nil)
var _ Message = (*PluginListReply)(nil)
var _ Message = (*PluginDescriptionRequest)(nil)
var _ Message = (*PluginDescriptionReply)(nil)
var _ Message = (*DeviceInfoRequest)(nil)
var _ Message = (*DeviceInfoReply)(nil)
var _ Message = (*OptionalUniverseRequest)(nil)
var _ Message = (*UniverseInfoReply)(nil)
var _ Message = (*UniverseRequest)(nil)
var _ Message = (*UniverseNameRequest)(nil)
var _ Message = (*MergeModeRequest)(nil)
var _ Message = (*DmxData)(nil)
var _ Message = (*RegisterDmxRequest)(nil)
var _ Message = (*PatchPortRequest)(nil)
var _ Message = (*DeviceConfigRequest)(nil)
var _ Message = (*DeviceConfigReply)(nil)
var _ Message = (*TimeCode)(nil)
var _ Message = (*UIDListReply)(nil)
var _ Message = (*DiscoveryRequest)(nil)
var _ Message = (*RDMRequest)(nil)
var _ Message = (*RDMResponse)(nil)
