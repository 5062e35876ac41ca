package protocol

import "fmt"

// Method is one of the daemon's RPC methods. The set is closed; the wire name
// of each method is fixed by the daemon's service definition.
type Method uint8

const (
	MethodUnknown Method = iota
	GetPlugins
	GetPluginDescription
	GetDeviceInfo
	GetUniverseInfo
	GetDmx
	UpdateDmxData
	StreamDmxData
	SetUniverseName
	SetMergeMode
	RegisterForDmx
	PatchPort
	ConfigureDevice
	SendTimeCode
	GetUIDs
	ForceDiscovery
	RDMCommand
)

var methodNames = [...]string{
	MethodUnknown:        "",
	GetPlugins:           "GetPlugins",
	GetPluginDescription: "GetPluginDescription",
	GetDeviceInfo:        "GetDeviceInfo",
	GetUniverseInfo:      "GetUniverseInfo",
	GetDmx:               "GetDmx",
	UpdateDmxData:        "UpdateDmxData",
	StreamDmxData:        "StreamDmxData",
	SetUniverseName:      "SetUniverseName",
	SetMergeMode:         "SetMergeMode",
	RegisterForDmx:       "RegisterForDmx",
	PatchPort:            "PatchPort",
	ConfigureDevice:      "ConfigureDevice",
	SendTimeCode:         "SendTimeCode",
	GetUIDs:              "GetUIDs",
	ForceDiscovery:       "ForceDiscovery",
	RDMCommand:           "RDMCommand",
}

var methodsByName = func() map[string]Method {
	m := make(map[string]Method, len(methodNames))
	for method, name := range methodNames {
		if name != "" {
			m[name] = Method(method)
		}
	}

	return m
}()

// String returns the method's wire name.
func (m Method) String() string {
	if int(m) < len(methodNames) && m != MethodUnknown {
		return methodNames[m]
	}

	return fmt.Sprintf("Method(%d)", uint8(m))
}

// ParseMethod looks up a method by its wire name.
func ParseMethod(name string) (Method, bool) {
	m, ok := methodsByName[name]
	return m, ok
}

// MessageType is the kind of envelope carried in a frame.
type MessageType int32

const (
	TypeRequest                MessageType = 1
	TypeResponse               MessageType = 2
	TypeResponseCancel         MessageType = 3
	TypeResponseFailed         MessageType = 4
	TypeResponseNotImplemented MessageType = 5
	TypeDisconnect             MessageType = 6
	TypeDescriptorRequest      MessageType = 7
	TypeDescriptorResponse     MessageType = 8
	TypeRequestCancel          MessageType = 9
	TypeStreamRequest          MessageType = 10
)

func (t MessageType) String() string {
	switch t {
	case TypeRequest:
		return "REQUEST"
	case TypeResponse:
		return "RESPONSE"
	case TypeResponseCancel:
		return "RESPONSE_CANCEL"
	case TypeResponseFailed:
		return "RESPONSE_FAILED"
	case TypeResponseNotImplemented:
		return "RESPONSE_NOT_IMPLEMENTED"
	case TypeDisconnect:
		return "DISCONNECT"
	case TypeDescriptorRequest:
		return "DESCRIPTOR_REQUEST"
	case TypeDescriptorResponse:
		return "DESCRIPTOR_RESPONSE"
	case TypeRequestCancel:
		return "REQUEST_CANCEL"
	case TypeStreamRequest:
		return "STREAM_REQUEST"
	default:
		return fmt.Sprintf("MessageType(%d)", int32(t))
	}
}
