package ola

import "github.com/luma/ola/protocol"

// replyPtr is satisfied by *R when R is a wire message.
type replyPtr[R any] interface {
	*R
	protocol.Unmarshaler
}

// endpoint binds a method to the request and reply types it is called with.
type endpoint[Req protocol.Marshaler, R any, PR replyPtr[R]] struct {
	method protocol.Method
}

var (
	getPlugins = endpoint[*protocol.PluginListRequest, protocol.PluginListReply, *protocol.PluginListReply]{
		protocol.GetPlugins,
	}
	getPluginDescription = endpoint[*protocol.PluginDescriptionRequest, protocol.PluginDescriptionReply, *protocol.PluginDescriptionReply]{
		protocol.GetPluginDescription,
	}
	getDeviceInfo = endpoint[*protocol.DeviceInfoRequest, protocol.DeviceInfoReply, *protocol.DeviceInfoReply]{
		protocol.GetDeviceInfo,
	}
	getUniverseInfo = endpoint[*protocol.OptionalUniverseRequest, protocol.UniverseInfoReply, *protocol.UniverseInfoReply]{
		protocol.GetUniverseInfo,
	}
	getDmx = endpoint[*protocol.UniverseRequest, protocol.DmxData, *protocol.DmxData]{
		protocol.GetDmx,
	}
	updateDmxData = endpoint[*protocol.DmxData, protocol.Ack, *protocol.Ack]{
		protocol.UpdateDmxData,
	}
	setUniverseName = endpoint[*protocol.UniverseNameRequest, protocol.Ack, *protocol.Ack]{
		protocol.SetUniverseName,
	}
	setMergeMode = endpoint[*protocol.MergeModeRequest, protocol.Ack, *protocol.Ack]{
		protocol.SetMergeMode,
	}
	registerForDmx = endpoint[*protocol.RegisterDmxRequest, protocol.Ack, *protocol.Ack]{
		protocol.RegisterForDmx,
	}
	patchPort = endpoint[*protocol.PatchPortRequest, protocol.Ack, *protocol.Ack]{
		protocol.PatchPort,
	}
	configureDevice = endpoint[*protocol.DeviceConfigRequest, protocol.DeviceConfigReply, *protocol.DeviceConfigReply]{
		protocol.ConfigureDevice,
	}
	sendTimeCode = endpoint[*protocol.TimeCode, protocol.Ack, *protocol.Ack]{
		protocol.SendTimeCode,
	}
	getUIDs = endpoint[*protocol.UniverseRequest, protocol.UIDListReply, *protocol.UIDListReply]{
		protocol.GetUIDs,
	}
	forceDiscovery = endpoint[*protocol.DiscoveryRequest, protocol.UIDListReply, *protocol.UIDListReply]{
		protocol.ForceDiscovery,
	}
	rdmCommand = endpoint[*protocol.RDMRequest, protocol.RDMResponse, *protocol.RDMResponse]{
		protocol.RDMCommand,
	}
)

// ack decodes replies that only acknowledge the call.
func ack(*protocol.Ack) (bool, error) {
	return true, nil
}
