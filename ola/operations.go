package ola

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/luma/ola/model"
	"github.com/luma/ola/protocol"
	"github.com/luma/ola/rdm"
)

// DmxCallback receives the result of GetDmx. On failure levels is nil and
// universe is -1.
type DmxCallback func(status RequestStatus, levels []int, universe int)

// RDMResponse is the daemon's answer to an RDM get or set.
type RDMResponse struct {
	ResponseCode      protocol.RDMResponseCode
	ResponseType      protocol.RDMResponseType
	CommandClass      protocol.RDMCommandClass
	MessageCount      int
	ParamID           int
	SubDevice         int
	TransactionNumber int
	Data              []int

	// SourceUID and DestUID are nil when the daemon does not report them
	SourceUID *rdm.UID
	DestUID   *rdm.UID
}

// GetPlugins lists the daemon's plugins in the order they arrive.
func (c *Client) GetPlugins(cb Callback[[]model.Plugin]) *Call[[]model.Plugin] {
	return invoke(c, getPlugins, &protocol.PluginListRequest{}, decodePlugins, cb)
}

func (c *Client) GetPluginDescription(pluginID int, cb Callback[string]) *Call[string] {
	req := &protocol.PluginDescriptionRequest{PluginID: int32(pluginID)}

	return invoke(c, getPluginDescription, req, func(r *protocol.PluginDescriptionReply) (string, error) {
		return r.Description, nil
	}, cb)
}

// GetDevices lists the devices of one plugin, or of every plugin when
// pluginFilter is 0.
func (c *Client) GetDevices(pluginFilter int, cb Callback[[]*model.Device]) *Call[[]*model.Device] {
	req := &protocol.DeviceInfoRequest{PluginID: int32(pluginFilter)}

	return invoke(c, getDeviceInfo, req, decodeDevices, cb)
}

func (c *Client) GetUniverses(cb Callback[[]model.Universe]) *Call[[]model.Universe] {
	return invoke(c, getUniverseInfo, &protocol.OptionalUniverseRequest{}, decodeUniverses, cb)
}

// GetDmx reads the current frame of a universe.
func (c *Client) GetDmx(universe int, cb DmxCallback) *Call[DmxFrame] {
	var frameCb Callback[DmxFrame]
	if cb != nil {
		frameCb = func(status RequestStatus, frame DmxFrame) {
			if !status.Succeeded() {
				cb(status, nil, -1)
				return
			}

			cb(status, frame.Levels, frame.Universe)
		}
	}

	req := &protocol.UniverseRequest{Universe: int32(universe)}

	return invoke(c, getDmx, req, func(r *protocol.DmxData) (DmxFrame, error) {
		return DmxFrame{Universe: int(r.Universe), Levels: DecodeLevels(r.Data)}, nil
	}, frameCb)
}

// SendDmx writes a frame to a universe and waits for the daemon to
// acknowledge it.
func (c *Client) SendDmx(universe int, levels []int, cb Callback[bool]) *Call[bool] {
	req := &protocol.DmxData{Universe: int32(universe), Data: EncodeLevels(levels)}

	return invoke(c, updateDmxData, req, ack, cb)
}

// StreamDmx writes a frame without waiting for the daemon. Errors only report
// that the frame could not be sent.
func (c *Client) StreamDmx(universe int, levels []int) error {
	req := &protocol.DmxData{Universe: int32(universe), Data: EncodeLevels(levels)}

	if err := c.ch.Stream(protocol.StreamDmxData, req); err != nil {
		return fmt.Errorf("streaming to universe %d: %w", universe, err)
	}

	return nil
}

func (c *Client) SetUniverseName(universe int, name string, cb Callback[bool]) *Call[bool] {
	req := &protocol.UniverseNameRequest{Universe: int32(universe), Name: name}

	return invoke(c, setUniverseName, req, ack, cb)
}

// SetMergeMode changes a universe's merge mode. Modes other than HTP and LTP
// are rejected without contacting the daemon and cb is not invoked.
func (c *Client) SetMergeMode(universe int, mode model.MergeMode, cb Callback[bool]) *Call[bool] {
	wireMode, err := encodeMergeMode(mode)
	if err != nil {
		return rejected[bool](err)
	}

	req := &protocol.MergeModeRequest{Universe: int32(universe), MergeMode: wireMode}

	return invoke(c, setMergeMode, req, ack, cb)
}

// RegisterUniverse asks the daemon to push frames for a universe, or to stop.
//
// The handler is added to, or removed from, the client's registry as soon as
// the request is sent, independently of the daemon's answer. Registering again
// replaces the previous handler; registering a nil handler removes it.
func (c *Client) RegisterUniverse(
	universe int,
	action protocol.RegisterAction,
	handler DmxHandler,
	cb Callback[bool],
) *Call[bool] {
	req := &protocol.RegisterDmxRequest{Universe: int32(universe), Action: action}
	call := invoke(c, registerForDmx, req, ack, cb)

	switch action {
	case protocol.Register:
		if handler == nil {
			c.registry.remove(universe)
			break
		}

		c.registry.set(universe, handler)

	case protocol.Unregister:
		c.registry.remove(universe)
	}

	c.log.Debug("Updated push registration",
		zap.Int("universe", universe),
		zap.Bool("register", action == protocol.Register))

	return call
}

// PatchPort attaches a device port to a universe, or detaches it.
func (c *Client) PatchPort(
	deviceAlias, port int,
	isOutput bool,
	action protocol.PatchAction,
	universe int,
	cb Callback[bool],
) *Call[bool] {
	req := &protocol.PatchPortRequest{
		Universe:    int32(universe),
		DeviceAlias: int32(deviceAlias),
		PortID:      int32(port),
		Action:      action,
		IsOutput:    isOutput,
	}

	return invoke(c, patchPort, req, ack, cb)
}

// ConfigureDevice sends a device specific configuration payload and returns
// the device's answer. Both go through the same level codec as DMX frames.
func (c *Client) ConfigureDevice(deviceAlias int, data []int, cb Callback[[]int]) *Call[[]int] {
	req := &protocol.DeviceConfigRequest{DeviceAlias: int32(deviceAlias), Data: EncodeLevels(data)}

	return invoke(c, configureDevice, req, func(r *protocol.DeviceConfigReply) ([]int, error) {
		return DecodeLevels(r.Data), nil
	}, cb)
}

func (c *Client) SendTimeCode(
	typ protocol.TimeCodeType,
	hours, minutes, seconds, frames int,
	cb Callback[bool],
) *Call[bool] {
	req := &protocol.TimeCode{
		Type:    typ,
		Hours:   uint32(hours),
		Minutes: uint32(minutes),
		Seconds: uint32(seconds),
		Frames:  uint32(frames),
	}

	return invoke(c, sendTimeCode, req, ack, cb)
}

// GetUIDs lists the RDM devices known on a universe, sorted ascending.
func (c *Client) GetUIDs(universe int, cb Callback[[]rdm.UID]) *Call[[]rdm.UID] {
	req := &protocol.UniverseRequest{Universe: int32(universe)}

	return invoke(c, getUIDs, req, decodeUIDs, cb)
}

// RunDiscovery starts RDM discovery on a universe and returns the UIDs found,
// sorted ascending. Incremental discovery is used unless full is set.
func (c *Client) RunDiscovery(universe int, full bool, cb Callback[[]rdm.UID]) *Call[[]rdm.UID] {
	req := &protocol.DiscoveryRequest{Universe: int32(universe), Full: full}

	return invoke(c, forceDiscovery, req, decodeUIDs, cb)
}

// GetRDM sends an RDM GET command. data may be nil.
func (c *Client) GetRDM(
	universe int,
	uid rdm.UID,
	subDevice, paramID int,
	data []int,
	cb Callback[*RDMResponse],
) *Call[*RDMResponse] {
	return c.rdmCommand(universe, uid, subDevice, paramID, data, false, cb)
}

// SetRDM sends an RDM SET command. data may be nil.
func (c *Client) SetRDM(
	universe int,
	uid rdm.UID,
	subDevice, paramID int,
	data []int,
	cb Callback[*RDMResponse],
) *Call[*RDMResponse] {
	return c.rdmCommand(universe, uid, subDevice, paramID, data, true, cb)
}

func (c *Client) rdmCommand(
	universe int,
	uid rdm.UID,
	subDevice, paramID int,
	data []int,
	set bool,
	cb Callback[*RDMResponse],
) *Call[*RDMResponse] {
	req := &protocol.RDMRequest{
		Universe:  int32(universe),
		UID:       encodeUID(uid),
		SubDevice: int32(subDevice),
		ParamID:   int32(paramID),
		Data:      EncodeLevels(data),
		IsSet:     set,
	}

	return invoke(c, rdmCommand, req, decodeRDMResponse, cb)
}

func decodePlugins(r *protocol.PluginListReply) ([]model.Plugin, error) {
	plugins := make([]model.Plugin, 0, len(r.Plugins))
	for _, p := range r.Plugins {
		plugins = append(plugins, model.Plugin{ID: int(p.PluginID), Name: p.Name})
	}

	return plugins, nil
}

func decodeDevices(r *protocol.DeviceInfoReply) ([]*model.Device, error) {
	devices := make([]*model.Device, 0, len(r.Devices))

	for _, info := range r.Devices {
		d, err := model.NewDevice(
			info.DeviceID,
			int(info.DeviceAlias),
			info.DeviceName,
			int(info.PluginID),
			decodePorts(info.InputPorts),
			decodePorts(info.OutputPorts),
		)
		if err != nil {
			return nil, fmt.Errorf("device %d: %w", info.DeviceAlias, err)
		}

		devices = append(devices, d)
	}

	return devices, nil
}

func decodePorts(infos []protocol.PortInfo) []model.Port {
	ports := make([]model.Port, 0, len(infos))
	for _, p := range infos {
		ports = append(ports, model.Port{
			ID:          int(p.PortID),
			Universe:    int(p.Universe),
			Active:      p.Active,
			SupportsRDM: p.SupportsRDM,
			Description: p.Description,
		})
	}

	return ports
}

func decodeUniverses(r *protocol.UniverseInfoReply) ([]model.Universe, error) {
	universes := make([]model.Universe, 0, len(r.Universes))

	for _, info := range r.Universes {
		u, err := model.NewUniverse(int(info.Universe), info.Name, model.MergeMode(info.MergeMode))
		if err != nil {
			return nil, err
		}

		universes = append(universes, u)
	}

	return universes, nil
}

func encodeMergeMode(mode model.MergeMode) (protocol.MergeMode, error) {
	switch mode {
	case model.HTP:
		return protocol.MergeHTP, nil
	case model.LTP:
		return protocol.MergeLTP, nil
	default:
		return 0, fmt.Errorf("merge mode %d: %w", int(mode), model.ErrInvalidMergeMode)
	}
}

func encodeUID(uid rdm.UID) protocol.UID {
	return protocol.UID{
		EstaID:   int32(uid.ManufacturerID()),
		DeviceID: uint32(uid.DeviceID()),
	}
}

func decodeUID(uid protocol.UID) (rdm.UID, error) {
	return rdm.NewUID(int(uid.EstaID), int64(uid.DeviceID))
}

func decodeUIDs(r *protocol.UIDListReply) ([]rdm.UID, error) {
	uids := make([]rdm.UID, 0, len(r.UIDs))

	for _, wire := range r.UIDs {
		uid, err := decodeUID(wire)
		if err != nil {
			return nil, err
		}

		uids = append(uids, uid)
	}

	slices.SortFunc(uids, rdm.Compare)
	return uids, nil
}

func decodeRDMResponse(r *protocol.RDMResponse) (*RDMResponse, error) {
	resp := &RDMResponse{
		ResponseCode:      r.ResponseCode,
		ResponseType:      r.ResponseType,
		CommandClass:      r.CommandClass,
		MessageCount:      int(r.MessageCount),
		ParamID:           int(r.ParamID),
		SubDevice:         int(r.SubDevice),
		TransactionNumber: int(r.TransactionNumber),
		Data:              DecodeLevels(r.Data),
	}

	var err error

	if resp.SourceUID, err = optionalUID(r.SourceUID); err != nil {
		return nil, err
	}

	if resp.DestUID, err = optionalUID(r.DestUID); err != nil {
		return nil, err
	}

	return resp, nil
}

func optionalUID(wire *protocol.UID) (*rdm.UID, error) {
	if wire == nil {
		return nil, nil
	}

	uid, err := decodeUID(*wire)
	if err != nil {
		return nil, err
	}

	return &uid, nil
}
