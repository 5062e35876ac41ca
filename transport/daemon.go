package transport

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/luma/ola/protocol"
	"github.com/luma/ola/rdm"
	"github.com/luma/ola/storage"
)

var (
	ErrUnknownPlugin   = errors.New("plugin does not exist")
	ErrUnknownDevice   = errors.New("device does not exist")
	ErrUnknownUniverse = errors.New("universe does not exist")
	ErrUnknownPort     = errors.New("port does not exist")
)

// Daemon answers calls against the state held in a store. It is shared by
// every connection.
type Daemon struct {
	store storage.Store

	// writeMu serialises read-modify-write cycles against the store
	writeMu sync.Mutex

	log *zap.Logger
}

func NewDaemon(store storage.Store, log *zap.Logger) *Daemon {
	return &Daemon{store: store, log: log}
}

// Handle runs method with the encoded request in payload. RegisterForDmx is
// handled by the connection; Handle only acknowledges it.
func (d *Daemon) Handle(ctx context.Context, method protocol.Method, payload []byte) (protocol.Marshaler, error) {
	switch method {
	case protocol.GetPlugins:
		return d.getPlugins(ctx)

	case protocol.GetPluginDescription:
		var req protocol.PluginDescriptionRequest
		if err := req.Unmarshal(payload); err != nil {
			return nil, err
		}

		return d.getPluginDescription(ctx, &req)

	case protocol.GetDeviceInfo:
		var req protocol.DeviceInfoRequest
		if err := req.Unmarshal(payload); err != nil {
			return nil, err
		}

		return d.getDeviceInfo(ctx, &req)

	case protocol.GetUniverseInfo:
		var req protocol.OptionalUniverseRequest
		if err := req.Unmarshal(payload); err != nil {
			return nil, err
		}

		return d.getUniverseInfo(ctx, &req)

	case protocol.GetDmx:
		var req protocol.UniverseRequest
		if err := req.Unmarshal(payload); err != nil {
			return nil, err
		}

		return d.getDmx(ctx, &req)

	case protocol.UpdateDmxData, protocol.StreamDmxData:
		var req protocol.DmxData
		if err := req.Unmarshal(payload); err != nil {
			return nil, err
		}

		return d.updateDmx(ctx, &req)

	case protocol.SetUniverseName:
		var req protocol.UniverseNameRequest
		if err := req.Unmarshal(payload); err != nil {
			return nil, err
		}

		return d.setUniverseField(ctx, int(req.Universe), "name", req.Name)

	case protocol.SetMergeMode:
		var req protocol.MergeModeRequest
		if err := req.Unmarshal(payload); err != nil {
			return nil, err
		}

		mode, err := mergeModeName(req.MergeMode)
		if err != nil {
			return nil, err
		}

		return d.setUniverseField(ctx, int(req.Universe), "mergeMode", mode)

	case protocol.RegisterForDmx:
		return &protocol.Ack{}, nil

	case protocol.PatchPort:
		var req protocol.PatchPortRequest
		if err := req.Unmarshal(payload); err != nil {
			return nil, err
		}

		return d.patchPort(ctx, &req)

	case protocol.ConfigureDevice:
		var req protocol.DeviceConfigRequest
		if err := req.Unmarshal(payload); err != nil {
			return nil, err
		}

		return d.configureDevice(ctx, &req)

	case protocol.SendTimeCode:
		var req protocol.TimeCode
		if err := req.Unmarshal(payload); err != nil {
			return nil, err
		}

		d.log.Debug("Time code",
			zap.Uint32("hours", req.Hours),
			zap.Uint32("minutes", req.Minutes),
			zap.Uint32("seconds", req.Seconds),
			zap.Uint32("frames", req.Frames))

		return &protocol.Ack{}, nil

	case protocol.GetUIDs:
		var req protocol.UniverseRequest
		if err := req.Unmarshal(payload); err != nil {
			return nil, err
		}

		return d.getUIDs(ctx, int(req.Universe))

	case protocol.ForceDiscovery:
		var req protocol.DiscoveryRequest
		if err := req.Unmarshal(payload); err != nil {
			return nil, err
		}

		return d.getUIDs(ctx, int(req.Universe))

	case protocol.RDMCommand:
		var req protocol.RDMRequest
		if err := req.Unmarshal(payload); err != nil {
			return nil, err
		}

		return d.rdmCommand(ctx, &req)

	default:
		return nil, fmt.Errorf("%s: %w", method, errNotImplemented)
	}
}

func (d *Daemon) getPlugins(ctx context.Context) (*protocol.PluginListReply, error) {
	plugins, _, err := storage.Lookup(ctx, d.store, storage.PluginsKey)
	if err != nil {
		return nil, err
	}

	reply := &protocol.PluginListReply{}

	plugins.ForEach(func(_, value gjson.Result) bool {
		p := storage.ParsePlugin(value)
		reply.Plugins = append(reply.Plugins, protocol.PluginInfo{
			PluginID: int32(p.ID),
			Name:     p.Name,
			Active:   p.Active,
			Enabled:  p.Enabled,
		})

		return true
	})

	return reply, nil
}

func (d *Daemon) getPluginDescription(ctx context.Context, req *protocol.PluginDescriptionRequest) (*protocol.PluginDescriptionReply, error) {
	value, found, err := storage.Lookup(ctx, d.store, storage.PluginKey(int(req.PluginID)))
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, fmt.Errorf("plugin %d: %w", req.PluginID, ErrUnknownPlugin)
	}

	p := storage.ParsePlugin(value)

	return &protocol.PluginDescriptionReply{Name: p.Name, Description: p.Description}, nil
}

func (d *Daemon) getDeviceInfo(ctx context.Context, req *protocol.DeviceInfoRequest) (*protocol.DeviceInfoReply, error) {
	devices, _, err := storage.Lookup(ctx, d.store, storage.DevicesKey)
	if err != nil {
		return nil, err
	}

	reply := &protocol.DeviceInfoReply{}

	devices.ForEach(func(_, value gjson.Result) bool {
		dev := storage.ParseDevice(value)
		if req.PluginID != protocol.PluginAll && int32(dev.PluginID) != req.PluginID {
			return true
		}

		reply.Devices = append(reply.Devices, protocol.DeviceInfo{
			DeviceAlias: int32(dev.Alias),
			PluginID:    int32(dev.PluginID),
			DeviceName:  dev.Name,
			InputPorts:  portInfos(dev.InputPorts),
			OutputPorts: portInfos(dev.OutputPorts),
			DeviceID:    dev.ID,
		})

		return true
	})

	return reply, nil
}

func portInfos(ports []storage.PortRecord) []protocol.PortInfo {
	infos := make([]protocol.PortInfo, 0, len(ports))
	for _, p := range ports {
		infos = append(infos, protocol.PortInfo{
			PortID:      int32(p.ID),
			Universe:    int32(p.Universe),
			Active:      p.Active,
			Description: p.Description,
			SupportsRDM: p.SupportsRDM,
		})
	}

	return infos
}

func (d *Daemon) getUniverseInfo(ctx context.Context, req *protocol.OptionalUniverseRequest) (*protocol.UniverseInfoReply, error) {
	universes, _, err := storage.Lookup(ctx, d.store, storage.UniversesKey)
	if err != nil {
		return nil, err
	}

	reply := &protocol.UniverseInfoReply{}

	universes.ForEach(func(_, value gjson.Result) bool {
		u := storage.ParseUniverse(value)
		if req.HasUniverse && int32(u.ID) != req.Universe {
			return true
		}

		mode := protocol.MergeHTP
		if u.MergeMode == "LTP" {
			mode = protocol.MergeLTP
		}

		reply.Universes = append(reply.Universes, protocol.UniverseInfo{
			Universe:   int32(u.ID),
			Name:       u.Name,
			MergeMode:  mode,
			RDMDevices: int32(len(u.UIDs)),
		})

		return true
	})

	return reply, nil
}

func (d *Daemon) universe(ctx context.Context, id int) (storage.UniverseRecord, error) {
	value, found, err := storage.Lookup(ctx, d.store, storage.UniverseKey(id))
	if err != nil {
		return storage.UniverseRecord{}, err
	}

	if !found {
		return storage.UniverseRecord{}, fmt.Errorf("universe %d: %w", id, ErrUnknownUniverse)
	}

	return storage.ParseUniverse(value), nil
}

func (d *Daemon) getDmx(ctx context.Context, req *protocol.UniverseRequest) (*protocol.DmxData, error) {
	u, err := d.universe(ctx, int(req.Universe))
	if err != nil {
		return nil, err
	}

	data := make([]byte, len(u.Dmx))
	for i, v := range u.Dmx {
		data[i] = byte(v)
	}

	return &protocol.DmxData{Universe: req.Universe, Data: data}, nil
}

func (d *Daemon) updateDmx(ctx context.Context, req *protocol.DmxData) (*protocol.Ack, error) {
	if _, err := d.universe(ctx, int(req.Universe)); err != nil {
		return nil, err
	}

	levels := make([]int, len(req.Data))
	for i, b := range req.Data {
		levels[i] = int(b)
	}

	if err := d.store.Set(ctx, storage.DmxKey(int(req.Universe)), levels); err != nil {
		return nil, err
	}

	return &protocol.Ack{}, nil
}

func (d *Daemon) setUniverseField(ctx context.Context, universe int, field string, value string) (*protocol.Ack, error) {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	if _, err := d.universe(ctx, universe); err != nil {
		return nil, err
	}

	if err := d.store.Set(ctx, storage.UniverseKey(universe)+"."+field, value); err != nil {
		return nil, err
	}

	return &protocol.Ack{}, nil
}

func mergeModeName(mode protocol.MergeMode) (string, error) {
	switch mode {
	case protocol.MergeHTP:
		return "HTP", nil
	case protocol.MergeLTP:
		return "LTP", nil
	default:
		return "", fmt.Errorf("unknown merge mode %d", mode)
	}
}

func (d *Daemon) device(ctx context.Context, alias int) (storage.DeviceRecord, error) {
	value, found, err := storage.Lookup(ctx, d.store, storage.DeviceKey(alias))
	if err != nil {
		return storage.DeviceRecord{}, err
	}

	if !found {
		return storage.DeviceRecord{}, fmt.Errorf("device %d: %w", alias, ErrUnknownDevice)
	}

	return storage.ParseDevice(value), nil
}

// patchPort attaches or detaches a port. Patching to a universe that does
// not exist yet creates it.
func (d *Daemon) patchPort(ctx context.Context, req *protocol.PatchPortRequest) (*protocol.Ack, error) {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	dev, err := d.device(ctx, int(req.DeviceAlias))
	if err != nil {
		return nil, err
	}

	ports, direction := dev.InputPorts, "inputPorts"
	if req.IsOutput {
		ports, direction = dev.OutputPorts, "outputPorts"
	}

	i := slices.IndexFunc(ports, func(p storage.PortRecord) bool {
		return p.ID == int(req.PortID)
	})
	if i < 0 {
		return nil, fmt.Errorf("device %d %s %d: %w", req.DeviceAlias, direction, req.PortID, ErrUnknownPort)
	}

	port := ports[i]

	switch req.Action {
	case protocol.Patch:
		port.Universe = int(req.Universe)
		port.Active = true

		if _, err := d.universe(ctx, port.Universe); errors.Is(err, ErrUnknownUniverse) {
			err = d.store.Set(ctx, storage.UniverseKey(port.Universe), storage.UniverseRecord{
				ID:        port.Universe,
				MergeMode: "HTP",
				Dmx:       []int{},
				UIDs:      []string{},
			})
			if err != nil {
				return nil, err
			}
		}

	case protocol.Unpatch:
		port.Universe = 0
		port.Active = false

	default:
		return nil, fmt.Errorf("unknown patch action %d", req.Action)
	}

	key := fmt.Sprintf("%s.%s.%d", storage.DeviceKey(dev.Alias), direction, i)
	if err := d.store.Set(ctx, key, port); err != nil {
		return nil, err
	}

	return &protocol.Ack{}, nil
}

// configureDevice echoes the configuration payload back.
func (d *Daemon) configureDevice(ctx context.Context, req *protocol.DeviceConfigRequest) (*protocol.DeviceConfigReply, error) {
	if _, err := d.device(ctx, int(req.DeviceAlias)); err != nil {
		return nil, err
	}

	return &protocol.DeviceConfigReply{Data: req.Data}, nil
}

func (d *Daemon) responders(ctx context.Context, universe int) ([]rdm.UID, error) {
	u, err := d.universe(ctx, universe)
	if err != nil {
		return nil, err
	}

	uids := make([]rdm.UID, 0, len(u.UIDs))
	for _, s := range u.UIDs {
		uid, err := rdm.Parse(s)
		if err != nil {
			d.log.Warn("Ignoring malformed responder UID",
				zap.Int("universe", universe),
				zap.String("uid", s),
				zap.Error(err))
			continue
		}

		uids = append(uids, uid)
	}

	return uids, nil
}

func (d *Daemon) getUIDs(ctx context.Context, universe int) (*protocol.UIDListReply, error) {
	uids, err := d.responders(ctx, universe)
	if err != nil {
		return nil, err
	}

	reply := &protocol.UIDListReply{Universe: int32(universe)}
	for _, uid := range uids {
		reply.UIDs = append(reply.UIDs, protocol.UID{
			EstaID:   int32(uid.ManufacturerID()),
			DeviceID: uint32(uid.DeviceID()),
		})
	}

	return reply, nil
}

// rdmCommand answers GETs with the last value SET for the parameter. Only
// responders listed on the universe answer.
func (d *Daemon) rdmCommand(ctx context.Context, req *protocol.RDMRequest) (*protocol.RDMResponse, error) {
	uids, err := d.responders(ctx, int(req.Universe))
	if err != nil {
		return nil, err
	}

	target, err := rdm.NewUID(int(req.UID.EstaID), int64(req.UID.DeviceID))
	if err != nil {
		return nil, err
	}

	dest := req.UID
	resp := &protocol.RDMResponse{
		ParamID:   uint32(req.ParamID),
		SubDevice: uint32(req.SubDevice),
		DestUID:   &dest,
	}

	if !slices.Contains(uids, target) {
		resp.ResponseCode = protocol.RDMUnknownUID
		return resp, nil
	}

	source := req.UID
	resp.SourceUID = &source
	resp.ResponseCode = protocol.RDMCompletedOK
	resp.ResponseType = protocol.RDMAck

	key := fmt.Sprintf("%s.p%d", storage.ResponderKey(int(req.Universe), target.String()), req.ParamID)

	if req.IsSet {
		resp.CommandClass = protocol.RDMSetResponse

		levels := make([]int, len(req.Data))
		for i, b := range req.Data {
			levels[i] = int(b)
		}

		if err := d.store.Set(ctx, key, levels); err != nil {
			return nil, err
		}

		return resp, nil
	}

	resp.CommandClass = protocol.RDMGetResponse

	value, _, err := storage.Lookup(ctx, d.store, key)
	if err != nil {
		return nil, err
	}

	for _, level := range storage.ParseLevels(value) {
		resp.Data = append(resp.Data, byte(level))
	}

	return resp, nil
}
