package protocol

import "google.golang.org/protobuf/encoding/protowire"

type DeviceInfoRequest struct {
	// PluginID filters devices by plugin, PluginAll matches every plugin
	PluginID int32
}

func (m *DeviceInfoRequest) Marshal() ([]byte, error) {
	e := encoder{}
	e.int32(1, m.PluginID)
	return e.b, nil
}

func (m *DeviceInfoRequest) Unmarshal(data []byte) error {
	*m = DeviceInfoRequest{}

	return decodeFields(data, func(f field) (err error) {
		if f.num == 1 {
			m.PluginID, err = f.asInt32()
		}

		return err
	})
}

type PortInfo struct {
	PortID             int32
	PriorityCapability int32
	Universe           int32
	Active             bool
	Description        string
	PriorityMode       int32
	Priority           int32
	SupportsRDM        bool
}

func (m *PortInfo) Marshal() ([]byte, error) {
	e := encoder{}
	e.int32(1, m.PortID)
	e.int32(2, m.PriorityCapability)
	e.int32(3, m.Universe)
	e.bool(4, m.Active)
	e.string(5, m.Description)
	e.int32(6, m.PriorityMode)
	e.int32(7, m.Priority)
	e.bool(8, m.SupportsRDM)
	return e.b, nil
}

func (m *PortInfo) Unmarshal(data []byte) error {
	*m = PortInfo{}
	seen := map[protowire.Number]bool{}

	err := decodeFields(data, func(f field) (err error) {
		seen[f.num] = true

		switch f.num {
		case 1:
			m.PortID, err = f.asInt32()
		case 2:
			m.PriorityCapability, err = f.asInt32()
		case 3:
			m.Universe, err = f.asInt32()
		case 4:
			m.Active, err = f.asBool()
		case 5:
			m.Description, err = f.asString()
		case 6:
			m.PriorityMode, err = f.asInt32()
		case 7:
			m.Priority, err = f.asInt32()
		case 8:
			m.SupportsRDM, err = f.asBool()
		}

		return err
	})
	if err != nil {
		return err
	}

	return requireFields("PortInfo", seen, 1)
}

type DeviceInfo struct {
	DeviceAlias int32
	PluginID    int32
	DeviceName  string
	InputPorts  []PortInfo
	OutputPorts []PortInfo
	DeviceID    string
}

func (m *DeviceInfo) Marshal() ([]byte, error) {
	e := encoder{}
	e.int32(1, m.DeviceAlias)
	e.int32(2, m.PluginID)
	e.string(3, m.DeviceName)

	for i := range m.InputPorts {
		if err := e.message(4, &m.InputPorts[i]); err != nil {
			return nil, err
		}
	}

	for i := range m.OutputPorts {
		if err := e.message(5, &m.OutputPorts[i]); err != nil {
			return nil, err
		}
	}

	e.string(6, m.DeviceID)
	return e.b, nil
}

func (m *DeviceInfo) Unmarshal(data []byte) error {
	*m = DeviceInfo{}
	seen := map[protowire.Number]bool{}

	err := decodeFields(data, func(f field) (err error) {
		seen[f.num] = true

		switch f.num {
		case 1:
			m.DeviceAlias, err = f.asInt32()
		case 2:
			m.PluginID, err = f.asInt32()
		case 3:
			m.DeviceName, err = f.asString()
		case 4:
			var p PortInfo
			if err = f.asMessage(&p); err == nil {
				m.InputPorts = append(m.InputPorts, p)
			}
		case 5:
			var p PortInfo
			if err = f.asMessage(&p); err == nil {
				m.OutputPorts = append(m.OutputPorts, p)
			}
		case 6:
			m.DeviceID, err = f.asString()
		}

		return err
	})
	if err != nil {
		return err
	}

	return requireFields("DeviceInfo", seen, 1, 6)
}

type DeviceInfoReply struct {
	Devices []DeviceInfo
}

func (m *DeviceInfoReply) Marshal() ([]byte, error) {
	e := encoder{}
	for i := range m.Devices {
		if err := e.message(1, &m.Devices[i]); err != nil {
			return nil, err
		}
	}

	return e.b, nil
}

func (m *DeviceInfoReply) Unmarshal(data []byte) error {
	*m = DeviceInfoReply{}

	return decodeFields(data, func(f field) error {
		if f.num != 1 {
			return nil
		}

		var d DeviceInfo
		if err := f.asMessage(&d); err != nil {
			return err
		}

		m.Devices = append(m.Devices, d)
		return nil
	})
}

type PatchAction int32

const (
	Patch   PatchAction = 1
	Unpatch PatchAction = 2
)

type PatchPortRequest struct {
	Universe    int32
	DeviceAlias int32
	PortID      int32
	Action      PatchAction
	IsOutput    bool
}

func (m *PatchPortRequest) Marshal() ([]byte, error) {
	e := encoder{}
	e.int32(1, m.Universe)
	e.int32(2, m.DeviceAlias)
	e.int32(3, m.PortID)
	e.int32(4, int32(m.Action))
	e.bool(5, m.IsOutput)
	return e.b, nil
}

func (m *PatchPortRequest) Unmarshal(data []byte) error {
	*m = PatchPortRequest{}

	return decodeFields(data, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Universe, err = f.asInt32()
		case 2:
			m.DeviceAlias, err = f.asInt32()
		case 3:
			m.PortID, err = f.asInt32()
		case 4:
			var a int32
			a, err = f.asInt32()
			m.Action = PatchAction(a)
		case 5:
			m.IsOutput, err = f.asBool()
		}

		return err
	})
}

type DeviceConfigRequest struct {
	DeviceAlias int32
	Data        []byte
}

func (m *DeviceConfigRequest) Marshal() ([]byte, error) {
	e := encoder{}
	e.int32(1, m.DeviceAlias)
	e.bytes(2, m.Data)
	return e.b, nil
}

func (m *DeviceConfigRequest) Unmarshal(data []byte) error {
	*m = DeviceConfigRequest{}

	return decodeFields(data, func(f field) (err error) {
		switch f.num {
		case 1:
			m.DeviceAlias, err = f.asInt32()
		case 2:
			m.Data, err = f.asBytes()
		}

		return err
	})
}

type DeviceConfigReply struct {
	Data []byte
}

func (m *DeviceConfigReply) Marshal() ([]byte, error) {
	e := encoder{}
	e.bytes(1, m.Data)
	return e.b, nil
}

func (m *DeviceConfigReply) Unmarshal(data []byte) error {
	*m = DeviceConfigReply{}
	seen := map[protowire.Number]bool{}

	err := decodeFields(data, func(f field) (err error) {
		seen[f.num] = true

		if f.num == 1 {
			m.Data, err = f.asBytes()
		}

		return err
	})
	if err != nil {
		return err
	}

	return requireFields("DeviceConfigReply", seen, 1)
}
