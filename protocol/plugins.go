package protocol

import "google.golang.org/protobuf/encoding/protowire"

// PluginAll is the plugin filter that matches every plugin.
const PluginAll int32 = 0

// Ack is the empty reply to calls that only acknowledge.
type Ack struct{}

func (m *Ack) Marshal() ([]byte, error) { return nil, nil }

func (m *Ack) Unmarshal(data []byte) error {
	return decodeFields(data, func(field) error { return nil })
}

type PluginListRequest struct{}

func (m *PluginListRequest) Marshal() ([]byte, error) { return nil, nil }

func (m *PluginListRequest) Unmarshal(data []byte) error {
	return decodeFields(data, func(field) error { return nil })
}

type PluginInfo struct {
	PluginID int32
	Name     string
	Active   bool
	Enabled  bool
}

func (m *PluginInfo) Marshal() ([]byte, error) {
	e := encoder{}
	e.int32(1, m.PluginID)
	e.string(2, m.Name)
	e.bool(3, m.Active)
	e.bool(4, m.Enabled)
	return e.b, nil
}

func (m *PluginInfo) Unmarshal(data []byte) error {
	*m = PluginInfo{}
	seen := map[protowire.Number]bool{}

	err := decodeFields(data, func(f field) (err error) {
		seen[f.num] = true

		switch f.num {
		case 1:
			m.PluginID, err = f.asInt32()
		case 2:
			m.Name, err = f.asString()
		case 3:
			m.Active, err = f.asBool()
		case 4:
			m.Enabled, err = f.asBool()
		}

		return err
	})
	if err != nil {
		return err
	}

	return requireFields("PluginInfo", seen, 1)
}

type PluginListReply struct {
	Plugins []PluginInfo
}

func (m *PluginListReply) Marshal() ([]byte, error) {
	e := encoder{}
	for i := range m.Plugins {
		if err := e.message(1, &m.Plugins[i]); err != nil {
			return nil, err
		}
	}

	return e.b, nil
}

func (m *PluginListReply) Unmarshal(data []byte) error {
	*m = PluginListReply{}

	return decodeFields(data, func(f field) error {
		if f.num != 1 {
			return nil
		}

		var p PluginInfo
		if err := f.asMessage(&p); err != nil {
			return err
		}

		m.Plugins = append(m.Plugins, p)
		return nil
	})
}

type PluginDescriptionRequest struct {
	PluginID int32
}

func (m *PluginDescriptionRequest) Marshal() ([]byte, error) {
	e := encoder{}
	e.int32(1, m.PluginID)
	return e.b, nil
}

func (m *PluginDescriptionRequest) Unmarshal(data []byte) error {
	*m = PluginDescriptionRequest{}

	return decodeFields(data, func(f field) (err error) {
		if f.num == 1 {
			m.PluginID, err = f.asInt32()
		}

		return err
	})
}

type PluginDescriptionReply struct {
	Name        string
	Description string
}

func (m *PluginDescriptionReply) Marshal() ([]byte, error) {
	e := encoder{}
	e.string(1, m.Name)
	e.string(2, m.Description)
	return e.b, nil
}

func (m *PluginDescriptionReply) Unmarshal(data []byte) error {
	*m = PluginDescriptionReply{}
	seen := map[protowire.Number]bool{}

	err := decodeFields(data, func(f field) (err error) {
		seen[f.num] = true

		switch f.num {
		case 1:
			m.Name, err = f.asString()
		case 2:
			m.Description, err = f.asString()
		}

		return err
	})
	if err != nil {
		return err
	}

	return requireFields("PluginDescriptionReply", seen, 2)
}
