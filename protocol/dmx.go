package protocol

import "google.golang.org/protobuf/encoding/protowire"

type RegisterAction int32

const (
	Register   RegisterAction = 1
	Unregister RegisterAction = 2
)

// DmxData carries one frame of channel levels for a universe. It is the reply
// to GetDmx, the request for UpdateDmxData and StreamDmxData, and the payload
// of pushed updates.
type DmxData struct {
	Universe    int32
	Data        []byte
	Priority    int32
	HasPriority bool
}

func (m *DmxData) Marshal() ([]byte, error) {
	e := encoder{}
	e.int32(1, m.Universe)
	e.bytes(2, m.Data)
	if m.HasPriority {
		e.int32(3, m.Priority)
	}

	return e.b, nil
}

func (m *DmxData) Unmarshal(data []byte) error {
	*m = DmxData{}
	seen := map[protowire.Number]bool{}

	err := decodeFields(data, func(f field) (err error) {
		seen[f.num] = true

		switch f.num {
		case 1:
			m.Universe, err = f.asInt32()
		case 2:
			m.Data, err = f.asBytes()
		case 3:
			m.Priority, err = f.asInt32()
			m.HasPriority = true
		}

		return err
	})
	if err != nil {
		return err
	}

	return requireFields("DmxData", seen, 1, 2)
}

type RegisterDmxRequest struct {
	Universe int32
	Action   RegisterAction
}

func (m *RegisterDmxRequest) Marshal() ([]byte, error) {
	e := encoder{}
	e.int32(1, m.Universe)
	e.int32(2, int32(m.Action))
	return e.b, nil
}

func (m *RegisterDmxRequest) Unmarshal(data []byte) error {
	*m = RegisterDmxRequest{}

	return decodeFields(data, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Universe, err = f.asInt32()
		case 2:
			var a int32
			a, err = f.asInt32()
			m.Action = RegisterAction(a)
		}

		return err
	})
}
