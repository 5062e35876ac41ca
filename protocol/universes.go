package protocol

import "google.golang.org/protobuf/encoding/protowire"

type MergeMode int32

const (
	MergeHTP MergeMode = 1
	MergeLTP MergeMode = 2
)

type OptionalUniverseRequest struct {
	// Universe is only sent when HasUniverse is set
	Universe    int32
	HasUniverse bool
}

func (m *OptionalUniverseRequest) Marshal() ([]byte, error) {
	e := encoder{}
	if m.HasUniverse {
		e.int32(1, m.Universe)
	}

	return e.b, nil
}

func (m *OptionalUniverseRequest) Unmarshal(data []byte) error {
	*m = OptionalUniverseRequest{}

	return decodeFields(data, func(f field) (err error) {
		if f.num == 1 {
			m.Universe, err = f.asInt32()
			m.HasUniverse = true
		}

		return err
	})
}

type UniverseRequest struct {
	Universe int32
}

func (m *UniverseRequest) Marshal() ([]byte, error) {
	e := encoder{}
	e.int32(1, m.Universe)
	return e.b, nil
}

func (m *UniverseRequest) Unmarshal(data []byte) error {
	*m = UniverseRequest{}

	return decodeFields(data, func(f field) (err error) {
		if f.num == 1 {
			m.Universe, err = f.asInt32()
		}

		return err
	})
}

type UniverseInfo struct {
	Universe        int32
	Name            string
	MergeMode       MergeMode
	InputPortCount  int32
	OutputPortCount int32
	RDMDevices      int32
}

func (m *UniverseInfo) Marshal() ([]byte, error) {
	e := encoder{}
	e.int32(1, m.Universe)
	e.string(2, m.Name)
	e.int32(3, int32(m.MergeMode))
	e.int32(4, m.InputPortCount)
	e.int32(5, m.OutputPortCount)
	e.int32(6, m.RDMDevices)
	return e.b, nil
}

func (m *UniverseInfo) Unmarshal(data []byte) error {
	*m = UniverseInfo{}
	seen := map[protowire.Number]bool{}

	err := decodeFields(data, func(f field) (err error) {
		seen[f.num] = true

		switch f.num {
		case 1:
			m.Universe, err = f.asInt32()
		case 2:
			m.Name, err = f.asString()
		case 3:
			var mode int32
			mode, err = f.asInt32()
			m.MergeMode = MergeMode(mode)
		case 4:
			m.InputPortCount, err = f.asInt32()
		case 5:
			m.OutputPortCount, err = f.asInt32()
		case 6:
			m.RDMDevices, err = f.asInt32()
		}

		return err
	})
	if err != nil {
		return err
	}

	return requireFields("UniverseInfo", seen, 1)
}

type UniverseInfoReply struct {
	Universes []UniverseInfo
}

func (m *UniverseInfoReply) Marshal() ([]byte, error) {
	e := encoder{}
	for i := range m.Universes {
		if err := e.message(1, &m.Universes[i]); err != nil {
			return nil, err
		}
	}

	return e.b, nil
}

func (m *UniverseInfoReply) Unmarshal(data []byte) error {
	*m = UniverseInfoReply{}

	return decodeFields(data, func(f field) error {
		if f.num != 1 {
			return nil
		}

		var u UniverseInfo
		if err := f.asMessage(&u); err != nil {
			return err
		}

		m.Universes = append(m.Universes, u)
		return nil
	})
}

type UniverseNameRequest struct {
	Universe int32
	Name     string
}

func (m *UniverseNameRequest) Marshal() ([]byte, error) {
	e := encoder{}
	e.int32(1, m.Universe)
	e.string(2, m.Name)
	return e.b, nil
}

func (m *UniverseNameRequest) Unmarshal(data []byte) error {
	*m = UniverseNameRequest{}

	return decodeFields(data, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Universe, err = f.asInt32()
		case 2:
			m.Name, err = f.asString()
		}

		return err
	})
}

type MergeModeRequest struct {
	Universe  int32
	MergeMode MergeMode
}

func (m *MergeModeRequest) Marshal() ([]byte, error) {
	e := encoder{}
	e.int32(1, m.Universe)
	e.int32(2, int32(m.MergeMode))
	return e.b, nil
}

func (m *MergeModeRequest) Unmarshal(data []byte) error {
	*m = MergeModeRequest{}

	return decodeFields(data, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Universe, err = f.asInt32()
		case 2:
			var mode int32
			mode, err = f.asInt32()
			m.MergeMode = MergeMode(mode)
		}

		return err
	})
}
