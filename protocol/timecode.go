package protocol

type TimeCodeType int32

const (
	TimeCodeFilm  TimeCodeType = 0
	TimeCodeEBU   TimeCodeType = 1
	TimeCodeDF    TimeCodeType = 2
	TimeCodeSMPTE TimeCodeType = 3
)

type TimeCode struct {
	Type    TimeCodeType
	Hours   uint32
	Minutes uint32
	Seconds uint32
	Frames  uint32
}

func (m *TimeCode) Marshal() ([]byte, error) {
	e := encoder{}
	e.int32(1, int32(m.Type))
	e.uint32(2, m.Hours)
	e.uint32(3, m.Minutes)
	e.uint32(4, m.Seconds)
	e.uint32(5, m.Frames)
	return e.b, nil
}

func (m *TimeCode) Unmarshal(data []byte) error {
	*m = TimeCode{}

	return decodeFields(data, func(f field) (err error) {
		switch f.num {
		case 1:
			var t int32
			t, err = f.asInt32()
			m.Type = TimeCodeType(t)
		case 2:
			m.Hours, err = f.asUint32()
		case 3:
			m.Minutes, err = f.asUint32()
		case 4:
			m.Seconds, err = f.asUint32()
		case 5:
			m.Frames, err = f.asUint32()
		}

		return err
	})
}
