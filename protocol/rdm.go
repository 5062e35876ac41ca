package protocol

import "google.golang.org/protobuf/encoding/protowire"

// UID is the wire form of an RDM address.
type UID struct {
	EstaID   int32
	DeviceID uint32
}

func (m *UID) Marshal() ([]byte, error) {
	e := encoder{}
	e.int32(1, m.EstaID)
	e.fixed32(2, m.DeviceID)
	return e.b, nil
}

func (m *UID) Unmarshal(data []byte) error {
	*m = UID{}
	seen := map[protowire.Number]bool{}

	err := decodeFields(data, func(f field) (err error) {
		seen[f.num] = true

		switch f.num {
		case 1:
			m.EstaID, err = f.asInt32()
		case 2:
			m.DeviceID, err = f.asFixed32()
		}

		return err
	})
	if err != nil {
		return err
	}

	return requireFields("UID", seen, 1, 2)
}

type UIDListReply struct {
	Universe int32
	UIDs     []UID
}

func (m *UIDListReply) Marshal() ([]byte, error) {
	e := encoder{}
	e.int32(1, m.Universe)
	for i := range m.UIDs {
		if err := e.message(2, &m.UIDs[i]); err != nil {
			return nil, err
		}
	}

	return e.b, nil
}

func (m *UIDListReply) Unmarshal(data []byte) error {
	*m = UIDListReply{}
	seen := map[protowire.Number]bool{}

	err := decodeFields(data, func(f field) (err error) {
		seen[f.num] = true

		switch f.num {
		case 1:
			m.Universe, err = f.asInt32()
		case 2:
			var u UID
			if err = f.asMessage(&u); err == nil {
				m.UIDs = append(m.UIDs, u)
			}
		}

		return err
	})
	if err != nil {
		return err
	}

	return requireFields("UIDListReply", seen, 1)
}

type DiscoveryRequest struct {
	Universe int32
	Full     bool
}

func (m *DiscoveryRequest) Marshal() ([]byte, error) {
	e := encoder{}
	e.int32(1, m.Universe)
	e.bool(2, m.Full)
	return e.b, nil
}

func (m *DiscoveryRequest) Unmarshal(data []byte) error {
	*m = DiscoveryRequest{}

	return decodeFields(data, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Universe, err = f.asInt32()
		case 2:
			m.Full, err = f.asBool()
		}

		return err
	})
}

type RDMRequest struct {
	Universe           int32
	UID                UID
	SubDevice          int32
	ParamID            int32
	Data               []byte
	IsSet              bool
	IncludeRawResponse bool
}

func (m *RDMRequest) Marshal() ([]byte, error) {
	e := encoder{}
	e.int32(1, m.Universe)
	if err := e.message(2, &m.UID); err != nil {
		return nil, err
	}
	e.int32(3, m.SubDevice)
	e.int32(4, m.ParamID)
	e.bytes(5, m.Data)
	e.bool(6, m.IsSet)
	if m.IncludeRawResponse {
		e.bool(7, true)
	}

	return e.b, nil
}

func (m *RDMRequest) Unmarshal(data []byte) error {
	*m = RDMRequest{}

	return decodeFields(data, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Universe, err = f.asInt32()
		case 2:
			err = f.asMessage(&m.UID)
		case 3:
			m.SubDevice, err = f.asInt32()
		case 4:
			m.ParamID, err = f.asInt32()
		case 5:
			m.Data, err = f.asBytes()
		case 6:
			m.IsSet, err = f.asBool()
		case 7:
			m.IncludeRawResponse, err = f.asBool()
		}

		return err
	})
}

// RDMResponseCode is the daemon's verdict on an RDM request.
type RDMResponseCode int32

const (
	RDMCompletedOK         RDMResponseCode = 0
	RDMWasBroadcast        RDMResponseCode = 1
	RDMFailedToSend        RDMResponseCode = 2
	RDMTimeout             RDMResponseCode = 3
	RDMInvalidResponse     RDMResponseCode = 4
	RDMUnknownUID          RDMResponseCode = 5
	RDMChecksumIncorrect   RDMResponseCode = 6
	RDMTransactionMismatch RDMResponseCode = 7
)

// RDMResponseType is the response type reported by the responder.
type RDMResponseType int32

const (
	RDMAck         RDMResponseType = 0
	RDMAckTimer    RDMResponseType = 1
	RDMNackReason  RDMResponseType = 2
	RDMAckOverflow RDMResponseType = 3
)

type RDMCommandClass int32

const (
	RDMGetResponse       RDMCommandClass = 0
	RDMSetResponse       RDMCommandClass = 1
	RDMDiscoveryResponse RDMCommandClass = 2
)

type RDMResponse struct {
	ResponseCode      RDMResponseCode
	ResponseType      RDMResponseType
	MessageCount      uint32
	Data              []byte
	ParamID           uint32
	CommandClass      RDMCommandClass
	SubDevice         uint32
	RawResponse       [][]byte
	SourceUID         *UID
	DestUID           *UID
	TransactionNumber int32
}

func (m *RDMResponse) Marshal() ([]byte, error) {
	e := encoder{}
	e.int32(1, int32(m.ResponseCode))
	e.int32(2, int32(m.ResponseType))
	e.uint32(3, m.MessageCount)
	e.bytes(4, m.Data)
	e.uint32(5, m.ParamID)
	e.int32(6, int32(m.CommandClass))
	e.uint32(7, m.SubDevice)
	for _, raw := range m.RawResponse {
		e.bytes(8, raw)
	}
	if m.SourceUID != nil {
		if err := e.message(9, m.SourceUID); err != nil {
			return nil, err
		}
	}
	if m.DestUID != nil {
		if err := e.message(10, m.DestUID); err != nil {
			return nil, err
		}
	}
	e.int32(11, m.TransactionNumber)

	return e.b, nil
}

func (m *RDMResponse) Unmarshal(data []byte) error {
	*m = RDMResponse{}
	seen := map[protowire.Number]bool{}

	err := decodeFields(data, func(f field) (err error) {
		seen[f.num] = true

		var v int32
		switch f.num {
		case 1:
			v, err = f.asInt32()
			m.ResponseCode = RDMResponseCode(v)
		case 2:
			v, err = f.asInt32()
			m.ResponseType = RDMResponseType(v)
		case 3:
			m.MessageCount, err = f.asUint32()
		case 4:
			m.Data, err = f.asBytes()
		case 5:
			m.ParamID, err = f.asUint32()
		case 6:
			v, err = f.asInt32()
			m.CommandClass = RDMCommandClass(v)
		case 7:
			m.SubDevice, err = f.asUint32()
		case 8:
			var raw []byte
			if raw, err = f.asBytes(); err == nil {
				m.RawResponse = append(m.RawResponse, raw)
			}
		case 9:
			m.SourceUID = &UID{}
			err = f.asMessage(m.SourceUID)
		case 10:
			m.DestUID = &UID{}
			err = f.asMessage(m.DestUID)
		case 11:
			m.TransactionNumber, err = f.asInt32()
		}

		return err
	})
	if err != nil {
		return err
	}

	return requireFields("RDMResponse", seen, 1)
}
