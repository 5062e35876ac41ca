package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

const (
	// ProtocolVersion is carried in the top four bits of every frame header
	ProtocolVersion = 1

	// HeaderSize is the size of the frame header in bytes
	HeaderSize = 4

	sizeMask = 0x0FFFFFFF

	// MaxFrameSize is the largest body a frame header can describe
	MaxFrameSize = sizeMask

	// DefaultMaxFrameSize bounds frames read by ReadMessage when no limit is given
	DefaultMaxFrameSize = 1 << 20
)

var (
	ErrFrameTooLarge      = errors.New("frame exceeds the maximum frame size")
	ErrUnsupportedVersion = errors.New("frame has an unsupported protocol version")
)

// RpcMessage is the envelope for every request, response and push exchanged
// with the daemon.
type RpcMessage struct {
	Type MessageType

	// ID pairs a response with its request. Stream requests have no response
	// and their ID is ignored.
	ID uint32

	// Name is the method name. Only set on requests.
	Name string

	// Buffer is the encoded request or reply message. For RESPONSE_FAILED it
	// is the error text.
	Buffer []byte
}

func (m *RpcMessage) Marshal() ([]byte, error) {
	e := encoder{}
	e.int32(1, int32(m.Type))
	e.uint32(2, m.ID)
	if m.Name != "" {
		e.string(3, m.Name)
	}
	if m.Buffer != nil {
		e.bytes(4, m.Buffer)
	}

	return e.b, nil
}

func (m *RpcMessage) Unmarshal(data []byte) error {
	*m = RpcMessage{}
	seen := map[protowire.Number]bool{}

	err := decodeFields(data, func(f field) (err error) {
		seen[f.num] = true

		switch f.num {
		case 1:
			var t int32
			t, err = f.asInt32()
			m.Type = MessageType(t)
		case 2:
			m.ID, err = f.asUint32()
		case 3:
			m.Name, err = f.asString()
		case 4:
			m.Buffer, err = f.asBytes()
		}

		return err
	})
	if err != nil {
		return err
	}

	return requireFields("RpcMessage", seen, 1)
}

// ReadMessage reads one frame from r and decodes its envelope.
//
// r should be buffered; ReadMessage issues two reads per frame. Frames whose
// body is larger than maxSize are rejected with ErrFrameTooLarge, a maxSize of
// zero or less means DefaultMaxFrameSize.
func ReadMessage(r io.Reader, maxSize int) (*RpcMessage, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxFrameSize
	}

	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	v := binary.LittleEndian.Uint32(header[:])
	version := v >> 28
	size := int(v & sizeMask)

	if version != ProtocolVersion {
		return nil, fmt.Errorf("version %d: %w", version, ErrUnsupportedVersion)
	}

	if size > maxSize {
		return nil, fmt.Errorf("frame of %d bytes, limit is %d: %w", size, maxSize, ErrFrameTooLarge)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}

	msg := &RpcMessage{}
	if err := msg.Unmarshal(body); err != nil {
		return nil, fmt.Errorf("malformed envelope: %w", err)
	}

	return msg, nil
}

// WriteMessage encodes msg and writes it to w as a single frame with a single
// Write call, so frames from concurrent writers never interleave as long as w
// serialises Writes.
func WriteMessage(w io.Writer, msg *RpcMessage) error {
	body, err := msg.Marshal()
	if err != nil {
		return err
	}

	if len(body) > MaxFrameSize {
		return fmt.Errorf("frame of %d bytes: %w", len(body), ErrFrameTooLarge)
	}

	frame := make([]byte, HeaderSize, HeaderSize+len(body))
	binary.LittleEndian.PutUint32(frame, uint32(ProtocolVersion)<<28|uint32(len(body)))
	frame = append(frame, body...)

	_, err = w.Write(frame)
	return err
}

// NewRequest wraps a request message in an envelope.
func NewRequest(id uint32, method Method, req Marshaler) (*RpcMessage, error) {
	return newCall(TypeRequest, id, method, req)
}

// NewStreamRequest wraps a request that expects no response.
func NewStreamRequest(method Method, req Marshaler) (*RpcMessage, error) {
	return newCall(TypeStreamRequest, 0, method, req)
}

// NewResponse wraps a reply message in an envelope.
func NewResponse(id uint32, reply Marshaler) (*RpcMessage, error) {
	buf, err := reply.Marshal()
	if err != nil {
		return nil, err
	}

	return &RpcMessage{Type: TypeResponse, ID: id, Buffer: nonNil(buf)}, nil
}

// NewFailedResponse reports a failed call back to the caller.
func NewFailedResponse(id uint32, errMsg string) *RpcMessage {
	return &RpcMessage{Type: TypeResponseFailed, ID: id, Buffer: []byte(errMsg)}
}

func newCall(typ MessageType, id uint32, method Method, req Marshaler) (*RpcMessage, error) {
	buf, err := req.Marshal()
	if err != nil {
		return nil, err
	}

	return &RpcMessage{Type: typ, ID: id, Name: method.String(), Buffer: nonNil(buf)}, nil
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}

	return b
}
