package rdm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// MaxManufacturerID is the largest ESTA manufacturer id
	MaxManufacturerID = 0xFFFF

	// MaxDeviceID is the largest device id. A UID with this device id addresses
	// every device of its manufacturer.
	MaxDeviceID = 0xFFFFFFFF
)

var (
	// ErrOutOfBounds is returned when a manufacturer or device id falls outside
	// of the UID address space.
	ErrOutOfBounds = errors.New("UID component is out of bounds")

	// ErrOutOfRange is returned when stepping past either end of the UID space.
	ErrOutOfRange = errors.New("UID cannot be stepped any further")

	// ErrFieldCount is returned by Parse when the input is not two fields
	// separated by a colon.
	ErrFieldCount = errors.New("UID must be two values separated by a colon")
)

// FormatError is returned by Parse when a field is not valid hexadecimal.
type FormatError struct {
	Input string
	Field string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("UID %q has a malformed field %q: %v", e.Input, e.Field, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// UID is an RDM device address: a 16 bit manufacturer id and a 32 bit device id.
//
// UIDs are comparable with == and usable as map keys. Two UIDs are equal exactly
// when their canonical String() forms are equal.
type UID struct {
	manufacturer uint16
	device       uint32
}

var allDevices = UID{manufacturer: MaxManufacturerID, device: MaxDeviceID}

// NewUID returns the UID for the given manufacturer and device ids, or
// ErrOutOfBounds when either is outside of its range.
func NewUID(manufacturerID int, deviceID int64) (UID, error) {
	if !manufacturerInBounds(int64(manufacturerID)) {
		return UID{}, fmt.Errorf("manufacturer %d must be between 0 and %d: %w",
			manufacturerID, MaxManufacturerID, ErrOutOfBounds)
	}

	if !deviceInBounds(deviceID) {
		return UID{}, fmt.Errorf("device %d must be between 0 and %d: %w",
			deviceID, int64(MaxDeviceID), ErrOutOfBounds)
	}

	return UID{manufacturer: uint16(manufacturerID), device: uint32(deviceID)}, nil
}

// MustUID is like NewUID but panics on invalid input. Intended for constants
// and tests.
func MustUID(manufacturerID int, deviceID int64) UID {
	u, err := NewUID(manufacturerID, deviceID)
	if err != nil {
		panic(err)
	}

	return u
}

// AllDevices returns the global broadcast UID, ffff:ffffffff.
func AllDevices() UID {
	return allDevices
}

// AllManufacturerDevices returns the broadcast UID for a single manufacturer.
func AllManufacturerDevices(manufacturerID int) (UID, error) {
	return NewUID(manufacturerID, MaxDeviceID)
}

func (u UID) ManufacturerID() int {
	return int(u.manufacturer)
}

func (u UID) DeviceID() int64 {
	return int64(u.device)
}

// IsBroadcast reports whether u addresses all devices of its manufacturer,
// which includes the global broadcast address.
func (u UID) IsBroadcast() bool {
	return u.device == MaxDeviceID
}

// String returns the canonical MMMM:DDDDDDDD upper-case hex form.
func (u UID) String() string {
	return fmt.Sprintf("%04X:%08X", u.manufacturer, u.device)
}

// Compare orders by manufacturer id, then device id. A nil other always ranks
// below u.
func (u UID) Compare(other *UID) int {
	if other == nil {
		return 1
	}

	return Compare(u, *other)
}

// Compare returns -1, 0 or 1 comparing a with b by manufacturer id then
// device id. It is suitable for slices.SortFunc.
func Compare(a, b UID) int {
	switch {
	case a.manufacturer < b.manufacturer:
		return -1
	case a.manufacturer > b.manufacturer:
		return 1
	case a.device < b.device:
		return -1
	case a.device > b.device:
		return 1
	default:
		return 0
	}
}

// Next returns the UID following u. Stepping past a manufacturer's last device
// id moves to device 0 of the next manufacturer.
func (u UID) Next() (UID, error) {
	if u == allDevices {
		return UID{}, fmt.Errorf("%s cannot be incremented: %w", u, ErrOutOfRange)
	}

	if u.IsBroadcast() {
		return UID{manufacturer: u.manufacturer + 1}, nil
	}

	return UID{manufacturer: u.manufacturer, device: u.device + 1}, nil
}

// Previous returns the UID preceding u. Stepping below device 0 moves to the
// last device id of the previous manufacturer.
func (u UID) Previous() (UID, error) {
	if u.manufacturer == 0 && u.device == 0 {
		return UID{}, fmt.Errorf("%s cannot be decremented: %w", u, ErrOutOfRange)
	}

	if u.device == 0 {
		return UID{manufacturer: u.manufacturer - 1, device: MaxDeviceID}, nil
	}

	return UID{manufacturer: u.manufacturer, device: u.device - 1}, nil
}

// Parse reads a UID in MMMM:DDDDDDDD hex form. Field widths are not enforced.
//
// A wrong number of fields returns ErrFieldCount and an out of range field
// returns ErrOutOfBounds. A field that is not hexadecimal returns a
// *FormatError.
func Parse(s string) (UID, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return UID{}, fmt.Errorf("parsing %q: %w", s, ErrFieldCount)
	}

	manufacturerID, err := strconv.ParseInt(parts[0], 16, 64)
	if err != nil {
		return UID{}, &FormatError{Input: s, Field: parts[0], Err: err}
	}

	deviceID, err := strconv.ParseInt(parts[1], 16, 64)
	if err != nil {
		return UID{}, &FormatError{Input: s, Field: parts[1], Err: err}
	}

	if !manufacturerInBounds(manufacturerID) {
		return UID{}, fmt.Errorf("parsing %q: manufacturer %d: %w", s, manufacturerID, ErrOutOfBounds)
	}

	if !deviceInBounds(deviceID) {
		return UID{}, fmt.Errorf("parsing %q: device %d: %w", s, deviceID, ErrOutOfBounds)
	}

	return UID{manufacturer: uint16(manufacturerID), device: uint32(deviceID)}, nil
}

func manufacturerInBounds(n int64) bool {
	return n >= 0 && n <= MaxManufacturerID
}

func deviceInBounds(n int64) bool {
	return n >= 0 && n <= MaxDeviceID
}
