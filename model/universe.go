package model

import (
	"errors"
	"fmt"
)

var ErrInvalidMergeMode = errors.New("invalid merge mode")

// MergeMode controls how a universe combines DMX from several sources.
type MergeMode int

const (
	// MergeModeUnspecified is only accepted by NewUniverse, which replaces it
	// with HTP.
	MergeModeUnspecified MergeMode = iota

	// HTP is highest takes precedence
	HTP

	// LTP is latest takes precedence
	LTP
)

func (m MergeMode) String() string {
	switch m {
	case HTP:
		return "HTP"
	case LTP:
		return "LTP"
	default:
		return fmt.Sprintf("MergeMode(%d)", int(m))
	}
}

func (m MergeMode) Valid() bool {
	return m == HTP || m == LTP
}

// ParseMergeMode accepts "HTP" or "LTP".
func ParseMergeMode(s string) (MergeMode, error) {
	switch s {
	case "HTP", "htp":
		return HTP, nil
	case "LTP", "ltp":
		return LTP, nil
	default:
		return MergeModeUnspecified, fmt.Errorf("%q: %w", s, ErrInvalidMergeMode)
	}
}

// Universe is a DMX universe. Its merge mode is always HTP or LTP.
type Universe struct {
	id        int
	name      string
	mergeMode MergeMode
}

// NewUniverse builds a Universe. An unspecified merge mode defaults to HTP,
// anything else that is not HTP or LTP is rejected.
func NewUniverse(id int, name string, mode MergeMode) (Universe, error) {
	if mode == MergeModeUnspecified {
		mode = HTP
	}

	if !mode.Valid() {
		return Universe{}, fmt.Errorf("universe %d: %w: %d", id, ErrInvalidMergeMode, int(mode))
	}

	return Universe{id: id, name: name, mergeMode: mode}, nil
}

func (u Universe) ID() int {
	return u.id
}

func (u Universe) Name() string {
	return u.name
}

func (u Universe) MergeMode() MergeMode {
	return u.mergeMode
}
