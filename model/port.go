package model

import "cmp"

// Port is one input or output port of a device.
type Port struct {
	ID          int
	Universe    int
	Active      bool
	SupportsRDM bool
	Description string
}

// ComparePorts orders ports by id.
func ComparePorts(a, b Port) int {
	return cmp.Compare(a.ID, b.ID)
}
