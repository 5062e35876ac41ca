package model

import (
	"errors"
	"slices"
)

var (
	ErrMissingID    = errors.New("device id cannot be empty")
	ErrMissingPorts = errors.New("device port list cannot be nil")
)

// Device is a device known to the daemon. Devices are immutable; port lists
// are kept sorted by port id and are copied on the way in and out.
type Device struct {
	id          string
	alias       int
	name        string
	pluginID    int
	inputPorts  []Port
	outputPorts []Port
}

// NewDevice builds a Device. The port slices may be empty but not nil.
func NewDevice(id string, alias int, name string, pluginID int, inputPorts, outputPorts []Port) (*Device, error) {
	if id == "" {
		return nil, ErrMissingID
	}

	if inputPorts == nil || outputPorts == nil {
		return nil, ErrMissingPorts
	}

	d := &Device{
		id:          id,
		alias:       alias,
		name:        name,
		pluginID:    pluginID,
		inputPorts:  slices.Clone(inputPorts),
		outputPorts: slices.Clone(outputPorts),
	}

	slices.SortStableFunc(d.inputPorts, ComparePorts)
	slices.SortStableFunc(d.outputPorts, ComparePorts)

	return d, nil
}

func (d *Device) ID() string {
	return d.id
}

func (d *Device) Alias() int {
	return d.alias
}

func (d *Device) Name() string {
	return d.name
}

func (d *Device) PluginID() int {
	return d.pluginID
}

// InputPorts returns a copy of the input ports sorted by id.
func (d *Device) InputPorts() []Port {
	return append(make([]Port, 0, len(d.inputPorts)), d.inputPorts...)
}

// OutputPorts returns a copy of the output ports sorted by id.
func (d *Device) OutputPorts() []Port {
	return append(make([]Port, 0, len(d.outputPorts)), d.outputPorts...)
}
