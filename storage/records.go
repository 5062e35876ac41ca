package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

type PluginRecord struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
	Enabled     bool   `json:"enabled"`
}

type PortRecord struct {
	ID          int    `json:"id"`
	Universe    int    `json:"universe"`
	Active      bool   `json:"active"`
	SupportsRDM bool   `json:"supportsRdm"`
	Description string `json:"description"`
}

type DeviceRecord struct {
	ID          string       `json:"id"`
	Alias       int          `json:"alias"`
	Name        string       `json:"name"`
	PluginID    int          `json:"pluginId"`
	InputPorts  []PortRecord `json:"inputPorts"`
	OutputPorts []PortRecord `json:"outputPorts"`
}

type UniverseRecord struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	MergeMode string `json:"mergeMode"`
	Dmx       []int  `json:"dmx"`

	// UIDs are the RDM responders on the universe in MMMM:DDDDDDDD form
	UIDs []string `json:"uids"`
}

func ParsePlugin(r gjson.Result) PluginRecord {
	return PluginRecord{
		ID:          int(r.Get("id").Int()),
		Name:        r.Get("name").String(),
		Description: r.Get("description").String(),
		Active:      r.Get("active").Bool(),
		Enabled:     r.Get("enabled").Bool(),
	}
}

func ParsePort(r gjson.Result) PortRecord {
	return PortRecord{
		ID:          int(r.Get("id").Int()),
		Universe:    int(r.Get("universe").Int()),
		Active:      r.Get("active").Bool(),
		SupportsRDM: r.Get("supportsRdm").Bool(),
		Description: r.Get("description").String(),
	}
}

func ParseDevice(r gjson.Result) DeviceRecord {
	return DeviceRecord{
		ID:          r.Get("id").String(),
		Alias:       int(r.Get("alias").Int()),
		Name:        r.Get("name").String(),
		PluginID:    int(r.Get("pluginId").Int()),
		InputPorts:  parsePorts(r.Get("inputPorts")),
		OutputPorts: parsePorts(r.Get("outputPorts")),
	}
}

func parsePorts(r gjson.Result) []PortRecord {
	ports := []PortRecord{}
	for _, p := range r.Array() {
		ports = append(ports, ParsePort(p))
	}

	return ports
}

func ParseUniverse(r gjson.Result) UniverseRecord {
	u := UniverseRecord{
		ID:        int(r.Get("id").Int()),
		Name:      r.Get("name").String(),
		MergeMode: r.Get("mergeMode").String(),
		Dmx:       ParseLevels(r.Get("dmx")),
	}

	for _, uid := range r.Get("uids").Array() {
		u.UIDs = append(u.UIDs, uid.String())
	}

	return u
}

// ParseLevels reads an array of channel levels.
func ParseLevels(r gjson.Result) []int {
	levels := []int{}
	for _, v := range r.Array() {
		levels = append(levels, int(v.Int()))
	}

	return levels
}

// Lookup reads the value stored at key. found is false when nothing is
// stored there.
func Lookup(ctx context.Context, store Store, key string) (result gjson.Result, found bool, err error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return gjson.Result{}, false, nil
	}

	if err != nil {
		return gjson.Result{}, false, err
	}

	return gjson.ParseBytes(raw), true, nil
}

// Seed writes a small demo setup: one plugin with one device, and a universe
// with two RDM responders patched to the device's output.
func Seed(ctx context.Context, store Store) error {
	plugin := PluginRecord{
		ID:          1,
		Name:        "Dummy",
		Description: "The dummy plugin exposes a device with one output port.",
		Active:      true,
		Enabled:     true,
	}

	device := DeviceRecord{
		ID:         "1-1",
		Alias:      1,
		Name:       "Dummy Device",
		PluginID:   plugin.ID,
		InputPorts: []PortRecord{},
		OutputPorts: []PortRecord{{
			ID:          0,
			Universe:    1,
			Active:      true,
			SupportsRDM: true,
			Description: "Dummy Port",
		}},
	}

	universe := UniverseRecord{
		ID:        1,
		Name:      "Dummy Universe",
		MergeMode: "HTP",
		Dmx:       []int{},
		UIDs:      []string{"7A70:00000001", "7A70:00000002"},
	}

	for key, value := range map[string]interface{}{
		PluginKey(plugin.ID):     plugin,
		DeviceKey(device.Alias):  device,
		UniverseKey(universe.ID): universe,
	} {
		if err := store.Set(ctx, key, value); err != nil {
			return fmt.Errorf("seeding %s: %w", key, err)
		}
	}

	return nil
}
