package storage

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	PluginsKey   = "plugins"
	DevicesKey   = "devices"
	UniversesKey = "universes"
)

func PluginKey(id int) string {
	return fmt.Sprintf("%s.p%d", PluginsKey, id)
}

func DeviceKey(alias int) string {
	return fmt.Sprintf("%s.d%d", DevicesKey, alias)
}

func UniverseKey(id int) string {
	return fmt.Sprintf("%s.u%d", UniversesKey, id)
}

// DmxKey is where the current frame of a universe is stored, as an array of
// levels.
func DmxKey(universe int) string {
	return UniverseKey(universe) + ".dmx"
}

// ResponderKey is where an RDM responder on a universe keeps its parameter
// values. uid is the responder's UID with the colon removed.
func ResponderKey(universe int, uid string) string {
	return fmt.Sprintf("%s.rdm.%s", UniverseKey(universe), strings.ReplaceAll(uid, ":", ""))
}

// ParseDmxKey returns the universe whose frame is stored at key.
func ParseDmxKey(key string) (int, bool) {
	rest, ok := strings.CutPrefix(key, UniversesKey+".u")
	if !ok {
		return 0, false
	}

	id, ok := strings.CutSuffix(rest, ".dmx")
	if !ok {
		return 0, false
	}

	universe, err := strconv.Atoi(id)
	if err != nil {
		return 0, false
	}

	return universe, true
}
