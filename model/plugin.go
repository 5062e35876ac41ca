package model

import "fmt"

// Plugin is a plugin loaded by the daemon. Name may be empty.
type Plugin struct {
	ID   int
	Name string
}

func (p Plugin) String() string {
	return fmt.Sprintf("Plugin name: %s plugin ID %d", p.Name, p.ID)
}
