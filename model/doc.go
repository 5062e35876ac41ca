// Package model holds the immutable values the client builds from daemon
// replies: plugins, devices and their ports, and universes.
package model
