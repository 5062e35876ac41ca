// Package ola is an asynchronous client for the OLA lighting daemon.
//
// Each operation sends one call and returns a *Call that resolves exactly
// once. An optional callback receives the same status and value when the
// daemon answers. Callbacks and push handlers run on the connection's read
// loop and must not block.
package ola
