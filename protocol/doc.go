package protocol

// This package implements serialising and parsing the messages exchanged with
// the OLA daemon over its RPC stream.
//
// - `Method` - A remote procedure exposed by the daemon (or, for pushed DMX,
//              by the client).
// - `Request` - A call from one side to a method on the other side.
// - `Response` - The reply to a request, paired with it by request ID.
// - `Stream request` - A request that expects no response.
//
// === Framing
//
// Every message travels in a frame. The frame starts with a 4 byte little
// endian header:
//
//   ```
//   <version:4 bits><size:28 bits>
//   ```
//
// The version is always 1. The size is the number of bytes that follow, which
// hold a single encoded `RpcMessage`.
//
// === RpcMessage
//
// `RpcMessage` is a protobuf message
//
//   ```
//   1: type    (enum, required)
//   2: id      (uint32)
//   3: name    (string, method name, requests only)
//   4: buffer  (bytes, the encoded request or reply)
//   ```
//
// Types are REQUEST, RESPONSE, RESPONSE_CANCEL, RESPONSE_FAILED,
// RESPONSE_NOT_IMPLEMENTED, DISCONNECT and STREAM_REQUEST. For
// RESPONSE_FAILED the buffer is a human readable error string.
//
// Both sides may issue requests at any time, so responses can interleave with
// requests travelling in the other direction. A single frame is always
// written atomically.
//
// === Pushed DMX
//
// After a client registers for a universe with `RegisterForDmx`, the daemon
// calls `UpdateDmxData` on the client with a `DmxData` message whenever the
// universe changes. The client acknowledges with an empty `Ack`.
//
// === Message encoding
//
// Requests and replies use the protobuf binary encoding with the field
// numbers of the daemon's schema. Decoders ignore unknown fields and reject a
// known field that arrives with the wrong wire type, which is how a reply of
// the wrong type is detected.
//
