// Package link implements the Amulet UART link: a symmetric,
// CRC-protected, request/response protocol between a host processor and
// an Amulet display module.
//
// Both nodes own a mirror of typed variable tables (bytes, words,
// colors and strings) and can act as master and slave at the same time.
// A frame starting with the peer's address is a reply to a request this
// node sent; a frame starting with the host address is a command the
// peer initiated and this node must answer.
//
// The Engine is single threaded. Blocking operations busy-poll the
// receive side until a reply arrives or the retries are exhausted, so
// all calls on one Engine must come from the same goroutine. See package
// node for running an Engine inside a framework.Loop.
package link
