// Package ch347 drives the SPI interface of the High-speed USB converter chip
// CH347 in HIDAPI mode (Mode 2) and exposes it as a dspspi.Conn.
//
// The packet layout was worked out by examining USB packets of the official
// demonstration library.
//
// [github.com/sstallion/go-hid] can be used as HIDAPI interface. Pass the
// second hidraw device of the chip (interface 1, SPI+I2C+GPIO).
package ch347

import (
	"io"
	"sync"
)

// HIDDev is an open hidraw device.
//
// It's advised to handle read timeouts and "Interrupted system call" errors
// in Read. Otherwise a transfer might fail with ErrInvalidResponse once an
// interrupt has occurred, or block indefinitely.
type HIDDev interface {
	io.ReadWriter
}

// Device is the SPI side of a CH347.
type Device struct {
	mu  sync.Mutex
	Dev HIDDev
}

// CH347 receives and sends 512 bytes long packets.
const maxPacketLen = 512
