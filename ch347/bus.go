package ch347

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/multierr"
)

// Bus implements dspspi.Conn on one chip select line of a Device.
//
// Each Tx asserts chip select, writes and releases chip select while holding
// the bus, so concurrent callers never interleave inside a frame.
type Bus struct {
	mu  sync.Mutex
	dev *Device
	cs  int
}

// NewBus returns a Bus using chip select cs (0 or 1).
func NewBus(dev *Device, cs int) (*Bus, error) {
	if cs != 0 && cs != 1 {
		return nil, fmt.Errorf("ch347 has no chip select %d", cs)
	}
	return &Bus{dev: dev, cs: cs}, nil
}

// Tx writes w. Reads are not supported by the bridge, r must be empty.
func (b *Bus) Tx(w, r []byte) error {
	if len(r) != 0 {
		return fmt.Errorf("ch347 spi read: %w", errors.ErrUnsupported)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.dev.setCS(b.cs, true); err != nil {
		return err
	}
	err := b.dev.SPI(w, nil)
	return multierr.Combine(err, b.dev.setCS(b.cs, false))
}

func (b *Bus) String() string {
	return "ch347"
}
