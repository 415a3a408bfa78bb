// Package spidev opens a Linux spidev device through periph.io for use with
// a dspspi.Transactor.
package spidev

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/serfreeman1337/go-dspspi"
)

const backend = "spidev"

// Options selects and configures the spidev device.
type Options struct {
	Bus    int // N in /dev/spidevN.M
	Device int // M in /dev/spidevN.M

	Speed       physic.Frequency
	Mode        spi.Mode
	BitsPerWord int
}

// DefaultOptions returns /dev/spidev0.0 at 1 MHz, mode 0, 8 bits per word.
func DefaultOptions() Options {
	return Options{
		Speed:       physic.MegaHertz,
		Mode:        spi.Mode0,
		BitsPerWord: 8,
	}
}

// Port is an open spidev port. It implements dspspi.Conn.
type Port struct {
	name string
	port spi.PortCloser
	conn spi.Conn
}

// Open initializes the host drivers and connects to SPI<Bus>.<Device>.
func Open(opts Options) (*Port, error) {
	if _, err := host.Init(); err != nil {
		return nil, &dspspi.InitError{Backend: backend, Err: err}
	}

	name := fmt.Sprintf("SPI%d.%d", opts.Bus, opts.Device)
	p, err := spireg.Open(name)
	if err != nil {
		return nil, &dspspi.InitError{Backend: backend, Err: errors.Wrapf(err, "can't open %s", name)}
	}

	return connect(name, p, opts)
}

// connect configures an opened port. The port is closed if that fails.
func connect(name string, p spi.PortCloser, opts Options) (*Port, error) {
	fail := func(err error) (*Port, error) {
		return nil, &dspspi.InitError{Backend: backend, Err: multierr.Combine(err, p.Close())}
	}

	if opts.Speed == 0 {
		opts.Speed = physic.MegaHertz
	}
	if opts.BitsPerWord == 0 {
		opts.BitsPerWord = 8
	}

	c, err := p.Connect(opts.Speed, opts.Mode, opts.BitsPerWord)
	if err != nil {
		return fail(errors.Wrapf(err, "can't configure %s", name))
	}

	// 0 means the driver did not report a limit.
	if l, ok := c.(conn.Limits); ok {
		if n := l.MaxTxSize(); n != 0 && n < dspspi.MaxTransferSize-1 {
			return fail(errors.Errorf("%s transfers are limited to %d bytes, need %d", name, n, dspspi.MaxTransferSize-1))
		}
	}

	return &Port{name: name, port: p, conn: c}, nil
}

// Tx performs one full-duplex transfer, r may be nil.
func (p *Port) Tx(w, r []byte) error {
	return p.conn.Tx(w, r)
}

func (p *Port) String() string {
	return p.name
}

// Close releases the spidev device.
func (p *Port) Close() error {
	return p.port.Close()
}
