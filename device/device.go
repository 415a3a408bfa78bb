// Package device opens the configured SPI backend once at startup and wraps
// it in a dspspi.Transactor.
package device

import (
	"errors"
	"io"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/serfreeman1337/go-dspspi"
	"github.com/serfreeman1337/go-dspspi/config"
	"github.com/serfreeman1337/go-dspspi/spidev"
)

// Device is an open bus with its Transactor. Close it to release the bus.
type Device struct {
	*dspspi.Transactor
	closer io.Closer
}

type opener func(cfg config.Config) (dspspi.Conn, io.Closer, error)

var backends = map[string]opener{
	config.BackendSpidev: openSpidev,
	config.BackendCH347:  openCH347,
}

// Open opens the backend selected by cfg.
//
// Every failure is a *dspspi.InitError.
func Open(cfg config.Config, logger *zap.SugaredLogger) (*Device, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	if err := cfg.Validate(); err != nil {
		return nil, &dspspi.InitError{Backend: cfg.Backend, Err: err}
	}

	conn, closer, err := backends[cfg.Backend](cfg)
	if err != nil {
		var ierr *dspspi.InitError
		if errors.As(err, &ierr) {
			return nil, err
		}
		return nil, &dspspi.InitError{Backend: cfg.Backend, Err: err}
	}

	logger.Infow("spi initialized", "backend", cfg.Backend, "conn", conn)
	return &Device{Transactor: dspspi.New(conn, logger), closer: closer}, nil
}

// Close releases the bus.
func (d *Device) Close() error {
	return d.closer.Close()
}

func openSpidev(cfg config.Config) (dspspi.Conn, io.Closer, error) {
	p, err := spidev.Open(spidev.Options{
		Bus:         cfg.Bus,
		Device:      cfg.Device,
		Speed:       physic.Frequency(cfg.SpeedHz) * physic.Hertz,
		Mode:        spi.Mode(cfg.Mode),
		BitsPerWord: cfg.BitsPerWord,
	})
	if err != nil {
		return nil, nil, err
	}
	return p, p, nil
}
