package device

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/sstallion/go-hid"
	"go.uber.org/multierr"

	"github.com/serfreeman1337/go-dspspi"
	"github.com/serfreeman1337/go-dspspi/ch347"
	"github.com/serfreeman1337/go-dspspi/config"
)

// ID 1a86:55dc QinHeng Electronics
const (
	ch347VID = 0x1a86
	ch347PID = 0x55dc

	// InterfaceNbr 0 is UART, 1 is SPI+I2C+GPIO.
	ch347IO = 1
)

// hidWithTimeout bounds reads and retries the ones cut short by a signal.
type hidWithTimeout struct {
	*hid.Device
}

func (d *hidWithTimeout) Read(p []byte) (n int, err error) {
	for {
		n, err = d.Device.ReadWithTimeout(p, 1*time.Second)
		if err == nil || err.Error() != "Interrupted system call" {
			return
		}
	}
}

// ch347Path returns the hidraw path of the first CH347 SPI interface.
//
// Don't forget to allow access to hidraw, numbers can be checked with dmesg.
func ch347Path() (string, error) {
	var path string
	err := hid.Enumerate(ch347VID, ch347PID, func(info *hid.DeviceInfo) error {
		if path == "" && info.InterfaceNbr == ch347IO {
			path = info.Path
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", errors.New("no CH347 found")
	}
	return path, nil
}

func openCH347(cfg config.Config) (dspspi.Conn, io.Closer, error) {
	if err := hid.Init(); err != nil {
		return nil, nil, err
	}

	path := cfg.CH347.Path
	if path == "" {
		var err error
		if path, err = ch347Path(); err != nil {
			return nil, nil, err
		}
	}

	dev, err := hid.OpenPath(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "can't open %s", path)
	}

	c := &ch347.Device{Dev: &hidWithTimeout{dev}}
	err = c.SetSPI(ch347.SPIMode(cfg.Mode), ch347.SPIClock(cfg.CH347.Clock), ch347.SPIByteOrderMSB)
	if err != nil {
		return nil, nil, multierr.Combine(errors.Wrap(err, "can't configure spi"), dev.Close())
	}

	bus, err := ch347.NewBus(c, cfg.CH347.ChipSelect)
	if err != nil {
		return nil, nil, multierr.Combine(err, dev.Close())
	}
	return bus, dev, nil
}
