package ch347

import (
	"errors"
)

var (
	ErrInvalidResponse = errors.New("invalid response")
)

type SPIMode uint8

const (
	SPIMode0 SPIMode = iota
	SPIMode1
	SPIMode2
	SPIMode3
)

type SPIClock uint8

const (
	SPIClock0 SPIClock = iota // 60 MHz
	SPIClock1                 // 30 MHz
	SPIClock2                 // 15 MHz
	SPIClock3                 // 7.5 MHz
	SPIClock4                 // 3.75 Mhz
	SPIClock5                 // 1.875 MHz
	SPIClock6                 // 937.5 KHz
	SPIClock7                 // 468.75 KHz
)

type SPIByteOrder uint8

const (
	SPIByteOrderMSB SPIByteOrder = iota
	SPIByteOrderLSB
)

const (
	cmdSPIConfig byte = 0xc0
	cmdSPICS     byte = 0xc1
	cmdSPIWrite  byte = 0xc4
)

const (
	maxDataLen = 509   // Packet bytes used for a write, length prefix included.
	maxOpLen   = 65535 // Max data length of single SPI Write (0xc4) operation.
)

// spiConfigPacket builds the SPI configuration packet.
func spiConfigPacket(mode SPIMode, clock SPIClock, byteOrder SPIByteOrder) []byte {
	p := make([]byte, 0, 31)

	// Length, CMD, bytes 1-8 - ??
	p = append(p, 0x1d, 0x00)
	p = append(p, cmdSPIConfig, 0x1a, 0x00, 0x00, 0x00, 0x04, 0x01, 0x00, 0x00)

	// CPOL, CPHA
	switch mode {
	case SPIMode0:
		p = append(p, 0x00, 0x00, 0x00, 0x00)
	case SPIMode1:
		p = append(p, 0x00, 0x00, 0x01, 0x00)
	case SPIMode2:
		p = append(p, 0x02, 0x00, 0x00, 0x00)
	case SPIMode3:
		p = append(p, 0x02, 0x00, 0x01, 0x00)
	}

	p = append(p, 0x00, 0x02)

	// Clock divider in bits 3-5: 0x00 is 60 MHz, 0x38 is 468.75 KHz.
	p = append(p, byte(clock<<3), 0x00)

	// Byte order: 0x80 LSB first, 0x00 MSB first.
	p = append(p, byte(byteOrder)<<7)

	// ??, read write interval, default MISO byte, CS polarity (0x80 CS0 active high, 0x40 CS1).
	p = append(p, 0x00, 0x07, 0x00)
	p = append(p, 0x00, 0x00)
	p = append(p, 0xff)
	p = append(p, 0x00)
	p = append(p, 0x00, 0x00, 0x00, 0x00)

	return p
}

// SetSPI configures the interface with a specified mode, clock, and byte order.
//   - SPIClock0 - 60 MHz.
//   - SPIClock1 - 30 MHz.
//   - SPIClock2 - 15 MHz.
//   - SPIClock3 - 7.5 MHz.
//   - SPIClock4 - 3.75 Mhz.
//   - SPIClock5 - 1.875 MHz.
//   - SPIClock6 - 937.5 KHz.
//   - SPIClock7 - 468.75 KHz.
func (c *Device) SetSPI(mode SPIMode, clock SPIClock, byteOrder SPIByteOrder) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.Dev.Write(spiConfigPacket(mode, clock, byteOrder)); err != nil {
		return err
	}

	// 0400 c0 01 00 00
	p := make([]byte, 6)
	if _, err := c.Dev.Read(p); err != nil {
		return err
	}
	if p[2] != cmdSPIConfig || p[3] != 0x01 {
		return ErrInvalidResponse
	}

	return nil
}

// spiWritePackets splits w into write packets.
//
// Every packet starts with its length (little endian, length bytes not
// counted). Data is sent in operations of at most maxOpLen bytes, the first
// packet of each carries cmdSPIWrite and the operation length.
func spiWritePackets(w []byte) [][]byte {
	var packets [][]byte

	for len(w) > 0 {
		n := min(len(w), maxOpLen)
		op := w[:n]
		w = w[n:]

		p := make([]byte, 0, maxPacketLen)
		p = append(p, 0x00, 0x00, cmdSPIWrite, byte(n&0xff), byte((n>>8)&0xff))

		for len(op) > 0 {
			d := min(len(op), maxDataLen-len(p))
			p = append(p, op[:d]...)
			op = op[d:]

			plen := len(p) - 2
			p[0] = byte(plen & 0xff)
			p[1] = byte((plen >> 8) & 0xff)
			packets = append(packets, p)

			p = make([]byte, 2, maxPacketLen)
		}
	}

	return packets
}

// SPI performs write and read operations.
//
// Only writes are supported, r must be empty.
func (c *Device) SPI(w, r []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(r) != 0 { // Sorry, I don't have any available devices to test reads.
		return errors.ErrUnsupported
	}

	resp := make([]byte, 5)

	for _, p := range spiWritePackets(w) {
		if _, err := c.Dev.Write(p); err != nil {
			return err
		}

		// Confirm write: 0300 c4 01 00
		if _, err := c.Dev.Read(resp); err != nil {
			return err
		}
		if resp[2] != cmdSPIWrite || resp[3] != 0x01 {
			return ErrInvalidResponse
		}
	}

	return nil
}

// SetCS asserts CS0 pin.
func (c *Device) SetCS(enable bool) error {
	return c.setCS(0, enable)
}

// SetCS1 asserts CS1 pin.
func (c *Device) SetCS1(enable bool) error {
	return c.setCS(1, enable)
}

func (c *Device) setCS(cs int, enable bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := []byte{
		0x0d, 0x00, cmdSPICS, 0x0a, 0x00,
		0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00,
		0x00, 0x00, 0x00, 0x00,
	}

	pos := 5 + 5*cs

	if enable {
		p[pos] = 0x80
	} else {
		p[pos] = 0xc0
	}

	_, err := c.Dev.Write(p)
	return err
}
