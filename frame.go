package dspspi

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

func header(op byte, addr uint16) []byte {
	return []byte{op, byte((addr >> 8) & 0xff), byte(addr & 0xff)}
}

// frameAddr returns the address encoded in the header of f.
func frameAddr(f []byte) uint16 {
	return uint16(f[1])<<8 | uint16(f[2])
}

// ReadFrame returns the request frame reading length bytes at addr.
func ReadFrame(addr uint16, length int) []byte {
	p := make([]byte, HeaderSize+length)
	copy(p, header(opRead, addr))
	return p
}

// WriteFrame returns the single request frame writing data at addr.
func WriteFrame(addr uint16, data []byte) []byte {
	p := make([]byte, 0, HeaderSize+len(data))
	p = append(p, header(opWrite, addr)...)
	return append(p, data...)
}

// SplitWrite returns the frames Write sends for data at addr, in order.
//
// A frame shorter than MaxTransferSize is sent as is. Otherwise its first
// ChunkFrameSize bytes go out as one frame and the rest is re-framed
// ChunkCells cells further on, until what is left fits.
func SplitWrite(addr uint16, data []byte) ([][]byte, error) {
	p := WriteFrame(addr, data)
	if len(p) < MaxTransferSize {
		return [][]byte{p}, nil
	}

	a := int(addr)
	var frames [][]byte

	for len(p) >= MaxTransferSize {
		frames = append(frames, p[:ChunkFrameSize])

		// Skip forward 1000 cells, each cell is 4 bytes long.
		a += ChunkCells
		if a > 0xffff {
			return nil, errors.Wrapf(ErrInvalidAddress,
				"write of %d bytes at 0x%04X runs past 0xFFFF", len(data), addr)
		}

		next := make([]byte, 0, HeaderSize+len(p)-ChunkFrameSize)
		next = append(next, header(opWrite, uint16(a))...)
		p = append(next, p[ChunkFrameSize:]...)
	}

	return append(frames, p), nil
}

// ParseAddr parses a register address, either decimal or hex with a 0x prefix
// as shown by SigmaStudio (e.g. 0x001B).
func ParseAddr(s string) (uint16, error) {
	s = strings.TrimSpace(s)

	base := 10
	if h := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"); h != s {
		s, base = h, 16
	}

	v, err := strconv.ParseUint(s, base, 16)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidAddress, "%q", s)
	}
	return uint16(v), nil
}
