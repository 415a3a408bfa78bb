package dspspi

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"go.viam.com/test"
)

func payload(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i*7 + i/251)
	}
	return p
}

func TestReadFrame(t *testing.T) {
	for _, tc := range []struct {
		addr     uint16
		length   int
		expected []byte
	}{
		{0x0000, 0, []byte{1, 0x00, 0x00}},
		{0x001b, 4, []byte{1, 0x00, 0x1b, 0, 0, 0, 0}},
		{0xf0a5, 2, []byte{1, 0xf0, 0xa5, 0, 0}},
		{0xffff, 1, []byte{1, 0xff, 0xff, 0}},
	} {
		t.Run(fmt.Sprintf("0x%04x/%d", tc.addr, tc.length), func(t *testing.T) {
			test.That(t, ReadFrame(tc.addr, tc.length), test.ShouldResemble, tc.expected)
		})
	}
}

func TestWriteFrame(t *testing.T) {
	data := []byte{0x00, 0x00, 0x20, 0x8a}

	test.That(t, WriteFrame(0x001b, data), test.ShouldResemble, []byte{0, 0x00, 0x1b, 0x00, 0x00, 0x20, 0x8a})
	test.That(t, WriteFrame(0xabcd, nil), test.ShouldResemble, []byte{0, 0xab, 0xcd})

	// The frame must not alias the caller's data.
	f := WriteFrame(0, data)
	f[HeaderSize] = 0xff
	test.That(t, data[0], test.ShouldEqual, byte(0x00))
}

func TestSplitWriteBoundary(t *testing.T) {
	t.Run("frame just under the limit is sent whole", func(t *testing.T) {
		data := payload(MaxTransferSize - HeaderSize - 1)
		frames, err := SplitWrite(0x0100, data)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, frames, test.ShouldHaveLength, 1)
		test.That(t, len(frames[0]), test.ShouldEqual, MaxTransferSize-1)
		test.That(t, frames[0], test.ShouldResemble, WriteFrame(0x0100, data))
	})

	t.Run("frame at the limit is split", func(t *testing.T) {
		data := payload(MaxTransferSize - HeaderSize)
		frames, err := SplitWrite(0x0100, data)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, frames, test.ShouldHaveLength, 2)
		test.That(t, len(frames[0]), test.ShouldEqual, ChunkFrameSize)
		test.That(t, len(frames[1]), test.ShouldEqual, HeaderSize+MaxTransferSize-ChunkFrameSize)
	})
}

func TestSplitWriteCompleteness(t *testing.T) {
	for _, n := range []int{0, 1, 4000, 4092, 4093, 4094, 8000, 8093, 8185, 12000, 12345, 40000} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			data := payload(n)
			frames, err := SplitWrite(0x0010, data)
			test.That(t, err, test.ShouldBeNil)

			var got []byte
			for i, f := range frames {
				test.That(t, len(f), test.ShouldBeLessThan, MaxTransferSize)
				test.That(t, f[0], test.ShouldEqual, opWrite)
				test.That(t, frameAddr(f), test.ShouldEqual, uint16(0x0010+i*ChunkCells))
				got = append(got, f[HeaderSize:]...)
			}
			test.That(t, bytes.Equal(got, data), test.ShouldBeTrue)
		})
	}
}

func TestSplitWriteAddressProgression(t *testing.T) {
	const start = 0x0200

	frames, err := SplitWrite(start, payload(10000))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, frames, test.ShouldHaveLength, 3)

	test.That(t, frames[0][:HeaderSize], test.ShouldResemble, []byte{0, 0x02, 0x00})
	test.That(t, frameAddr(frames[1]), test.ShouldEqual, uint16(start+1000))
	test.That(t, frameAddr(frames[2]), test.ShouldEqual, uint16(start+2000))
	test.That(t, len(frames[2]), test.ShouldEqual, HeaderSize+2000)
}

func TestSplitWriteAddressOverflow(t *testing.T) {
	_, err := SplitWrite(0xff00, payload(5000))
	test.That(t, errors.Is(err, ErrInvalidAddress), test.ShouldBeTrue)

	// Last frame lands exactly on 0xFFFF.
	frames, err := SplitWrite(0xffff-ChunkCells, payload(5000))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, frameAddr(frames[1]), test.ShouldEqual, uint16(0xffff))
}

// The split point is counted in frame bytes (ChunkFrameSize includes the
// header) while the address moves in cells. Both ways of counting have to
// agree or the chip would receive overlapping or gapped writes.
func TestChunkArithmetic(t *testing.T) {
	test.That(t, ChunkFrameSize, test.ShouldEqual, MaxTransferSize-93)
	test.That(t, ChunkFrameSize-HeaderSize, test.ShouldEqual, ChunkCells*CellSize)
	test.That(t, ChunkFrameSize, test.ShouldBeLessThan, MaxTransferSize)
}

// cellSplit splits data on payload offsets and derives every address from
// the byte offset, the way a cell-exact implementation would.
func cellSplit(addr uint16, data []byte) [][]byte {
	if HeaderSize+len(data) < MaxTransferSize {
		return [][]byte{WriteFrame(addr, data)}
	}

	var frames [][]byte
	off := 0
	for HeaderSize+len(data)-off >= MaxTransferSize {
		frames = append(frames, WriteFrame(addr+uint16(off/CellSize), data[off:off+ChunkCells*CellSize]))
		off += ChunkCells * CellSize
	}
	return append(frames, WriteFrame(addr+uint16(off/CellSize), data[off:]))
}

// SplitWrite keeps the frame-offset arithmetic chip firmware has always seen.
// Pin that it matches a cell-exact split around every remainder that could
// expose a header accounting slip.
func TestSplitWriteMatchesCellSplit(t *testing.T) {
	for _, base := range []int{4000, 8000, 16000} {
		for _, delta := range []int{-4, -3, -1, 0, 1, 3, 4, 92, 93, 95, 96, 97} {
			n := base + delta
			t.Run(fmt.Sprint(n), func(t *testing.T) {
				data := payload(n)
				frames, err := SplitWrite(0x0040, data)
				test.That(t, err, test.ShouldBeNil)
				test.That(t, frames, test.ShouldResemble, cellSplit(0x0040, data))
			})
		}
	}
}

func TestParseAddr(t *testing.T) {
	for _, tc := range []struct {
		in       string
		expected uint16
		err      bool
	}{
		{"0x001B", 0x001b, false},
		{"0x001b", 0x001b, false},
		{"0XFFFF", 0xffff, false},
		{"27", 27, false},
		{" 65535 ", 65535, false},
		{"65536", 0, true},
		{"0x10000", 0, true},
		{"-1", 0, true},
		{"0x", 0, true},
		{"reg", 0, true},
	} {
		t.Run(tc.in, func(t *testing.T) {
			v, err := ParseAddr(tc.in)
			if tc.err {
				test.That(t, errors.Is(err, ErrInvalidAddress), test.ShouldBeTrue)
				return
			}
			test.That(t, err, test.ShouldBeNil)
			test.That(t, v, test.ShouldEqual, tc.expected)
		})
	}
}
