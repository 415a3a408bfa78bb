// Package dspspi provides register level read and write access to a DSP chip
// (SigmaDSP family) over an SPI bus.
//
// Every request is a frame of a 3 byte header (opcode, address high byte,
// address low byte) followed by the payload. Writes longer than the bus
// transfer limit are split into several frames, each addressed 1000 cells
// after the previous one.
//
// The bus itself is provided by the caller. Any periph.io SPI connection
// can be used directly, see the spidev and ch347 packages for ready to use
// backends.
package dspspi

// Conn is a full-duplex SPI connection.
//
// Tx must send w and, when r is not nil, fill r with the bytes clocked in
// during the same transfer. len(r) is either 0 or len(w).
//
// The Transactor does no locking of its own, so Tx must be safe to call from
// multiple goroutines and each call must be one uninterrupted transfer.
type Conn interface {
	Tx(w, r []byte) error
}

const (
	opWrite byte = 0x00
	opRead  byte = 0x01
)

const (
	// HeaderSize is the length of opcode + address bytes at the start of every frame.
	HeaderSize = 3

	// MaxTransferSize bounds the length of a single frame.
	// It matches the default bufsiz of the Linux spidev driver.
	MaxTransferSize = 4096

	// ChunkFrameSize is the length of every frame except the last one of a split write.
	// 4003 = 4096 - 93, which is HeaderSize + ChunkCells*CellSize.
	ChunkFrameSize = 4003

	// CellSize is the number of bytes in one addressable memory cell.
	CellSize = 4

	// ChunkCells is how far the address moves between two frames of a split write.
	// 1000 cells * 4 bytes = 4000 payload bytes.
	ChunkCells = 1000
)
