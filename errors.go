package dspspi

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInvalidAddress = errors.New("invalid register address")
	ErrInvalidLength  = errors.New("invalid length")
)

// InitError indicates that the bus could not be opened or configured.
type InitError struct {
	Backend string
	Err     error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("spi init failed (%s): %v", e.Backend, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// TransferError indicates that a physical transfer failed.
//
// Chunk is the index of the failing frame within a split write, 0 otherwise.
// Frames sent before the failing one are not rolled back.
type TransferError struct {
	Op    string
	Addr  uint16
	Chunk int
	Err   error
}

func (e *TransferError) Error() string {
	if e.Chunk > 0 {
		return fmt.Sprintf("spi %s at 0x%04X (chunk %d) failed: %v", e.Op, e.Addr, e.Chunk, e.Err)
	}
	return fmt.Sprintf("spi %s at 0x%04X failed: %v", e.Op, e.Addr, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}
