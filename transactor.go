package dspspi

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Transactor reads and writes DSP memory through a Conn.
//
// It keeps no state besides the connection and the logger, so one Transactor
// may be shared by any number of goroutines as long as Conn serializes Tx.
type Transactor struct {
	conn   Conn
	logger *zap.SugaredLogger
}

// New returns a Transactor using conn. A nil logger disables debug output.
func New(conn Conn, logger *zap.SugaredLogger) *Transactor {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Transactor{conn: conn, logger: logger}
}

// Read reads length bytes starting at addr.
//
// Reads are always a single transfer. Keep HeaderSize+length below
// MaxTransferSize, there is no splitting for reads.
func (t *Transactor) Read(addr uint16, length int, debug bool) ([]byte, error) {
	if length < 0 {
		return nil, errors.Wrapf(ErrInvalidLength, "read of %d bytes", length)
	}

	w := ReadFrame(addr, length)
	r := make([]byte, len(w))

	if err := t.conn.Tx(w, r); err != nil {
		return nil, &TransferError{Op: "read", Addr: addr, Err: err}
	}

	if debug {
		t.logger.Infow("spi read", "bytes", len(w), "addr", addr)
	}

	return r[HeaderSize:], nil
}

// Write writes data starting at addr and returns data on success.
//
// Data that does not fit into one transfer is sent as several frames, see
// SplitWrite. If a frame fails the remaining ones are not sent, the ones
// already sent stay written.
func (t *Transactor) Write(addr uint16, data []byte, debug bool) ([]byte, error) {
	frames, err := SplitWrite(addr, data)
	if err != nil {
		return nil, err
	}

	for i, f := range frames {
		if err := t.conn.Tx(f, nil); err != nil {
			return nil, &TransferError{Op: "write", Addr: frameAddr(f), Chunk: i, Err: err}
		}

		if debug {
			t.logger.Infow("spi write", "bytes", len(f)-HeaderSize, "addr", frameAddr(f))
		}
	}

	return data, nil
}
