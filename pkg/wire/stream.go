// ABOUTME: Streaming frame reader and writer over byte pipes
// ABOUTME: Distinguishes a clean end of stream from a frame cut short

package wire

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Reader reads frames from a stream.
type Reader struct {
	r *bufio.Reader
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Read returns the next frame. It returns io.EOF when the stream ends
// between frames and ErrTruncated when it ends inside one.
func (r *Reader) Read() (Frame, error) {
	var lenBuf [lengthSize]byte
	n, err := io.ReadFull(r.r, lenBuf[:])
	if err != nil {
		if errors.Is(err, io.EOF) && n == 0 {
			return Frame{}, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Frame{}, ErrTruncated
		}
		return Frame{}, err
	}
	body := binary.BigEndian.Uint32(lenBuf[:])
	if body > MaxFrameSize {
		return Frame{}, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, body)
	}
	buf := make([]byte, body)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Frame{}, ErrTruncated
		}
		return Frame{}, err
	}
	return parseBody(buf)
}

// Writer writes frames to a stream. Each frame is written with a single
// Write call; callers serialize concurrent use.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write encodes and writes f, flushing w if it buffers.
func (w *Writer) Write(f Frame) error {
	buf, err := Marshal(f)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(buf); err != nil {
		return err
	}
	if fl, ok := w.w.(interface{ Flush() error }); ok {
		return fl.Flush()
	}
	return nil
}
