package serializer

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	cnserrors "github.com/NVIDIA/xm-capture/pkg/errors"
)

// ArrayState is the framing state of an ArrayWriter.
type ArrayState int

const (
	// ArrayNotStarted means nothing has been written yet.
	ArrayNotStarted ArrayState = iota
	// ArrayOpen means "[" has been written and elements may follow.
	ArrayOpen
	// ArrayClosed means "]" has been written; further writes fail.
	ArrayClosed
)

func (s ArrayState) String() string {
	switch s {
	case ArrayNotStarted:
		return "not-started"
	case ArrayOpen:
		return "open"
	case ArrayClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ArrayWriter streams a JSON array one element at a time, so a capture never
// holds a whole collection in memory. The output is a valid JSON document as
// soon as the writer is closed, whatever happened in between:
//
//	w, err := serializer.NewArrayFileWriter("sites.json")
//	if err != nil { return err }
//	defer w.Close()
//	if err := w.Begin(); err != nil { return err }
//	for _, site := range sites {
//	    if err := w.Write(site); err != nil { return err }
//	}
//	return w.End()
//
// An ArrayWriter is not safe for concurrent use; it belongs to the routine
// that created it.
type ArrayWriter struct {
	path   string
	buf    *bufio.Writer
	closer io.Closer
	state  ArrayState
	count  int
}

// NewArrayWriter wraps w. The caller keeps ownership of w.
func NewArrayWriter(w io.Writer) *ArrayWriter {
	return &ArrayWriter{buf: bufio.NewWriter(w)}
}

// NewArrayFileWriter creates (or truncates) path. Failures are IO_FAILURE errors.
func NewArrayFileWriter(path string) (*ArrayWriter, error) {
	trimmed := strings.TrimSpace(path)
	file, err := os.Create(trimmed)
	if err != nil {
		return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeIOFailure,
			"failed to create output file", err, map[string]any{"path": trimmed})
	}
	return &ArrayWriter{
		path:   trimmed,
		buf:    bufio.NewWriter(file),
		closer: file,
	}, nil
}

// Begin writes the opening bracket.
func (w *ArrayWriter) Begin() error {
	if w.state != ArrayNotStarted {
		return w.stateError("begin")
	}
	if _, err := w.buf.WriteString("[\n"); err != nil {
		return w.ioError("failed to write array start", err)
	}
	w.state = ArrayOpen
	return nil
}

// Write appends one element. The element is encoded before anything is
// written, so an encoding failure leaves the framing intact.
func (w *ArrayWriter) Write(v any) error {
	if w.state != ArrayOpen {
		return w.stateError("write")
	}

	data, err := encode(v)
	if err != nil {
		return cnserrors.WrapWithContext(cnserrors.ErrCodeInternal,
			"failed to encode array element", err, map[string]any{"path": w.path})
	}

	if w.count > 0 {
		if _, err := w.buf.WriteString(",\n"); err != nil {
			return w.ioError("failed to write separator", err)
		}
	}
	if _, err := w.buf.Write(data); err != nil {
		return w.ioError("failed to write array element", err)
	}
	w.count++
	return nil
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// End writes the closing bracket and flushes buffered output.
func (w *ArrayWriter) End() error {
	if w.state != ArrayOpen {
		return w.stateError("end")
	}
	w.state = ArrayClosed
	if _, err := w.buf.WriteString("\n]\n"); err != nil {
		return w.ioError("failed to write array end", err)
	}
	if err := w.buf.Flush(); err != nil {
		return w.ioError("failed to flush output", err)
	}
	return nil
}

// Close ends the array if it is still open, flushes, and releases the file.
// A writer that was never begun is left as an empty array. Close is
// idempotent.
func (w *ArrayWriter) Close() error {
	var first error
	switch w.state {
	case ArrayNotStarted:
		if err := w.Begin(); err != nil {
			first = err
		}
		if err := w.End(); err != nil && first == nil {
			first = err
		}
	case ArrayOpen:
		first = w.End()
	case ArrayClosed:
	}

	if w.closer != nil {
		if err := w.closer.Close(); err != nil && first == nil {
			first = w.ioError("failed to close output file", err)
		}
		w.closer = nil
	}
	return first
}

// Count returns the number of elements written.
func (w *ArrayWriter) Count() int {
	return w.count
}

// State returns the current framing state.
func (w *ArrayWriter) State() ArrayState {
	return w.state
}

// Path returns the output path, empty for writers built with NewArrayWriter.
func (w *ArrayWriter) Path() string {
	return w.path
}

func (w *ArrayWriter) stateError(op string) error {
	return cnserrors.NewWithContext(cnserrors.ErrCodeInternal,
		fmt.Sprintf("cannot %s array in state %s", op, w.state),
		map[string]any{"path": w.path})
}

func (w *ArrayWriter) ioError(msg string, err error) error {
	return cnserrors.WrapWithContext(cnserrors.ErrCodeIOFailure, msg, err,
		map[string]any{"path": w.path})
}
