package render

import (
	"html"
	"io"
	"strconv"

	"github.com/tidwall/gjson"
)

// Writer collects the output of one invocation. The first write error is
// kept and every later write is dropped.
type Writer struct {
	out   io.Writer
	n     int
	frags int
	err   error
	buf   []byte
}

// NewWriter wraps out
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

func (w *Writer) write(p []byte) {
	if w.err != nil || len(p) == 0 {
		return
	}
	n, err := w.out.Write(p)
	w.n += n
	w.frags++
	w.err = err
}

// String writes s verbatim
func (w *Writer) String(s string) {
	if w.err != nil || s == "" {
		return
	}
	w.buf = append(w.buf[:0], s...)
	w.write(w.buf)
}

// Bytes writes p verbatim
func (w *Writer) Bytes(p []byte) {
	w.write(p)
}

// Int writes v in decimal
func (w *Writer) Int(v int) {
	w.buf = strconv.AppendInt(w.buf[:0], int64(v), 10)
	w.write(w.buf)
}

// JSON writes s as a quoted JSON string
func (w *Writer) JSON(s string) {
	w.buf = gjson.AppendJSONString(w.buf[:0], s)
	w.write(w.buf)
}

// HTML writes s with markup characters escaped
func (w *Writer) HTML(s string) {
	w.String(html.EscapeString(s))
}

// Written returns the bytes written so far
func (w *Writer) Written() int {
	return w.n
}

// Fragments returns the number of writes issued to the sink
func (w *Writer) Fragments() int {
	return w.frags
}

// Err returns the first write error
func (w *Writer) Err() error {
	return w.err
}
