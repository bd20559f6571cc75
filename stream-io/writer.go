package streamio

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/spf13/afero"
)

// MemoryOutput collects written bytes in memory.
type MemoryOutput struct {
	buf    bytes.Buffer
	closed bool
}

var _ ByteOutput = (*MemoryOutput)(nil)

func NewMemoryOutput() *MemoryOutput {
	return &MemoryOutput{}
}

func (out *MemoryOutput) WriteOne(b byte) error {
	if out.closed {
		return ErrClosed
	}
	return out.buf.WriteByte(b)
}

func (out *MemoryOutput) WriteChunk(p []byte) error {
	if out.closed {
		return ErrClosed
	}
	_, err := out.buf.Write(p)
	return err
}

// Bytes returns a copy of everything written so far. It stays usable after Close.
func (out *MemoryOutput) Bytes() []byte {
	return append([]byte(nil), out.buf.Bytes()...)
}

func (out *MemoryOutput) String() string {
	return out.buf.String()
}

func (out *MemoryOutput) Close() error {
	if out.closed {
		return ErrClosed
	}
	out.closed = true
	return nil
}

// WriterOutput adapts an io.Writer to ByteOutput.
// Close closes the writer too when it is an io.Closer.
type WriterOutput struct {
	w      io.Writer
	one    [1]byte
	closed bool
}

var _ ByteOutput = (*WriterOutput)(nil)

func NewWriterOutput(w io.Writer) *WriterOutput {
	return &WriterOutput{w: w}
}

func (out *WriterOutput) WriteOne(b byte) error {
	out.one[0] = b
	return out.WriteChunk(out.one[:])
}

func (out *WriterOutput) WriteChunk(p []byte) error {
	if out.closed {
		return ErrClosed
	}
	_, err := out.w.Write(p)
	return err
}

func (out *WriterOutput) Close() error {
	if out.closed {
		return ErrClosed
	}
	out.closed = true
	if c, ok := out.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// FileOutput is a ByteOutput writing to a file.
type FileOutput struct {
	*WriterOutput
	f afero.File
}

func NewFileOutput(f afero.File) *FileOutput {
	return &FileOutput{
		WriterOutput: NewWriterOutput(f),
		f:            f,
	}
}

func (out *FileOutput) Name() string {
	return out.f.Name()
}

// Sync commits the written content to stable storage.
func (out *FileOutput) Sync() error {
	if out.closed {
		return ErrClosed
	}
	return out.f.Sync()
}

// Encoder turns a ByteOutput into a CharOutput by encoding UTF-8.
type Encoder struct {
	out    ByteOutput
	buf    []byte
	closed bool
}

var _ CharOutput = (*Encoder)(nil)

func NewEncoder(out ByteOutput) *Encoder {
	return &Encoder{out: out}
}

func (e *Encoder) WriteOne(r rune) error {
	if e.closed {
		return ErrClosed
	}
	e.buf = utf8.AppendRune(e.buf[:0], r)
	return e.out.WriteChunk(e.buf)
}

func (e *Encoder) WriteChunk(p []rune) error {
	if e.closed {
		return ErrClosed
	}
	e.buf = e.buf[:0]
	for _, r := range p {
		e.buf = utf8.AppendRune(e.buf, r)
	}
	return e.out.WriteChunk(e.buf)
}

func (e *Encoder) WriteString(s string) error {
	if e.closed {
		return ErrClosed
	}
	return e.out.WriteChunk([]byte(s))
}

// Close closes the underlying ByteOutput.
func (e *Encoder) Close() error {
	if e.closed {
		return ErrClosed
	}
	e.closed = true
	return e.out.Close()
}

// LineSink prints one unit per line: bytes as decimal values,
// characters as themselves and text lines verbatim.
// Its methods fit the callbacks taken by the drain loops.
type LineSink struct {
	w io.Writer
}

func NewLineSink(w io.Writer) *LineSink {
	return &LineSink{w: w}
}

func (s *LineSink) Byte(b byte) error {
	_, err := fmt.Fprintln(s.w, b)
	return err
}

func (s *LineSink) Rune(r rune) error {
	_, err := fmt.Fprintln(s.w, string(r))
	return err
}

func (s *LineSink) Line(line string) error {
	_, err := fmt.Fprintln(s.w, line)
	return err
}
