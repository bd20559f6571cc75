package streamio

/* Reading Rules

type Reader interface {
    Read(p []byte) (n int, err error)
}

1. A Read() call will read up to len(p) into p, when possible.
2. After a Read() call, n may be less then len(p).
3. Upon error, a Read() call may still return n bytes in transfer buffer p.
   ReaderInput hands those n bytes out first and reports the error on the next call.
4. When a Read() call exhausts available data, a reader may return a non-zero n and err=io.EOF.
   However, depending on implementation, a reader may choose to return a non-zero n and err=nil at the end of stream.
   In that case, any subsequent read ops must return n=0, err=io.EOF.
   Either way ReaderInput turns io.EOF into the EOF sentinel exactly once the data runs out.
5. A Read() call that returns n=0 and err=nil does not mean EOF as the next call to Read() may return more data.

*/

import (
	"io"
	"unicode/utf8"

	"github.com/spf13/afero"
)

// MemoryInput is a ByteInput over a fixed byte sequence.
type MemoryInput struct {
	data   []byte
	pos    int
	closed bool
}

var _ ByteInput = (*MemoryInput)(nil)

// NewMemoryInput copies data, so later changes to the caller's slice are not observed.
func NewMemoryInput(data []byte) *MemoryInput {
	buf := make([]byte, len(data))
	copy(buf, data)
	return &MemoryInput{data: buf}
}

func (in *MemoryInput) ReadOne() (int, error) {
	if in.closed {
		return EOF, ErrClosed
	}
	if in.pos >= len(in.data) {
		return EOF, nil
	}
	b := in.data[in.pos]
	in.pos++
	return int(b), nil
}

func (in *MemoryInput) ReadChunk(p []byte) (int, error) {
	if in.closed {
		return EOF, ErrClosed
	}
	if in.pos >= len(in.data) {
		return EOF, nil
	}
	n := copy(p, in.data[in.pos:])
	in.pos += n
	return n, nil
}

// Remaining returns the number of bytes not read yet.
func (in *MemoryInput) Remaining() int {
	return len(in.data) - in.pos
}

func (in *MemoryInput) Close() error {
	if in.closed {
		return ErrClosed
	}
	in.closed = true
	return nil
}

// ReaderInput adapts an io.Reader to ByteInput.
// Close closes the reader too when it is an io.Closer.
type ReaderInput struct {
	r      io.Reader
	one    [1]byte
	err    error // sticky error of the last underlying Read
	closed bool
}

var _ ByteInput = (*ReaderInput)(nil)

func NewReaderInput(r io.Reader) *ReaderInput {
	return &ReaderInput{r: r}
}

func (in *ReaderInput) ReadOne() (int, error) {
	for i := 0; i < MaxConsecutiveEmptyReads; i++ {
		n, err := in.ReadChunk(in.one[:])
		switch {
		case err != nil:
			return n, err
		case n == EOF:
			return EOF, nil
		case n == 1:
			return int(in.one[0]), nil
		}
	}
	return 0, io.ErrNoProgress
}

func (in *ReaderInput) ReadChunk(p []byte) (int, error) {
	if in.closed {
		return EOF, ErrClosed
	}
	if in.err != nil {
		return in.result(in.err)
	}
	if len(p) == 0 {
		return 0, nil
	}
	n, err := in.r.Read(p)
	in.err = err
	if n > 0 {
		return n, nil
	}
	return in.result(err)
}

func (in *ReaderInput) result(err error) (int, error) {
	switch err {
	case nil:
		return 0, nil
	case io.EOF:
		return EOF, nil
	default:
		return 0, err
	}
}

func (in *ReaderInput) Close() error {
	if in.closed {
		return ErrClosed
	}
	in.closed = true
	if c, ok := in.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// FileInput is a ByteInput reading from a file.
type FileInput struct {
	*ReaderInput
	name string
}

func NewFileInput(f afero.File) *FileInput {
	return &FileInput{
		ReaderInput: NewReaderInput(f),
		name:        f.Name(),
	}
}

func (in *FileInput) Name() string {
	return in.name
}

// Decoder turns a ByteInput into a CharInput by decoding UTF-8.
// Invalid or truncated sequences decode to utf8.RuneError, one per bad byte.
type Decoder struct {
	in      ByteInput
	pending []byte
	err     error // deferred failure hit while filling a chunk
	eof     bool
	closed  bool
}

var _ CharInput = (*Decoder)(nil)

func NewDecoder(in ByteInput) *Decoder {
	return &Decoder{
		in:      in,
		pending: make([]byte, 0, utf8.UTFMax),
	}
}

func (d *Decoder) ReadOne() (int, error) {
	if d.closed {
		return EOF, ErrClosed
	}
	if d.err != nil {
		err := d.err
		d.err = nil
		return 0, err
	}
	for !d.eof && !utf8.FullRune(d.pending) {
		b, err := d.in.ReadOne()
		if err != nil {
			return 0, err
		}
		if b == EOF {
			d.eof = true
			break
		}
		d.pending = append(d.pending, byte(b))
	}
	if len(d.pending) == 0 {
		return EOF, nil
	}
	r, size := utf8.DecodeRune(d.pending)
	d.pending = append(d.pending[:0], d.pending[size:]...)
	return int(r), nil
}

func (d *Decoder) ReadChunk(p []rune) (int, error) {
	if d.closed {
		return EOF, ErrClosed
	}
	n := 0
	for n < len(p) {
		r, err := d.ReadOne()
		if err != nil {
			if n == 0 {
				return 0, err
			}
			d.err = err
			return n, nil
		}
		if r == EOF {
			if n == 0 {
				return EOF, nil
			}
			break
		}
		p[n] = rune(r)
		n++
	}
	return n, nil
}

// Close closes the underlying ByteInput.
func (d *Decoder) Close() error {
	if d.closed {
		return ErrClosed
	}
	d.closed = true
	return d.in.Close()
}

// StringInput is a CharInput over a string.
type StringInput struct {
	runes  []rune
	pos    int
	closed bool
}

var _ CharInput = (*StringInput)(nil)

func NewStringInput(s string) *StringInput {
	return &StringInput{runes: []rune(s)}
}

func (in *StringInput) ReadOne() (int, error) {
	if in.closed {
		return EOF, ErrClosed
	}
	if in.pos >= len(in.runes) {
		return EOF, nil
	}
	r := in.runes[in.pos]
	in.pos++
	return int(r), nil
}

func (in *StringInput) ReadChunk(p []rune) (int, error) {
	if in.closed {
		return EOF, ErrClosed
	}
	if in.pos >= len(in.runes) {
		return EOF, nil
	}
	n := copy(p, in.runes[in.pos:])
	in.pos += n
	return n, nil
}

func (in *StringInput) Close() error {
	if in.closed {
		return ErrClosed
	}
	in.closed = true
	return nil
}
