package streamio

import (
	"github.com/pkg/errors"
)

// EOF is the sentinel returned by ReadOne and ReadChunk once the source is exhausted.
// It is returned together with a nil error.
const EOF = -1

// MaxConsecutiveEmptyReads bounds the number of zero-count reads in a row
// before a drain loop gives up with io.ErrNoProgress.
const MaxConsecutiveEmptyReads = 100

var (
	ErrClosed      = errors.New("stream has been closed")
	ErrEmptyBuffer = errors.New("chunk buffer has zero capacity")
	ErrBadCount    = errors.New("read returned an invalid count")
	ErrBadUnit     = errors.New("read returned a unit out of range")
)

// ByteInput reads binary data.
//
// ReadOne returns the next byte as a value in [0, 255], or EOF.
// ReadChunk reads up to len(p) bytes into p and returns how many were read, or EOF.
// A count of 0 with a nil error is not end of data.
type ByteInput interface {
	ReadOne() (int, error)
	ReadChunk(p []byte) (int, error)
	Close() error
}

// CharInput reads decoded text one character (rune) at a time or in chunks.
// It follows the same sentinel rules as ByteInput.
type CharInput interface {
	ReadOne() (int, error)
	ReadChunk(p []rune) (int, error)
	Close() error
}

// ByteOutput writes binary data.
type ByteOutput interface {
	WriteOne(b byte) error
	WriteChunk(p []byte) error
	Close() error
}

// CharOutput writes text.
type CharOutput interface {
	WriteOne(r rune) error
	WriteChunk(p []rune) error
	WriteString(s string) error
	Close() error
}
