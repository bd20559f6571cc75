package streamio

import (
	"io"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Stats 记录一次排空循环的读取情况.
type Stats struct {
	Reads           int // every read call, the sentinel read included
	ProductiveReads int // reads that delivered at least one unit
	EmptyReads      int // non-terminal reads that delivered nothing
	SentinelReads   int // 1 when the loop ended on EOF
	Units           int // units handed to the callback
}

// DrainBytes reads in one byte at a time until EOF and passes each byte to fn.
// A failure of the read or of fn stops the loop at once and is returned.
func DrainBytes(in ByteInput, fn func(byte) error) (Stats, error) {
	return drainOne(in.ReadOne, 0xff, func(v int) error { return fn(byte(v)) })
}

// DrainByteChunks reads in up to len(buf) bytes at a time until EOF.
// Only the valid prefix buf[:n] of every read is passed to fn.
func DrainByteChunks(in ByteInput, buf []byte, fn func(byte) error) (Stats, error) {
	return drainChunks(in.ReadChunk, buf, fn)
}

// DrainChars reads in one character at a time until EOF and passes each character to fn.
func DrainChars(in CharInput, fn func(rune) error) (Stats, error) {
	return drainOne(in.ReadOne, utf8.MaxRune, func(v int) error { return fn(rune(v)) })
}

// DrainCharChunks reads in up to len(buf) characters at a time until EOF.
func DrainCharChunks(in CharInput, buf []rune, fn func(rune) error) (Stats, error) {
	return drainChunks(in.ReadChunk, buf, fn)
}

func drainOne(read func() (int, error), limit int, fn func(int) error) (Stats, error) {
	var st Stats
	for {
		v, err := read()
		st.Reads++
		if err != nil {
			return st, errors.Wrapf(err, "read #%d", st.Reads)
		}
		if v < 0 {
			st.SentinelReads++
			return st, nil
		}
		if v > limit {
			return st, errors.Wrapf(ErrBadUnit, "read #%d returned %d", st.Reads, v)
		}
		st.ProductiveReads++
		if err = fn(v); err != nil {
			return st, errors.Wrapf(err, "unit #%d", st.Units)
		}
		st.Units++
	}
}

func drainChunks[U byte | rune](read func([]U) (int, error), buf []U, fn func(U) error) (Stats, error) {
	var st Stats
	if len(buf) == 0 {
		return st, ErrEmptyBuffer
	}

	empty := 0
	for {
		n, err := read(buf)
		st.Reads++
		if err != nil {
			return st, errors.Wrapf(err, "read #%d", st.Reads)
		}
		if n < 0 {
			st.SentinelReads++
			return st, nil
		}
		if n > len(buf) {
			return st, errors.Wrapf(ErrBadCount, "read #%d returned %d for a buffer of %d", st.Reads, n, len(buf))
		}
		if n == 0 {
			st.EmptyReads++
			empty++
			if empty >= MaxConsecutiveEmptyReads {
				log.Warn().Msgf("no progress after %d empty reads, give up draining", empty)
				return st, errors.Wrapf(io.ErrNoProgress, "read #%d", st.Reads)
			}
			continue
		}
		empty = 0
		st.ProductiveReads++
		for i := 0; i < n; i++ {
			if err = fn(buf[i]); err != nil {
				return st, errors.Wrapf(err, "unit #%d", st.Units)
			}
			st.Units++
		}
	}
}
