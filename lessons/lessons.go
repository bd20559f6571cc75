/*
Package lessons walks through the stream APIs on a fixed input.

Streams are ordered sequences of data. They give a common I/O model over
whatever the source or destination is, and each one goes in one direction.
Byte streams carry binary data, character streams carry decoded text.

Every lesson prints one unit per line. A lesson never fails: a failure is
logged, "Exception" is printed, and the lesson moves on.
*/
package lessons

import (
	"io"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"

	"github.com/usherasnick/stream-io-lessons/files"
	"github.com/usherasnick/stream-io-lessons/fspath"
	"github.com/usherasnick/stream-io-lessons/scoped"
	streamio "github.com/usherasnick/stream-io-lessons/stream-io"
)

const failureMessage = "Exception"

var failure = color.New(color.FgRed)

func report(out io.Writer, lesson string, err error) {
	log.Error().Err(err).Str("lesson", lesson).Msg("lesson failed")
	failure.Fprintln(out, failureMessage) // nolint
}

func trace(lesson string, st streamio.Stats) {
	log.Debug().
		Str("lesson", lesson).
		Int("reads", st.Reads).
		Int("productive_reads", st.ProductiveReads).
		Int("units", st.Units).
		Msg("stream drained")
}

// ByteStreams 逐字节读取, 再按块读取, 打印每个字节的数值.
func ByteStreams(out io.Writer, cfg *Config) {
	cfg = cfg.complete()
	sink := streamio.NewLineSink(out)

	if err := byteUnits(streamio.NewMemoryInput([]byte(cfg.Input)), sink); err != nil {
		report(out, "byte-streams", err)
	}
	if err := byteChunks(streamio.NewMemoryInput([]byte(cfg.Input)), cfg.ChunkSize, sink); err != nil {
		report(out, "byte-streams", err)
	}
}

func byteUnits(in streamio.ByteInput, sink *streamio.LineSink) (err error) {
	defer func() {
		if cerr := in.Close(); err == nil {
			err = cerr
		}
	}()
	st, err := streamio.DrainBytes(in, sink.Byte)
	trace("byte-units", st)
	return err
}

func byteChunks(in streamio.ByteInput, size int, sink *streamio.LineSink) (err error) {
	defer func() {
		if cerr := in.Close(); err == nil {
			err = cerr
		}
	}()
	st, err := streamio.DrainByteChunks(in, make([]byte, size), sink.Byte)
	trace("byte-chunks", st)
	return err
}

// CharacterStreams 逐字符读取, 再按块读取, 打印每个字符.
func CharacterStreams(out io.Writer, cfg *Config) {
	cfg = cfg.complete()
	sink := streamio.NewLineSink(out)

	if err := charUnits(newDecoder(cfg), sink); err != nil {
		report(out, "character-streams", err)
	}
	if err := charChunks(newDecoder(cfg), cfg.ChunkSize, sink); err != nil {
		report(out, "character-streams", err)
	}
}

func newDecoder(cfg *Config) streamio.CharInput {
	return streamio.NewDecoder(streamio.NewMemoryInput([]byte(cfg.Input)))
}

func charUnits(in streamio.CharInput, sink *streamio.LineSink) (err error) {
	defer func() {
		if cerr := in.Close(); err == nil {
			err = cerr
		}
	}()
	st, err := streamio.DrainChars(in, sink.Rune)
	trace("char-units", st)
	return err
}

func charChunks(in streamio.CharInput, size int, sink *streamio.LineSink) (err error) {
	defer func() {
		if cerr := in.Close(); err == nil {
			err = cerr
		}
	}()
	st, err := streamio.DrainCharChunks(in, make([]rune, size), sink.Rune)
	trace("char-chunks", st)
	return err
}

// TryWithResources 在作用域内按块读取字符, 无论成功与否, 输入流都只会被释放一次.
func TryWithResources(out io.Writer, cfg *Config) {
	cfg = cfg.complete()
	if err := scopedChars(newDecoder(cfg), cfg.ChunkSize, streamio.NewLineSink(out)); err != nil {
		report(out, "try-with-resources", err)
	}
}

func scopedChars(in streamio.CharInput, size int, sink *streamio.LineSink) error {
	return scoped.Run(func(s *scoped.Scope) error {
		if err := s.Acquire("reader", in); err != nil {
			return err
		}
		st, err := streamio.DrainCharChunks(in, make([]rune, size), sink.Rune)
		trace("try-with-resources", st)
		return err
	})
}

// PathExample 构造Path, 不会访问文件系统.
func PathExample(cfg *Config) fspath.Path {
	cfg = cfg.complete()
	p := fspath.Get(cfg.SamplePath)
	log.Debug().Str("path", p.String()).Str("base", p.Base()).Msg("path constructed")
	return p
}

// FilesExample 按行读取数据文件并打印每一行.
func FilesExample(out io.Writer, fsys *files.FileSystem, cfg *Config) {
	cfg = cfg.complete()
	if err := printLines(fsys, fsys.Path(cfg.DataFile), streamio.NewLineSink(out)); err != nil {
		report(out, "files", err)
	}
}

func printLines(fsys *files.FileSystem, p fspath.Path, sink *streamio.LineSink) error {
	return scoped.Run(func(s *scoped.Scope) error {
		r, err := fsys.NewBufferedReader(p)
		if err != nil {
			return err
		}
		if err = s.Acquire(p.String(), r); err != nil {
			return err
		}
		for {
			line, ok, err := r.ReadLine()
			if err != nil || !ok {
				return err
			}
			if err = sink.Line(line); err != nil {
				return err
			}
		}
	})
}

// RunAll 依次运行所有课程.
func RunAll(out io.Writer, fsys *files.FileSystem, cfg *Config) {
	ByteStreams(out, cfg)
	CharacterStreams(out, cfg)
	TryWithResources(out, cfg)
	PathExample(cfg)
	FilesExample(out, fsys, cfg)
}
