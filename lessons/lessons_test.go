package lessons

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"

	"github.com/usherasnick/stream-io-lessons/files"
	streamio "github.com/usherasnick/stream-io-lessons/stream-io"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestByteStreams(t *testing.T) {
	var buf bytes.Buffer
	ByteStreams(&buf, nil)
	assert.Equal(t, strings.Repeat("116\n101\n115\n116\n", 2), buf.String())
}

func TestCharacterStreams(t *testing.T) {
	var buf bytes.Buffer
	CharacterStreams(&buf, &Config{ChunkSize: 1})
	assert.Equal(t, "t\ne\ns\nt\nt\ne\ns\nt\n", buf.String())
	assert.Equal(t, "testtest", strings.ReplaceAll(buf.String(), "\n", ""))
}

func TestTryWithResources(t *testing.T) {
	var buf bytes.Buffer
	TryWithResources(&buf, DefaultConfig())
	assert.Equal(t, "t\ne\ns\nt\n", buf.String())
}

func TestPathExample(t *testing.T) {
	p := PathExample(nil)
	assert.Equal(t, "/documents/data/foo.txt", p.String())
	assert.Equal(t, "foo.txt", p.Base())
}

func TestFilesExample(t *testing.T) {
	fsys := files.NewMemFileSystem()
	assert.Empty(t, afero.WriteFile(fsys.Fs(), "data.txt", []byte("first\nsecond\n"), 0644))

	var buf bytes.Buffer
	FilesExample(&buf, fsys, nil)
	assert.Equal(t, "first\nsecond\n", buf.String())
}

func TestFilesExampleMissingFile(t *testing.T) {
	var buf bytes.Buffer
	FilesExample(&buf, files.NewMemFileSystem(), nil)
	assert.Equal(t, failureMessage+"\n", buf.String())
}

func TestRunAll(t *testing.T) {
	fsys := files.NewMemFileSystem()
	assert.Empty(t, afero.WriteFile(fsys.Fs(), "notes.txt", []byte("line"), 0644))

	var buf bytes.Buffer
	RunAll(&buf, fsys, &Config{Input: "ab", DataFile: "notes.txt"})
	assert.Equal(t, "97\n98\n97\n98\na\nb\na\nb\na\nb\nline\n", buf.String())
}

// failingInput fails its failAt-th read and counts its releases.
type failingInput struct {
	streamio.CharInput
	failAt int
	reads  int
	closes int
}

var errBoom = errors.New("boom")

func (in *failingInput) ReadChunk(p []rune) (int, error) {
	in.reads++
	if in.reads == in.failAt {
		return 0, errBoom
	}
	return in.CharInput.ReadChunk(p)
}

func (in *failingInput) Close() error {
	in.closes++
	return in.CharInput.Close()
}

func TestScopedCharsReleasesOnce(t *testing.T) {
	var buf bytes.Buffer
	in := &failingInput{CharInput: streamio.NewStringInput("test")}
	err := scopedChars(in, 10, streamio.NewLineSink(&buf))
	assert.Empty(t, err)
	assert.Equal(t, 1, in.closes)

	buf.Reset()
	in = &failingInput{CharInput: streamio.NewStringInput("test"), failAt: 2}
	err = scopedChars(in, 2, streamio.NewLineSink(&buf))
	assert.True(t, errors.Is(err, errBoom))
	assert.Equal(t, 1, in.closes)
	assert.Equal(t, "t\ne\n", buf.String())
}

func TestCharChunksReleasesOnFailure(t *testing.T) {
	var buf bytes.Buffer
	in := &failingInput{CharInput: streamio.NewStringInput("test"), failAt: 2}
	err := charChunks(in, 1, streamio.NewLineSink(&buf))
	assert.True(t, errors.Is(err, errBoom))
	assert.Equal(t, 1, in.closes)
	assert.Equal(t, "t\n", buf.String())
}

func TestByteUnitsReportsCloseFailure(t *testing.T) {
	in := streamio.NewMemoryInput([]byte("test"))
	assert.Empty(t, in.Close())
	err := byteUnits(in, streamio.NewLineSink(&bytes.Buffer{}))
	assert.True(t, errors.Is(err, streamio.ErrClosed))
}

func TestFailureIsReported(t *testing.T) {
	var buf bytes.Buffer
	ByteStreams(&buf, &Config{Input: "x"})
	TryWithResources(&buf, &Config{Input: "x"})
	assert.NotContains(t, buf.String(), failureMessage)

	buf.Reset()
	report(&buf, "test", errBoom)
	assert.Equal(t, failureMessage+"\n", buf.String())
}
