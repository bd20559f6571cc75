package files

import (
	"errors"
	"os"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"

	streamio "github.com/usherasnick/stream-io-lessons/stream-io"
)

func TestWriteAndReadAllLines(t *testing.T) {
	fsys := NewMemFileSystem()
	p := fsys.Path("/fixtures", "data.txt")

	err := fsys.WriteLines(p, []string{"first line", "second line", "", "täst"})
	assert.Empty(t, err)

	lines, err := fsys.ReadAllLines(p)
	assert.Empty(t, err)
	assert.Equal(t, []string{"first line", "second line", "", "täst"}, lines)

	infos, err := afero.ReadDir(fsys.Fs(), "/fixtures")
	assert.Empty(t, err)
	assert.Len(t, infos, 1, "temporary file must be renamed away")
}

func TestWriteOverwrites(t *testing.T) {
	fsys := NewMemFileSystem()
	p := fsys.Path("out.txt")
	assert.Empty(t, fsys.Write(p, []byte("old content")))
	assert.Empty(t, fsys.Write(p, []byte("new")))

	data, err := afero.ReadFile(fsys.Fs(), "out.txt")
	assert.Empty(t, err)
	assert.Equal(t, "new", string(data))
}

func TestReadAllLinesMissingFile(t *testing.T) {
	fsys := NewMemFileSystem()
	_, err := fsys.ReadAllLines(fsys.Path("data.txt"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestBufferedReader(t *testing.T) {
	fsys := NewMemFileSystem()
	p := fsys.Path(`\documents\data\foo.txt`)
	assert.Empty(t, afero.WriteFile(fsys.Fs(), "/documents/data/foo.txt", []byte("a\r\nb\nc"), 0644))

	r, err := fsys.NewBufferedReader(p)
	assert.Empty(t, err)

	var got []string
	for {
		line, ok, err := r.ReadLine()
		assert.Empty(t, err)
		if !ok {
			break
		}
		got = append(got, line)
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Empty(t, r.Close())
	assert.Equal(t, streamio.ErrClosed, r.Close())

	_, _, err = r.ReadLine()
	assert.Equal(t, streamio.ErrClosed, err)
}

func TestLineReaderFailure(t *testing.T) {
	r := NewLineReader(iotest.TimeoutReader(iotest.OneByteReader(strings.NewReader("ab\ncd"))))
	// the byte read before the failure still comes out as a final line
	line, ok, err := r.ReadLine()
	assert.Empty(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a", line)

	_, ok, err = r.ReadLine()
	assert.False(t, ok)
	assert.Equal(t, iotest.ErrTimeout, err)
}

func TestStreams(t *testing.T) {
	fsys := NewMemFileSystem()
	p := fsys.Path("/bin/data.bin")
	assert.Empty(t, fsys.CreateDirectories(p.Join("..").Normalize()))

	out, err := fsys.CreateOutput(p)
	assert.Empty(t, err)
	assert.Empty(t, out.WriteChunk([]byte("test")))
	assert.Empty(t, out.Close())

	in, err := fsys.OpenInput(p)
	assert.Empty(t, err)
	var sb strings.Builder
	st, err := streamio.DrainByteChunks(in, make([]byte, 10), func(b byte) error {
		return sb.WriteByte(b)
	})
	assert.Empty(t, err)
	assert.Empty(t, in.Close())
	assert.Equal(t, "test", sb.String())
	assert.Equal(t, 1, st.ProductiveReads)
}

func TestCreateExistsDelete(t *testing.T) {
	fsys := NewMemFileSystem()
	p := fsys.Path("/tmp/empty.txt")
	assert.Empty(t, fsys.CreateDirectories(fsys.Path("/tmp")))

	ok, err := fsys.Exists(p)
	assert.Empty(t, err)
	assert.False(t, ok)

	assert.Empty(t, fsys.CreateFile(p))
	assert.NotEmpty(t, fsys.CreateFile(p))

	ok, err = fsys.Exists(p)
	assert.Empty(t, err)
	assert.True(t, ok)

	deleted, err := fsys.DeleteIfExists(p)
	assert.Empty(t, err)
	assert.True(t, deleted)
	deleted, err = fsys.DeleteIfExists(p)
	assert.Empty(t, err)
	assert.False(t, deleted)
	assert.NotEmpty(t, fsys.Delete(p))
}

func TestCopy(t *testing.T) {
	fsys := NewMemFileSystem()
	assert.Empty(t, fsys.Write(fsys.Path("/src/a.txt"), []byte("a")))
	assert.Empty(t, fsys.Write(fsys.Path("/src/sub/b.txt"), []byte("b")))
	assert.Empty(t, fsys.Fs().Chmod("/src/a.txt", 0600))

	assert.Empty(t, fsys.Copy(fsys.Path("/dst"), fsys.Path("/src")))

	data, err := afero.ReadFile(fsys.Fs(), "/dst/a.txt")
	assert.Empty(t, err)
	assert.Equal(t, "a", string(data))
	data, err = afero.ReadFile(fsys.Fs(), "/dst/sub/b.txt")
	assert.Empty(t, err)
	assert.Equal(t, "b", string(data))

	info, err := fsys.Fs().Stat("/dst/a.txt")
	assert.Empty(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	assert.NotEmpty(t, fsys.Copy(fsys.Path("/dst2"), fsys.Path("/missing")))
}
