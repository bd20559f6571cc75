package files

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/usherasnick/stream-io-lessons/fspath"
	"github.com/usherasnick/stream-io-lessons/scoped"
	streamio "github.com/usherasnick/stream-io-lessons/stream-io"
)

const (
	__DefaultDirMode  = 0750
	__DefaultFileMode = 0644
)

// FileSystem 文件系统, 同时也是Path的工厂.
type FileSystem struct {
	fs afero.Fs
}

// NewFileSystem 返回基于fs的FileSystem实例.
func NewFileSystem(fs afero.Fs) *FileSystem {
	return &FileSystem{fs: fs}
}

// NewOsFileSystem 返回基于本地磁盘的FileSystem实例.
func NewOsFileSystem() *FileSystem {
	return NewFileSystem(afero.NewOsFs())
}

// NewMemFileSystem 返回基于内存的FileSystem实例.
func NewMemFileSystem() *FileSystem {
	return NewFileSystem(afero.NewMemMapFs())
}

// Fs 返回底层的afero.Fs.
func (fsys *FileSystem) Fs() afero.Fs {
	return fsys.fs
}

// Path 构造Path, 不会访问文件系统.
func (fsys *FileSystem) Path(first string, more ...string) fspath.Path {
	return fspath.Get(first, more...)
}

func (fsys *FileSystem) name(p fspath.Path) string {
	if p.IsEmpty() {
		return "."
	}
	return filepath.FromSlash(p.String())
}

// Exists 判断文件或目录是否存在.
func (fsys *FileSystem) Exists(p fspath.Path) (bool, error) {
	return afero.Exists(fsys.fs, fsys.name(p))
}

// CreateDirectories 创建目录及其所有父目录.
func (fsys *FileSystem) CreateDirectories(p fspath.Path) error {
	return errors.Wrapf(fsys.fs.MkdirAll(fsys.name(p), __DefaultDirMode), "create directories %s", p)
}

// CreateFile 创建空文件, 文件已存在时返回错误.
func (fsys *FileSystem) CreateFile(p fspath.Path) error {
	f, err := fsys.fs.OpenFile(fsys.name(p), os.O_WRONLY|os.O_CREATE|os.O_EXCL, __DefaultFileMode)
	if err != nil {
		return errors.Wrapf(err, "create file %s", p)
	}
	return f.Close()
}

// Delete 删除文件或空目录.
func (fsys *FileSystem) Delete(p fspath.Path) error {
	return errors.Wrapf(fsys.fs.Remove(fsys.name(p)), "delete %s", p)
}

// DeleteIfExists 删除文件或空目录, 返回是否真正删除了.
func (fsys *FileSystem) DeleteIfExists(p fspath.Path) (bool, error) {
	ok, err := fsys.Exists(p)
	if err != nil || !ok {
		return false, err
	}
	if err = fsys.Delete(p); err != nil {
		return false, err
	}
	return true, nil
}

// OpenInput 打开文件字节输入流.
func (fsys *FileSystem) OpenInput(p fspath.Path) (*streamio.FileInput, error) {
	f, err := fsys.fs.Open(fsys.name(p))
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", p)
	}
	return streamio.NewFileInput(f), nil
}

// CreateOutput 创建(或截断)文件并返回字节输出流.
func (fsys *FileSystem) CreateOutput(p fspath.Path) (*streamio.FileOutput, error) {
	f, err := fsys.fs.OpenFile(fsys.name(p), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, __DefaultFileMode)
	if err != nil {
		return nil, errors.Wrapf(err, "create %s", p)
	}
	return streamio.NewFileOutput(f), nil
}

// NewBufferedReader 打开文件并返回按行读取的LineReader.
func (fsys *FileSystem) NewBufferedReader(p fspath.Path) (*LineReader, error) {
	f, err := fsys.fs.Open(fsys.name(p))
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", p)
	}
	return NewLineReader(f), nil
}

// ReadAllLines 读取文件的所有行.
func (fsys *FileSystem) ReadAllLines(p fspath.Path) ([]string, error) {
	var lines []string
	err := scoped.Run(func(s *scoped.Scope) error {
		r, err := fsys.NewBufferedReader(p)
		if err != nil {
			return err
		}
		if err = s.Acquire(p.String(), r); err != nil {
			return err
		}
		for {
			line, ok, err := r.ReadLine()
			if err != nil {
				return errors.Wrapf(err, "read %s", p)
			}
			if !ok {
				return nil
			}
			lines = append(lines, line)
		}
	})
	if err != nil {
		return nil, err
	}
	log.Debug().Str("path", p.String()).Int("lines", len(lines)).Msg("read all lines")
	return lines, nil
}

// Write 原子地写入文件: 先写临时文件, 再重命名覆盖目标文件.
// 父目录不存在时会被创建.
func (fsys *FileSystem) Write(p fspath.Path, content []byte) error {
	fn := fsys.name(p)
	if err := fsys.fs.MkdirAll(filepath.Dir(fn), __DefaultDirMode); err != nil {
		return errors.Wrapf(err, "create parent of %s", p)
	}

	tmp := fn + fmt.Sprintf(".tmp%v", time.Now().UnixNano())
	f, err := fsys.fs.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, __DefaultFileMode)
	if err != nil {
		return errors.Wrapf(err, "create temporary file for %s", p)
	}

	if err = commit(f, content); err != nil {
		fsys.fs.Remove(tmp) // nolint
		return errors.Wrapf(err, "write %s", p)
	}
	if err = fsys.fs.Rename(tmp, fn); err != nil {
		fsys.fs.Remove(tmp) // nolint
		return errors.Wrapf(err, "rename temporary file to %s", p)
	}
	return nil
}

func commit(f afero.File, content []byte) error {
	out := streamio.NewFileOutput(f)
	if err := out.WriteChunk(content); err != nil {
		out.Close() // nolint
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close() // nolint
		return err
	}
	return out.Close()
}

// WriteLines 将每一行以'\n'结尾写入文件.
func (fsys *FileSystem) WriteLines(p fspath.Path, lines []string) error {
	out := streamio.NewMemoryOutput()
	e := streamio.NewEncoder(out)
	for _, line := range lines {
		if err := e.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return fsys.Write(p, out.Bytes())
}

// Copy 复制文件或整个目录(递归), 保留文件权限.
func (fsys *FileSystem) Copy(dst, src fspath.Path) error {
	info, err := fsys.fs.Stat(fsys.name(src))
	if err != nil {
		return errors.Wrapf(err, "stat %s", src)
	}
	if !info.IsDir() {
		return fsys.copyFile(dst, src, info.Mode())
	}

	if err = fsys.fs.MkdirAll(fsys.name(dst), info.Mode()); err != nil {
		return errors.Wrapf(err, "create directory %s", dst)
	}
	infos, err := afero.ReadDir(fsys.fs, fsys.name(src))
	if err != nil {
		return errors.Wrapf(err, "read directory %s", src)
	}
	for _, fi := range infos {
		if err = fsys.Copy(dst.Join(fi.Name()), src.Join(fi.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (fsys *FileSystem) copyFile(dst, src fspath.Path, mode os.FileMode) error {
	return scoped.Run(func(s *scoped.Scope) error {
		in, err := fsys.fs.Open(fsys.name(src))
		if err != nil {
			return errors.Wrapf(err, "open %s", src)
		}
		if err = s.Acquire(src.String(), in); err != nil {
			return err
		}

		out, err := fsys.fs.OpenFile(fsys.name(dst), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
		if err != nil {
			return errors.Wrapf(err, "create %s", dst)
		}
		if err = s.Acquire(dst.String(), out); err != nil {
			return err
		}

		if _, err = io.Copy(out, in); err != nil {
			return errors.Wrapf(err, "copy %s to %s", src, dst)
		}
		return errors.Wrapf(fsys.fs.Chmod(fsys.name(dst), mode), "chmod %s", dst)
	})
}

// LineReader 按行读取文本, 行尾的"\n"或"\r\n"会被去掉.
type LineReader struct {
	sc     *bufio.Scanner
	r      io.Reader
	closed bool
}

func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{
		sc: bufio.NewScanner(r),
		r:  r,
	}
}

// ReadLine 返回下一行; 数据读完时ok为false.
func (lr *LineReader) ReadLine() (line string, ok bool, err error) {
	if lr.closed {
		return "", false, streamio.ErrClosed
	}
	if lr.sc.Scan() {
		return lr.sc.Text(), true, nil
	}
	return "", false, lr.sc.Err()
}

func (lr *LineReader) Close() error {
	if lr.closed {
		return streamio.ErrClosed
	}
	lr.closed = true
	if c, ok := lr.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
