package scoped

import (
	"fmt"
	"io"

	"github.com/gammazero/deque"
	"github.com/petermattis/goid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"
)

var ErrReleased = errors.New("scope has been released")

type releaser struct {
	name    string
	release func() error
}

// Scope 资源作用域, 释放时按照获取顺序的逆序释放所有资源.
// Scope 只能由创建它的协程释放.
type Scope struct {
	owner    int64 // 创建作用域的goroutine id
	stack    deque.Deque
	released bool
}

// New 返回Scope实例.
func New() *Scope {
	return &Scope{
		owner: goid.Get(),
	}
}

// Acquire 将资源加入作用域.
// 如果作用域已经释放, 资源会被立即关闭, 并返回ErrReleased.
func (s *Scope) Acquire(name string, c io.Closer) error {
	return s.Defer(name, c.Close)
}

// Defer 将释放函数加入作用域.
func (s *Scope) Defer(name string, release func() error) error {
	s.checkOwner()
	if s.released {
		return multierr.Append(
			errors.Wrapf(ErrReleased, "acquire %s", name),
			errors.Wrapf(release(), "release %s", name),
		)
	}
	s.stack.PushBack(releaser{name: name, release: release})
	return nil
}

// Len 返回作用域内尚未释放的资源数.
func (s *Scope) Len() int {
	return s.stack.Len()
}

// Release 逆序释放所有资源, 即使某个资源释放失败, 后续资源也会继续释放.
// 只有第一次调用会真正释放资源, 之后的调用直接返回nil.
func (s *Scope) Release() error {
	s.checkOwner()
	if s.released {
		return nil
	}
	s.released = true

	var err error
	for s.stack.Len() > 0 {
		r := s.stack.PopBack().(releaser)
		if rerr := r.release(); rerr != nil {
			log.Warn().Err(rerr).Str("resource", r.name).Msg("failed to release resource")
			err = multierr.Append(err, errors.Wrapf(rerr, "release %s", r.name))
		}
	}
	return err
}

func (s *Scope) checkOwner() {
	if gid := goid.Get(); gid != s.owner {
		panic(fmt.Sprintf("goroutine (%d) does not own the scope, but the owner (%d) does", gid, s.owner))
	}
}

// Run 创建作用域并执行fn, 无论fn正常返回、返回错误还是panic, 作用域都会被释放.
// 释放失败不会掩盖fn的错误: fn的错误排在最前, 其后是释放错误.
func Run(fn func(s *Scope) error) (err error) {
	s := New()
	defer func() {
		if rerr := s.Release(); rerr != nil {
			err = multierr.Append(err, rerr)
		}
	}()
	return fn(s)
}
