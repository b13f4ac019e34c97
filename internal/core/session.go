package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"alaqsa/internal/loader"
	"alaqsa/pkg/module"
)

var (
	ErrNoModuleLoaded = errors.New("no modules loaded")
	ErrEmptyPath      = errors.New("module path is empty")
)

// ModuleLoader открывает библиотеку и создает экземпляр модуля.
type ModuleLoader interface {
	Resolve(path string) string
	Load(path string) (*loader.Library, module.Module, error)
}

// Info описывает активный модуль.
type Info struct {
	ID       uuid.UUID
	Path     string
	LoadedAt time.Time
}

// binding владеет библиотекой и модулем; они заменяются только вместе.
type binding struct {
	lib  *loader.Library
	mod  module.Module
	info Info
}

// Session хранит не более одного загруженного модуля.
type Session struct {
	mu      sync.Mutex
	loader  ModuleLoader
	policy  *PathPolicy
	current *binding
	now     func() time.Time
}

// NewSession создает пустую сессию. policy может быть nil.
func NewSession(l ModuleLoader, policy *PathPolicy) *Session {
	return &Session{loader: l, policy: policy, now: time.Now}
}

// Load загружает модуль и заменяет текущий; при ошибке сессия не меняется.
func (s *Session) Load(ctx context.Context, path string) (Info, error) {
	if path == "" {
		return Info{}, ErrEmptyPath
	}
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	resolved := s.loader.Resolve(path)
	if err := s.policy.Check(resolved); err != nil {
		return Info{}, err
	}
	lib, mod, err := s.loader.Load(resolved)
	if err != nil {
		return Info{}, err
	}
	next := &binding{
		lib: lib,
		mod: mod,
		info: Info{
			ID:       uuid.New(),
			Path:     lib.Path,
			LoadedAt: s.now(),
		},
	}

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
	return next.info, nil
}

// WithActive вызывает fn для активного модуля или возвращает ErrNoModuleLoaded.
func (s *Session) WithActive(fn func(m module.Module) error) error {
	b := s.snapshot()
	if b == nil {
		return ErrNoModuleLoaded
	}
	return fn(b.mod)
}

// Active возвращает сведения об активном модуле.
func (s *Session) Active() (Info, bool) {
	b := s.snapshot()
	if b == nil {
		return Info{}, false
	}
	return b.info, true
}

func (s *Session) snapshot() *binding {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// With вызывает fn для активного модуля и возвращает его результат.
func With[R any](s *Session, fn func(m module.Module) R) (R, error) {
	var out R
	err := s.WithActive(func(m module.Module) error {
		out = fn(m)
		return nil
	})
	return out, err
}
