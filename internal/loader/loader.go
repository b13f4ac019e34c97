// Package loader открывает модули, собранные как Go plugin, и получает из
// них экземпляр module.Module через символ module.EntrySymbol.
package loader

import (
	"errors"
	"fmt"
	"plugin"
	"reflect"

	"alaqsa/pkg/module"
)

var (
	ErrOpenFailed     = errors.New("open module failed")
	ErrSymbolMissing  = errors.New("entry symbol missing")
	ErrSymbolMismatch = errors.New("entry symbol has unexpected type")
	ErrNilModule      = errors.New("entry symbol returned nil module")
)

// Symbols абстрагирует открытую библиотеку; *plugin.Plugin ему удовлетворяет.
type Symbols interface {
	Lookup(name string) (plugin.Symbol, error)
}

// Opener открывает разделяемую библиотеку по пути.
type Opener interface {
	Open(path string) (Symbols, error)
}

// OpenerFunc адаптирует функцию к Opener.
type OpenerFunc func(path string) (Symbols, error)

// Open реализует Opener.
func (f OpenerFunc) Open(path string) (Symbols, error) { return f(path) }

// PluginOpener открывает библиотеки через пакет plugin.
var PluginOpener = OpenerFunc(func(path string) (Symbols, error) {
	return plugin.Open(path)
})

// Library открытая библиотека модуля. Рантайм Go не выгружает plugin, поэтому
// Library остается отображенной до конца процесса.
type Library struct {
	Path    string
	symbols Symbols
}

// Loader открывает модули и создает их экземпляры.
type Loader struct {
	opener Opener
	expand func(string) string
}

// New создает Loader; expand раскрывает "~" в пути, nil оставляет путь как есть.
func New(opener Opener, expand func(string) string) *Loader {
	if opener == nil {
		opener = PluginOpener
	}
	if expand == nil {
		expand = func(p string) string { return p }
	}
	return &Loader{opener: opener, expand: expand}
}

// Resolve раскрывает "~" в пути к модулю.
func (l *Loader) Resolve(path string) string {
	return l.expand(path)
}

// Open открывает библиотеку по уже раскрытому пути (см. Resolve).
func (l *Loader) Open(path string) (*Library, error) {
	syms, err := l.opener.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpenFailed, path, err)
	}
	if syms == nil {
		return nil, fmt.Errorf("%w: %s: no symbols", ErrOpenFailed, path)
	}
	return &Library{Path: path, symbols: syms}, nil
}

// Instantiate вызывает фабрику модуля из библиотеки.
func (l *Loader) Instantiate(lib *Library) (module.Module, error) {
	sym, err := lib.symbols.Lookup(module.EntrySymbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %s in %s", ErrSymbolMissing, module.EntrySymbol, lib.Path)
	}
	factory, err := asFactory(sym)
	if err != nil {
		return nil, fmt.Errorf("%s in %s: %w", module.EntrySymbol, lib.Path, err)
	}
	m := factory()
	if isNil(m) {
		return nil, fmt.Errorf("%w: %s", ErrNilModule, lib.Path)
	}
	return m, nil
}

// isNil ловит и типизированный nil: (*T)(nil), завернутый в module.Module.
func isNil(m module.Module) bool {
	if m == nil {
		return true
	}
	v := reflect.ValueOf(m)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// Load открывает библиотеку и создает экземпляр модуля. Путь не раскрывается.
func (l *Loader) Load(path string) (*Library, module.Module, error) {
	lib, err := l.Open(path)
	if err != nil {
		return nil, nil, err
	}
	m, err := l.Instantiate(lib)
	if err != nil {
		return nil, nil, err
	}
	return lib, m, nil
}

// Lookup возвращает функцию, а не указатель на нее, если модуль экспортирует
// func GetPlugin() module.Module; переменная типа Factory приходит указателем.
func asFactory(sym plugin.Symbol) (module.Factory, error) {
	switch f := sym.(type) {
	case func() module.Module:
		return f, nil
	case module.Factory:
		return f, nil
	case *module.Factory:
		if f == nil || *f == nil {
			return nil, ErrNilModule
		}
		return *f, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrSymbolMismatch, sym)
	}
}
