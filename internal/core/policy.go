package core

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrPathNotAllowed возвращается для модулей вне разрешенных каталогов.
var ErrPathNotAllowed = errors.New("module path is not allowed")

// PathPolicy ограничивает каталоги, из которых можно загружать модули.
type PathPolicy struct {
	dirs []string
}

// NewPathPolicy создает политику из списка каталогов; пустой список разрешает все.
func NewPathPolicy(dirs []string) *PathPolicy {
	cleaned := make([]string, 0, len(dirs))
	for _, d := range dirs {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		if abs, err := filepath.Abs(d); err == nil {
			d = abs
		}
		cleaned = append(cleaned, filepath.Clean(d))
	}
	return &PathPolicy{dirs: cleaned}
}

// Check возвращает ошибку, если путь не лежит в разрешенном каталоге.
func (p *PathPolicy) Check(path string) error {
	if p == nil || len(p.dirs) == 0 {
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	for _, dir := range p.dirs {
		rel, err := filepath.Rel(dir, abs)
		if err != nil {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil
		}
	}
	return fmt.Errorf("%s: %w", path, ErrPathNotAllowed)
}
