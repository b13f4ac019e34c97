package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrMissingEnv возвращается, если обязательная переменная окружения пуста.
var ErrMissingEnv = errors.New("required environment variable is not set")

// Env содержит значения окружения, без которых оболочка не стартует.
type Env struct {
	Home string
	User string
}

// LookupEnv читает HOME и USER через getenv.
func LookupEnv(getenv func(string) string) (Env, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	env := Env{Home: getenv("HOME"), User: getenv("USER")}
	if env.Home == "" {
		return Env{}, fmt.Errorf("HOME: %w", ErrMissingEnv)
	}
	if env.User == "" {
		return Env{}, fmt.Errorf("USER: %w", ErrMissingEnv)
	}
	return env, nil
}

// ExpandPath заменяет ведущий "~" домашним каталогом.
func (e Env) ExpandPath(path string) string {
	if path == "~" {
		return e.Home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(e.Home, path[2:])
	}
	return path
}
