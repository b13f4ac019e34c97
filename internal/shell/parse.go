package shell

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	ErrEmptyCommand   = errors.New("empty command")
	ErrUsage          = errors.New("usage")
	ErrUnknownCommand = errors.New("unknown command")
)

// Kind перечисляет команды оболочки.
type Kind int

const (
	KindLoad Kind = iota + 1
	KindSetOption
	KindShowOptions
	KindRun
	KindHelp
	KindQuit
)

func (k Kind) String() string {
	switch k {
	case KindLoad:
		return "load"
	case KindSetOption:
		return "set"
	case KindShowOptions:
		return "options"
	case KindRun:
		return "run"
	case KindHelp:
		return "help"
	case KindQuit:
		return "quit"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Command одна разобранная строка ввода.
type Command struct {
	Kind  Kind
	Path  string
	Key   string
	Value string
}

// ParseCommand переводит строку в Command.
// Формат: <verb> [args...]; для set значение это остаток строки.
func ParseCommand(line string) (Command, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return Command{}, ErrEmptyCommand
	}
	switch parts[0] {
	case "quit", "q":
		return Command{Kind: KindQuit}, nil
	case "load", "l":
		if len(parts) != 2 {
			return Command{}, fmt.Errorf("%w: load <module path>", ErrUsage)
		}
		return Command{Kind: KindLoad, Path: unquoteEmpty(parts[1])}, nil
	case "set":
		if len(parts) < 3 {
			return Command{}, fmt.Errorf("%w: set <key> <value>", ErrUsage)
		}
		_, rest := cutField(line)
		key, value := cutField(rest)
		return Command{Kind: KindSetOption, Key: key, Value: strings.TrimSpace(value)}, nil
	case "run", "r":
		return Command{Kind: KindRun}, nil
	case "options", "?", "o":
		return Command{Kind: KindShowOptions}, nil
	case "help", "h":
		return Command{Kind: KindHelp}, nil
	default:
		return Command{}, fmt.Errorf("%w %s", ErrUnknownCommand, parts[0])
	}
}

// unquoteEmpty превращает "" и '' в пустой путь.
func unquoteEmpty(arg string) string {
	if arg == `""` || arg == `''` {
		return ""
	}
	return arg
}

// cutField отрезает первое слово строки; rest сохраняет внутренние пробелы.
func cutField(s string) (field, rest string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := strings.IndexFunc(s, unicode.IsSpace)
	if end < 0 {
		return s, ""
	}
	return s[:end], s[end:]
}
