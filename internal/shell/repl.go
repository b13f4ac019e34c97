package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sirupsen/logrus"
)

// LineReader источник строк с историей; *readline.Instance ему удовлетворяет.
type LineReader interface {
	Readline() (string, error)
	SaveHistory(line string) error
	Close() error
}

// REPL читает строки, разбирает их и передает диспетчеру.
type REPL struct {
	Input      LineReader
	Dispatcher *Dispatcher
	Out        io.Writer
	Log        logrus.FieldLogger
}

// Run крутит цикл до quit или конца ввода.
func (r *REPL) Run(ctx context.Context) error {
	for {
		line, err := r.Input.Readline()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
				return nil
			}
			return fmt.Errorf("read line: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := r.Input.SaveHistory(line); err != nil && r.Log != nil {
			r.Log.WithError(err).Warn("save history")
		}
		cmd, err := ParseCommand(line)
		if err != nil {
			printError(r.Out, err)
			continue
		}
		if r.Dispatcher.Dispatch(ctx, cmd) {
			return nil
		}
	}
}

// EnsureHistoryFile создает файл истории, если его нет.
func EnsureHistoryFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) // #nosec G304 -- путь из конфига оператора.
	if err != nil {
		return fmt.Errorf("create history file: %w", err)
	}
	return f.Close()
}

// NewReadline открывает терминальный ввод с историей в historyFile.
func NewReadline(prompt, historyFile string) (*readline.Instance, error) {
	if err := EnsureHistoryFile(historyFile); err != nil {
		return nil, err
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 prompt,
		HistoryFile:            historyFile,
		DisableAutoSaveHistory: true,
		InterruptPrompt:        "^C",
		EOFPrompt:              "quit",
	})
	if err != nil {
		return nil, fmt.Errorf("init readline: %w", err)
	}
	return rl, nil
}
