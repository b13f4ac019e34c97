package shell

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// Progress показывает индикатор на время долгой операции.
type Progress interface {
	Start(msg string)
	Stop()
}

type spinnerProgress struct {
	s *spinner.Spinner
}

// NewSpinner возвращает Progress поверх spinner; вне терминала он молчит.
func NewSpinner(w io.Writer) Progress {
	return &spinnerProgress{
		s: spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w)),
	}
}

func (p *spinnerProgress) Start(msg string) {
	p.s.Suffix = " " + msg
	p.s.Start()
}

func (p *spinnerProgress) Stop() {
	p.s.Stop()
}
