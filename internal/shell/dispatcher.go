package shell

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"alaqsa/internal/core"
	"alaqsa/internal/storage"
	"alaqsa/pkg/module"
)

const (
	statusOK       = "ok"
	statusError    = "error"
	statusNoModule = "no_module"
	statusIgnored  = "ignored"
)

// Session то, что диспетчеру нужно от core.Session.
type Session interface {
	Load(ctx context.Context, path string) (core.Info, error)
	WithActive(fn func(m module.Module) error) error
	Active() (core.Info, bool)
}

// RunSink сохраняет результаты запусков модулей.
type RunSink interface {
	SaveRun(ctx context.Context, rec storage.RunRecord) error
}

// Dispatcher исполняет разобранные команды над сессией.
type Dispatcher struct {
	Session   Session
	Out       io.Writer
	Log       logrus.FieldLogger
	SessionID string
	Audit     storage.AuditWriter
	Runs      RunSink
	Progress  Progress
}

// Dispatch исполняет команду и возвращает true, если оболочку нужно закрыть.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) bool {
	status := d.dispatch(ctx, cmd)
	d.writeAudit(ctx, cmd, status)
	return cmd.Kind == KindQuit
}

func (d *Dispatcher) dispatch(ctx context.Context, cmd Command) string {
	switch cmd.Kind {
	case KindQuit:
		return statusOK
	case KindLoad:
		return d.load(ctx, cmd.Path)
	case KindSetOption:
		return d.report(d.Session.WithActive(func(m module.Module) error {
			m.Set(cmd.Key, cmd.Value)
			return nil
		}))
	case KindShowOptions:
		return d.report(d.Session.WithActive(func(m module.Module) error {
			renderOptions(d.Out, m)
			return nil
		}))
	case KindHelp:
		return d.report(d.Session.WithActive(func(m module.Module) error {
			printHelp(d.Out, m)
			return nil
		}))
	case KindRun:
		return d.run(ctx)
	default:
		d.logger().WithField("kind", cmd.Kind).Warn("unsupported command kind")
		return statusError
	}
}

func (d *Dispatcher) load(ctx context.Context, path string) string {
	if path == "" {
		return statusIgnored
	}
	if d.Progress != nil {
		d.Progress.Start("loading " + path)
	}
	info, err := d.Session.Load(ctx, path)
	if d.Progress != nil {
		d.Progress.Stop()
	}
	if err != nil {
		d.logger().WithError(err).WithField("path", path).Debug("module load failed")
		printError(d.Out, err)
		return statusError
	}
	d.logger().WithFields(logrus.Fields{"path": info.Path, "binding": info.ID}).Info("module loaded")
	printLoaded(d.Out, info.Path)
	return statusOK
}

func (d *Dispatcher) run(ctx context.Context) string {
	var execErr error
	start := time.Now()
	err := d.Session.WithActive(func(m module.Module) error {
		execErr = m.Execute(ctx)
		return nil
	})
	if err != nil {
		return d.report(err)
	}
	elapsed := time.Since(start)

	status := statusOK
	if execErr != nil {
		status = statusError
		printError(d.Out, execErr)
	}
	d.saveRun(ctx, status, execErr, elapsed)
	return status
}

func (d *Dispatcher) report(err error) string {
	switch {
	case err == nil:
		return statusOK
	case errors.Is(err, core.ErrNoModuleLoaded):
		printNoModule(d.Out)
		return statusNoModule
	default:
		printError(d.Out, err)
		return statusError
	}
}

func (d *Dispatcher) saveRun(ctx context.Context, status string, execErr error, elapsed time.Duration) {
	if d.Runs == nil {
		return
	}
	info, _ := d.Session.Active()
	rec := storage.RunRecord{
		SessionID: d.SessionID,
		Module:    info.Path,
		Status:    status,
		Duration:  elapsed,
	}
	if execErr != nil {
		rec.Error = execErr.Error()
	}
	if err := d.Runs.SaveRun(ctx, rec); err != nil {
		d.logger().WithError(err).Warn("save module run")
	}
}

func (d *Dispatcher) writeAudit(ctx context.Context, cmd Command, status string) {
	if d.Audit == nil {
		return
	}
	payload, err := buildAuditPayload(cmd)
	if err != nil {
		d.logger().WithError(err).Warn("build audit payload")
	}
	ev := storage.AuditEvent{
		SessionID: d.SessionID,
		Command:   cmd.Kind.String(),
		Status:    status,
		Payload:   payload,
	}
	if info, ok := d.Session.Active(); ok {
		ev.Module = info.Path
	}
	if err := d.Audit.Write(ctx, ev); err != nil {
		d.logger().WithError(err).Warn("write audit event")
	}
}

func (d *Dispatcher) logger() logrus.FieldLogger {
	if d.Log == nil {
		lg := logrus.New()
		lg.SetOutput(io.Discard)
		return lg
	}
	return d.Log
}
