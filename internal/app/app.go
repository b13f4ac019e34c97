package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"alaqsa/internal/config"
	"alaqsa/internal/core"
	"alaqsa/internal/hostinfo"
	"alaqsa/internal/loader"
	"alaqsa/internal/shell"
	"alaqsa/internal/storage"
	"alaqsa/internal/storage/sqlite"
)

// App агрегирует зависимости оболочки.
type App struct {
	Env       config.Env
	Config    config.Config
	Log       *logrus.Logger
	Session   *core.Session
	Store     storage.Store
	SessionID string

	audit storage.AuditWriter
}

// NewApp строит приложение: сессию модулей и журнал аудита.
func NewApp(ctx context.Context, cfg config.Config, env config.Env, log *logrus.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	cfg = cfg.Expand(env)
	ld := loader.New(loader.PluginOpener, env.ExpandPath)
	a := &App{
		Env:       env,
		Config:    cfg,
		Log:       log,
		Session:   core.NewSession(ld, core.NewPathPolicy(cfg.Security.ModuleDirs)),
		SessionID: uuid.NewString(),
	}

	if cfg.Audit.Enabled {
		st, err := sqlite.Open(cfg.Audit.Path)
		if err != nil {
			log.WithError(err).WithField("path", cfg.Audit.Path).Warn("audit journal disabled")
		} else {
			a.Store = st
			a.audit = st
		}
	}
	log.WithFields(logrus.Fields{"session": a.SessionID, "audit": a.Store != nil}).Debug("app initialized")
	return a, ctx.Err()
}

// Dispatcher создает диспетчер команд поверх сессии приложения.
func (a *App) Dispatcher(out io.Writer, progress shell.Progress) *shell.Dispatcher {
	d := &shell.Dispatcher{
		Session:   a.Session,
		Out:       out,
		Log:       a.Log.WithField("session", a.SessionID),
		SessionID: a.SessionID,
		Progress:  progress,
	}
	if a.Store != nil {
		d.Audit = a.audit
		d.Runs = a.Store
	}
	return d
}

// HostLine возвращает строку об узле для баннера или "".
func (a *App) HostLine(ctx context.Context) string {
	hctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	sum, err := hostinfo.Collect(hctx)
	if err != nil {
		a.Log.WithError(err).Debug("collect host info")
	}
	if sum.Hostname == "" {
		return ""
	}
	return sum.String()
}

// Close высвобождает ресурсы приложения.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
