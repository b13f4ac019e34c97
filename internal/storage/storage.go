package storage

import (
	"context"
	"time"
)

// RunRecord фиксирует запуск модуля.
type RunRecord struct {
	SessionID string
	Module    string
	Status    string
	Error     string
	Duration  time.Duration
	TS        time.Time
}

// AuditEvent фиксирует команду оболочки.
type AuditEvent struct {
	SessionID string
	Command   string
	Module    string
	Status    string
	Payload   []byte
	TS        time.Time
}

// AuditQuery задает фильтры выборки аудита.
type AuditQuery struct {
	From      time.Time
	To        time.Time
	SessionID string
	Limit     int
}

// Store описывает операции хранилища.
type Store interface {
	SaveRun(ctx context.Context, rec RunRecord) error
	SaveAudit(ctx context.Context, ev AuditEvent) error
	LatestRun(ctx context.Context, module string) (RunRecord, error)
	QueryAudit(ctx context.Context, q AuditQuery) ([]AuditEvent, error)
	Close() error
}
