package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite driver

	"alaqsa/internal/storage"
)

// Store реализует storage.Store поверх SQLite.
type Store struct {
	db *sql.DB
}

// Open создает каталог базы, открывает соединение и выполняет миграции.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_journal=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS module_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			session_id TEXT NOT NULL,
			module TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_module_ts ON module_runs(module, ts);`,
		`CREATE TABLE IF NOT EXISTS audit_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			session_id TEXT,
			command TEXT,
			module TEXT,
			status TEXT,
			payload BLOB
		);`,
		`CREATE INDEX IF NOT EXISTS idx_audit_ts ON audit_events(ts);`,
		`CREATE INDEX IF NOT EXISTS idx_audit_session_ts ON audit_events(session_id, ts);`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// SaveRun сохраняет запуск модуля.
func (s *Store) SaveRun(ctx context.Context, rec storage.RunRecord) error {
	ts := rec.TS
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO module_runs(session_id, module, status, error, duration_ms, ts) VALUES(?,?,?,?,?,?)`,
		rec.SessionID, rec.Module, rec.Status, rec.Error, rec.Duration.Milliseconds(), ts)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// SaveAudit сохраняет аудиторное событие.
func (s *Store) SaveAudit(ctx context.Context, ev storage.AuditEvent) error {
	ts := ev.TS
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO audit_events(session_id, command, module, status, payload, ts) VALUES(?,?,?,?,?,?)`,
		ev.SessionID, ev.Command, ev.Module, ev.Status, ev.Payload, ts)
	if err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

// LatestRun возвращает последний запуск модуля.
func (s *Store) LatestRun(ctx context.Context, module string) (storage.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT session_id, module, status, error, duration_ms, ts FROM module_runs WHERE module = ? ORDER BY ts DESC, id DESC LIMIT 1`, module)
	var rec storage.RunRecord
	var errText sql.NullString
	var durationMS int64
	var ts string
	if err := row.Scan(&rec.SessionID, &rec.Module, &rec.Status, &errText, &durationMS, &ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.RunRecord{}, fmt.Errorf("latest run not found: %w", err)
		}
		return storage.RunRecord{}, fmt.Errorf("query latest run: %w", err)
	}
	parsedTS, err := parseSQLiteTS(ts)
	if err != nil {
		return storage.RunRecord{}, fmt.Errorf("parse run timestamp: %w", err)
	}
	rec.Error = errText.String
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	rec.TS = parsedTS
	return rec, nil
}

// QueryAudit возвращает аудит по фильтрам.
func (s *Store) QueryAudit(ctx context.Context, q storage.AuditQuery) ([]storage.AuditEvent, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	from := q.From
	if from.IsZero() {
		from = time.Unix(0, 0).UTC()
	}
	to := q.To
	if to.IsZero() {
		to = time.Now().UTC()
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT session_id, command, module, status, payload, ts
FROM audit_events
WHERE ts >= ? AND ts <= ? AND (? = '' OR session_id = ?)
ORDER BY ts DESC, id DESC
LIMIT ?`, from, to, q.SessionID, q.SessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit: %w", err)
	}
	defer rows.Close()

	events := make([]storage.AuditEvent, 0, limit)
	for rows.Next() {
		var ev storage.AuditEvent
		var module sql.NullString
		var ts string
		if err := rows.Scan(&ev.SessionID, &ev.Command, &module, &ev.Status, &ev.Payload, &ts); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		parsedTS, err := parseSQLiteTS(ts)
		if err != nil {
			return nil, fmt.Errorf("parse audit timestamp: %w", err)
		}
		ev.Module = module.String
		ev.TS = parsedTS
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit: %w", err)
	}
	return events, nil
}

func parseSQLiteTS(v string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported sqlite time format: %q", v)
}

// Write реализует storage.AuditWriter.
func (s *Store) Write(ctx context.Context, ev storage.AuditEvent) error {
	return s.SaveAudit(ctx, ev)
}

// Close закрывает соединение.
func (s *Store) Close() error {
	return s.db.Close()
}
