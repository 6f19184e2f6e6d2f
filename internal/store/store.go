package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pingplatform/internal/models"
)

var ErrNotFound = errors.New("not found")

// Store persists the session key-value entries and the audit log. The
// dialect selects placeholder and upsert syntax.
type Store struct {
	db      *sql.DB
	dialect string
}

func New(db *sql.DB, dialect string) *Store { return &Store{db: db, dialect: dialect} }

func (s *Store) ph(n int) string {
	if s.dialect == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT storage_value FROM kv_entries WHERE storage_key=%s`, s.ph(1)), key,
	).Scan(&v)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (s *Store) Put(ctx context.Context, key, value string) error {
	now := time.Now().UTC()
	var q string
	switch s.dialect {
	case "mysql":
		q = `INSERT INTO kv_entries(storage_key,storage_value,updated_at) VALUES(?,?,?)
		 ON DUPLICATE KEY UPDATE storage_value=VALUES(storage_value), updated_at=VALUES(updated_at)`
	default:
		q = fmt.Sprintf(`INSERT INTO kv_entries(storage_key,storage_value,updated_at) VALUES(%s,%s,%s)
		 ON CONFLICT(storage_key) DO UPDATE SET storage_value=excluded.storage_value, updated_at=excluded.updated_at`,
			s.ph(1), s.ph(2), s.ph(3))
	}
	_, err := s.db.ExecContext(ctx, q, key, value, now)
	return err
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	marks := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		marks[i] = s.ph(i + 1)
		args[i] = k
	}
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM kv_entries WHERE storage_key IN (%s)`, strings.Join(marks, ",")), args...)
	return err
}

func (s *Store) InsertAudit(ctx context.Context, actorID, action, target, metadata string) error {
	if metadata == "" {
		metadata = "{}"
	}
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO audit_log(id,actor_id,action,target,metadata_json,created_at) VALUES(%s,%s,%s,%s,%s,%s)`,
			s.ph(1), s.ph(2), s.ph(3), s.ph(4), s.ph(5), s.ph(6)),
		uuid.NewString(), actorID, action, target, metadata, time.Now().UTC(),
	)
	return err
}

func (s *Store) ListAudit(ctx context.Context, limit, offset int) ([]models.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id,actor_id,action,target,metadata_json,created_at FROM audit_log ORDER BY created_at DESC LIMIT %s OFFSET %s`, s.ph(1), s.ph(2)),
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]models.AuditEntry, 0, limit)
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Target, &e.MetadataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
