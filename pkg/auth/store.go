package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/platinummonkey/collie/pkg/observability"
)

// SQLStore is the database-backed Store over the keys table.
type SQLStore struct {
	db      *sql.DB
	metrics *observability.Metrics
}

// NewStore creates a key store on the shared database handle.
func NewStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// WithMetrics instruments every store operation and returns the store.
func (s *SQLStore) WithMetrics(m *observability.Metrics) *SQLStore {
	s.metrics = m
	return s
}

// timeOp is deferred at the top of each operation with a pointer to its
// named error result.
func (s *SQLStore) timeOp(op string, start time.Time, err *error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveStorage(op, time.Since(start), *err)
}

// CreateKey inserts a key row. A UNIQUE violation on access maps to
// ErrDuplicateAccess so the service can retry with a fresh draw.
func (s *SQLStore) CreateKey(ctx context.Context, key *Key) (id int64, err error) {
	defer s.timeOp("keys.create", time.Now(), &err)

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO keys (access, secret, description, expired_at)
		VALUES (?, ?, ?, ?)
	`, key.Access, key.Secret, nullString(key.Description), key.ExpiredAt)
	if err != nil {
		var serr sqlite3.Error
		if errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return 0, ErrDuplicateAccess
		}
		return 0, Internal("insert key", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, Internal("insert key", err)
	}
	return id, nil
}

// FindKeyByAccess loads the full key row, secret included. Only the auth
// services call this; nothing outside the package ever sees the secret.
func (s *SQLStore) FindKeyByAccess(ctx context.Context, access string) (found *Key, err error) {
	defer s.timeOp("keys.find", time.Now(), &err)

	var (
		key         Key
		description sql.NullString
		expiredAt   sql.NullTime
	)
	err = s.db.QueryRowContext(ctx, `
		SELECT id, access, secret, description, expired_at
		FROM keys WHERE access = ?
	`, access).Scan(&key.ID, &key.Access, &key.Secret, &description, &expiredAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, Internal("query key", err)
	}
	key.Description = description.String
	if expiredAt.Valid {
		key.ExpiredAt = &expiredAt.Time
	}
	return &key, nil
}

// ListKeys returns the listing view of every key, oldest first.
func (s *SQLStore) ListKeys(ctx context.Context) (infos []KeyInfo, err error) {
	defer s.timeOp("keys.list", time.Now(), &err)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, access, description, expired_at
		FROM keys ORDER BY id
	`)
	if err != nil {
		return nil, Internal("list keys", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			info        KeyInfo
			description sql.NullString
			expiredAt   sql.NullTime
		)
		if err := rows.Scan(&info.ID, &info.Access, &description, &expiredAt); err != nil {
			return nil, Internal("scan key", err)
		}
		info.Description = description.String
		if expiredAt.Valid {
			info.ExpiredAt = &expiredAt.Time
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, Internal("list keys", err)
	}
	return infos, nil
}

// ExpireKey stamps expired_at on the key with the given id.
func (s *SQLStore) ExpireKey(ctx context.Context, id int64, at time.Time) (err error) {
	defer s.timeOp("keys.expire", time.Now(), &err)

	res, err := s.db.ExecContext(ctx, `UPDATE keys SET expired_at = ? WHERE id = ?`, at, id)
	if err != nil {
		return Internal("expire key", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Internal("expire key", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
