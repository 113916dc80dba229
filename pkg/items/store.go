package items

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/platinummonkey/collie/pkg/observability"
)

// Store persists items in the shared database.
type Store struct {
	db      *sql.DB
	metrics *observability.Metrics
}

// NewStore creates an item store on the shared database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// WithMetrics instruments every store operation and returns the store.
func (s *Store) WithMetrics(m *observability.Metrics) *Store {
	s.metrics = m
	return s
}

// timeOp is deferred at the top of each operation with a pointer to its
// named error result.
func (s *Store) timeOp(op string, start time.Time, err *error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveStorage(op, time.Since(start), *err)
}

const itemColumns = "id, fingerprint, author, title, description, link, status, is_saved, published_at, feed"

// Create inserts a new item. Re-inserting an entry with the same fingerprint
// is silently skipped; the returned bool reports whether a row was written.
func (s *Store) Create(ctx context.Context, arg *ItemToCreate) (inserted bool, err error) {
	defer s.timeOp("items.create", time.Now(), &err)

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO items (fingerprint, author, title, description, link, status, published_at, feed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO NOTHING
	`, arg.Fingerprint(), nullString(arg.Author), arg.Title, arg.Description,
		arg.Link, StatusUnread, arg.PublishedAt.UTC(), arg.Feed)
	if err != nil {
		return false, fmt.Errorf("insert item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert item: %w", err)
	}
	return affected > 0, nil
}

// List returns items matching the filter, newest published first.
func (s *Store) List(ctx context.Context, filter *Filter) (all []Item, err error) {
	defer s.timeOp("items.list", time.Now(), &err)

	query := "SELECT " + itemColumns + " FROM items"
	where, args := filterClause(filter)
	query += where + " ORDER BY published_at DESC, id DESC"
	if filter != nil && filter.Limit != nil {
		query += " LIMIT ?"
		args = append(args, *filter.Limit)
		if filter.Offset != nil {
			query += " OFFSET ?"
			args = append(args, *filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	return items, nil
}

// Count returns the number of items matching the filter. Limit and offset
// are ignored.
func (s *Store) Count(ctx context.Context, filter *Filter) (count int64, err error) {
	defer s.timeOp("items.count", time.Now(), &err)

	query := "SELECT COUNT(*) FROM items"
	where, args := filterClause(filter)
	query += where

	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return count, nil
}

// Update applies the non-nil fields of arg to the item with the given id.
func (s *Store) Update(ctx context.Context, id int64, arg *ItemToUpdate) (err error) {
	defer s.timeOp("items.update", time.Now(), &err)

	var (
		sets []string
		args []interface{}
	)
	if arg.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *arg.Status)
	}
	if arg.IsSaved != nil {
		sets = append(sets, "is_saved = ?")
		args = append(args, *arg.IsSaved)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE items SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateAll sets the status of every item and returns how many changed.
func (s *Store) UpdateAll(ctx context.Context, arg *ItemToUpdateAll) (affected int64, err error) {
	defer s.timeOp("items.update_all", time.Now(), &err)

	res, err := s.db.ExecContext(ctx,
		"UPDATE items SET status = ? WHERE status != ?", arg.Status, arg.Status)
	if err != nil {
		return 0, fmt.Errorf("update items: %w", err)
	}
	affected, err = res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

func filterClause(filter *Filter) (string, []interface{}) {
	if filter == nil {
		return "", nil
	}
	var (
		conds []string
		args  []interface{}
	)
	if filter.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, *filter.Status)
	}
	if filter.IsSaved != nil {
		conds = append(conds, "is_saved = ?")
		args = append(args, *filter.IsSaved)
	}
	if filter.Feed != nil {
		conds = append(conds, "feed = ?")
		args = append(args, *filter.Feed)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*Item, error) {
	var (
		item   Item
		author sql.NullString
	)
	if err := row.Scan(&item.ID, &item.Fingerprint, &author, &item.Title,
		&item.Description, &item.Link, &item.Status, &item.IsSaved,
		&item.PublishedAt, &item.Feed); err != nil {
		return nil, err
	}
	item.Author = author.String
	return &item, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
