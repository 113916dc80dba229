package feeds

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/platinummonkey/collie/pkg/observability"
)

// Store persists feeds in the shared database.
type Store struct {
	db      *sql.DB
	now     func() time.Time
	metrics *observability.Metrics
}

// NewStore creates a feed store on the shared database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
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

const feedColumns = "id, title, link, status, checked_at, fetch_old_items"

// Create registers a new subscribed feed and returns it. The (title, link)
// pair is unique; a second registration yields ErrDuplicateFeed.
func (s *Store) Create(ctx context.Context, arg *FeedToCreate) (feed *Feed, err error) {
	defer s.timeOp("feeds.create", time.Now(), &err)

	fetchOld := true
	if arg.FetchOldItems != nil {
		fetchOld = *arg.FetchOldItems
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO feeds (title, link, status, checked_at, fetch_old_items)
		VALUES (?, ?, ?, ?, ?)
	`, arg.Title, arg.Link, StatusSubscribed, s.now().UTC(), fetchOld)
	if err != nil {
		var serr sqlite3.Error
		if errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, ErrDuplicateFeed
		}
		return nil, fmt.Errorf("insert feed: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert feed: %w", err)
	}
	return s.Get(ctx, id)
}

// Get returns a single feed by id.
func (s *Store) Get(ctx context.Context, id int64) (feed *Feed, err error) {
	defer s.timeOp("feeds.get", time.Now(), &err)

	row := s.db.QueryRowContext(ctx, "SELECT "+feedColumns+" FROM feeds WHERE id = ?", id)
	feed, err = scanFeed(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query feed: %w", err)
	}
	return feed, nil
}

// List returns all feeds ordered by id.
func (s *Store) List(ctx context.Context) (feeds []Feed, err error) {
	defer s.timeOp("feeds.list", time.Now(), &err)
	return s.list(ctx, "SELECT "+feedColumns+" FROM feeds ORDER BY id")
}

// ListSubscribed returns the feeds the ingestion loop should poll.
func (s *Store) ListSubscribed(ctx context.Context) (feeds []Feed, err error) {
	defer s.timeOp("feeds.list", time.Now(), &err)
	return s.list(ctx, "SELECT "+feedColumns+" FROM feeds WHERE status = 'subscribed' ORDER BY id")
}

func (s *Store) list(ctx context.Context, query string) ([]Feed, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query feeds: %w", err)
	}
	defer rows.Close()

	var feeds []Feed
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("scan feed: %w", err)
		}
		feeds = append(feeds, *feed)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query feeds: %w", err)
	}
	return feeds, nil
}

// Update applies the non-nil fields of arg to the feed with the given id.
func (s *Store) Update(ctx context.Context, id int64, arg *FeedToUpdate) (err error) {
	defer s.timeOp("feeds.update", time.Now(), &err)

	var (
		sets []string
		args []interface{}
	)
	if arg.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *arg.Title)
	}
	if arg.Link != nil {
		sets = append(sets, "link = ?")
		args = append(args, *arg.Link)
	}
	if arg.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *arg.Status)
	}
	if arg.FetchOldItems != nil {
		sets = append(sets, "fetch_old_items = ?")
		args = append(args, *arg.FetchOldItems)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE feeds SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		var serr sqlite3.Error
		if errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrDuplicateFeed
		}
		return fmt.Errorf("update feed: %w", err)
	}
	return checkAffected(res)
}

// SetCheckedAt records when the ingestion loop last polled the feed.
func (s *Store) SetCheckedAt(ctx context.Context, id int64, at time.Time) (err error) {
	defer s.timeOp("feeds.set_checked_at", time.Now(), &err)

	res, err := s.db.ExecContext(ctx, "UPDATE feeds SET checked_at = ? WHERE id = ?", at.UTC(), id)
	if err != nil {
		return fmt.Errorf("update checked_at: %w", err)
	}
	return checkAffected(res)
}

// Delete removes a feed. Its items go with it via the cascade.
func (s *Store) Delete(ctx context.Context, id int64) (err error) {
	defer s.timeOp("feeds.delete", time.Now(), &err)

	res, err := s.db.ExecContext(ctx, "DELETE FROM feeds WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete feed: %w", err)
	}
	return checkAffected(res)
}

func checkAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFeed(row rowScanner) (*Feed, error) {
	var feed Feed
	if err := row.Scan(&feed.ID, &feed.Title, &feed.Link, &feed.Status,
		&feed.CheckedAt, &feed.FetchOldItems); err != nil {
		return nil, err
	}
	return &feed, nil
}
