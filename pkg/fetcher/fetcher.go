// Package fetcher ingests subscribed feeds: it downloads and parses each
// feed, deduplicates entries by fingerprint, and records new items.
package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/platinummonkey/collie/pkg/feeds"
	"github.com/platinummonkey/collie/pkg/items"
	"github.com/platinummonkey/collie/pkg/observability"
)

// Config controls fetch behavior.
type Config struct {
	// FetchTimeout bounds a single feed download and parse.
	FetchTimeout time.Duration

	// Proxy is an optional HTTP proxy URL for outbound requests.
	Proxy string
}

// Fetcher pulls subscribed feeds and stores their new entries. Feeds are
// fetched one at a time; the storage layer serializes writes anyway.
type Fetcher struct {
	feeds   *feeds.Store
	items   *items.Store
	parser  *gofeed.Parser
	logger  *observability.Logger
	metrics *observability.Metrics
	timeout time.Duration
	now     func() time.Time
}

// New creates a fetcher over the feed and item stores.
func New(feedStore *feeds.Store, itemStore *items.Store, logger *observability.Logger, metrics *observability.Metrics, cfg Config) (*Fetcher, error) {
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	parser := gofeed.NewParser()
	parser.Client = &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}

	return &Fetcher{
		feeds:   feedStore,
		items:   itemStore,
		parser:  parser,
		logger:  logger,
		metrics: metrics,
		timeout: timeout,
		now:     time.Now,
	}, nil
}

// FetchAll polls every subscribed feed and returns the number of newly
// ingested items. A failing feed is logged and skipped; it never aborts the
// sweep.
func (f *Fetcher) FetchAll(ctx context.Context) (int, error) {
	subscribed, err := f.feeds.ListSubscribed(ctx)
	if err != nil {
		return 0, fmt.Errorf("list subscribed feeds: %w", err)
	}

	total := 0
	for _, feed := range subscribed {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		count, err := f.fetchFeed(ctx, &feed)
		if err != nil {
			f.metrics.FetchesTotal.WithLabelValues("error").Inc()
			f.logger.WithError(err).WithField("feed", feed.ID).Warn("fetch failed")
			continue
		}
		f.metrics.FetchesTotal.WithLabelValues("ok").Inc()
		total += count
	}

	if total > 0 {
		f.metrics.NewItemsTotal.Add(float64(total))
		f.logger.WithField("new_items", total).Info("ingestion sweep complete")
	}
	return total, nil
}

// fetchFeed downloads one feed and stores its new entries.
func (f *Fetcher) fetchFeed(ctx context.Context, feed *feeds.Feed) (int, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := f.now()
	parsed, err := f.parser.ParseURLWithContext(feed.Link, fetchCtx)
	f.metrics.FetchDuration.WithLabelValues(fetchStatus(err)).Observe(time.Since(start).Seconds())
	if err != nil {
		return 0, fmt.Errorf("parse feed %d: %w", feed.ID, err)
	}

	fetchedAt := f.now().UTC()
	newCount := 0
	for _, entry := range parsed.Items {
		if entry.Title == "" && entry.Link == "" {
			continue
		}
		publishedAt := entryPublishedAt(entry, fetchedAt)
		if !feed.FetchOldItems && publishedAt.Before(feed.CheckedAt) {
			continue
		}

		inserted, err := f.items.Create(ctx, &items.ItemToCreate{
			Author:      entryAuthor(entry),
			Title:       entry.Title,
			Description: entryDescription(entry),
			Link:        entry.Link,
			PublishedAt: publishedAt,
			Feed:        feed.ID,
		})
		if err != nil {
			f.logger.WithError(err).WithField("feed", feed.ID).Warn("store item failed")
			continue
		}
		if inserted {
			newCount++
		}
	}

	if err := f.feeds.SetCheckedAt(ctx, feed.ID, fetchedAt); err != nil {
		return newCount, fmt.Errorf("update checked_at for feed %d: %w", feed.ID, err)
	}
	return newCount, nil
}

func fetchStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func entryPublishedAt(entry *gofeed.Item, fallback time.Time) time.Time {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed.UTC()
	}
	if entry.UpdatedParsed != nil {
		return entry.UpdatedParsed.UTC()
	}
	return fallback
}

func entryAuthor(entry *gofeed.Item) string {
	if len(entry.Authors) > 0 && entry.Authors[0] != nil {
		return entry.Authors[0].Name
	}
	return ""
}

func entryDescription(entry *gofeed.Item) string {
	if entry.Description != "" {
		return entry.Description
	}
	return entry.Content
}
