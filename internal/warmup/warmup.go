// Package warmup refreshes portal data (work schedules, news,
// announcements) and rebuilds the retrieval index, both at startup and
// on the periodic refresh schedule.
package warmup

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tbu-portal/tbu-chatbot-go/internal/faq"
	"github.com/tbu-portal/tbu-chatbot-go/internal/logger"
	"github.com/tbu-portal/tbu-chatbot-go/internal/metrics"
	"github.com/tbu-portal/tbu-chatbot-go/internal/rag"
	"github.com/tbu-portal/tbu-chatbot-go/internal/scraper"
	"github.com/tbu-portal/tbu-chatbot-go/internal/storage"
)

// Stats tracks refresh counts. Fields use atomic operations because
// tasks run concurrently.
type Stats struct {
	Schedules     atomic.Int64
	News          atomic.Int64
	Announcements atomic.Int64
	IndexedDocs   atomic.Int64
}

// Options configures a refresh run.
type Options struct {
	Metrics  *metrics.Metrics
	Index    *rag.Index // rebuilt after data tasks finish, nil disables
	FAQItems []faq.Item // indexed alongside scraped content
}

// Run refreshes all data sources concurrently, then rebuilds the
// retrieval index from the database. A failed source does not abort
// the others; the joined error is returned after all tasks finish.
func Run(ctx context.Context, db *storage.DB, portal *scraper.Portal, log *logger.Logger, opts Options) (*Stats, error) {
	stats := &Stats{}
	startTime := time.Now()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return refreshSchedules(gctx, db, portal, log, stats, opts.Metrics)
	})
	g.Go(func() error {
		return refreshNews(gctx, db, portal, log, stats, opts.Metrics)
	})
	g.Go(func() error {
		return refreshAnnouncements(gctx, db, portal, log, stats, opts.Metrics)
	})

	err := g.Wait()

	// Rebuild the index from whatever the database holds now, even
	// after partial failures. Stale data beats an empty index.
	if opts.Index != nil {
		if idxErr := rebuildIndex(ctx, db, opts.Index, opts.FAQItems, stats, opts.Metrics); idxErr != nil {
			log.WithError(idxErr).Warn("retrieval index rebuild failed")
		}
	}

	duration := time.Since(startTime)
	if opts.Metrics != nil {
		opts.Metrics.RecordWarmupDuration(duration.Seconds())
	}
	log.WithField("duration", duration).
		WithField("schedules", stats.Schedules.Load()).
		WithField("news", stats.News.Load()).
		WithField("announcements", stats.Announcements.Load()).
		WithField("indexed_docs", stats.IndexedDocs.Load()).
		Info("data refresh complete")

	if err != nil {
		log.WithError(err).Warn("some sources failed during refresh")
		return stats, err
	}
	return stats, nil
}

// RunInBackground executes a refresh asynchronously and marks readiness
// when it finishes. Uses context.Background() so an HTTP request
// timeout cannot cancel the refresh midway.
//
//nolint:contextcheck // intentionally detached from the caller's context
func RunInBackground(_ context.Context, db *storage.DB, portal *scraper.Portal, log *logger.Logger, readiness *ReadinessState, opts Options) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.WithField("panic", r).Error("panic in background data refresh")
			}
		}()

		_, err := Run(context.Background(), db, portal, log, opts)
		if err != nil {
			log.WithError(err).Warn("background data refresh finished with errors")
		}
		if readiness != nil {
			readiness.MarkReady()
		}
	}()
}

func refreshSchedules(ctx context.Context, db *storage.DB, portal *scraper.Portal, log *logger.Logger, stats *Stats, m *metrics.Metrics) error {
	entries, err := portal.FetchSchedules(ctx)
	if err != nil {
		recordTask(m, "schedules", "error")
		return fmt.Errorf("fetch schedules: %w", err)
	}
	if len(entries) == 0 {
		// An empty table usually means a layout change, not an empty
		// week. Keep the cached rows.
		recordTask(m, "schedules", "empty")
		log.Warn("schedule page yielded no rows, keeping cached data")
		return nil
	}
	if err := db.ReplaceSchedules(ctx, entries); err != nil {
		recordTask(m, "schedules", "error")
		return fmt.Errorf("save schedules: %w", err)
	}
	stats.Schedules.Add(int64(len(entries)))
	recordTask(m, "schedules", "success")
	log.WithField("count", len(entries)).Info("work schedules cached")
	return nil
}

func refreshNews(ctx context.Context, db *storage.DB, portal *scraper.Portal, log *logger.Logger, stats *Stats, m *metrics.Metrics) error {
	items, err := portal.FetchNews(ctx)
	if err != nil {
		recordTask(m, "news", "error")
		return fmt.Errorf("fetch news: %w", err)
	}
	if err := db.SaveNewsBatch(ctx, items); err != nil {
		recordTask(m, "news", "error")
		return fmt.Errorf("save news: %w", err)
	}
	stats.News.Add(int64(len(items)))
	recordTask(m, "news", "success")
	log.WithField("count", len(items)).Info("news cached")
	return nil
}

func refreshAnnouncements(ctx context.Context, db *storage.DB, portal *scraper.Portal, log *logger.Logger, stats *Stats, m *metrics.Metrics) error {
	items, err := portal.FetchAnnouncements(ctx)
	if err != nil {
		recordTask(m, "announcements", "error")
		return fmt.Errorf("fetch announcements: %w", err)
	}
	if err := db.SaveNewsBatch(ctx, items); err != nil {
		recordTask(m, "announcements", "error")
		return fmt.Errorf("save announcements: %w", err)
	}
	stats.Announcements.Add(int64(len(items)))
	recordTask(m, "announcements", "success")
	log.WithField("count", len(items)).Info("announcements cached")
	return nil
}

// rebuildIndex loads FAQ entries, schedules and news into the BM25
// index so the generative fallback can ground its answers.
func rebuildIndex(ctx context.Context, db *storage.DB, idx *rag.Index, faqItems []faq.Item, stats *Stats, m *metrics.Metrics) error {
	docs := make([]rag.Document, 0, len(faqItems)+64)
	for i, item := range faqItems {
		docs = append(docs, rag.Document{
			ID:      fmt.Sprintf("faq-%d", i),
			Kind:    rag.KindFAQ,
			Title:   item.Question,
			Content: item.Answer,
		})
	}

	schedules, err := db.GetSchedules(ctx)
	if err != nil {
		return fmt.Errorf("load schedules for index: %w", err)
	}
	for _, s := range schedules {
		docs = append(docs, rag.Document{
			ID:      "schedule-" + s.ID,
			Kind:    rag.KindSchedule,
			Title:   s.Content,
			Content: fmt.Sprintf("%s %s %s", s.Location, s.Leader, s.Date.Format("02/01/2006")),
		})
	}

	for _, kind := range []string{storage.KindNews, storage.KindAnnouncement} {
		items, err := db.GetRecentNews(ctx, kind, 50)
		if err != nil {
			return fmt.Errorf("load %s for index: %w", kind, err)
		}
		for _, n := range items {
			docs = append(docs, rag.Document{
				ID:      "news-" + n.ID,
				Kind:    rag.KindNews,
				Title:   n.Title,
				Content: n.PublishedAt,
			})
		}
	}

	if err := idx.Initialize(docs); err != nil {
		recordTask(m, "index", "error")
		return err
	}
	stats.IndexedDocs.Store(int64(idx.Count()))
	recordTask(m, "index", "success")
	return nil
}

func recordTask(m *metrics.Metrics, task, status string) {
	if m != nil {
		m.RecordWarmupTask(task, status)
	}
}
