package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/BillionaireEagleDev/ps-webservice/internal/config"
	"github.com/BillionaireEagleDev/ps-webservice/internal/domain"
)

// IngestService drives one complete run of the pipeline: aggregate
// candidates, filter them, then extract, summarize and persist up to the
// per-run cap, throttled between successful insertions. Runs are serialized
// by a mutex; callers (HTTP trigger, scheduler) share one service value.
type IngestService struct {
	sources    SourceStore
	posts      PostStore
	aggregator Aggregator
	extractor  Extractor
	summarizer Summarizer
	publisher  Publisher
	logger     *slog.Logger
	config     config.IngestConfig

	mu    sync.Mutex
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewIngestService(
	sources SourceStore,
	posts PostStore,
	aggregator Aggregator,
	extractor Extractor,
	summarizer Summarizer,
	publisher Publisher,
	logger *slog.Logger,
	cfg config.IngestConfig,
) *IngestService {
	return &IngestService{
		sources:    sources,
		posts:      posts,
		aggregator: aggregator,
		extractor:  extractor,
		summarizer: summarizer,
		publisher:  publisher,
		logger:     logger,
		config:     cfg,
		now:        time.Now,
		sleep:      sleepCtx,
	}
}

// Run executes one ingestion run and returns its statistics. Per-candidate
// failures are logged and skipped; only a failure to load the feed sources
// (or context cancellation during the throttle wait) fails the run.
func (s *IngestService) Run(ctx context.Context) (*domain.RunStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	startTime := s.now()

	sources, err := s.sources.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load feed sources: %w", err)
	}

	candidates := s.aggregator.Aggregate(ctx, sources)

	stats := &domain.RunStats{
		Sources: len(sources),
		Fetched: len(candidates),
	}
	s.logger.Info("starting run",
		"sources", len(sources),
		"candidates", len(candidates),
	)

	fresh := s.filter(ctx, candidates)
	stats.Rejected = len(candidates) - len(fresh)

	itemsToProcess := s.config.MaxPostsPerRun
	if len(fresh) < itemsToProcess {
		itemsToProcess = len(fresh)
	}

	needDelay := false
	for i := range fresh {
		if stats.Processed >= itemsToProcess {
			break
		}
		if needDelay {
			if err := s.sleep(ctx, s.config.InsertDelay); err != nil {
				return stats, err
			}
			needDelay = false
		}

		stats.Attempted++
		candidate := fresh[i]
		if err := s.processCandidate(ctx, candidate); err != nil {
			stats.Errors++
			s.logger.Warn("candidate skipped",
				"link", candidate.Link,
				"error", err,
			)
			continue
		}

		stats.Processed++
		needDelay = true
	}

	stats.Duration = time.Since(startTime)
	s.logger.Info("run completed",
		"fetched", stats.Fetched,
		"rejected", stats.Rejected,
		"attempted", stats.Attempted,
		"processed", stats.Processed,
		"errors", stats.Errors,
		"duration", stats.Duration,
	)

	return stats, nil
}

// filter applies both admission predicates in order, preserving the
// aggregation order of survivors. The persisted-link check runs before any
// paid external call is made for a candidate.
func (s *IngestService) filter(ctx context.Context, candidates []domain.Candidate) []domain.Candidate {
	fresh := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		exists, err := s.posts.ExistsBySourceLink(ctx, c.Link)
		if err != nil {
			s.logger.Warn("dedup check failed, candidate rejected",
				"link", c.Link,
				"error", err,
			)
			continue
		}
		if exists {
			s.logger.Debug("candidate already processed", "link", c.Link)
			continue
		}
		if !s.publishedToday(c.PublishedAt) {
			s.logger.Debug("candidate not published today",
				"link", c.Link,
				"published_at", c.PublishedAt,
			)
			continue
		}
		fresh = append(fresh, c)
	}
	return fresh
}

// publishedToday reports whether t falls on the current calendar day in
// process-local time. The zero time (unparsable feed date) never does.
func (s *IngestService) publishedToday(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	y1, m1, d1 := t.Local().Date()
	y2, m2, d2 := s.now().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func (s *IngestService) processCandidate(ctx context.Context, c domain.Candidate) error {
	text, err := s.extractor.Extract(ctx, c.Link)
	if err != nil {
		return fmt.Errorf("extract article: %w", err)
	}

	summary, err := s.summarizer.Summarize(ctx, text)
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}

	// Single authoritative acceptance check; the summarizer's internal word
	// count only drives its retry loop.
	if words := len(strings.Fields(summary)); words < s.config.MinWords {
		return fmt.Errorf("summary too short: %d words (minimum %d)", words, s.config.MinWords)
	}

	post := &domain.Post{
		Type:        domain.PostType,
		Title:       c.Title,
		Description: summary,
		SourceName:  c.SourceName,
		SourceLink:  c.Link,
		CreatedBy:   s.config.CreatedBy,
		Status:      s.config.PostStatus,
		PublishedAt: c.PublishedAt,
	}
	if c.ImageURL != "" {
		post.ImageURL = &c.ImageURL
	}

	id, err := s.posts.Insert(ctx, post)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	post.ID = id

	if c.CategoryID != nil {
		if err := s.posts.InsertCategoryLink(ctx, id, *c.CategoryID); err != nil {
			return fmt.Errorf("link category: %w", err)
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, post); err != nil {
			// The post is persisted; losing the event is not a candidate failure.
			s.logger.Warn("publish post event failed",
				"post_id", id,
				"error", err,
			)
		}
	}

	s.logger.Info("post created",
		"post_id", id,
		"link", c.Link,
		"summary_words", len(strings.Fields(summary)),
	)

	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
