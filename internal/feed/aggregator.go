package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/BillionaireEagleDev/ps-webservice/internal/domain"
	"github.com/BillionaireEagleDev/ps-webservice/internal/media"
)

// Aggregator fetches and parses a set of feed sources into candidates.
type Aggregator struct {
	parser  *gofeed.Parser
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

func NewAggregator(timeout time.Duration, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		parser:  gofeed.NewParser(),
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
	}
}

// Aggregate returns the union of candidates across all sources, in source
// order. A fetch or parse failure for one source is logged and skipped; it
// never aborts aggregation of the remaining sources.
func (a *Aggregator) Aggregate(ctx context.Context, sources []domain.FeedSource) []domain.Candidate {
	var candidates []domain.Candidate

	for _, src := range sources {
		items, err := a.fetchSource(ctx, src)
		if err != nil {
			a.logger.Warn("feed source skipped",
				"url", src.URL,
				"error", err,
			)
			continue
		}
		candidates = append(candidates, items...)

		a.logger.Debug("feed source aggregated",
			"url", src.URL,
			"candidates", len(items),
		)
	}

	return candidates
}

func (a *Aggregator) fetchSource(ctx context.Context, src domain.FeedSource) ([]domain.Candidate, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	parsed, err := a.parser.ParseURLWithContext(src.URL, fetchCtx)
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.Candidate, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		candidates = append(candidates, domain.Candidate{
			Title:       item.Title,
			Link:        item.Link,
			SourceName:  parsed.Title,
			ImageURL:    media.ImageURL(item),
			CategoryID:  src.CategoryID,
			PublishedAt: publishedAt(item, a.now()),
		})
	}
	return candidates, nil
}

// publishedAt resolves an item's publish time. An item that carries no date
// at all defaults to the processing time; a date string gofeed could not
// parse yields the zero time, which the freshness filter rejects.
func publishedAt(item *gofeed.Item, now time.Time) time.Time {
	switch {
	case item.PublishedParsed != nil:
		return *item.PublishedParsed
	case item.UpdatedParsed != nil:
		return *item.UpdatedParsed
	case item.Published == "" && item.Updated == "":
		return now
	default:
		return time.Time{}
	}
}
