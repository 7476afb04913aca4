package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/BillionaireEagleDev/ps-webservice/internal/domain"
)

type SourceStore interface {
	ListActive(ctx context.Context) ([]domain.FeedSource, error)
}

type PostStore interface {
	Insert(ctx context.Context, post *domain.Post) (int64, error)
	InsertCategoryLink(ctx context.Context, postID, categoryID int64) error
	ExistsBySourceLink(ctx context.Context, link string) (bool, error)
}

type Aggregator interface {
	Aggregate(ctx context.Context, sources []domain.FeedSource) []domain.Candidate
}

type Extractor interface {
	Extract(ctx context.Context, articleURL string) (string, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

type Publisher interface {
	Publish(ctx context.Context, post *domain.Post) error
	Close() error
}
