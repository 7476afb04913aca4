package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/BillionaireEagleDev/ps-webservice/internal/domain"
)

type SourceStore struct {
	db *sqlx.DB
}

func NewSourceStore(db *sqlx.DB) *SourceStore {
	return &SourceStore{db: db}
}

func (s *SourceStore) ListActive(ctx context.Context) ([]domain.FeedSource, error) {
	query := `
		SELECT id, url, category_id, active
		FROM feed_sources
		WHERE active = true
		ORDER BY id`

	var sources []domain.FeedSource
	err := s.db.SelectContext(ctx, &sources, query)
	return sources, err
}
