package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/BillionaireEagleDev/ps-webservice/internal/domain"
)

type PostStore struct {
	db *sqlx.DB
}

func NewPostStore(db *sqlx.DB) *PostStore {
	return &PostStore{db: db}
}

func (s *PostStore) Insert(ctx context.Context, post *domain.Post) (int64, error) {
	query := `
		INSERT INTO posts (
			type, title, description, image_url, source_name, source_link,
			created_by, status, published_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		RETURNING id`

	var id int64
	err := s.db.QueryRowContext(ctx, query,
		post.Type,
		post.Title,
		post.Description,
		post.ImageURL,
		post.SourceName,
		post.SourceLink,
		post.CreatedBy,
		post.Status,
		post.PublishedAt,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	return id, nil
}

func (s *PostStore) InsertCategoryLink(ctx context.Context, postID, categoryID int64) error {
	query := `
		INSERT INTO post_categories (post_id, category_id, kind)
		VALUES ($1, $2, 'category')
		ON CONFLICT (post_id, category_id) DO NOTHING`

	_, err := s.db.ExecContext(ctx, query, postID, categoryID)
	return err
}

func (s *PostStore) ExistsBySourceLink(ctx context.Context, link string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM posts WHERE source_link = $1)",
		link,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
