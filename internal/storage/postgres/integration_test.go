//go:build integration

package postgres

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/BillionaireEagleDev/ps-webservice/internal/domain"
	"github.com/BillionaireEagleDev/ps-webservice/testdata/utils"
)

type PostgresIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	db        *sqlx.DB
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	migrationsPath, err := filepath.Abs("../../../migrations")
	s.Require().NoError(err)

	container, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.WithInitScripts(
			filepath.Join(migrationsPath, "001_create_posts.up.sql"),
			filepath.Join(migrationsPath, "002_create_feed_sources.up.sql"),
		),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := sqlx.Connect("postgres", connStr)
	s.Require().NoError(err)
	s.db = db
}

func (s *PostgresIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresIntegrationSuite) SetupTest() {
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM post_categories")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM posts")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM feed_sources")
}

func TestPostgresIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}

func testPost(link string) *domain.Post {
	return &domain.Post{
		Type:        domain.PostType,
		Title:       "Test Post",
		Description: "A summary of the article.",
		ImageURL:    utils.Ptr("https://example.com/image.jpg"),
		SourceName:  "Example Wire",
		SourceLink:  link,
		CreatedBy:   "system",
		Status:      "published",
		PublishedAt: time.Now().Truncate(time.Microsecond),
	}
}

func (s *PostgresIntegrationSuite) TestPostStore_Insert() {
	store := NewPostStore(s.db)

	id, err := store.Insert(s.ctx, testPost("https://example.com/article"))
	s.NoError(err)
	s.Greater(id, int64(0))

	var count int
	err = s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM posts WHERE source_link = $1", "https://example.com/article")
	s.NoError(err)
	s.Equal(1, count)
}

func (s *PostgresIntegrationSuite) TestPostStore_Insert_DuplicateLinkRejected() {
	store := NewPostStore(s.db)

	_, err := store.Insert(s.ctx, testPost("https://example.com/article"))
	s.NoError(err)

	_, err = store.Insert(s.ctx, testPost("https://example.com/article"))
	s.Error(err)
}

func (s *PostgresIntegrationSuite) TestPostStore_ExistsBySourceLink() {
	store := NewPostStore(s.db)

	exists, err := store.ExistsBySourceLink(s.ctx, "https://example.com/article")
	s.NoError(err)
	s.False(exists)

	_, err = store.Insert(s.ctx, testPost("https://example.com/article"))
	s.NoError(err)

	exists, err = store.ExistsBySourceLink(s.ctx, "https://example.com/article")
	s.NoError(err)
	s.True(exists)
}

func (s *PostgresIntegrationSuite) TestPostStore_InsertCategoryLink() {
	store := NewPostStore(s.db)

	id, err := store.Insert(s.ctx, testPost("https://example.com/article"))
	s.NoError(err)

	err = store.InsertCategoryLink(s.ctx, id, 7)
	s.NoError(err)

	// repeated link is a no-op
	err = store.InsertCategoryLink(s.ctx, id, 7)
	s.NoError(err)

	var count int
	err = s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM post_categories WHERE post_id = $1", id)
	s.NoError(err)
	s.Equal(1, count)

	var kind string
	err = s.db.GetContext(s.ctx, &kind, "SELECT kind FROM post_categories WHERE post_id = $1", id)
	s.NoError(err)
	s.Equal("category", kind)
}

func (s *PostgresIntegrationSuite) TestSourceStore_ListActive() {
	store := NewSourceStore(s.db)

	_, err := s.db.ExecContext(s.ctx, `
		INSERT INTO feed_sources (url, category_id, active) VALUES
		('https://a.example.com/rss', 7, true),
		('https://b.example.com/rss', NULL, true),
		('https://c.example.com/rss', NULL, false)`)
	s.NoError(err)

	sources, err := store.ListActive(s.ctx)
	s.NoError(err)
	s.Len(sources, 2)

	s.Equal("https://a.example.com/rss", sources[0].URL)
	s.Require().NotNil(sources[0].CategoryID)
	s.Equal(int64(7), *sources[0].CategoryID)
	s.Equal("https://b.example.com/rss", sources[1].URL)
	s.Nil(sources[1].CategoryID)
}

func (s *PostgresIntegrationSuite) TestSourceStore_ListActive_Empty() {
	store := NewSourceStore(s.db)

	sources, err := store.ListActive(s.ctx)
	s.NoError(err)
	s.Empty(sources)
}
