package domain

import "time"

// FeedSource is one configured RSS/Atom feed. Sources are managed
// externally; the pipeline only reads active rows.
type FeedSource struct {
	ID         int64  `db:"id"`
	URL        string `db:"url"`
	CategoryID *int64 `db:"category_id"`
	Active     bool   `db:"active"`
}

// Candidate is a normalized feed entry that has not yet been accepted or
// rejected by the pipeline. The link is its identity for deduplication.
type Candidate struct {
	Title       string
	Link        string
	SourceName  string
	ImageURL    string
	CategoryID  *int64
	PublishedAt time.Time
}

// Post is an accepted news item as persisted. SourceLink is unique across
// runs and enforces at-most-once processing of a candidate.
type Post struct {
	ID          int64     `db:"id"`
	Type        string    `db:"type"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	ImageURL    *string   `db:"image_url"`
	SourceName  string    `db:"source_name"`
	SourceLink  string    `db:"source_link"`
	CreatedBy   string    `db:"created_by"`
	Status      string    `db:"status"`
	PublishedAt time.Time `db:"published_at"`
	CreatedAt   time.Time `db:"created_at"`
}

// PostType is the fixed type discriminator for rows written by this service.
const PostType = "post"
