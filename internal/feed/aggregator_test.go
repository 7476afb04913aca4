package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BillionaireEagleDev/ps-webservice/internal/domain"
	"github.com/BillionaireEagleDev/ps-webservice/testdata/utils"
)

const feedTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
  <channel>
    <title>%s</title>
    <link>https://news.example.com</link>
    %s
  </channel>
</rss>`

func serveFeed(t *testing.T, title, items string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, feedTemplate, title, items)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestAggregate_NormalizesItems(t *testing.T) {
	srv := serveFeed(t, "Example Wire", `
    <item>
      <title>Storm hits coast</title>
      <link>https://news.example.com/storm</link>
      <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
      <media:content url="https://cdn.example.com/storm.jpg" type="image/jpeg"/>
    </item>`)

	agg := NewAggregator(5*time.Second, testLogger())
	sources := []domain.FeedSource{
		{ID: 1, URL: srv.URL, CategoryID: utils.Ptr(int64(7)), Active: true},
	}

	candidates := agg.Aggregate(context.Background(), sources)

	require.Len(t, candidates, 1)
	c := candidates[0]
	assert.Equal(t, "Storm hits coast", c.Title)
	assert.Equal(t, "https://news.example.com/storm", c.Link)
	assert.Equal(t, "Example Wire", c.SourceName)
	assert.Equal(t, "https://cdn.example.com/storm.jpg", c.ImageURL)
	require.NotNil(t, c.CategoryID)
	assert.Equal(t, int64(7), *c.CategoryID)
	assert.Equal(t, 2006, c.PublishedAt.Year())
}

func TestAggregate_SourceFailureIsIsolated(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer broken.Close()

	healthy := serveFeed(t, "Healthy Wire", `
    <item>
      <title>Still here</title>
      <link>https://news.example.com/ok</link>
      <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
    </item>`)

	agg := NewAggregator(5*time.Second, testLogger())
	sources := []domain.FeedSource{
		{ID: 1, URL: broken.URL, Active: true},
		{ID: 2, URL: healthy.URL, Active: true},
	}

	candidates := agg.Aggregate(context.Background(), sources)

	require.Len(t, candidates, 1)
	assert.Equal(t, "Still here", candidates[0].Title)
}

func TestAggregate_MissingDateDefaultsToNow(t *testing.T) {
	srv := serveFeed(t, "Undated Wire", `
    <item>
      <title>No date</title>
      <link>https://news.example.com/nodate</link>
    </item>`)

	fixed := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	agg := NewAggregator(5*time.Second, testLogger())
	agg.now = func() time.Time { return fixed }

	candidates := agg.Aggregate(context.Background(), []domain.FeedSource{{URL: srv.URL}})

	require.Len(t, candidates, 1)
	assert.True(t, candidates[0].PublishedAt.Equal(fixed))
}

func TestAggregate_UnparsableDateYieldsZeroTime(t *testing.T) {
	srv := serveFeed(t, "Garbled Wire", `
    <item>
      <title>Bad date</title>
      <link>https://news.example.com/baddate</link>
      <pubDate>sometime recently</pubDate>
    </item>`)

	agg := NewAggregator(5*time.Second, testLogger())

	candidates := agg.Aggregate(context.Background(), []domain.FeedSource{{URL: srv.URL}})

	require.Len(t, candidates, 1)
	assert.True(t, candidates[0].PublishedAt.IsZero())
}
