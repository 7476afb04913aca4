// Package media locates a representative image URL on a parsed feed item.
// Feed dialects encode images in several shapes (media:content,
// media:group, media:thumbnail, enclosures); each shape is handled by one
// strategy and the strategies are tried in priority order.
package media

import (
	"strings"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

type strategy func(*gofeed.Item) (string, bool)

var strategies = []strategy{
	fromMediaContent,
	fromMediaGroup,
	fromMediaThumbnail,
	fromEnclosure,
}

// ImageURL returns the best-effort image URL for item, or "" when no shape
// yields one. It never fails; the image is optional downstream.
func ImageURL(item *gofeed.Item) string {
	if item == nil {
		return ""
	}
	for _, s := range strategies {
		if url, ok := s(item); ok {
			return url
		}
	}
	return ""
}

// fromMediaContent reads the media:content extension. When the feed lists
// several entries, an entry explicitly typed as an image wins over the
// first-listed one.
func fromMediaContent(item *gofeed.Item) (string, bool) {
	return pickContent(mediaExtensions(item, "content"))
}

// fromMediaGroup reads content entries nested under media:group.
func fromMediaGroup(item *gofeed.Item) (string, bool) {
	for _, group := range mediaExtensions(item, "group") {
		if url, ok := pickContent(group.Children["content"]); ok {
			return url, true
		}
	}
	return "", false
}

func fromMediaThumbnail(item *gofeed.Item) (string, bool) {
	for _, thumb := range mediaExtensions(item, "thumbnail") {
		if url, ok := extensionURL(thumb); ok {
			return url, true
		}
	}
	return "", false
}

// fromEnclosure accepts an enclosure only when its declared type is an
// image; audio and video enclosures are common in the same field.
func fromEnclosure(item *gofeed.Item) (string, bool) {
	for _, enc := range item.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		if strings.HasPrefix(enc.Type, "image/") {
			return enc.URL, true
		}
	}
	return "", false
}

func pickContent(entries []ext.Extension) (string, bool) {
	if len(entries) == 0 {
		return "", false
	}
	for _, entry := range entries {
		if isImage(entry) {
			if url, ok := extensionURL(entry); ok {
				return url, true
			}
		}
	}
	return extensionURL(entries[0])
}

func isImage(e ext.Extension) bool {
	if e.Attrs["medium"] == "image" {
		return true
	}
	mime := e.Attrs["type"]
	// image/svg+xml is not a usable lead image.
	return strings.HasPrefix(mime, "image/") && mime != "image/svg+xml"
}

// extensionURL handles both attribute conventions seen in the wild: a url
// attribute, or the URL as the element's text value.
func extensionURL(e ext.Extension) (string, bool) {
	if url := e.Attrs["url"]; url != "" {
		return url, true
	}
	if url := strings.TrimSpace(e.Value); url != "" {
		return url, true
	}
	return "", false
}

func mediaExtensions(item *gofeed.Item, name string) []ext.Extension {
	if item.Extensions == nil {
		return nil
	}
	return item.Extensions["media"][name]
}
