package models

import (
	"strings"
	"time"
)

// Photo is the persisted metadata for one uploaded photo.
type Photo struct {
	Filename     string `json:"filename" msgpack:"filename"`
	URL          string `json:"url,omitempty" msgpack:"url,omitempty"`
	UploadedAt   string `json:"uploadedAt,omitempty" msgpack:"uploadedAt,omitempty"`
	DateUploaded string `json:"dateUploaded,omitempty" msgpack:"dateUploaded,omitempty"` // legacy alias of UploadedAt
}

// PhotoURLPrefix is the path under which stored photos resolve when a record carries no URL.
const PhotoURLPrefix = "/photos/"

// timestampLayouts are tried in order when reading stored timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ResolvedURL returns the stored URL, or /photos/{filename} when none was recorded.
func (p Photo) ResolvedURL() string {
	if p.URL != "" {
		return p.URL
	}
	return PhotoURLPrefix + p.Filename
}

// EffectiveTime returns UploadedAt, falling back to DateUploaded and then to the Unix epoch.
// Values that cannot be parsed are skipped as if absent.
func (p Photo) EffectiveTime() time.Time {
	for _, raw := range []string{p.UploadedAt, p.DateUploaded} {
		if ts, ok := ParseTimestamp(raw); ok {
			return ts
		}
	}
	return time.Unix(0, 0).UTC()
}

// ParseTimestamp parses an ISO-8601 timestamp. Zone-less values are read as UTC.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders t the way browsers' Date.toISOString does (UTC, millisecond precision).
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
