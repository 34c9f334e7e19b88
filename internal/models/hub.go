// Package models defines the domain types for the cookbook hub.
package models

import "time"

// CatalogEntry is one cookbook listed in the catalog group of the manifest.
// ID is the entry's position inside the group and is not renumbered when
// entries are filtered out.
type CatalogEntry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
	Slug string `json:"slug"`
}

// EventKind classifies an access event.
type EventKind string

const (
	EventCatalog  EventKind = "catalog"
	EventMarkdown EventKind = "markdown"
	EventCode     EventKind = "code"
)

// NoSlug is recorded as the slug of requests that do not target a single item.
const NoSlug = "-"

// AccessEvent is one analytics record. It is created once per request and
// never mutated afterwards.
type AccessEvent struct {
	ID        string    `json:"id"`
	Kind      EventKind `json:"kind"`
	Slug      string    `json:"slug"`
	Branch    string    `json:"branch"`
	UserAgent string    `json:"user_agent"`
	ClientIP  string    `json:"client_ip"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
