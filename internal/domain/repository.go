package domain

import (
	"context"
	"io"
)

// ItemStore is a keyed, insertion-ordered set of normalized items
type ItemStore interface {
	// Toggle removes the item when its key is present and inserts a copy otherwise.
	// It reports whether the key is present afterwards.
	Toggle(item NormalizedItem) bool
	Put(item NormalizedItem)
	Get(key string) (NormalizedItem, bool)
	Remove(key string)
	Clear()
	IsSelected(key string) bool
	Items() []NormalizedItem
	Len() int
	// MergeInto copies every entry into target, overwriting on key collision
	MergeInto(target ItemStore)
}

// SearchClient talks to the external search backend
type SearchClient interface {
	Search(ctx context.Context, request SearchRequest) (*SearchPayload, error)
}

// OCRClient talks to the external prescription OCR backend
type OCRClient interface {
	ExtractMedicines(ctx context.Context, image []byte, mimeType string) ([]string, error)
}

// PreferenceRepository persists the source enable flags
type PreferenceRepository interface {
	LoadSourceToggles(ctx context.Context) (SourceToggles, error)
	SaveSourceToggles(ctx context.Context, toggles SourceToggles) error
}

// ComparisonExporter renders a comparison view as a downloadable document
type ComparisonExporter interface {
	Export(view ComparisonView, w io.Writer) error
	ContentType() string
	FileExtension() string
}
