package usecase

import (
	"fmt"
	"io"

	"github.com/medcompare/backend/internal/domain"
	"github.com/medcompare/backend/internal/pricing"
)

const (
	selectedTitle   = "Compare Selected Items"
	savedTitle      = "Saved Items"
	savedEmptyText  = "No saved items yet. Use the Save button to save selected items."
	minCompareItems = 2
)

// CompareService builds the side-by-side view of the selected or saved items
type CompareService struct {
	selection domain.ItemStore
	saved     domain.ItemStore
	exporter  domain.ComparisonExporter
}

// NewCompareService creates a compare service. exporter may be nil when
// export is not offered.
func NewCompareService(selection, saved domain.ItemStore, exporter domain.ComparisonExporter) *CompareService {
	return &CompareService{
		selection: selection,
		saved:     saved,
		exporter:  exporter,
	}
}

// ParseList resolves a list name; empty means the selection
func ParseList(name string) (domain.ItemList, error) {
	switch domain.ItemList(name) {
	case "", domain.ListSelected:
		return domain.ListSelected, nil
	case domain.ListSaved:
		return domain.ListSaved, nil
	}
	return "", fmt.Errorf("%w: unknown list %q", domain.ErrInvalidRequest, name)
}

// Build renders one row per item of list in store order
func (s *CompareService) Build(list domain.ItemList) (*domain.ComparisonView, error) {
	view := &domain.ComparisonView{List: list}

	switch list {
	case domain.ListSelected:
		view.Title = selectedTitle
		view.Items = s.selection.Items()
	case domain.ListSaved:
		view.Title = savedTitle
		view.Items = s.saved.Items()
		if len(view.Items) == 0 {
			view.EmptyMessage = savedEmptyText
		}
	default:
		return nil, fmt.Errorf("%w: unknown list %q", domain.ErrInvalidRequest, list)
	}

	view.Rows = make([]domain.DisplayRow, 0, len(view.Items))
	for _, item := range view.Items {
		view.Rows = append(view.Rows, pricing.Describe(item))
	}
	view.CanCompare = len(view.Items) >= minCompareItems
	return view, nil
}

// Export writes the view of list through the configured exporter
func (s *CompareService) Export(list domain.ItemList, w io.Writer) error {
	if s.exporter == nil {
		return fmt.Errorf("%w: export is not available", domain.ErrInvalidRequest)
	}
	view, err := s.Build(list)
	if err != nil {
		return err
	}
	return s.exporter.Export(*view, w)
}

// ExportFormat returns the content type and file extension of exports
func (s *CompareService) ExportFormat() (contentType, extension string) {
	if s.exporter == nil {
		return "", ""
	}
	return s.exporter.ContentType(), s.exporter.FileExtension()
}
