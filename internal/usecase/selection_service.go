package usecase

import (
	"fmt"

	"github.com/medcompare/backend/internal/domain"
	"github.com/sirupsen/logrus"
)

// ItemResolver finds an item of the current search results by key
type ItemResolver interface {
	Lookup(key string) (domain.NormalizedItem, bool)
}

// SelectionService implements the select and save actions on items
type SelectionService struct {
	selection domain.ItemStore
	saved     domain.ItemStore
	resolver  ItemResolver
	logger    *logrus.Logger
}

// NewSelectionService creates a selection service over the two stores
func NewSelectionService(selection, saved domain.ItemStore, resolver ItemResolver, logger *logrus.Logger) *SelectionService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SelectionService{
		selection: selection,
		saved:     saved,
		resolver:  resolver,
		logger:    logger,
	}
}

// Toggle flips the selection of key. A key that is not selected must belong
// to the current search results. It reports whether the key is selected afterwards.
func (s *SelectionService) Toggle(key string) (bool, error) {
	if key == "" {
		return false, fmt.Errorf("%w: key is required", domain.ErrInvalidRequest)
	}

	if item, ok := s.selection.Get(key); ok {
		return s.selection.Toggle(item), nil
	}

	item, ok := s.resolver.Lookup(key)
	if !ok {
		return false, fmt.Errorf("%w: %s", domain.ErrItemNotFound, key)
	}
	return s.selection.Toggle(item), nil
}

// Remove unselects key; unknown keys are ignored
func (s *SelectionService) Remove(key string) {
	s.selection.Remove(key)
}

// Clear unselects everything
func (s *SelectionService) Clear() {
	s.selection.Clear()
}

// Selected lists the selected items in selection order
func (s *SelectionService) Selected() []domain.NormalizedItem {
	return s.selection.Items()
}

// Save merges the selection into the saved items and clears the selection.
// It returns the number of items saved.
func (s *SelectionService) Save() int {
	n := s.selection.Len()
	s.selection.MergeInto(s.saved)
	s.selection.Clear()

	s.logger.WithFields(logrus.Fields{"saved": n, "total": s.saved.Len()}).Info("selection saved")
	return n
}

// Saved lists the saved items in save order
func (s *SelectionService) Saved() []domain.NormalizedItem {
	return s.saved.Items()
}

// RemoveSaved deletes key from the saved items
func (s *SelectionService) RemoveSaved(key string) {
	s.saved.Remove(key)
}

// ClearSaved deletes every saved item
func (s *SelectionService) ClearSaved() {
	s.saved.Clear()
}
