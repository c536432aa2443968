package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/medcompare/backend/internal/domain"
	"github.com/medcompare/backend/internal/infrastructure/metrics"
	"github.com/medcompare/backend/internal/pricing"
	"github.com/sirupsen/logrus"
)

// SearchService runs searches against the backend and keeps the latest
// results for selection and display.
type SearchService struct {
	client       domain.SearchClient
	preferences  domain.PreferenceRepository
	selection    domain.ItemStore
	preprocessor *QueryPreprocessor
	normalizer   func(domain.Source) domain.Normalizer
	logger       *logrus.Logger

	// sequence identifies the latest search; responses of older ones are dropped
	sequence atomic.Uint64

	mutex   sync.RWMutex
	current *domain.SearchOutcome
	results map[string]domain.NormalizedItem
}

// NewSearchService creates a search service. normalizer resolves the mapping
// function of each source.
func NewSearchService(
	client domain.SearchClient,
	preferences domain.PreferenceRepository,
	selection domain.ItemStore,
	normalizer func(domain.Source) domain.Normalizer,
	preprocessor *QueryPreprocessor,
	logger *logrus.Logger,
) *SearchService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if preprocessor == nil {
		preprocessor = NewQueryPreprocessor(logger, false)
	}
	return &SearchService{
		client:       client,
		preferences:  preferences,
		selection:    selection,
		preprocessor: preprocessor,
		normalizer:   normalizer,
		logger:       logger,
		results:      make(map[string]domain.NormalizedItem),
	}
}

// Search runs a new search. Previous results and the current selection are
// cleared before the backend is called, so a failed search leaves nothing
// behind. A search overtaken by a newer one returns domain.ErrStaleSearch.
func (s *SearchService) Search(ctx context.Context, query string) (*domain.SearchOutcome, error) {
	keyword := s.preprocessor.PreprocessQuery(query)
	if keyword == "" {
		metrics.SearchTotals.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidRequest)
	}

	seq := s.sequence.Add(1)
	log := s.logger.WithFields(logrus.Fields{"query": keyword, "sequence": seq})

	toggles := s.loadToggles(ctx)

	if err := s.reset(seq); err != nil {
		metrics.SearchTotals.WithLabelValues("stale").Inc()
		log.Debug("search superseded before it started")
		return nil, err
	}

	payload, err := s.client.Search(ctx, domain.SearchRequest{
		Keyword:         keyword,
		EnabledScrapers: toggles,
	})
	if !s.isLatest(seq) {
		metrics.SearchTotals.WithLabelValues("stale").Inc()
		log.Debug("discarding superseded search response")
		return nil, domain.ErrStaleSearch
	}
	if err != nil {
		metrics.SearchTotals.WithLabelValues("failed").Inc()
		log.WithError(err).Warn("search failed")
		return nil, err
	}
	if payload == nil {
		payload = &domain.SearchPayload{}
	}

	outcome, items := s.buildOutcome(keyword, seq, toggles, payload)

	s.mutex.Lock()
	if !s.isLatest(seq) {
		s.mutex.Unlock()
		metrics.SearchTotals.WithLabelValues("stale").Inc()
		return nil, domain.ErrStaleSearch
	}
	s.current = outcome
	s.results = items
	s.mutex.Unlock()

	metrics.SearchTotals.WithLabelValues("ok").Inc()
	log.WithFields(logrus.Fields{"tables": len(outcome.Tables), "target": payload.Target}).Info("search completed")
	return s.withSelection(outcome), nil
}

// Current returns the latest search outcome with selection flags refreshed,
// or nil when there is none.
func (s *SearchService) Current() *domain.SearchOutcome {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.current == nil {
		return nil
	}
	return s.withSelection(s.current)
}

// withSelection copies a stored outcome and marks the selected rows
func (s *SearchService) withSelection(current *domain.SearchOutcome) *domain.SearchOutcome {
	outcome := &domain.SearchOutcome{
		Query:    current.Query,
		Sequence: current.Sequence,
		Tables:   make([]domain.SourceTable, 0, len(current.Tables)),
	}
	for _, table := range current.Tables {
		rows := make([]domain.TableRow, len(table.Rows))
		for i, row := range table.Rows {
			rows[i] = domain.TableRow{
				Item:     row.Item.Clone(),
				Display:  row.Display,
				Selected: s.selection.IsSelected(row.Item.Key),
			}
		}
		table.Rows = rows
		outcome.Tables = append(outcome.Tables, table)
	}
	return outcome
}

// Lookup finds an item of the current results by key
func (s *SearchService) Lookup(key string) (domain.NormalizedItem, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	item, ok := s.results[key]
	if !ok {
		return domain.NormalizedItem{}, false
	}
	return item.Clone(), true
}

// reset drops the results and the selection, unless a newer search has
// already started and owns them.
func (s *SearchService) reset(seq uint64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isLatest(seq) {
		return domain.ErrStaleSearch
	}
	s.current = nil
	s.results = make(map[string]domain.NormalizedItem)
	s.selection.Clear()
	return nil
}

func (s *SearchService) isLatest(seq uint64) bool {
	return s.sequence.Load() == seq
}

func (s *SearchService) loadToggles(ctx context.Context) domain.SourceToggles {
	if s.preferences == nil {
		return domain.DefaultSourceToggles()
	}
	toggles, err := s.preferences.LoadSourceToggles(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("failed to load source preferences, enabling all sources")
		return domain.DefaultSourceToggles()
	}
	return toggles
}

// buildOutcome renders one table per source that is enabled, present, ok
// and has products. Other sources are left out without error.
func (s *SearchService) buildOutcome(
	keyword string,
	seq uint64,
	toggles domain.SourceToggles,
	payload *domain.SearchPayload,
) (*domain.SearchOutcome, map[string]domain.NormalizedItem) {
	outcome := &domain.SearchOutcome{Query: keyword, Sequence: seq, Tables: []domain.SourceTable{}}
	items := make(map[string]domain.NormalizedItem)

	for _, info := range domain.Sources {
		source := payload.Sources[info.Source]
		if !toggles.Enabled(info.Source) || !source.Present || !source.OK || len(source.Products) == 0 {
			metrics.SourceProducts.WithLabelValues(info.KeyPrefix).Observe(0)
			continue
		}

		normalize := s.normalizer(info.Source)
		if normalize == nil {
			s.logger.WithField("source", info.Source).Error("no normalizer registered")
			continue
		}

		table := domain.SourceTable{
			Source: info.Source,
			Label:  info.Label,
			Query:  keyword,
			Rows:   make([]domain.TableRow, 0, len(source.Products)),
		}
		if info.Source == domain.SourceTruemeds {
			table.ProductsCount = source.ProductsCount
		}

		for _, raw := range source.Products {
			item := normalize(raw)
			table.Rows = append(table.Rows, domain.TableRow{Item: item, Display: pricing.Describe(item)})
			items[item.Key] = item
		}

		metrics.SourceProducts.WithLabelValues(info.KeyPrefix).Observe(float64(len(table.Rows)))
		outcome.Tables = append(outcome.Tables, table)
	}
	return outcome, items
}
