package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/medcompare/backend/internal/domain"
	"github.com/sirupsen/logrus"
)

// SourceService reads and changes which sources take part in a search
type SourceService struct {
	preferences domain.PreferenceRepository
	logger      *logrus.Logger

	// serializes read-modify-write cycles on the preference store
	mutex sync.Mutex
}

// SourceState is one source with its enable flag
type SourceState struct {
	Source  domain.Source `json:"source"`
	Name    string        `json:"name"`
	Label   string        `json:"label"`
	Enabled bool          `json:"enabled"`
}

// NewSourceService creates a source service
func NewSourceService(preferences domain.PreferenceRepository, logger *logrus.Logger) *SourceService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SourceService{preferences: preferences, logger: logger}
}

// List returns every source in display order with its flag
func (s *SourceService) List(ctx context.Context) ([]SourceState, error) {
	toggles, err := s.preferences.LoadSourceToggles(ctx)
	if err != nil {
		return nil, err
	}
	return describeToggles(toggles), nil
}

// Toggle flips the flag of one source and persists the result
func (s *SourceService) Toggle(ctx context.Context, name string) ([]SourceState, error) {
	info, ok := domain.LookupSource(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSource, name)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	toggles, err := s.preferences.LoadSourceToggles(ctx)
	if err != nil {
		return nil, err
	}
	toggles = toggles.With(info.Source, !toggles.Enabled(info.Source))
	if err := s.preferences.SaveSourceToggles(ctx, toggles); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"source": info.Source, "enabled": toggles.Enabled(info.Source)}).Info("source toggled")
	return describeToggles(toggles), nil
}

// Update sets the given flags, keyed by source name, leaving the others unchanged
func (s *SourceService) Update(ctx context.Context, flags map[string]bool) ([]SourceState, error) {
	resolved := make(map[domain.Source]bool, len(flags))
	for name, enabled := range flags {
		info, ok := domain.LookupSource(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSource, name)
		}
		resolved[info.Source] = enabled
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	toggles, err := s.preferences.LoadSourceToggles(ctx)
	if err != nil {
		return nil, err
	}
	for source, enabled := range resolved {
		toggles = toggles.With(source, enabled)
	}
	if err := s.preferences.SaveSourceToggles(ctx, toggles); err != nil {
		return nil, err
	}
	return describeToggles(toggles), nil
}

func describeToggles(toggles domain.SourceToggles) []SourceState {
	states := make([]SourceState, 0, len(domain.Sources))
	for _, info := range domain.Sources {
		states = append(states, SourceState{
			Source:  info.Source,
			Name:    info.FlagName,
			Label:   info.Label,
			Enabled: toggles.Enabled(info.Source),
		})
	}
	return states
}
