package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/medcompare/backend/internal/domain"
)

func enabledOf(states []SourceState, source domain.Source) bool {
	for _, s := range states {
		if s.Source == source {
			return s.Enabled
		}
	}
	return false
}

func TestSourceList(t *testing.T) {
	prefs := NewMockPreferences()
	prefs.toggles = prefs.toggles.With(domain.SourceNetmeds, false)
	svc := NewSourceService(prefs, testLogger())

	states, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(states) != len(domain.Sources) {
		t.Fatalf("states = %d, want %d", len(states), len(domain.Sources))
	}
	if states[0].Source != domain.SourceApollo || states[0].Label != "Apollo Pharmacy" {
		t.Errorf("first state = %+v", states[0])
	}
	if states[3].Name != "onemg" {
		t.Errorf("1mg flag name = %q, want onemg", states[3].Name)
	}
	if enabledOf(states, domain.SourceNetmeds) {
		t.Error("netmeds should be disabled")
	}
}

func TestSourceToggle(t *testing.T) {
	prefs := NewMockPreferences()
	svc := NewSourceService(prefs, testLogger())
	ctx := context.Background()

	states, err := svc.Toggle(ctx, "onemg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if enabledOf(states, domain.SourceOneMg) || prefs.toggles.OneMg {
		t.Error("1mg should be disabled and persisted")
	}

	states, _ = svc.Toggle(ctx, "1mg")
	if !enabledOf(states, domain.SourceOneMg) {
		t.Error("1mg should be enabled again")
	}
	if prefs.saveCall != 2 {
		t.Errorf("save calls = %d, want 2", prefs.saveCall)
	}
}

func TestSourceToggle_Errors(t *testing.T) {
	prefs := NewMockPreferences()
	svc := NewSourceService(prefs, testLogger())

	if _, err := svc.Toggle(context.Background(), "medplus"); !errors.Is(err, domain.ErrUnknownSource) {
		t.Errorf("error = %v, want ErrUnknownSource", err)
	}

	prefs.saveErr = domain.ErrPreferencesUnavailable
	if _, err := svc.Toggle(context.Background(), "apollo"); !errors.Is(err, domain.ErrPreferencesUnavailable) {
		t.Errorf("error = %v, want ErrPreferencesUnavailable", err)
	}
}

func TestSourceUpdate(t *testing.T) {
	prefs := NewMockPreferences()
	svc := NewSourceService(prefs, testLogger())

	states, err := svc.Update(context.Background(), map[string]bool{"apollo": false, "Truemeds": false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if enabledOf(states, domain.SourceApollo) || enabledOf(states, domain.SourceTruemeds) {
		t.Error("apollo and truemeds should be disabled")
	}
	if !enabledOf(states, domain.SourcePharmEasy) {
		t.Error("unlisted sources keep their flag")
	}
}

func TestSourceUpdate_UnknownSourceChangesNothing(t *testing.T) {
	prefs := NewMockPreferences()
	svc := NewSourceService(prefs, testLogger())

	_, err := svc.Update(context.Background(), map[string]bool{"apollo": false, "medplus": true})
	if !errors.Is(err, domain.ErrUnknownSource) {
		t.Errorf("error = %v, want ErrUnknownSource", err)
	}
	if prefs.saveCall != 0 || !prefs.toggles.Apollo {
		t.Error("no flag should be written when a name is unknown")
	}
}
