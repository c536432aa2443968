package store

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/medcompare/backend/internal/domain"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newTestFileStore(t *testing.T, content string) *FileStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prefs", "preferences.json")
	if content != "" {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewFileStore(path, logger)
}

func TestFileStore_LoadDefaults(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "missing file", content: ""},
		{name: "malformed file", content: "{not json"},
		{name: "missing entry", content: `{"theme": "dark"}`},
		{name: "entry not an object", content: `{"enabledScrapers": 42}`},
		{name: "entry is malformed string", content: `{"enabledScrapers": "{oops"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestFileStore(t, tt.content)

			toggles, err := s.LoadSourceToggles(context.Background())

			require.NoError(t, err)
			assert.Equal(t, domain.DefaultSourceToggles(), toggles)
		})
	}
}

func TestFileStore_LoadPerKeyFallback(t *testing.T) {
	s := newTestFileStore(t, `{"enabledScrapers": {"apollo": false, "pharmeasy": "no", "netmeds": 0, "truemeds": false}}`)

	toggles, err := s.LoadSourceToggles(context.Background())

	require.NoError(t, err)
	assert.False(t, toggles.Apollo)
	assert.True(t, toggles.PharmEasy, "non-boolean flags fall back to true")
	assert.True(t, toggles.Netmeds)
	assert.True(t, toggles.OneMg, "missing flags fall back to true")
	assert.False(t, toggles.Truemeds)
}

func TestFileStore_LoadEncodedString(t *testing.T) {
	s := newTestFileStore(t, `{"enabledScrapers": "{\"onemg\": false}"}`)

	toggles, err := s.LoadSourceToggles(context.Background())

	require.NoError(t, err)
	assert.False(t, toggles.OneMg)
	assert.True(t, toggles.Apollo)
}

func TestFileStore_SaveAndReload(t *testing.T) {
	s := newTestFileStore(t, `{"theme": "dark"}`)
	ctx := context.Background()

	want := domain.DefaultSourceToggles().With(domain.SourceNetmeds, false)
	require.NoError(t, s.SaveSourceToggles(ctx, want))

	got, err := s.LoadSourceToggles(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	raw, err := os.ReadFile(s.path)
	require.NoError(t, err)
	assert.Equal(t, "dark", gjson.GetBytes(raw, "theme").String(), "other entries are preserved")
	assert.False(t, gjson.GetBytes(raw, "enabledScrapers.netmeds").Bool())
}

func TestFileStore_SaveCreatesDirectory(t *testing.T) {
	s := newTestFileStore(t, "")

	require.NoError(t, s.SaveSourceToggles(context.Background(), domain.DefaultSourceToggles()))

	_, err := os.Stat(s.path)
	assert.NoError(t, err)
}

func TestFileStore_SaveFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	s := NewFileStore(filepath.Join(blocker, "preferences.json"), nil)

	err := s.SaveSourceToggles(context.Background(), domain.DefaultSourceToggles())

	assert.ErrorIs(t, err, domain.ErrPreferencesUnavailable)
}
