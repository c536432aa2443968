package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/medcompare/backend/internal/domain"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// SourceTogglesKey is the entry holding the enabled source flags
const SourceTogglesKey = "enabledScrapers"

// FileStore is a key/value preference store backed by a single JSON object file
type FileStore struct {
	path   string
	mutex  sync.Mutex
	logger *logrus.Logger
}

// NewFileStore creates a store at path. The file is created on first write.
func NewFileStore(path string, logger *logrus.Logger) *FileStore {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &FileStore{path: path, logger: logger}
}

var _ domain.PreferenceRepository = (*FileStore)(nil)

// LoadSourceToggles reads the enabled flags. A missing file, a malformed
// entry or a non-boolean flag falls back to true for that flag.
func (f *FileStore) LoadSourceToggles(ctx context.Context) (domain.SourceToggles, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	toggles := domain.DefaultSourceToggles()

	raw, err := f.read()
	if err != nil {
		f.logger.WithError(err).WithField("path", f.path).Warn("preferences unreadable, using defaults")
		return toggles, nil
	}
	if !gjson.ValidBytes(raw) {
		return toggles, nil
	}

	entry := gjson.GetBytes(raw, SourceTogglesKey)
	// the entry may also be a JSON-encoded string
	if entry.Type == gjson.String {
		if !gjson.Valid(entry.Str) {
			return toggles, nil
		}
		entry = gjson.Parse(entry.Str)
	}
	if !entry.IsObject() {
		return toggles, nil
	}

	for _, info := range domain.Sources {
		flag := entry.Get(info.FlagName)
		if flag.IsBool() {
			toggles = toggles.With(info.Source, flag.Bool())
		}
	}
	return toggles, nil
}

// SaveSourceToggles writes the enabled flags, keeping other entries of the file
func (f *FileStore) SaveSourceToggles(ctx context.Context, toggles domain.SourceToggles) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	entries := map[string]json.RawMessage{}
	if raw, err := f.read(); err == nil && gjson.ValidBytes(raw) && gjson.ParseBytes(raw).IsObject() {
		if err := json.Unmarshal(raw, &entries); err != nil {
			entries = map[string]json.RawMessage{}
		}
	}

	value, err := json.Marshal(toggles)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPreferencesUnavailable, err)
	}
	entries[SourceTogglesKey] = value

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPreferencesUnavailable, err)
	}
	if err := f.write(data); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPreferencesUnavailable, err)
	}
	return nil
}

func (f *FileStore) read() ([]byte, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return []byte("{}"), nil
	}
	return raw, err
}

// write replaces the file atomically
func (f *FileStore) write(data []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".preferences-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}
