package usecase

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/medcompare/backend/internal/domain"
	"github.com/sirupsen/logrus"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// MockSearchClient is a mock implementation of domain.SearchClient
type MockSearchClient struct {
	mu       sync.Mutex
	payload  *domain.SearchPayload
	err      error
	requests []domain.SearchRequest
	// hook runs before the response is returned
	hook func(request domain.SearchRequest)
}

func (m *MockSearchClient) Search(ctx context.Context, request domain.SearchRequest) (*domain.SearchPayload, error) {
	m.mu.Lock()
	m.requests = append(m.requests, request)
	hook := m.hook
	payload, err := m.payload, m.err
	m.mu.Unlock()

	if hook != nil {
		hook(request)
	}
	return payload, err
}

func (m *MockSearchClient) lastRequest() domain.SearchRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return domain.SearchRequest{}
	}
	return m.requests[len(m.requests)-1]
}

// MockPreferences is a mock implementation of domain.PreferenceRepository
type MockPreferences struct {
	mu       sync.Mutex
	toggles  domain.SourceToggles
	loadErr  error
	saveErr  error
	saveCall int
	// loadHook runs each time the toggles are read
	loadHook func()
}

func NewMockPreferences() *MockPreferences {
	return &MockPreferences{toggles: domain.DefaultSourceToggles()}
}

func (m *MockPreferences) LoadSourceToggles(ctx context.Context) (domain.SourceToggles, error) {
	m.mu.Lock()
	hook := m.loadHook
	m.loadHook = nil
	m.mu.Unlock()
	if hook != nil {
		hook()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return domain.SourceToggles{}, m.loadErr
	}
	return m.toggles, nil
}

func (m *MockPreferences) SaveSourceToggles(ctx context.Context, toggles domain.SourceToggles) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCall++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.toggles = toggles
	return nil
}

// MockOCRClient is a mock implementation of domain.OCRClient
type MockOCRClient struct {
	names    []string
	err      error
	called   bool
	mimeType string
}

func (m *MockOCRClient) ExtractMedicines(ctx context.Context, image []byte, mimeType string) ([]string, error) {
	m.called = true
	m.mimeType = mimeType
	return m.names, m.err
}

// MockExporter is a mock implementation of domain.ComparisonExporter
type MockExporter struct {
	view domain.ComparisonView
	err  error
}

func (m *MockExporter) Export(view domain.ComparisonView, w io.Writer) error {
	m.view = view
	if m.err != nil {
		return m.err
	}
	_, err := io.WriteString(w, view.Title)
	return err
}

func (m *MockExporter) ContentType() string   { return "text/plain" }
func (m *MockExporter) FileExtension() string { return "txt" }

// MockResolver is a mock implementation of ItemResolver
type MockResolver map[string]domain.NormalizedItem

func (m MockResolver) Lookup(key string) (domain.NormalizedItem, bool) {
	item, ok := m[key]
	return item, ok
}

func testItem(source domain.Source, id, name string) domain.NormalizedItem {
	return domain.NormalizedItem{
		Key:    domain.ItemKey(source, id),
		Source: source,
		ID:     id,
		Name:   name,
	}
}
