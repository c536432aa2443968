package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/medcompare/backend/internal/domain"
)

func TestOCRExtractMedicines(t *testing.T) {
	client := &MockOCRClient{names: []string{"Dolo 650", " dolo 650 ", "1. Pan 40"}}
	svc := NewOCRService(client, NewQueryPreprocessor(testLogger(), false))

	names, err := svc.ExtractMedicines(context.Background(), []byte("img"), "image/png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"Dolo 650", "Pan 40"}; !reflect.DeepEqual(names, want) {
		t.Errorf("names = %q, want %q", names, want)
	}
	if client.mimeType != "image/png" {
		t.Errorf("mimeType = %q", client.mimeType)
	}
}

func TestOCRExtractMedicines_InvalidImage(t *testing.T) {
	client := &MockOCRClient{}
	svc := NewOCRService(client, nil)

	if _, err := svc.ExtractMedicines(context.Background(), nil, "image/png"); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("error = %v, want ErrInvalidRequest", err)
	}
	if _, err := svc.ExtractMedicines(context.Background(), make([]byte, maxImageBytes+1), "image/png"); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("error = %v, want ErrInvalidRequest", err)
	}
	if client.called {
		t.Error("client should not be called for invalid images")
	}
}

func TestOCRExtractMedicines_ClientError(t *testing.T) {
	client := &MockOCRClient{err: errors.Join(domain.ErrOCRFailure, &domain.BackendError{Message: "OCR failed"})}
	svc := NewOCRService(client, nil)

	_, err := svc.ExtractMedicines(context.Background(), []byte("img"), "")
	if !errors.Is(err, domain.ErrOCRFailure) {
		t.Errorf("error = %v, want ErrOCRFailure", err)
	}
}
