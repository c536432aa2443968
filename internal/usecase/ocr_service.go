package usecase

import (
	"context"
	"fmt"

	"github.com/medcompare/backend/internal/domain"
)

// maxImageBytes bounds the prescription images accepted for OCR
const maxImageBytes = 10 << 20

// OCRService turns a prescription image into medicine names to search for
type OCRService struct {
	client       domain.OCRClient
	preprocessor *QueryPreprocessor
}

// NewOCRService creates an OCR service
func NewOCRService(client domain.OCRClient, preprocessor *QueryPreprocessor) *OCRService {
	if preprocessor == nil {
		preprocessor = NewQueryPreprocessor(nil, false)
	}
	return &OCRService{client: client, preprocessor: preprocessor}
}

// ExtractMedicines returns the cleaned, de-duplicated names found in image
func (s *OCRService) ExtractMedicines(ctx context.Context, image []byte, mimeType string) ([]string, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: image is required", domain.ErrInvalidRequest)
	}
	if len(image) > maxImageBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrInvalidRequest, maxImageBytes)
	}

	names, err := s.client.ExtractMedicines(ctx, image, mimeType)
	if err != nil {
		return nil, err
	}
	return s.preprocessor.CleanMedicineNames(names), nil
}
