package usecase

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// maxQueryLength caps the keyword sent to the search backend
const maxQueryLength = 100

// QueryPreprocessor cleans search keywords and OCR-extracted medicine names
type QueryPreprocessor struct {
	logger             *logrus.Logger
	enableDebugLogging bool
}

// Compiled regex patterns for query preprocessing
var (
	multiSpacePattern = regexp.MustCompile(`\s+`)

	// punctuation left at either end of a name, e.g. "- Dolo 650," from OCR
	edgePunctuationPattern = regexp.MustCompile(`^[\s,\-;:.*•]+|[\s,\-;:*•]+$`)

	// list markers such as "1." or "2)" at the start of an OCR line
	listMarkerPattern = regexp.MustCompile(`^\(?\d{1,2}[.)]\s+`)
)

// NewQueryPreprocessor creates a new query preprocessor
func NewQueryPreprocessor(logger *logrus.Logger, enableDebugLogging bool) *QueryPreprocessor {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &QueryPreprocessor{
		logger:             logger,
		enableDebugLogging: enableDebugLogging,
	}
}

// PreprocessQuery trims the keyword, collapses whitespace and limits its length.
// An empty result means there is nothing to search.
func (p *QueryPreprocessor) PreprocessQuery(query string) string {
	cleaned := strings.TrimSpace(multiSpacePattern.ReplaceAllString(query, " "))

	if len(cleaned) > maxQueryLength {
		cut := truncateUTF8(cleaned, maxQueryLength)
		// Try to cut at word boundary
		if lastSpace := strings.LastIndex(cut, " "); lastSpace > maxQueryLength/2 {
			cut = cut[:lastSpace]
		}
		cleaned = strings.TrimSpace(cut)
	}

	if p.enableDebugLogging {
		p.logger.WithFields(logrus.Fields{"input": query, "output": cleaned}).Debug("query preprocessed")
	}
	return cleaned
}

// CleanMedicineNames normalizes OCR output: list markers and stray
// punctuation are stripped, blanks dropped and case-insensitive duplicates
// removed keeping the first occurrence.
func (p *QueryPreprocessor) CleanMedicineNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	cleaned := make([]string, 0, len(names))

	for _, name := range names {
		name = strings.TrimSpace(multiSpacePattern.ReplaceAllString(name, " "))
		name = listMarkerPattern.ReplaceAllString(name, "")
		name = edgePunctuationPattern.ReplaceAllString(name, "")
		name = p.PreprocessQuery(name)
		if name == "" {
			continue
		}

		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		cleaned = append(cleaned, name)
	}
	return cleaned
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
