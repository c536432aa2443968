package domain

// RawProduct is one product object exactly as the backend returned it (JSON)
type RawProduct []byte

// Normalizer maps a source-specific product into the common shape. It never fails.
type Normalizer func(raw RawProduct) NormalizedItem

// SourceToggles are the per-source enable flags
type SourceToggles struct {
	Apollo    bool `json:"apollo"`
	PharmEasy bool `json:"pharmeasy"`
	Netmeds   bool `json:"netmeds"`
	OneMg     bool `json:"onemg"`
	Truemeds  bool `json:"truemeds"`
}

// DefaultSourceToggles enables every source
func DefaultSourceToggles() SourceToggles {
	return SourceToggles{Apollo: true, PharmEasy: true, Netmeds: true, OneMg: true, Truemeds: true}
}

// Enabled reports the flag of a source
func (t SourceToggles) Enabled(s Source) bool {
	switch s {
	case SourceApollo:
		return t.Apollo
	case SourcePharmEasy:
		return t.PharmEasy
	case SourceNetmeds:
		return t.Netmeds
	case SourceOneMg:
		return t.OneMg
	case SourceTruemeds:
		return t.Truemeds
	}
	return false
}

// With returns a copy with the flag of s set to enabled
func (t SourceToggles) With(s Source, enabled bool) SourceToggles {
	switch s {
	case SourceApollo:
		t.Apollo = enabled
	case SourcePharmEasy:
		t.PharmEasy = enabled
	case SourceNetmeds:
		t.Netmeds = enabled
	case SourceOneMg:
		t.OneMg = enabled
	case SourceTruemeds:
		t.Truemeds = enabled
	}
	return t
}

// SearchRequest is the body sent to the backend search endpoint
type SearchRequest struct {
	Keyword         string        `json:"keyword"`
	EnabledScrapers SourceToggles `json:"enabledScrapers"`
}

// SourcePayload is the part of a search response belonging to one source
type SourcePayload struct {
	// Present is false when the backend omitted the field or sent null
	Present bool
	// OK mirrors the backend's "ok" flag; sources without the flag report true when present
	OK            bool
	Products      []RawProduct
	ProductsCount int
}

// SearchPayload is a successful backend search response split by source
type SearchPayload struct {
	Sources map[Source]SourcePayload
	// Target is the base URL that answered
	Target string
}

// OCRRequest is the body sent to the backend OCR endpoint
type OCRRequest struct {
	ImageBase64 string `json:"imageBase64"`
	MimeType    string `json:"mimeType"`
}
