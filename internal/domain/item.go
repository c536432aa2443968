package domain

import (
	"encoding/json"
	"strings"
)

// Source identifies one of the pharmacy data providers
type Source string

const (
	SourceApollo    Source = "Apollo"
	SourcePharmEasy Source = "PharmEasy"
	SourceNetmeds   Source = "Netmeds"
	SourceOneMg     Source = "1mg"
	SourceTruemeds  Source = "Truemeds"
)

// SourceInfo describes how a source is addressed across the system
type SourceInfo struct {
	Source Source
	// KeyPrefix is the first half of NormalizedItem.Key
	KeyPrefix string
	// FlagName is the field name in enabledScrapers and in stored preferences
	FlagName string
	// PayloadField is the top-level field of the backend search response
	PayloadField string
	// RequiresOK is set when the backend flags the payload with "ok"
	RequiresOK bool
	Label      string
}

// Sources lists every source in display order
var Sources = []SourceInfo{
	{Source: SourceApollo, KeyPrefix: "apollo", FlagName: "apollo", PayloadField: "data", Label: "Apollo Pharmacy"},
	{Source: SourcePharmEasy, KeyPrefix: "pharmeasy", FlagName: "pharmeasy", PayloadField: "pharmeasy", Label: "PharmEasy"},
	{Source: SourceNetmeds, KeyPrefix: "netmeds", FlagName: "netmeds", PayloadField: "netmeds", RequiresOK: true, Label: "Netmeds"},
	{Source: SourceOneMg, KeyPrefix: "1mg", FlagName: "onemg", PayloadField: "onemg", RequiresOK: true, Label: "1mg"},
	{Source: SourceTruemeds, KeyPrefix: "truemeds", FlagName: "truemeds", PayloadField: "truemeds", RequiresOK: true, Label: "Truemeds"},
}

// LookupSource finds a source by its name, key prefix or flag name (case-insensitive)
func LookupSource(name string) (SourceInfo, bool) {
	for _, info := range Sources {
		if strings.EqualFold(name, string(info.Source)) ||
			strings.EqualFold(name, info.KeyPrefix) ||
			strings.EqualFold(name, info.FlagName) {
			return info, true
		}
	}
	return SourceInfo{}, false
}

// Info returns the descriptor of s. Unknown sources yield a zero SourceInfo.
func (s Source) Info() SourceInfo {
	for _, info := range Sources {
		if info.Source == s {
			return info
		}
	}
	return SourceInfo{}
}

// ItemKey builds the selection identity of a source-local id
func ItemKey(source Source, id string) string {
	return source.Info().KeyPrefix + ":" + id
}

// FlexValue holds a value that sources deliver either as a number or as preformatted text.
// The zero value is absent.
type FlexValue struct {
	Number *float64
	Text   string
}

// NumberValue wraps a number
func NumberValue(v float64) FlexValue {
	return FlexValue{Number: &v}
}

// TextValue wraps a string; an empty string stays absent
func TextValue(s string) FlexValue {
	return FlexValue{Text: s}
}

// IsNumber reports whether the value is numeric
func (f FlexValue) IsNumber() bool {
	return f.Number != nil
}

// IsText reports whether the value is non-empty text
func (f FlexValue) IsText() bool {
	return f.Number == nil && f.Text != ""
}

// IsAbsent reports whether neither a number nor text is held
func (f FlexValue) IsAbsent() bool {
	return f.Number == nil && f.Text == ""
}

func (f FlexValue) clone() FlexValue {
	if f.Number == nil {
		return f
	}
	return NumberValue(*f.Number)
}

// MarshalJSON encodes a number, a string or null
func (f FlexValue) MarshalJSON() ([]byte, error) {
	switch {
	case f.Number != nil:
		return json.Marshal(*f.Number)
	case f.Text != "":
		return json.Marshal(f.Text)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a number, a string or null
func (f *FlexValue) UnmarshalJSON(data []byte) error {
	*f = FlexValue{}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		return json.Unmarshal(data, &f.Text)
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Number = &v
	return nil
}

// NormalizedItem is the common cross-source product representation
type NormalizedItem struct {
	Key          string    `json:"key"`
	Source       Source    `json:"source"`
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Image        *string   `json:"image"`
	MRP          *float64  `json:"mrp"`
	Price        *float64  `json:"price"`
	Discount     FlexValue `json:"discount"`
	Pack         *string   `json:"pack"`
	Composition  *string   `json:"composition"`
	Manufacturer *string   `json:"manufacturer"`
	Link         *string   `json:"link"`
	PricePerUnit FlexValue `json:"pricePerUnit"`
}

// CanonicalImage returns the first URL of a comma-joined image list
func (i NormalizedItem) CanonicalImage() string {
	if i.Image == nil {
		return ""
	}
	img := *i.Image
	if idx := strings.Index(img, ","); idx >= 0 {
		img = img[:idx]
	}
	return strings.TrimSpace(img)
}

// Clone returns a copy that shares no memory with i
func (i NormalizedItem) Clone() NormalizedItem {
	c := i
	c.Image = cloneString(i.Image)
	c.MRP = cloneFloat(i.MRP)
	c.Price = cloneFloat(i.Price)
	c.Discount = i.Discount.clone()
	c.Pack = cloneString(i.Pack)
	c.Composition = cloneString(i.Composition)
	c.Manufacturer = cloneString(i.Manufacturer)
	c.Link = cloneString(i.Link)
	c.PricePerUnit = i.PricePerUnit.clone()
	return c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// StringPtr returns nil for an empty string
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// FloatPtr returns a pointer to v
func FloatPtr(v float64) *float64 {
	return &v
}
