package pricing

import (
	"strconv"

	"github.com/medcompare/backend/internal/domain"
)

// Placeholder is shown for any field a source did not provide
const Placeholder = "-"

// Describe formats an item for display. Items without a price per unit get
// one derived from their pack and price.
func Describe(item domain.NormalizedItem) domain.DisplayRow {
	return domain.DisplayRow{
		Key:          item.Key,
		Source:       item.Source,
		Name:         item.Name,
		Image:        item.CanonicalImage(),
		Link:         textOr(item.Link, ""),
		Manufacturer: textOr(item.Manufacturer, Placeholder),
		Pack:         textOr(item.Pack, Placeholder),
		MRP:          amountOrPlaceholder(item.MRP),
		Price:        amountOrPlaceholder(item.Price),
		Discount:     formatDiscount(item.Discount),
		PricePerUnit: formatPricePerUnit(item),
		Composition:  textOr(item.Composition, Placeholder),
	}
}

// ComparablePricePerUnit returns the numeric price per unit Describe would show, if any
func ComparablePricePerUnit(item domain.NormalizedItem) *float64 {
	if item.PricePerUnit.IsNumber() {
		return item.PricePerUnit.Number
	}
	if item.PricePerUnit.IsText() {
		return nil
	}
	return UnitPrice(item.Price, item.Pack)
}

func formatPricePerUnit(item domain.NormalizedItem) string {
	if item.PricePerUnit.IsText() {
		return item.PricePerUnit.Text
	}
	return amountOrPlaceholder(ComparablePricePerUnit(item))
}

func formatDiscount(d domain.FlexValue) string {
	switch {
	case d.IsNumber():
		return strconv.FormatFloat(*d.Number, 'f', -1, 64) + "%"
	case d.IsText():
		return d.Text
	default:
		return Placeholder
	}
}

func amountOrPlaceholder(v *float64) string {
	if s := FormatINRPtr(v); s != "" {
		return s
	}
	return Placeholder
}

func textOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
