package pricing

import "github.com/medcompare/backend/internal/domain"

// EffectivePrice is the comparison price: the selling price when the source
// gives one, the list price otherwise.
func EffectivePrice(selling, mrp *float64) *float64 {
	if selling != nil {
		return selling
	}
	return mrp
}

// UnitPrice divides price by the quantity extracted from pack. It returns nil
// when price is absent or the quantity is missing or zero.
func UnitPrice(price *float64, pack *string) *float64 {
	if price == nil {
		return nil
	}
	qty := ExtractQuantity(pack)
	if qty == nil || *qty <= 0 {
		return nil
	}
	perUnit := *price / *qty
	if perUnit < 0 {
		return nil
	}
	return &perUnit
}

// ResolvePricePerUnit applies the per-unit policy shared by every source:
// a direct per-unit number wins, then the pack-derived value, then fallbackText.
func ResolvePricePerUnit(direct *float64, price *float64, pack *string, fallbackText string) domain.FlexValue {
	if direct != nil && *direct >= 0 {
		return domain.NumberValue(*direct)
	}
	if derived := UnitPrice(price, pack); derived != nil {
		return domain.NumberValue(*derived)
	}
	return domain.TextValue(fallbackText)
}
