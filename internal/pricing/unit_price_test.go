package pricing

import (
	"testing"

	"github.com/medcompare/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatINR(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{amount: 10, want: "₹10.00"},
		{amount: 0, want: "₹0.00"},
		{amount: 0.5, want: "₹0.50"},
		{amount: 1234.5, want: "₹1,234.50"},
		{amount: 42.678, want: "₹42.68"},
		{amount: -12.25, want: "-₹12.25"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatINR(tt.amount))
		})
	}
}

func TestFormatINRPtr(t *testing.T) {
	assert.Equal(t, "", FormatINRPtr(nil))
	assert.Equal(t, "₹5.00", FormatINRPtr(domain.FloatPtr(5)))
}

func TestEffectivePrice(t *testing.T) {
	selling := domain.FloatPtr(80)
	mrp := domain.FloatPtr(100)

	assert.Equal(t, selling, EffectivePrice(selling, mrp))
	assert.Equal(t, mrp, EffectivePrice(nil, mrp))
	assert.Nil(t, EffectivePrice(nil, nil))
}

func TestUnitPrice(t *testing.T) {
	t.Run("divides by extracted quantity", func(t *testing.T) {
		got := UnitPrice(domain.FloatPtr(30), strPtr("strip of 15 tablets"))
		require.NotNil(t, got)
		assert.InDelta(t, 2.0, *got, 1e-9)
	})

	t.Run("zero quantity is undetermined", func(t *testing.T) {
		assert.Nil(t, UnitPrice(domain.FloatPtr(30), strPtr("0 tablets")))
	})

	t.Run("missing quantity", func(t *testing.T) {
		assert.Nil(t, UnitPrice(domain.FloatPtr(30), strPtr("bottle")))
		assert.Nil(t, UnitPrice(domain.FloatPtr(30), nil))
	})

	t.Run("missing price", func(t *testing.T) {
		assert.Nil(t, UnitPrice(nil, strPtr("10 tablets")))
	})

	t.Run("zero price is a valid price", func(t *testing.T) {
		got := UnitPrice(domain.FloatPtr(0), strPtr("10 tablets"))
		require.NotNil(t, got)
		assert.Equal(t, 0.0, *got)
	})
}

func TestResolvePricePerUnit(t *testing.T) {
	t.Run("direct value wins", func(t *testing.T) {
		got := ResolvePricePerUnit(domain.FloatPtr(1.25), domain.FloatPtr(100), strPtr("10 tablets"), "₹9/unit")
		require.True(t, got.IsNumber())
		assert.Equal(t, 1.25, *got.Number)
	})

	t.Run("derived from pack", func(t *testing.T) {
		got := ResolvePricePerUnit(nil, domain.FloatPtr(100), strPtr("2 x 10 tablets"), "")
		require.True(t, got.IsNumber())
		assert.InDelta(t, 5.0, *got.Number, 1e-9)
	})

	t.Run("text fallback", func(t *testing.T) {
		got := ResolvePricePerUnit(nil, domain.FloatPtr(100), strPtr("bottle"), "₹1.68/unit")
		assert.True(t, got.IsText())
		assert.Equal(t, "₹1.68/unit", got.Text)
	})

	t.Run("absent", func(t *testing.T) {
		got := ResolvePricePerUnit(nil, nil, strPtr("10 tablets"), "")
		assert.True(t, got.IsAbsent())
	})
}

func TestDescribe(t *testing.T) {
	image := "https://img.example/a.png, https://img.example/b.png"
	item := domain.NormalizedItem{
		Key:          "pharmeasy:42",
		Source:       domain.SourcePharmEasy,
		ID:           "42",
		Name:         "Dolo 650",
		Image:        &image,
		MRP:          domain.FloatPtr(34),
		Price:        domain.FloatPtr(30),
		Discount:     domain.NumberValue(12.5),
		Pack:         strPtr("strip of 15 tablets"),
		Manufacturer: strPtr("Micro Labs"),
	}

	row := Describe(item)

	assert.Equal(t, "pharmeasy:42", row.Key)
	assert.Equal(t, "https://img.example/a.png", row.Image)
	assert.Equal(t, "₹34.00", row.MRP)
	assert.Equal(t, "₹30.00", row.Price)
	assert.Equal(t, "12.5%", row.Discount)
	assert.Equal(t, "₹2.00", row.PricePerUnit, "price per unit derived from pack when the item has none")
	assert.Equal(t, "Micro Labs", row.Manufacturer)
	assert.Equal(t, Placeholder, row.Composition)
	assert.Equal(t, "", row.Link)
}

func TestDescribe_PassThroughAndPlaceholders(t *testing.T) {
	item := domain.NormalizedItem{
		Key:          "apollo:7",
		Source:       domain.SourceApollo,
		Name:         "Crocin",
		Discount:     domain.TextValue("20% off"),
		PricePerUnit: domain.TextValue("₹1.68/unit"),
	}

	row := Describe(item)

	assert.Equal(t, Placeholder, row.MRP)
	assert.Equal(t, Placeholder, row.Price)
	assert.Equal(t, "20% off", row.Discount)
	assert.Equal(t, "₹1.68/unit", row.PricePerUnit)
	assert.Equal(t, Placeholder, row.Pack)
	assert.Equal(t, "", row.Image)
}
