package pharmapi

import (
	"strconv"
	"strings"

	"github.com/medcompare/backend/internal/domain"
	"github.com/medcompare/backend/internal/pricing"
	"github.com/tidwall/gjson"
)

const (
	apolloImageBase   = "https://images.apollo247.in/pub/media"
	apolloImageParams = "?tr=q-40,f-webp,w-150,dpr-3,c-at_max 150w"
	apolloProductBase = "https://www.apollopharmacy.in/otc/"
)

var normalizers = map[domain.Source]domain.Normalizer{
	domain.SourceApollo:    NormalizeApollo,
	domain.SourcePharmEasy: NormalizePharmEasy,
	domain.SourceNetmeds:   NormalizeNetmeds,
	domain.SourceOneMg:     NormalizeOneMg,
	domain.SourceTruemeds:  NormalizeTruemeds,
}

// Normalizer returns the normalizer of a source, or nil for an unknown source
func Normalizer(source domain.Source) domain.Normalizer {
	return normalizers[source]
}

// Normalize maps every raw product of a source into the common shape
func Normalize(source domain.Source, products []domain.RawProduct) []domain.NormalizedItem {
	normalize := Normalizer(source)
	if normalize == nil {
		return nil
	}
	items := make([]domain.NormalizedItem, 0, len(products))
	for _, raw := range products {
		items = append(items, normalize(raw))
	}
	return items
}

// NormalizeApollo maps an Apollo product. Apollo's "price" is the MRP and
// "specialPrice" the selling price; its preformatted per-unit text is used
// only when no quantity can be read from unitSize.
func NormalizeApollo(raw domain.RawProduct) domain.NormalizedItem {
	p := gjson.ParseBytes(raw)

	id := idField(p, "id")
	mrp := numberField(p, "price")
	price := pricing.EffectivePrice(numberField(p, "specialPrice"), mrp)
	pack := textField(p, "unitSize")

	var image, link *string
	if thumb := textField(p, "thumbnail"); thumb != nil {
		image = domain.StringPtr(apolloImageBase + *thumb + apolloImageParams)
	}
	if urlKey := textField(p, "urlKey"); urlKey != nil {
		link = domain.StringPtr(apolloProductBase + *urlKey)
	}

	var discount domain.FlexValue
	if d := numberField(p, "discountPercentage"); d != nil {
		discount = domain.NumberValue(*d)
	}

	return domain.NormalizedItem{
		Key:          domain.ItemKey(domain.SourceApollo, id),
		Source:       domain.SourceApollo,
		ID:           id,
		Name:         p.Get("name").String(),
		Image:        image,
		MRP:          mrp,
		Price:        price,
		Discount:     discount,
		Pack:         pack,
		Link:         link,
		PricePerUnit: pricing.ResolvePricePerUnit(nil, price, pack, stringValue(p, "additionalInfo.pricePerUnit")),
	}
}

// NormalizePharmEasy maps a PharmEasy product
func NormalizePharmEasy(raw domain.RawProduct) domain.NormalizedItem {
	p := gjson.ParseBytes(raw)

	id := idField(p, "dataId")
	mrp := numberField(p, "originalPrice")
	price := pricing.EffectivePrice(numberField(p, "price"), mrp)
	pack := textField(p, "unit")

	return domain.NormalizedItem{
		Key:          domain.ItemKey(domain.SourcePharmEasy, id),
		Source:       domain.SourcePharmEasy,
		ID:           id,
		Name:         p.Get("name").String(),
		Image:        textField(p, "image"),
		MRP:          mrp,
		Price:        price,
		Discount:     flexField(p, "discount"),
		Pack:         pack,
		Manufacturer: textField(p, "brand"),
		Link:         textField(p, "url"),
		PricePerUnit: pricing.ResolvePricePerUnit(nil, price, pack, ""),
	}
}

// NormalizeNetmeds maps a Netmeds product. Pack text joins pack_size and
// pack_size_unit from medicine_info.
func NormalizeNetmeds(raw domain.RawProduct) domain.NormalizedItem {
	p := gjson.ParseBytes(raw)
	info := p.Get("medicine_info")

	id := idField(p, "uid")
	if id == "" {
		id = idField(p, "item_code")
	}
	mrp := numberField(info, "mrp")
	price := pricing.EffectivePrice(numberField(p, "selling_price"), mrp)

	size := textField(info, "pack_size")
	unit := textField(info, "pack_size_unit")
	var pack *string
	switch {
	case size != nil && unit != nil:
		pack = domain.StringPtr(*size + " " + *unit)
	case unit != nil:
		pack = unit
	default:
		pack = size
	}

	return domain.NormalizedItem{
		Key:          domain.ItemKey(domain.SourceNetmeds, id),
		Source:       domain.SourceNetmeds,
		ID:           id,
		Name:         p.Get("name").String(),
		Image:        textField(p, "image_url"),
		MRP:          mrp,
		Price:        price,
		Discount:     flexField(p, "discount"),
		Pack:         pack,
		Manufacturer: textField(info, "manufacturer"),
		Link:         textField(p, "product_url"),
		PricePerUnit: pricing.ResolvePricePerUnit(numberField(p, "price_per_unit"), price, pack, ""),
	}
}

// NormalizeOneMg maps a 1mg product. 1mg has no stable product id in the
// payload, so the id is composed of name, MRP and pack size.
func NormalizeOneMg(raw domain.RawProduct) domain.NormalizedItem {
	p := gjson.ParseBytes(raw)

	name := p.Get("name").String()
	mrp := numberField(p, "mrp")
	price := pricing.EffectivePrice(numberField(p, "selling_price"), mrp)
	pack := textField(p, "pack_size")

	mrpText := "0"
	if t := textField(p, "mrp"); t != nil {
		mrpText = *t
	}
	packText := ""
	if pack != nil {
		packText = *pack
	}
	id := name + "-" + mrpText + "-" + packText

	return domain.NormalizedItem{
		Key:          domain.ItemKey(domain.SourceOneMg, id),
		Source:       domain.SourceOneMg,
		ID:           id,
		Name:         name,
		Image:        textField(p, "image_url"),
		MRP:          mrp,
		Price:        price,
		Discount:     flexField(p, "discount"),
		Pack:         pack,
		Composition:  textField(p, "composition"),
		Manufacturer: textField(p, "manufacturer"),
		Link:         textField(p, "product_url"),
		PricePerUnit: pricing.ResolvePricePerUnit(nil, price, pack, ""),
	}
}

// NormalizeTruemeds maps a Truemeds product. Only the first of its
// comma-separated image URLs is kept.
func NormalizeTruemeds(raw domain.RawProduct) domain.NormalizedItem {
	p := gjson.ParseBytes(raw)

	id := idField(p, "productCode")
	mrp := numberField(p, "mrp")
	price := pricing.EffectivePrice(numberField(p, "sellingPrice"), mrp)

	var image *string
	if urls := textField(p, "productImageUrl"); urls != nil {
		image = domain.StringPtr(strings.TrimSpace(strings.Split(*urls, ",")[0]))
	}

	size := textField(p, "packSize")
	form := textField(p, "packForm")
	var pack *string
	switch {
	case size != nil && form != nil:
		pack = domain.StringPtr(*size + " • " + *form)
	case size != nil:
		pack = size
	default:
		pack = form
	}

	return domain.NormalizedItem{
		Key:          domain.ItemKey(domain.SourceTruemeds, id),
		Source:       domain.SourceTruemeds,
		ID:           id,
		Name:         p.Get("skuName").String(),
		Image:        image,
		MRP:          mrp,
		Price:        price,
		Discount:     flexField(p, "discount"),
		Pack:         pack,
		Composition:  textField(p, "composition"),
		Manufacturer: textField(p, "manufacturerName"),
		Link:         textField(p, "link"),
		PricePerUnit: pricing.ResolvePricePerUnit(numberField(p, "pricePerItem"), price, pack, ""),
	}
}

// numberField returns the field only when its JSON type is number
func numberField(p gjson.Result, path string) *float64 {
	r := p.Get(path)
	if r.Type != gjson.Number {
		return nil
	}
	v := r.Num
	return &v
}

// textField returns a non-empty string or a non-zero number as text
func textField(p gjson.Result, path string) *string {
	r := p.Get(path)
	switch r.Type {
	case gjson.String:
		return domain.StringPtr(strings.TrimSpace(r.Str))
	case gjson.Number:
		if r.Num == 0 {
			return nil
		}
		return domain.StringPtr(formatNumber(r.Num))
	}
	return nil
}

func stringValue(p gjson.Result, path string) string {
	if s := textField(p, path); s != nil {
		return *s
	}
	return ""
}

// idField renders a string or numeric id
func idField(p gjson.Result, path string) string {
	r := p.Get(path)
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.Number:
		return formatNumber(r.Num)
	}
	return ""
}

func flexField(p gjson.Result, path string) domain.FlexValue {
	r := p.Get(path)
	switch r.Type {
	case gjson.Number:
		return domain.NumberValue(r.Num)
	case gjson.String:
		return domain.TextValue(r.Str)
	}
	return domain.FlexValue{}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
