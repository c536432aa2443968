package pharmapi

import (
	"github.com/medcompare/backend/internal/domain"
	"github.com/tidwall/gjson"
)

// parseSearchPayload splits a search response by source. Fields with an
// unexpected shape are treated as missing rather than failing the search.
func parseSearchPayload(root gjson.Result) map[domain.Source]domain.SourcePayload {
	sources := make(map[domain.Source]domain.SourcePayload, len(domain.Sources))
	for _, info := range domain.Sources {
		sources[info.Source] = parseSourcePayload(root.Get(info.PayloadField), info.RequiresOK)
	}
	return sources
}

func parseSourcePayload(field gjson.Result, requiresOK bool) domain.SourcePayload {
	if !field.Exists() || field.Type == gjson.Null {
		return domain.SourcePayload{}
	}

	payload := domain.SourcePayload{Present: true, OK: true}
	if requiresOK {
		payload.OK = field.Get("ok").Type == gjson.True
	}

	products := field.Get("products")
	if products.IsArray() {
		for _, p := range products.Array() {
			if p.IsObject() {
				payload.Products = append(payload.Products, domain.RawProduct(p.Raw))
			}
		}
	}
	if count := field.Get("productsCount"); count.Type == gjson.Number {
		payload.ProductsCount = int(count.Int())
	}
	return payload
}

// parseMedicines reads the names of an OCR response, skipping non-strings
func parseMedicines(root gjson.Result) []string {
	var names []string
	for _, m := range root.Get("medicines").Array() {
		if m.Type == gjson.String {
			names = append(names, m.Str)
		}
	}
	return names
}
