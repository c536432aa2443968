package domain

// DisplayRow is an item with every price field already formatted for display
type DisplayRow struct {
	Key          string `json:"key"`
	Source       Source `json:"source"`
	Name         string `json:"name"`
	Image        string `json:"image,omitempty"`
	Link         string `json:"link,omitempty"`
	Manufacturer string `json:"manufacturer"`
	Pack         string `json:"pack"`
	MRP          string `json:"mrp"`
	Price        string `json:"price"`
	Discount     string `json:"discount"`
	PricePerUnit string `json:"pricePerUnit"`
	Composition  string `json:"composition"`
}

// TableRow is one line of a per-source results table
type TableRow struct {
	Item     NormalizedItem `json:"item"`
	Display  DisplayRow     `json:"display"`
	Selected bool           `json:"selected"`
}

// SourceTable is the display table of one source for one search
type SourceTable struct {
	Source        Source     `json:"source"`
	Label         string     `json:"label"`
	Query         string     `json:"query"`
	ProductsCount int        `json:"productsCount,omitempty"`
	Rows          []TableRow `json:"rows"`
}

// SearchOutcome is the result of one search
type SearchOutcome struct {
	Query    string        `json:"query"`
	Sequence uint64        `json:"sequence"`
	Tables   []SourceTable `json:"tables"`
}

// Table returns the table of a source, if it was rendered
func (o *SearchOutcome) Table(s Source) (SourceTable, bool) {
	if o == nil {
		return SourceTable{}, false
	}
	for _, t := range o.Tables {
		if t.Source == s {
			return t, true
		}
	}
	return SourceTable{}, false
}

// ItemList names one of the two item stores
type ItemList string

const (
	ListSelected ItemList = "selected"
	ListSaved    ItemList = "saved"
)

// ComparisonView is the cross-source table of a store's contents
type ComparisonView struct {
	List         ItemList         `json:"list"`
	Title        string           `json:"title"`
	EmptyMessage string           `json:"emptyMessage,omitempty"`
	CanCompare   bool             `json:"canCompare"`
	Rows         []DisplayRow     `json:"rows"`
	Items        []NormalizedItem `json:"-"`
}
