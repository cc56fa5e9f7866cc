package contracts

import (
	"fmt"
	"sort"
)

// Field names of the source dictionary-of-tables
const (
	FieldClose            = "Close"
	FieldTotalEquity      = "Total Equity"
	FieldTotalLiabilities = "Total Liabilities"
	FieldNetIncome        = "Net Income"
)

// Dataset is the loaded dictionary of panels keyed by field name
type Dataset struct {
	Source string
	Fields map[string]*Panel
}

// NewDataset creates an empty dataset
func NewDataset(source string) *Dataset {
	return &Dataset{Source: source, Fields: make(map[string]*Panel)}
}

// Get returns the named panel or ErrFieldMissing
func (d *Dataset) Get(field string) (*Panel, error) {
	p, ok := d.Fields[field]
	if !ok || p == nil {
		return nil, fmt.Errorf("%w: %q", ErrFieldMissing, field)
	}
	return p, nil
}

// Names returns the field names in sorted order
func (d *Dataset) Names() []string {
	names := make([]string, 0, len(d.Fields))
	for k := range d.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
