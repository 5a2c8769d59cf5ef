// Package catalog holds the read-only table of material attributes that every
// analysis stage looks materials up in.
package catalog

import (
	"fmt"
	"math"
	"strings"

	"ecovalley"
)

// Rating is an ordinal quality from a fixed vocabulary.
type Rating string

const (
	RatingVeryLow  Rating = "Very Low"
	RatingLow      Rating = "Low"
	RatingMedium   Rating = "Medium"
	RatingHigh     Rating = "High"
	RatingVeryHigh Rating = "Very High"
)

// unknownRatingValue applies to empty or unrecognised ratings.
const unknownRatingValue = 0.5

var ratingValues = map[Rating]float64{
	RatingVeryLow:  0.1,
	RatingLow:      0.3,
	RatingMedium:   0.6,
	RatingHigh:     0.9,
	RatingVeryHigh: 1.0,
}

// Value maps the rating onto [0,1].
func (r Rating) Value() float64 {
	if v, ok := ratingValues[Rating(strings.TrimSpace(string(r)))]; ok {
		return v
	}
	return unknownRatingValue
}

// Record is the attribute row of one material. Per-unit values are per kg.
type Record struct {
	Name             string  `json:"material_name" csv:"material_name"`
	EnergyPerKg      float64 `json:"energy_per_kg" csv:"energy_per_kg"`
	CarbonPerKg      float64 `json:"carbon_per_kg" csv:"carbon_per_kg"`
	WaterPerKg       float64 `json:"water_per_kg" csv:"water_per_kg"`
	CostPerKg        float64 `json:"cost_per_kg" csv:"cost_per_kg"`
	Recyclability    Rating  `json:"recyclability" csv:"recyclability"`
	Biodegradability Rating  `json:"biodegradability" csv:"biodegradability"`
}

func (r Record) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("material with empty name")
	}
	for _, f := range []struct {
		column string
		v      float64
	}{
		{"energy_per_kg", r.EnergyPerKg},
		{"carbon_per_kg", r.CarbonPerKg},
		{"water_per_kg", r.WaterPerKg},
		{"cost_per_kg", r.CostPerKg},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return fmt.Errorf("material %q: %s must be a non-negative number, got %v", r.Name, f.column, f.v)
		}
	}
	return nil
}

// Catalog is immutable after construction and safe for concurrent reads.
type Catalog struct {
	records []Record
	index   map[string]int
}

// New builds a catalog from records, keeping their order. Invalid or
// duplicate rows fail with ecovalley.ErrInitialization.
func New(records []Record) (*Catalog, error) {
	c := &Catalog{
		records: make([]Record, 0, len(records)),
		index:   make(map[string]int, len(records)),
	}
	for _, r := range records {
		r.Name = strings.TrimSpace(r.Name)
		if err := r.validate(); err != nil {
			return nil, ecovalley.Initialization("catalog", err)
		}
		if _, dup := c.index[r.Name]; dup {
			return nil, ecovalley.Initialization("catalog", fmt.Errorf("duplicate material %q", r.Name))
		}
		c.index[r.Name] = len(c.records)
		c.records = append(c.records, r)
	}
	return c, nil
}

// Lookup returns the record for name or an ecovalley.ErrNotFound error.
func (c *Catalog) Lookup(name string) (Record, error) {
	i, ok := c.index[name]
	if !ok {
		return Record{}, ecovalley.NotFoundf("material %q is not in the catalog", name)
	}
	return c.records[i], nil
}

// Names lists every material in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.records))
	for i, r := range c.records {
		names[i] = r.Name
	}
	return names
}

// Records returns a copy of every record in catalog order.
func (c *Catalog) Records() []Record {
	return append([]Record(nil), c.records...)
}

func (c *Catalog) Len() int { return len(c.records) }
