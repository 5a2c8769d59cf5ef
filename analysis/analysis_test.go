package analysis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ecovalley/catalog"
)

type countingCatalog struct {
	*catalog.Catalog
	lookups int
}

func (c *countingCatalog) Lookup(name string) (catalog.Record, error) {
	c.lookups++
	return c.Catalog.Lookup(name)
}

func testCatalog(t *testing.T) *countingCatalog {
	t.Helper()
	c, err := catalog.New([]catalog.Record{
		{Name: "Bamboo", EnergyPerKg: 1.2, CarbonPerKg: 0.3, WaterPerKg: 20, CostPerKg: 2.0, Recyclability: catalog.RatingHigh, Biodegradability: catalog.RatingVeryHigh},
		{Name: "Recycled PET", EnergyPerKg: 3.5, CarbonPerKg: 1.5, WaterPerKg: 12, CostPerKg: 3.0, Recyclability: catalog.RatingVeryHigh, Biodegradability: catalog.RatingVeryLow},
		{Name: "Hemp", EnergyPerKg: 0.8, CarbonPerKg: 0.2, WaterPerKg: 30, CostPerKg: 1.5, Recyclability: catalog.RatingMedium, Biodegradability: catalog.RatingHigh},
		{Name: "Jute", EnergyPerKg: 0.8, CarbonPerKg: 0.2, WaterPerKg: 30, CostPerKg: 1.5, Recyclability: catalog.RatingMedium, Biodegradability: catalog.RatingHigh},
		{Name: "Reclaimed Air", Recyclability: "Unknown"},
	})
	require.NoError(t, err)
	return &countingCatalog{Catalog: c}
}
