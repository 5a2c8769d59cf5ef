package analysis

import (
	"context"
	"log/slog"
	"math"

	"ecovalley"
)

// Linear erosion per unit of each total in the sustainability score.
const (
	energyErosion = 2.0
	carbonErosion = 10.0
	waterErosion  = 0.1
)

// Weights of the energy, carbon and water sub-scores.
const (
	sustainabilityEnergyWeight = 0.3
	sustainabilityCarbonWeight = 0.4
	sustainabilityWaterWeight  = 0.3
)

// Sustainability levels, best first.
const (
	LevelExcellent        = "Excellent"
	LevelGood             = "Good"
	LevelModerate         = "Moderate"
	LevelNeedsImprovement = "Needs Improvement"
)

// EnvironmentalScorer sums the footprint of a request and grades it.
type EnvironmentalScorer struct {
	catalog  Catalog
	narrator ecovalley.Narrator
	opts     NarrativeOptions
}

func NewEnvironmentalScorer(c Catalog, n ecovalley.Narrator, opts NarrativeOptions) *EnvironmentalScorer {
	return &EnvironmentalScorer{catalog: c, narrator: n, opts: opts}
}

// Process computes the impact totals, score and level of req and asks the
// narrator for an assessment. Budget and preferences are ignored.
func (s *EnvironmentalScorer) Process(ctx context.Context, req ecovalley.MaterialRequest) (ecovalley.EnvironmentalImpact, error) {
	req, err := revalidate(req)
	if err != nil {
		return ecovalley.EnvironmentalImpact{}, err
	}

	totals, err := ImpactTotalsFor(s.catalog, req)
	if err != nil {
		return ecovalley.EnvironmentalImpact{}, err
	}

	score := SustainabilityScore(totals)
	slog.Debug("ANALYSIS: Environmental totals", "energy_kwh", totals.TotalEnergyKWh, "carbon_kg", totals.TotalCarbonKg, "water_liters", totals.TotalWaterLiters, "score", score)

	assessment, err := narrate(ctx, s.narrator, s.opts, EnvironmentalRole, environmentalPrompt(totals), "environmental assessment")
	if err != nil {
		return ecovalley.EnvironmentalImpact{}, err
	}

	return ecovalley.EnvironmentalImpact{
		DirectImpacts:       totals,
		AIAssessment:        assessment,
		SustainabilityScore: score,
		SustainabilityLevel: SustainabilityLevel(score),
	}, nil
}

// ImpactTotalsFor sums quantity times each per-kg metric over req, rounding
// every total to two decimals.
func ImpactTotalsFor(c Catalog, req ecovalley.MaterialRequest) (ecovalley.ImpactTotals, error) {
	var energy, carbon, water, cost float64
	for i, name := range req.Materials {
		rec, err := c.Lookup(name)
		if err != nil {
			return ecovalley.ImpactTotals{}, err
		}
		q := req.Quantities[i]
		energy += rec.EnergyPerKg * q
		carbon += rec.CarbonPerKg * q
		water += rec.WaterPerKg * q
		cost += rec.CostPerKg * q
	}

	totals := ecovalley.ImpactTotals{
		TotalEnergyKWh:   round2(energy),
		TotalCarbonKg:    round2(carbon),
		TotalWaterLiters: round2(water),
		TotalCostUSD:     round2(cost),
	}
	if err := checkFinite("impact totals", totals.TotalEnergyKWh, totals.TotalCarbonKg, totals.TotalWaterLiters, totals.TotalCostUSD); err != nil {
		return ecovalley.ImpactTotals{}, err
	}
	return totals, nil
}

// SustainabilityScore grades rounded totals on a 0-100 scale. Each metric
// erodes its sub-score linearly down to 0, so larger requests score lower.
func SustainabilityScore(t ecovalley.ImpactTotals) float64 {
	energy := math.Max(0, 100-t.TotalEnergyKWh*energyErosion)
	carbon := math.Max(0, 100-t.TotalCarbonKg*carbonErosion)
	water := math.Max(0, 100-t.TotalWaterLiters*waterErosion)

	return round2(energy*sustainabilityEnergyWeight +
		carbon*sustainabilityCarbonWeight +
		water*sustainabilityWaterWeight)
}

// SustainabilityLevel maps a score to its band. Each band includes its lower
// bound.
func SustainabilityLevel(score float64) string {
	switch {
	case score >= 80:
		return LevelExcellent
	case score >= 60:
		return LevelGood
	case score >= 40:
		return LevelModerate
	default:
		return LevelNeedsImprovement
	}
}
