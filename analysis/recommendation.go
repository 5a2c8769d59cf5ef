package analysis

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"ecovalley"
)

// Domain maxima the request totals are normalized against.
const (
	maxEnergyKWh   = 2000.0
	maxCarbonKg    = 1000.0
	maxWaterLiters = 100000.0
)

// Internal weights of the normalized energy, carbon and water totals.
const (
	envEnergyWeight = 0.4
	envCarbonWeight = 0.4
	envWaterWeight  = 0.2
)

// RecommendationEngine ranks the materials of a request by a weighted score
// and asks the narrator to explain the ranking.
type RecommendationEngine struct {
	catalog  Catalog
	narrator ecovalley.Narrator
	opts     NarrativeOptions
}

func NewRecommendationEngine(c Catalog, n ecovalley.Narrator, opts NarrativeOptions) *RecommendationEngine {
	return &RecommendationEngine{catalog: c, narrator: n, opts: opts}
}

// Process scores and ranks in.Materials, then generates the trade-off
// analysis, alternative suggestions and reasoning strictly in that order,
// each prompt carrying the text before it.
func (e *RecommendationEngine) Process(ctx context.Context, in ecovalley.RecommendationInput) (ecovalley.Recommendation, error) {
	if len(in.Materials) == 0 {
		return ecovalley.Recommendation{}, ecovalley.Validationf("at least one material is required")
	}
	for i, name := range in.Materials {
		if name == "" {
			return ecovalley.Recommendation{}, ecovalley.Validationf("material at index %d has an empty name", i)
		}
	}
	if err := in.Preferences.Validate(); err != nil {
		return ecovalley.Recommendation{}, err
	}

	weights := in.Preferences.Weights()
	scores, err := ScoreMaterials(e.catalog, in.Materials, in.Environmental.DirectImpacts, in.Cost.DirectCosts, weights)
	if err != nil {
		return ecovalley.Recommendation{}, err
	}
	slog.Debug("ANALYSIS: Ranked materials", "count", len(scores), "top", scores[0].Material, "top_score", scores[0].Score)

	tradeOff, err := narrate(ctx, e.narrator, e.opts, RecommendationRole, tradeOffPrompt(scores, in.Environmental.DirectImpacts, in.Cost.DirectCosts), "trade-off analysis")
	if err != nil {
		return ecovalley.Recommendation{}, err
	}

	alternatives, err := narrate(ctx, e.narrator, e.opts, RecommendationRole, alternativesPrompt(scores, weights, tradeOff), "alternative suggestions")
	if err != nil {
		return ecovalley.Recommendation{}, err
	}

	reasoning, err := narrate(ctx, e.narrator, e.opts, RecommendationRole, reasoningPrompt(scores, tradeOff, alternatives), "recommendation reasoning")
	if err != nil {
		return ecovalley.Recommendation{}, err
	}

	return ecovalley.Recommendation{
		RecommendedMaterials:    scores,
		TradeOffAnalysis:        tradeOff,
		AlternativeSuggestions:  alternatives,
		RecommendationReasoning: reasoning,
	}, nil
}

// ScoreMaterials scores each distinct material once and ranks them by
// descending score. Equal scores keep their first-occurrence order.
func ScoreMaterials(c Catalog, materials []string, impacts ecovalley.ImpactTotals, costs ecovalley.CostTotals, w ecovalley.Weights) ([]ecovalley.MaterialScore, error) {
	// Every material of a request shares this sub-score.
	env := EnvironmentalSubScore(impacts)

	maxCost := costs.TotalCostUSD
	if maxCost <= 0 {
		maxCost = 1.0
	}

	seen := make(map[string]bool, len(materials))
	scores := make([]ecovalley.MaterialScore, 0, len(materials))
	for _, name := range materials {
		if seen[name] {
			continue
		}
		seen[name] = true

		rec, err := c.Lookup(name)
		if err != nil {
			return nil, err
		}

		cost, _ := costs.MaterialCosts.Get(name)
		sub := ecovalley.SubScores{
			Environmental:    env,
			Cost:             100 - math.Min(cost/maxCost, 1.0)*100,
			Recyclability:    rec.Recyclability.Value() * 100,
			Biodegradability: rec.Biodegradability.Value() * 100,
		}

		total := sub.Environmental*w.Environmental +
			sub.Cost*w.Cost +
			sub.Recyclability*w.Recyclability +
			sub.Biodegradability*w.Biodegradability

		scores = append(scores, ecovalley.MaterialScore{
			Material: name,
			Score:    round2(math.Max(0, math.Min(total, 100))),
			SubScores: ecovalley.SubScores{
				Environmental:    round2(sub.Environmental),
				Cost:             round2(sub.Cost),
				Recyclability:    round2(sub.Recyclability),
				Biodegradability: round2(sub.Biodegradability),
			},
		})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	for i := range scores {
		scores[i].Rank = i + 1
	}
	return scores, nil
}

// EnvironmentalSubScore normalizes the request totals against the domain
// maxima and inverts them onto 0-100.
func EnvironmentalSubScore(t ecovalley.ImpactTotals) float64 {
	energy := math.Min(t.TotalEnergyKWh/maxEnergyKWh, 1.0)
	carbon := math.Min(t.TotalCarbonKg/maxCarbonKg, 1.0)
	water := math.Min(t.TotalWaterLiters/maxWaterLiters, 1.0)

	combined := energy*envEnergyWeight + carbon*envCarbonWeight + water*envWaterWeight
	return 100 - combined*100
}
