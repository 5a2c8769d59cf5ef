// Package analysis implements the three scoring stages of a material
// suggestion: environmental impact, cost and the weighted recommendation.
package analysis

import (
	"context"
	"math"

	"ecovalley"
	"ecovalley/catalog"
)

// Catalog is the read side of the material catalog the stages depend on.
type Catalog interface {
	Lookup(name string) (catalog.Record, error)
}

// NarrativeOptions are the sampling settings passed with every narrative
// request.
type NarrativeOptions struct {
	Temperature float32
	MaxTokens   int32
}

func DefaultNarrativeOptions() NarrativeOptions {
	return NarrativeOptions{
		Temperature: 0.7,
		MaxTokens:   1000,
	}
}

// System roles sent with each stage's narrative requests.
const (
	EnvironmentalRole  = "Expert in environmental impact assessment and sustainability analysis"
	CostRole           = "Expert in cost analysis, market research, and budget optimization for sustainable materials"
	RecommendationRole = "Expert in sustainable material selection, combining environmental impact and cost analysis to provide optimal recommendations"
)

var _ ecovalley.Processor[ecovalley.MaterialRequest, ecovalley.EnvironmentalImpact] = (*EnvironmentalScorer)(nil)
var _ ecovalley.Processor[ecovalley.MaterialRequest, ecovalley.CostAnalysis] = (*CostAnalyzer)(nil)
var _ ecovalley.Processor[ecovalley.RecommendationInput, ecovalley.Recommendation] = (*RecommendationEngine)(nil)

func narrate(ctx context.Context, n ecovalley.Narrator, opts NarrativeOptions, role, prompt, section string) (string, error) {
	text, err := n.Generate(ctx, ecovalley.NarrativeRequest{
		SystemRole:  role,
		Prompt:      prompt,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return "", ecovalley.ExternalService(section, err)
	}
	return text, nil
}

// revalidate re-checks a request that may have been built without
// ecovalley.NewMaterialRequest.
func revalidate(req ecovalley.MaterialRequest) (ecovalley.MaterialRequest, error) {
	return ecovalley.NewMaterialRequest(req.Materials, req.Quantities, req.Budget, &req.Preferences)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// checkFinite rejects totals that overflowed float64. Such a request would
// otherwise produce values JSON cannot encode.
func checkFinite(what string, values ...float64) error {
	for _, v := range values {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return ecovalley.Validationf("%s overflow: quantities are too large", what)
		}
	}
	return nil
}
