package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecovalley"
	"ecovalley/narrator/mock"
)

func stageResults(t *testing.T, materials []string, quantities []float64) (ecovalley.EnvironmentalImpact, ecovalley.CostAnalysis) {
	t.Helper()
	cat := testCatalog(t)
	req, err := ecovalley.NewMaterialRequest(materials, quantities, nil, nil)
	require.NoError(t, err)

	env, err := NewEnvironmentalScorer(cat, mock.NewNarrator(), DefaultNarrativeOptions()).Process(context.Background(), req)
	require.NoError(t, err)
	cost, err := NewCostAnalyzer(cat, mock.NewNarrator(), DefaultNarrativeOptions()).Process(context.Background(), req)
	require.NoError(t, err)
	return env, cost
}

func TestRecommendationEngine_Process(t *testing.T) {
	materials := []string{"Bamboo", "Recycled PET"}
	env, cost := stageResults(t, materials, []float64{10, 5})

	narrator := mock.NewNarrator()
	engine := NewRecommendationEngine(testCatalog(t), narrator, DefaultNarrativeOptions())

	rec, err := engine.Process(context.Background(), ecovalley.RecommendationInput{
		Materials:     materials,
		Environmental: env,
		Cost:          cost,
	})
	require.NoError(t, err)

	require.Len(t, rec.RecommendedMaterials, 2)
	top, second := rec.RecommendedMaterials[0], rec.RecommendedMaterials[1]

	assert.Equal(t, "Bamboo", top.Material)
	assert.Equal(t, 1, top.Rank)
	assert.InDelta(t, 80.93, top.Score, 1e-9)
	assert.InDelta(t, 98.94, top.SubScores.Environmental, 1e-9)
	assert.InDelta(t, 42.86, top.SubScores.Cost, 1e-9)
	assert.InDelta(t, 90, top.SubScores.Recyclability, 1e-9)
	assert.InDelta(t, 100, top.SubScores.Biodegradability, 1e-9)

	assert.Equal(t, "Recycled PET", second.Material)
	assert.Equal(t, 2, second.Rank)
	assert.InDelta(t, 73.22, second.Score, 1e-9)
	assert.Equal(t, top.SubScores.Environmental, second.SubScores.Environmental)

	assert.NotEmpty(t, rec.TradeOffAnalysis)
	assert.NotEmpty(t, rec.AlternativeSuggestions)
	assert.NotEmpty(t, rec.RecommendationReasoning)
}

func TestRecommendationEngine_NarrativeOrder(t *testing.T) {
	materials := []string{"Bamboo", "Recycled PET"}
	env, cost := stageResults(t, materials, []float64{10, 5})

	narrator := mock.NewNarrator()
	engine := NewRecommendationEngine(testCatalog(t), narrator, DefaultNarrativeOptions())

	rec, err := engine.Process(context.Background(), ecovalley.RecommendationInput{Materials: materials, Environmental: env, Cost: cost})
	require.NoError(t, err)

	calls := narrator.Calls()
	require.Len(t, calls, 3)
	for _, c := range calls {
		assert.Equal(t, RecommendationRole, c.SystemRole)
	}

	assert.Contains(t, calls[0].Prompt, "Analyze the trade-offs")
	assert.Contains(t, calls[0].Prompt, "Bamboo: 80.93")
	assert.Contains(t, calls[1].Prompt, rec.TradeOffAnalysis)
	assert.Contains(t, calls[1].Prompt, "Cost Priority: 0.3")
	assert.Contains(t, calls[2].Prompt, rec.TradeOffAnalysis)
	assert.Contains(t, calls[2].Prompt, rec.AlternativeSuggestions)
}

func TestRecommendationEngine_NarratorFailure(t *testing.T) {
	materials := []string{"Bamboo"}
	env, cost := stageResults(t, materials, []float64{1})

	sections := []string{"trade-off analysis", "alternative suggestions", "recommendation reasoning"}
	for i, section := range sections {
		t.Run(section, func(t *testing.T) {
			narrator := mock.NewFailingNarrator(i + 1)
			engine := NewRecommendationEngine(testCatalog(t), narrator, DefaultNarrativeOptions())

			_, err := engine.Process(context.Background(), ecovalley.RecommendationInput{Materials: materials, Environmental: env, Cost: cost})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ecovalley.ErrExternalService))
			assert.Contains(t, err.Error(), section)
			assert.Len(t, narrator.Calls(), i+1)
		})
	}
}

func TestRecommendationEngine_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   ecovalley.RecommendationInput
		kind error
	}{
		{
			name: "no materials",
			in:   ecovalley.RecommendationInput{},
			kind: ecovalley.ErrValidation,
		},
		{
			name: "preference out of range",
			in: ecovalley.RecommendationInput{
				Materials:   []string{"Bamboo"},
				Preferences: ecovalley.Preferences{CostPriority: ecovalley.Float(1.5)},
			},
			kind: ecovalley.ErrValidation,
		},
		{
			name: "unknown material",
			in:   ecovalley.RecommendationInput{Materials: []string{"Unobtainium"}},
			kind: ecovalley.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			narrator := mock.NewNarrator()
			engine := NewRecommendationEngine(testCatalog(t), narrator, DefaultNarrativeOptions())

			_, err := engine.Process(context.Background(), tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
			assert.Empty(t, narrator.Calls())
		})
	}
}

func TestScoreMaterials(t *testing.T) {
	materials := []string{"Bamboo", "Recycled PET"}
	env, cost := stageResults(t, materials, []float64{10, 5})

	t.Run("partial preference merge", func(t *testing.T) {
		prefs := ecovalley.Preferences{
			EnvironmentalPriority:    ecovalley.Float(0),
			RecyclabilityPriority:    ecovalley.Float(0),
			BiodegradabilityPriority: ecovalley.Float(0),
		}
		// cost keeps its default of 0.3
		scores, err := ScoreMaterials(testCatalog(t), materials, env.DirectImpacts, cost.DirectCosts, prefs.Weights())
		require.NoError(t, err)

		assert.Equal(t, "Recycled PET", scores[0].Material)
		assert.InDelta(t, 17.14, scores[0].Score, 1e-9)
		assert.Equal(t, "Bamboo", scores[1].Material)
		assert.InDelta(t, 12.86, scores[1].Score, 1e-9)
	})

	t.Run("clamped ties keep input order", func(t *testing.T) {
		w := ecovalley.Weights{Environmental: 1, Cost: 1, Recyclability: 1, Biodegradability: 1}
		scores, err := ScoreMaterials(testCatalog(t), materials, env.DirectImpacts, cost.DirectCosts, w)
		require.NoError(t, err)

		require.Len(t, scores, 2)
		assert.Equal(t, 100.0, scores[0].Score)
		assert.Equal(t, 100.0, scores[1].Score)
		assert.Equal(t, "Bamboo", scores[0].Material)
		assert.Equal(t, "Recycled PET", scores[1].Material)
	})

	t.Run("equal scores keep input order", func(t *testing.T) {
		mats := []string{"Jute", "Hemp"}
		env, cost := stageResults(t, mats, []float64{1, 1})
		scores, err := ScoreMaterials(testCatalog(t), mats, env.DirectImpacts, cost.DirectCosts, ecovalley.DefaultWeights())
		require.NoError(t, err)

		assert.Equal(t, scores[0].Score, scores[1].Score)
		assert.Equal(t, "Jute", scores[0].Material)
		assert.Equal(t, 1, scores[0].Rank)
		assert.Equal(t, "Hemp", scores[1].Material)
		assert.Equal(t, 2, scores[1].Rank)
	})

	t.Run("repeated material ranked once", func(t *testing.T) {
		mats := []string{"Bamboo", "Hemp", "Bamboo"}
		env, cost := stageResults(t, mats, []float64{1, 1, 1})
		scores, err := ScoreMaterials(testCatalog(t), mats, env.DirectImpacts, cost.DirectCosts, ecovalley.DefaultWeights())
		require.NoError(t, err)

		assert.Len(t, scores, 2)
	})

	t.Run("zero total cost", func(t *testing.T) {
		mats := []string{"Reclaimed Air"}
		env, cost := stageResults(t, mats, []float64{3})
		scores, err := ScoreMaterials(testCatalog(t), mats, env.DirectImpacts, cost.DirectCosts, ecovalley.DefaultWeights())
		require.NoError(t, err)

		require.Len(t, scores, 1)
		assert.Equal(t, 100.0, scores[0].SubScores.Environmental)
		assert.Equal(t, 100.0, scores[0].SubScores.Cost)
		assert.Equal(t, 50.0, scores[0].SubScores.Recyclability)
		// 40 + 30 + 7.5 + 7.5
		assert.InDelta(t, 85, scores[0].Score, 1e-9)
	})
}

func TestEnvironmentalSubScore(t *testing.T) {
	assert.Equal(t, 100.0, EnvironmentalSubScore(ecovalley.ImpactTotals{}))
	assert.InDelta(t, 0, EnvironmentalSubScore(ecovalley.ImpactTotals{
		TotalEnergyKWh:   5000,
		TotalCarbonKg:    5000,
		TotalWaterLiters: 500000,
	}), 1e-9)
	assert.InDelta(t, 80, EnvironmentalSubScore(ecovalley.ImpactTotals{TotalEnergyKWh: 1000}), 1e-9)
}
