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

func TestEnvironmentalScorer_Process(t *testing.T) {
	cat := testCatalog(t)
	narrator := mock.NewNarrator()
	scorer := NewEnvironmentalScorer(cat, narrator, DefaultNarrativeOptions())

	req, err := ecovalley.NewMaterialRequest([]string{"Bamboo", "Recycled PET"}, []float64{10, 5}, nil, nil)
	require.NoError(t, err)

	result, err := scorer.Process(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, ecovalley.ImpactTotals{
		TotalEnergyKWh:   29.5,
		TotalCarbonKg:    10.5,
		TotalWaterLiters: 260,
		TotalCostUSD:     35,
	}, result.DirectImpacts)
	// energy 41, carbon 0, water 74
	assert.InDelta(t, 34.5, result.SustainabilityScore, 1e-9)
	assert.Equal(t, LevelNeedsImprovement, result.SustainabilityLevel)
	assert.NotEmpty(t, result.AIAssessment)

	calls := narrator.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, EnvironmentalRole, calls[0].SystemRole)
	assert.Equal(t, float32(0.7), calls[0].Temperature)
	assert.Equal(t, int32(1000), calls[0].MaxTokens)
	assert.Contains(t, calls[0].Prompt, "29.5 kWh")
	assert.Contains(t, calls[0].Prompt, "$35")
}

func TestEnvironmentalScorer_Deterministic(t *testing.T) {
	scorer := NewEnvironmentalScorer(testCatalog(t), mock.NewNarrator(), DefaultNarrativeOptions())
	req, err := ecovalley.NewMaterialRequest([]string{"Hemp", "Bamboo"}, []float64{2.5, 1}, nil, nil)
	require.NoError(t, err)

	first, err := scorer.Process(context.Background(), req)
	require.NoError(t, err)
	second, err := scorer.Process(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.DirectImpacts, second.DirectImpacts)
	assert.Equal(t, first.SustainabilityScore, second.SustainabilityScore)
}

func TestEnvironmentalScorer_Errors(t *testing.T) {
	tests := []struct {
		name        string
		req         ecovalley.MaterialRequest
		narrator    *mock.Narrator
		wantKind    error
		wantLookups bool
	}{
		{
			name:     "length mismatch",
			req:      ecovalley.MaterialRequest{Materials: []string{"Bamboo", "Hemp"}, Quantities: []float64{1}},
			narrator: mock.NewNarrator(),
			wantKind: ecovalley.ErrValidation,
		},
		{
			name:     "zero quantity",
			req:      ecovalley.MaterialRequest{Materials: []string{"Bamboo"}, Quantities: []float64{0}},
			narrator: mock.NewNarrator(),
			wantKind: ecovalley.ErrValidation,
		},
		{
			name:     "missing quantities",
			req:      ecovalley.MaterialRequest{Materials: []string{"Bamboo"}},
			narrator: mock.NewNarrator(),
			wantKind: ecovalley.ErrValidation,
		},
		{
			name:        "unknown material",
			req:         ecovalley.MaterialRequest{Materials: []string{"Bamboo", "Unobtainium"}, Quantities: []float64{1, 1}},
			narrator:    mock.NewNarrator(),
			wantKind:    ecovalley.ErrNotFound,
			wantLookups: true,
		},
		{
			name:        "narrator failure",
			req:         ecovalley.MaterialRequest{Materials: []string{"Bamboo"}, Quantities: []float64{1}},
			narrator:    mock.NewFailingNarrator(1),
			wantKind:    ecovalley.ErrExternalService,
			wantLookups: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := testCatalog(t)
			scorer := NewEnvironmentalScorer(cat, tt.narrator, DefaultNarrativeOptions())

			_, err := scorer.Process(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantKind), "got %v", err)
			assert.Equal(t, tt.wantLookups, cat.lookups > 0)
		})
	}
}

func TestEnvironmentalScorer_NarratorErrorWrapped(t *testing.T) {
	scorer := NewEnvironmentalScorer(testCatalog(t), mock.NewFailingNarrator(1), DefaultNarrativeOptions())
	_, err := scorer.Process(context.Background(), ecovalley.MaterialRequest{Materials: []string{"Bamboo"}, Quantities: []float64{1}})

	require.Error(t, err)
	assert.ErrorIs(t, err, mock.ErrScripted)
	assert.Contains(t, err.Error(), "environmental assessment")
}

func TestSustainabilityScore(t *testing.T) {
	tests := []struct {
		name   string
		totals ecovalley.ImpactTotals
		want   float64
	}{
		{"no impact", ecovalley.ImpactTotals{}, 100},
		{"energy only", ecovalley.ImpactTotals{TotalEnergyKWh: 10}, 94},
		{"carbon floor", ecovalley.ImpactTotals{TotalCarbonKg: 50}, 60},
		{"everything floored", ecovalley.ImpactTotals{TotalEnergyKWh: 500, TotalCarbonKg: 500, TotalWaterLiters: 5000}, 0},
		{"cost ignored", ecovalley.ImpactTotals{TotalCostUSD: 1e6}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, SustainabilityScore(tt.totals), 1e-9)
		})
	}
}

func TestSustainabilityLevel(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, LevelExcellent},
		{80, LevelExcellent},
		{79.99, LevelGood},
		{60, LevelGood},
		{59.99, LevelModerate},
		{40, LevelModerate},
		{39.99, LevelNeedsImprovement},
		{0, LevelNeedsImprovement},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SustainabilityLevel(tt.score), "score %v", tt.score)
	}
}

func TestEnvironmentalScorer_Overflow(t *testing.T) {
	narrator := mock.NewNarrator()
	scorer := NewEnvironmentalScorer(testCatalog(t), narrator, DefaultNarrativeOptions())

	req, err := ecovalley.NewMaterialRequest([]string{"Bamboo"}, []float64{1e308}, nil, nil)
	require.NoError(t, err)

	_, err = scorer.Process(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ecovalley.ErrValidation)
	assert.Contains(t, err.Error(), "overflow")
	assert.Empty(t, narrator.Calls())
}
