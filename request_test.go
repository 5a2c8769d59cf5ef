package ecovalley

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMaterialRequest(t *testing.T) {
	tests := []struct {
		name          string
		materials     []string
		quantities    []float64
		budget        *float64
		prefs         *Preferences
		expectedError string
	}{
		{
			name:       "valid request",
			materials:  []string{"Bamboo", "Recycled PET"},
			quantities: []float64{10, 5},
			budget:     Float(100),
			prefs:      &Preferences{CostPriority: Float(0.5)},
		},
		{
			name:          "missing materials",
			quantities:    []float64{1},
			expectedError: "materials is required",
		},
		{
			name:          "missing quantities",
			materials:     []string{"Bamboo"},
			expectedError: "quantities is required",
		},
		{
			name:          "length mismatch",
			materials:     []string{"Bamboo", "Hemp"},
			quantities:    []float64{1},
			expectedError: "must match",
		},
		{
			name:          "empty lists",
			materials:     []string{},
			quantities:    []float64{},
			expectedError: "at least one material",
		},
		{
			name:          "zero quantity",
			materials:     []string{"Bamboo"},
			quantities:    []float64{0},
			expectedError: "positive number",
		},
		{
			name:          "negative quantity",
			materials:     []string{"Bamboo", "Hemp"},
			quantities:    []float64{100, -150},
			expectedError: "positive number",
		},
		{
			name:          "NaN quantity",
			materials:     []string{"Bamboo"},
			quantities:    []float64{math.NaN()},
			expectedError: "positive number",
		},
		{
			name:          "negative budget",
			materials:     []string{"Bamboo"},
			quantities:    []float64{1},
			budget:        Float(-1),
			expectedError: "budget",
		},
		{
			name:          "preference above one",
			materials:     []string{"Bamboo"},
			quantities:    []float64{1},
			prefs:         &Preferences{EnvironmentalPriority: Float(1.5)},
			expectedError: "environmental_priority",
		},
		{
			name:          "negative preference",
			materials:     []string{"Bamboo"},
			quantities:    []float64{1},
			prefs:         &Preferences{BiodegradabilityPriority: Float(-0.1)},
			expectedError: "biodegradability_priority",
		},
		{
			name:          "empty material name",
			materials:     []string{""},
			quantities:    []float64{1},
			expectedError: "empty name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewMaterialRequest(tt.materials, tt.quantities, tt.budget, tt.prefs)
			if tt.expectedError != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrValidation)
				assert.Contains(t, err.Error(), tt.expectedError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.materials, req.Materials)
			assert.Equal(t, tt.quantities, req.Quantities)
		})
	}
}

func TestNewMaterialRequest_CopiesInput(t *testing.T) {
	materials := []string{"Bamboo"}
	quantities := []float64{2}
	budget := 10.0

	req, err := NewMaterialRequest(materials, quantities, &budget, nil)
	require.NoError(t, err)

	materials[0] = "Hemp"
	quantities[0] = 99
	budget = 0

	assert.Equal(t, "Bamboo", req.Materials[0])
	assert.Equal(t, 2.0, req.Quantities[0])
	assert.Equal(t, 10.0, *req.Budget)
	assert.Equal(t, 2.0, req.TotalQuantity())
}

func TestPreferences_Weights(t *testing.T) {
	t.Run("no preferences uses defaults", func(t *testing.T) {
		assert.Equal(t, DefaultWeights(), Preferences{}.Weights())
	})

	t.Run("partial merge keeps unspecified defaults", func(t *testing.T) {
		w := Preferences{CostPriority: Float(0.9), RecyclabilityPriority: Float(0)}.Weights()
		assert.Equal(t, Weights{
			Environmental:    0.4,
			Cost:             0.9,
			Recyclability:    0,
			Biodegradability: 0.15,
		}, w)
	})
}
