package ecovalley

import (
	"math"
)

// SuggestRequest is the inbound shape of the suggest method. Every field is
// optional; the coordinator fills in a survey of the whole catalog when no
// materials are named.
type SuggestRequest struct {
	Materials   []string     `json:"materials,omitempty"`
	Quantities  []float64    `json:"quantities,omitempty"`
	Budget      *float64     `json:"budget,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`
}

// MaterialRequest is a validated list of materials paired with quantities in
// kilograms. Build it with NewMaterialRequest.
type MaterialRequest struct {
	Materials   []string    `json:"materials"`
	Quantities  []float64   `json:"quantities"`
	Budget      *float64    `json:"budget,omitempty"`
	Preferences Preferences `json:"preferences"`
}

// NewMaterialRequest checks the request invariants before any catalog lookup:
// materials and quantities have the same non-zero length, every quantity is a
// positive finite number, the budget is a non-negative finite number and every
// supplied preference weight lies in [0,1].
func NewMaterialRequest(materials []string, quantities []float64, budget *float64, prefs *Preferences) (MaterialRequest, error) {
	if materials == nil {
		return MaterialRequest{}, Validationf("materials is required")
	}
	if quantities == nil {
		return MaterialRequest{}, Validationf("quantities is required")
	}
	if len(materials) != len(quantities) {
		return MaterialRequest{}, Validationf("length of materials (%d) and quantities (%d) must match", len(materials), len(quantities))
	}
	if len(materials) == 0 {
		return MaterialRequest{}, Validationf("at least one material is required")
	}
	for i, name := range materials {
		if name == "" {
			return MaterialRequest{}, Validationf("material at index %d has an empty name", i)
		}
	}
	for i, q := range quantities {
		if math.IsNaN(q) || math.IsInf(q, 0) || q <= 0 {
			return MaterialRequest{}, Validationf("quantity for %q must be a positive number, got %v", materials[i], q)
		}
	}
	if budget != nil {
		if math.IsNaN(*budget) || math.IsInf(*budget, 0) || *budget < 0 {
			return MaterialRequest{}, Validationf("budget must be a non-negative number, got %v", *budget)
		}
	}

	var p Preferences
	if prefs != nil {
		if err := prefs.Validate(); err != nil {
			return MaterialRequest{}, err
		}
		p = *prefs
	}

	req := MaterialRequest{
		Materials:   append([]string(nil), materials...),
		Quantities:  append([]float64(nil), quantities...),
		Preferences: p,
	}
	if budget != nil {
		b := *budget
		req.Budget = &b
	}
	return req, nil
}

// TotalQuantity returns the sum of all quantities.
func (r MaterialRequest) TotalQuantity() float64 {
	var total float64
	for _, q := range r.Quantities {
		total += q
	}
	return total
}

// Preferences are the optional user priority weights. Unset keys fall back to
// DefaultWeights individually.
type Preferences struct {
	EnvironmentalPriority    *float64 `json:"environmental_priority,omitempty"`
	CostPriority             *float64 `json:"cost_priority,omitempty"`
	RecyclabilityPriority    *float64 `json:"recyclability_priority,omitempty"`
	BiodegradabilityPriority *float64 `json:"biodegradability_priority,omitempty"`
}

// Validate checks that every supplied weight lies in [0,1].
func (p Preferences) Validate() error {
	for _, f := range []struct {
		key string
		v   *float64
	}{
		{"environmental_priority", p.EnvironmentalPriority},
		{"cost_priority", p.CostPriority},
		{"recyclability_priority", p.RecyclabilityPriority},
		{"biodegradability_priority", p.BiodegradabilityPriority},
	} {
		if f.v == nil {
			continue
		}
		if math.IsNaN(*f.v) || *f.v < 0 || *f.v > 1 {
			return Validationf("%s must be between 0 and 1, got %v", f.key, *f.v)
		}
	}
	return nil
}

// Weights merges the supplied preferences over DefaultWeights key by key.
func (p Preferences) Weights() Weights {
	w := DefaultWeights()
	if p.EnvironmentalPriority != nil {
		w.Environmental = *p.EnvironmentalPriority
	}
	if p.CostPriority != nil {
		w.Cost = *p.CostPriority
	}
	if p.RecyclabilityPriority != nil {
		w.Recyclability = *p.RecyclabilityPriority
	}
	if p.BiodegradabilityPriority != nil {
		w.Biodegradability = *p.BiodegradabilityPriority
	}
	return w
}

// Weights are the effective priorities of the four sub-scores. They are
// combined linearly and need not sum to one.
type Weights struct {
	Environmental    float64 `json:"environmental_priority"`
	Cost             float64 `json:"cost_priority"`
	Recyclability    float64 `json:"recyclability_priority"`
	Biodegradability float64 `json:"biodegradability_priority"`
}

// DefaultWeights returns the priorities used when a request supplies none.
func DefaultWeights() Weights {
	return Weights{
		Environmental:    0.4,
		Cost:             0.3,
		Recyclability:    0.15,
		Biodegradability: 0.15,
	}
}

// Float returns a pointer to v, for optional request fields.
func Float(v float64) *float64 { return &v }
