package analysis

import (
	"context"
	"log/slog"
	"math"

	"ecovalley"
)

// CostAnalyzer prices a request and checks it against the optional budget.
type CostAnalyzer struct {
	catalog  Catalog
	narrator ecovalley.Narrator
	opts     NarrativeOptions
}

func NewCostAnalyzer(c Catalog, n ecovalley.Narrator, opts NarrativeOptions) *CostAnalyzer {
	return &CostAnalyzer{catalog: c, narrator: n, opts: opts}
}

// Process computes the cost totals and budget status of req, then requests the
// market analysis and the optimization suggestions in that order.
func (a *CostAnalyzer) Process(ctx context.Context, req ecovalley.MaterialRequest) (ecovalley.CostAnalysis, error) {
	req, err := revalidate(req)
	if err != nil {
		return ecovalley.CostAnalysis{}, err
	}

	totals, err := CostTotalsFor(a.catalog, req)
	if err != nil {
		return ecovalley.CostAnalysis{}, err
	}

	var budget *ecovalley.BudgetStatus
	if req.Budget != nil {
		status := CheckBudget(totals.TotalCostUSD, *req.Budget)
		budget = &status
	}
	slog.Debug("ANALYSIS: Cost totals", "total_usd", totals.TotalCostUSD, "average_per_kg", totals.AverageCostPerKg, "budgeted", budget != nil)

	market, err := narrate(ctx, a.narrator, a.opts, CostRole, marketPrompt(req.Materials, totals), "market analysis")
	if err != nil {
		return ecovalley.CostAnalysis{}, err
	}

	suggestions, err := narrate(ctx, a.narrator, a.opts, CostRole, optimizationPrompt(req.Materials, totals, budget), "optimization suggestions")
	if err != nil {
		return ecovalley.CostAnalysis{}, err
	}

	return ecovalley.CostAnalysis{
		DirectCosts:             totals,
		MarketAnalysis:          market,
		OptimizationSuggestions: suggestions,
		BudgetAnalysis:          budget,
	}, nil
}

// CostTotalsFor prices every pair of req. A repeated material accumulates into
// its first entry, so the breakdown sums to the total.
func CostTotalsFor(c Catalog, req ecovalley.MaterialRequest) (ecovalley.CostTotals, error) {
	var (
		raw   ecovalley.MaterialCosts
		total float64
	)
	for i, name := range req.Materials {
		rec, err := c.Lookup(name)
		if err != nil {
			return ecovalley.CostTotals{}, err
		}
		cost := rec.CostPerKg * req.Quantities[i]
		raw = raw.Add(name, cost)
		total += cost
	}

	breakdown := make(ecovalley.MaterialCosts, len(raw))
	for i, mc := range raw {
		breakdown[i] = ecovalley.MaterialCost{Material: mc.Material, CostUSD: round2(mc.CostUSD)}
		if err := checkFinite("material cost", breakdown[i].CostUSD); err != nil {
			return ecovalley.CostTotals{}, err
		}
	}

	q := req.TotalQuantity()
	if err := checkFinite("cost totals", round2(total), q); err != nil {
		return ecovalley.CostTotals{}, err
	}
	var average float64
	if q > 0 {
		average = total / q
	}

	return ecovalley.CostTotals{
		TotalCostUSD:     round2(total),
		MaterialCosts:    breakdown,
		AverageCostPerKg: round2(average),
	}, nil
}

// CheckBudget compares total against budget. Remaining and exceeded amounts
// never go below zero; a zero budget reports 0 percent used.
func CheckBudget(total, budget float64) ecovalley.BudgetStatus {
	var used float64
	if budget > 0 {
		used = total / budget * 100
	}
	return ecovalley.BudgetStatus{
		IsWithinBudget:   total <= budget,
		RemainingBudget:  round2(math.Max(0, budget-total)),
		PercentageUsed:   round2(used),
		BudgetExceededBy: round2(math.Max(0, total-budget)),
	}
}
