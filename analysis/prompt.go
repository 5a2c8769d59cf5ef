package analysis

import (
	"fmt"
	"strings"

	"ecovalley"
)

func environmentalPrompt(t ecovalley.ImpactTotals) string {
	return fmt.Sprintf(`Analyze these environmental impacts and provide a brief assessment:
- Energy Usage: %v kWh
- Carbon Emissions: %v kg CO2e
- Water Usage: %v liters
- Total Cost: $%v

Provide a brief assessment of the environmental impact and suggestions for improvement.`,
		t.TotalEnergyKWh, t.TotalCarbonKg, t.TotalWaterLiters, t.TotalCostUSD)
}

func marketPrompt(materials []string, c ecovalley.CostTotals) string {
	return fmt.Sprintf(`Analyze the current market conditions for these materials and their costs:
%s

Total Cost: $%v
Average Cost per kg: $%v

Provide a brief market analysis including:
1. Current market trends
2. Price competitiveness
3. Supply chain considerations
4. Potential cost fluctuations`,
		strings.Join(materials, ", "), c.TotalCostUSD, c.AverageCostPerKg)
}

func optimizationPrompt(materials []string, c ecovalley.CostTotals, budget *ecovalley.BudgetStatus) string {
	var b strings.Builder
	fmt.Fprintf(&b, `Analyze these materials and their costs for optimization opportunities:
%s

Current Costs:
- Total Cost: $%v
- Average Cost per kg: $%v
`, strings.Join(materials, ", "), c.TotalCostUSD, c.AverageCostPerKg)

	if budget != nil {
		fmt.Fprintf(&b, `
Budget Status:
- Within Budget: %t
- Remaining Budget: $%v
- Budget Used: %v%%
`, budget.IsWithinBudget, budget.RemainingBudget, budget.PercentageUsed)
	}

	b.WriteString(`
Provide specific suggestions for:
1. Cost reduction opportunities
2. Alternative materials
3. Quantity optimization
4. Supply chain improvements`)
	return b.String()
}

func tradeOffPrompt(scores []ecovalley.MaterialScore, t ecovalley.ImpactTotals, c ecovalley.CostTotals) string {
	return fmt.Sprintf(`Analyze the trade-offs between these materials based on their scores and impacts:

Material Scores:
%s

Environmental Impact:
- Energy Usage: %v kWh
- Carbon Emissions: %v kg CO2e
- Water Usage: %v liters

Cost Analysis:
- Total Cost: $%v
- Average Cost per kg: $%v

Provide a detailed trade-off analysis considering:
1. Environmental impact vs. cost
2. Performance characteristics
3. Supply chain considerations
4. Long-term sustainability`,
		scoreList(scores), t.TotalEnergyKWh, t.TotalCarbonKg, t.TotalWaterLiters, c.TotalCostUSD, c.AverageCostPerKg)
}

func alternativesPrompt(scores []ecovalley.MaterialScore, w ecovalley.Weights, tradeOff string) string {
	return fmt.Sprintf(`Based on the current material scores and preferences:
%s

Preferences:
- Environmental Priority: %v
- Cost Priority: %v
- Recyclability Priority: %v
- Biodegradability Priority: %v

Trade-off Analysis:
%s

Suggest alternative materials that could:
1. Improve environmental impact
2. Reduce costs
3. Enhance recyclability
4. Increase biodegradability

Consider both direct alternatives and innovative solutions.`,
		scoreList(scores), w.Environmental, w.Cost, w.Recyclability, w.Biodegradability, tradeOff)
}

func reasoningPrompt(scores []ecovalley.MaterialScore, tradeOff, alternatives string) string {
	return fmt.Sprintf(`Based on the following information, provide detailed reasoning for material recommendations:

Material Scores:
%s

Trade-off Analysis:
%s

Alternative Suggestions:
%s

Provide comprehensive reasoning that:
1. Explains the scoring methodology
2. Justifies the recommendations
3. Addresses potential concerns
4. Suggests implementation strategies`,
		scoreList(scores), tradeOff, alternatives)
}

func scoreList(scores []ecovalley.MaterialScore) string {
	parts := make([]string, len(scores))
	for i, s := range scores {
		parts[i] = fmt.Sprintf("%s: %v", s.Material, s.Score)
	}
	return strings.Join(parts, ", ")
}
