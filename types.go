package ecovalley

import (
	"context"
	"net/http"
	"time"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type SlackClient interface {
	PostMessage(ctx context.Context, channel string, message string) error
}

// Processor is the capability shared by every analysis stage and by the
// coordinator itself.
type Processor[In, Out any] interface {
	Process(ctx context.Context, in In) (Out, error)
}

// NarrativeRequest is a single prompt for the narrative collaborator.
type NarrativeRequest struct {
	SystemRole  string  `json:"system_role"`
	Prompt      string  `json:"prompt"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int32   `json:"max_tokens"`
}

// Narrator turns a prompt into prose. It contributes no numeric state.
type Narrator interface {
	Generate(ctx context.Context, req NarrativeRequest) (string, error)
}

type Coordinator interface {
	Processor[SuggestRequest, CoordinatorResponse]
}

// ImpactTotals are the summed environmental metrics of a request, rounded to
// two decimals.
type ImpactTotals struct {
	TotalEnergyKWh   float64 `json:"total_energy_kwh"`
	TotalCarbonKg    float64 `json:"total_carbon_kg"`
	TotalWaterLiters float64 `json:"total_water_liters"`
	TotalCostUSD     float64 `json:"total_cost_usd"`
}

// EnvironmentalImpact is the output of the environmental stage.
type EnvironmentalImpact struct {
	DirectImpacts       ImpactTotals `json:"direct_impacts"`
	AIAssessment        string       `json:"ai_assessment"`
	SustainabilityScore float64      `json:"sustainability_score"`
	SustainabilityLevel string       `json:"sustainability_level"`
}

// CostTotals are the summed monetary costs of a request.
type CostTotals struct {
	TotalCostUSD     float64       `json:"total_cost_usd"`
	MaterialCosts    MaterialCosts `json:"material_costs"`
	AverageCostPerKg float64       `json:"average_cost_per_kg"`
}

// BudgetStatus compares a total cost against a caller supplied budget.
type BudgetStatus struct {
	IsWithinBudget   bool    `json:"is_within_budget"`
	RemainingBudget  float64 `json:"remaining_budget"`
	PercentageUsed   float64 `json:"percentage_used"`
	BudgetExceededBy float64 `json:"budget_exceeded_by"`
}

// CostAnalysis is the output of the cost stage. BudgetAnalysis is only set
// when the request carried a budget.
type CostAnalysis struct {
	DirectCosts             CostTotals    `json:"direct_costs"`
	MarketAnalysis          string        `json:"market_analysis"`
	OptimizationSuggestions string        `json:"optimization_suggestions"`
	BudgetAnalysis          *BudgetStatus `json:"budget_analysis,omitempty"`
}

// SubScores are the four weighted components of a material score, each in
// [0,100].
type SubScores struct {
	Environmental    float64 `json:"environmental"`
	Cost             float64 `json:"cost"`
	Recyclability    float64 `json:"recyclability"`
	Biodegradability float64 `json:"biodegradability"`
}

// MaterialScore is one ranked entry of a recommendation.
type MaterialScore struct {
	Material  string    `json:"material"`
	Score     float64   `json:"score"`
	Rank      int       `json:"rank"`
	SubScores SubScores `json:"sub_scores"`
}

// RecommendationInput feeds the recommendation stage with the completed
// environmental and cost results.
type RecommendationInput struct {
	Materials     []string
	Environmental EnvironmentalImpact
	Cost          CostAnalysis
	Preferences   Preferences
}

// Recommendation is the output of the recommendation stage.
type Recommendation struct {
	RecommendedMaterials    []MaterialScore `json:"recommended_materials"`
	TradeOffAnalysis        string          `json:"trade_off_analysis"`
	AlternativeSuggestions  string          `json:"alternative_suggestions"`
	RecommendationReasoning string          `json:"recommendation_reasoning"`
}

// AgentOutputs groups the three stage results of one request.
type AgentOutputs struct {
	EnvironmentalImpact EnvironmentalImpact `json:"environmental_impact"`
	CostAnalysis        CostAnalysis        `json:"cost_analysis"`
	Recommendation      Recommendation      `json:"recommendation"`
}

// ConversationEntry records one successful request and its outputs.
type ConversationEntry struct {
	ID            string          `json:"id"`
	Timestamp     time.Time       `json:"timestamp"`
	RequestDigest string          `json:"request_digest"`
	UserInput     MaterialRequest `json:"user_input"`
	AgentOutputs  AgentOutputs    `json:"agent_outputs"`
}

// CoordinatorResponse is the combined answer to a suggest request.
type CoordinatorResponse struct {
	EnvironmentalImpact EnvironmentalImpact `json:"environmental_impact"`
	CostAnalysis        CostAnalysis        `json:"cost_analysis"`
	Recommendation      Recommendation      `json:"recommendation"`
	ConversationHistory []ConversationEntry `json:"conversation_history"`
}
