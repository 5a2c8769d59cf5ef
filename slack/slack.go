// Package slack posts suggestion summaries to an incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"ecovalley"
)

type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	webhookURL string
	httpClient doer
}

var _ ecovalley.SlackClient = (*Client)(nil)

func NewClient(webhookURL string, httpClient doer) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: httpClient,
	}
}

func (c *Client) PostMessage(ctx context.Context, channel string, message string) error {
	payload, err := json.Marshal(map[string]any{
		"channel": channel,
		"text":    message,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to post message: %s", resp.Status)
	}

	return nil
}

// Summary renders the ranked materials and the headline numbers of resp as a
// Slack mrkdwn message.
func Summary(resp ecovalley.CoordinatorResponse) string {
	var b strings.Builder

	ranked := resp.Recommendation.RecommendedMaterials
	if len(ranked) > 0 {
		fmt.Fprintf(&b, "*Top pick: %s* (score %.2f)\n", ranked[0].Material, ranked[0].Score)
	} else {
		b.WriteString("*No materials ranked*\n")
	}

	env := resp.EnvironmentalImpact
	fmt.Fprintf(&b, "Sustainability: %.2f (%s)\n", env.SustainabilityScore, env.SustainabilityLevel)

	costs := resp.CostAnalysis.DirectCosts
	fmt.Fprintf(&b, "Total cost: $%.2f (avg $%.2f/kg)\n", costs.TotalCostUSD, costs.AverageCostPerKg)
	if budget := resp.CostAnalysis.BudgetAnalysis; budget != nil {
		if budget.IsWithinBudget {
			fmt.Fprintf(&b, "Budget: %.2f%% used, $%.2f remaining\n", budget.PercentageUsed, budget.RemainingBudget)
		} else {
			fmt.Fprintf(&b, "Budget: exceeded by $%.2f\n", budget.BudgetExceededBy)
		}
	}

	for _, m := range ranked {
		fmt.Fprintf(&b, "%d. %s: %.2f\n", m.Rank, m.Material, m.Score)
	}

	return strings.TrimRight(b.String(), "\n")
}

// Notify posts the summary of resp to channel.
func Notify(ctx context.Context, client ecovalley.SlackClient, channel string, resp ecovalley.CoordinatorResponse) error {
	if err := client.PostMessage(ctx, channel, Summary(resp)); err != nil {
		return fmt.Errorf("slack notification: %w", err)
	}
	return nil
}
