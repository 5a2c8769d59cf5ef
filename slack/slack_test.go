package slack_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"ecovalley"
	"ecovalley/slack"

	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"
)

type mockDoer struct {
	resp   *http.Response
	err    error
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockDoer) Do(req *http.Request) (*http.Response, error) {
	if m.doFunc != nil {
		return m.doFunc(req)
	}
	return m.resp, m.err
}

func TestNewClient(t *testing.T) {
	webhook := "http://slack.com/webhook"
	client := slack.NewClient(webhook, &mockDoer{})
	must.NotNil(t, client, "expected non-nil client")
}

func TestPostMessage(t *testing.T) {
	tests := []struct {
		name    string
		doFunc  func(req *http.Request) (*http.Response, error)
		wantErr error
	}{
		{
			name: "success",
			doFunc: func(req *http.Request) (*http.Response, error) {
				return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewBufferString("ok"))}, nil
			},
			wantErr: nil,
		},
		{
			name: "failure status",
			doFunc: func(req *http.Request) (*http.Response, error) {
				return &http.Response{StatusCode: http.StatusBadRequest, Status: "400 Bad Request", Body: io.NopCloser(bytes.NewBufferString("bad request"))}, nil
			},
			wantErr: fmt.Errorf("failed to post message: 400 Bad Request"),
		},
		{
			name: "do error",
			doFunc: func(req *http.Request) (*http.Response, error) {
				return nil, errors.New("network error")
			},
			wantErr: fmt.Errorf("network error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := slack.NewClient("http://example.com/webhook", &mockDoer{doFunc: tt.doFunc})
			err := client.PostMessage(context.Background(), "#general", "Hello, world!")
			should.Equal(t, tt.wantErr, err)
		})
	}
}

func TestSummary(t *testing.T) {
	resp := ecovalley.CoordinatorResponse{
		EnvironmentalImpact: ecovalley.EnvironmentalImpact{SustainabilityScore: 34.5, SustainabilityLevel: "Needs Improvement"},
		CostAnalysis: ecovalley.CostAnalysis{
			DirectCosts:    ecovalley.CostTotals{TotalCostUSD: 35, AverageCostPerKg: 2.33},
			BudgetAnalysis: &ecovalley.BudgetStatus{IsWithinBudget: false, BudgetExceededBy: 5},
		},
		Recommendation: ecovalley.Recommendation{
			RecommendedMaterials: []ecovalley.MaterialScore{
				{Material: "Bamboo", Score: 80.93, Rank: 1},
				{Material: "Recycled PET", Score: 73.22, Rank: 2},
			},
		},
	}

	want := "*Top pick: Bamboo* (score 80.93)\n" +
		"Sustainability: 34.50 (Needs Improvement)\n" +
		"Total cost: $35.00 (avg $2.33/kg)\n" +
		"Budget: exceeded by $5.00\n" +
		"1. Bamboo: 80.93\n" +
		"2. Recycled PET: 73.22"
	should.Equal(t, want, slack.Summary(resp))
}

func TestNotify(t *testing.T) {
	var body []byte
	client := slack.NewClient("http://example.com/webhook", &mockDoer{doFunc: func(req *http.Request) (*http.Response, error) {
		body, _ = io.ReadAll(req.Body)
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewBufferString("ok"))}, nil
	}})

	resp := ecovalley.CoordinatorResponse{Recommendation: ecovalley.Recommendation{
		RecommendedMaterials: []ecovalley.MaterialScore{{Material: "Hemp", Score: 90, Rank: 1}},
	}}
	must.NoError(t, slack.Notify(context.Background(), client, "#materials", resp))

	var payload map[string]string
	must.NoError(t, json.Unmarshal(body, &payload))
	should.Equal(t, "#materials", payload["channel"])
	should.Contains(t, payload["text"], "Top pick: Hemp")
}

func TestNotifyError(t *testing.T) {
	client := slack.NewClient("http://example.com/webhook", &mockDoer{err: errors.New("network error")})
	err := slack.Notify(context.Background(), client, "#materials", ecovalley.CoordinatorResponse{})
	must.Error(t, err)
	should.Contains(t, err.Error(), "slack notification: network error")
}
