// Package coordinator runs the environmental, cost and recommendation stages
// of a suggest request and keeps the conversation history.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"ecovalley"
)

// Stage names, also used as error context and metric attributes.
const (
	StageEnvironmental  = "environmental impact"
	StageCost           = "cost analysis"
	StageRecommendation = "recommendation"
)

// CatalogNames lists the materials a survey request covers.
type CatalogNames interface {
	Names() []string
}

type Stages struct {
	Environmental  ecovalley.Processor[ecovalley.MaterialRequest, ecovalley.EnvironmentalImpact]
	Cost           ecovalley.Processor[ecovalley.MaterialRequest, ecovalley.CostAnalysis]
	Recommendation ecovalley.Processor[ecovalley.RecommendationInput, ecovalley.Recommendation]
}

type Options struct {
	// HistoryLimit bounds the conversation history; 0 keeps every entry.
	HistoryLimit int
	StageLogger  ecovalley.StageLogger
	Tracer       trace.Tracer
	Meter        metric.Meter
}

// Coordinator is safe for concurrent use. Requests run independently and only
// the history append is serialized.
type Coordinator struct {
	catalog CatalogNames
	stages  Stages
	history *History
	logger  ecovalley.StageLogger
	tracer  trace.Tracer

	requests      metric.Int64Counter
	failures      metric.Int64Counter
	stageDuration metric.Float64Histogram
	historySize   metric.Int64Gauge
	topScore      metric.Float64Gauge
}

var _ ecovalley.Coordinator = (*Coordinator)(nil)

func New(names CatalogNames, stages Stages, opts Options) (*Coordinator, error) {
	if names == nil || stages.Environmental == nil || stages.Cost == nil || stages.Recommendation == nil {
		return nil, fmt.Errorf("coordinator requires a catalog and all three stages")
	}
	if opts.StageLogger == nil {
		opts.StageLogger = ecovalley.NewNoOpStageLogger()
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(ecovalley.TracerNameCoordinator)
	}
	if opts.Meter == nil {
		opts.Meter = otel.Meter(ecovalley.MeterNameCoordinator)
	}

	c := &Coordinator{
		catalog: names,
		stages:  stages,
		history: NewHistory(opts.HistoryLimit),
		logger:  opts.StageLogger,
		tracer:  opts.Tracer,
	}

	var err error
	if c.requests, err = opts.Meter.Int64Counter("coordinator_requests_total",
		metric.WithDescription("Total number of suggest requests received")); err != nil {
		return nil, err
	}
	if c.failures, err = opts.Meter.Int64Counter("coordinator_requests_failed_total",
		metric.WithDescription("Total number of suggest requests that failed")); err != nil {
		return nil, err
	}
	if c.stageDuration, err = opts.Meter.Float64Histogram("coordinator_stage_duration_seconds",
		metric.WithDescription("Duration of each analysis stage in seconds"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if c.historySize, err = opts.Meter.Int64Gauge("coordinator_history_entries",
		metric.WithDescription("Number of entries in the conversation history")); err != nil {
		return nil, err
	}
	if c.topScore, err = opts.Meter.Float64Gauge("recommendation_top_score",
		metric.WithDescription("Score of the top ranked material of the latest request")); err != nil {
		return nil, err
	}

	return c, nil
}

// Process answers one suggest request. With no materials named it surveys the
// whole catalog at quantity 1 each. The environmental and cost stages run
// concurrently and the recommendation stage runs after both. Only a fully
// successful request is added to the history.
func (c *Coordinator) Process(ctx context.Context, req ecovalley.SuggestRequest) (ecovalley.CoordinatorResponse, error) {
	ctx, span := c.tracer.Start(ctx, "Coordinator.Process")
	defer span.End()

	c.requests.Add(ctx, 1)

	resp, err := c.process(ctx, req, span)
	if err != nil {
		c.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kindName(err))))
		span.SetStatus(codes.Error, "suggest request failed")
		span.RecordError(err)
		slog.Error("COORDINATOR: Request failed", "error", err)
		return ecovalley.CoordinatorResponse{}, err
	}
	return resp, nil
}

func (c *Coordinator) process(ctx context.Context, req ecovalley.SuggestRequest, span trace.Span) (ecovalley.CoordinatorResponse, error) {
	materials, quantities := req.Materials, req.Quantities
	if len(materials) == 0 {
		materials = c.catalog.Names()
		quantities = make([]float64, len(materials))
		for i := range quantities {
			quantities[i] = 1
		}
		slog.Info("COORDINATOR: No materials supplied, surveying catalog", "materials", len(materials))
	}

	mr, err := ecovalley.NewMaterialRequest(materials, quantities, req.Budget, req.Preferences)
	if err != nil {
		return ecovalley.CoordinatorResponse{}, err
	}

	requestID := uuid.NewString()
	span.SetAttributes(
		attribute.String("request_id", requestID),
		attribute.Int("materials_count", len(mr.Materials)),
		attribute.Bool("has_budget", mr.Budget != nil),
	)
	slog.Info("COORDINATOR: Starting request", "request_id", requestID, "materials", mr.Materials)

	var (
		env  ecovalley.EnvironmentalImpact
		cost ecovalley.CostAnalysis
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		env, err = runStage(gctx, c, requestID, StageEnvironmental, len(mr.Materials), c.stages.Environmental, mr)
		return err
	})
	g.Go(func() error {
		var err error
		cost, err = runStage(gctx, c, requestID, StageCost, len(mr.Materials), c.stages.Cost, mr)
		return err
	})
	if err := g.Wait(); err != nil {
		return ecovalley.CoordinatorResponse{}, err
	}

	rec, err := runStage(ctx, c, requestID, StageRecommendation, len(mr.Materials), c.stages.Recommendation, ecovalley.RecommendationInput{
		Materials:     mr.Materials,
		Environmental: env,
		Cost:          cost,
		Preferences:   mr.Preferences,
	})
	if err != nil {
		return ecovalley.CoordinatorResponse{}, err
	}

	digest, err := RequestDigest(mr)
	if err != nil {
		return ecovalley.CoordinatorResponse{}, err
	}

	outputs := ecovalley.AgentOutputs{
		EnvironmentalImpact: env,
		CostAnalysis:        cost,
		Recommendation:      rec,
	}
	history := c.history.Append(ecovalley.ConversationEntry{
		ID:            requestID,
		Timestamp:     time.Now().UTC(),
		RequestDigest: digest,
		UserInput:     mr,
		AgentOutputs:  outputs,
	})

	c.historySize.Record(ctx, int64(len(history)))
	if len(rec.RecommendedMaterials) > 0 {
		top := rec.RecommendedMaterials[0]
		c.topScore.Record(ctx, top.Score, metric.WithAttributes(attribute.String("material", top.Material)))
		slog.Info("COORDINATOR: Request completed", "request_id", requestID, "top_material", top.Material, "top_score", top.Score, "history_entries", len(history))
	}

	return ecovalley.CoordinatorResponse{
		EnvironmentalImpact: env,
		CostAnalysis:        cost,
		Recommendation:      rec,
		ConversationHistory: history,
	}, nil
}

// History returns a copy of the conversation history.
func (c *Coordinator) History() []ecovalley.ConversationEntry {
	return c.history.Entries()
}

func runStage[In, Out any](ctx context.Context, c *Coordinator, requestID, stage string, materials int, p ecovalley.Processor[In, Out], in In) (Out, error) {
	ctx, span := c.tracer.Start(ctx, "Coordinator.Stage", trace.WithAttributes(attribute.String("stage", stage)))
	defer span.End()

	start := time.Now()
	out, err := p.Process(ctx, in)
	elapsed := time.Since(start)

	c.stageDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.Bool("success", err == nil),
	))

	entry := ecovalley.StageLog{
		RequestID: requestID,
		Stage:     stage,
		Timestamp: start,
		Duration:  elapsed,
		Materials: materials,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	if lerr := c.logger.LogStage(entry); lerr != nil {
		slog.Warn("COORDINATOR: Failed to log stage", "stage", stage, "error", lerr)
	}

	if err != nil {
		span.SetStatus(codes.Error, stage+" failed")
		span.RecordError(err)
		var zero Out
		return zero, fmt.Errorf("%s: %w", stage, err)
	}

	slog.Info("COORDINATOR: Stage completed", "request_id", requestID, "stage", stage, "duration", elapsed)
	return out, nil
}

func kindName(err error) string {
	if kind := ecovalley.Kind(err); kind != nil {
		return kind.Error()
	}
	return "internal"
}
