package main

import (
	"context"
	"errors"
	"log"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"

	"ecovalley"
	"ecovalley/app"
)

func main() {
	ctx := context.Background()

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	tracerProvider, meterProvider, _, err := ecovalley.InitOtel(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %s", err)
	}
	flush := func(ctx context.Context) error {
		return errors.Join(tracerProvider.ForceFlush(ctx), meterProvider.ForceFlush(ctx))
	}

	// The catalog and history live for the lifetime of the execution
	// environment, so warm invocations share them.
	a, err := app.New(ctx, cfg, app.Overrides{StageLogger: ecovalley.NewStdoutStageLogger()})
	if err != nil {
		log.Fatalf("Failed to build app: %s", err)
	}

	lambda.Start(newHandler(a.Coordinator, a, flush))
}

type notifier interface {
	Notify(ctx context.Context, resp ecovalley.CoordinatorResponse) error
}

func newHandler(coord ecovalley.Coordinator, n notifier, flush func(context.Context) error) func(context.Context, ecovalley.SuggestRequest) (ecovalley.CoordinatorResponse, error) {
	return func(ctx context.Context, req ecovalley.SuggestRequest) (ecovalley.CoordinatorResponse, error) {
		defer func() {
			if err := flush(ctx); err != nil {
				slog.Error("SETUP: Failed to flush OpenTelemetry", "error", err)
			}
		}()

		resp, err := coord.Process(ctx, req)
		if err != nil {
			slog.Error("RESULT: Error handling request", "error", err)
			return ecovalley.CoordinatorResponse{}, err
		}

		if err := n.Notify(ctx, resp); err != nil {
			slog.Error("RESULT: Failed to post to Slack", "error", err)
		}
		return resp, nil
	}
}
