package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"ecovalley"
	"ecovalley/app"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [request.json]",
	Short: "Run one suggest request and print the response",
	Long:  "Reads a suggest request as JSON from the named file, or from stdin when no file or \"-\" is given. An empty request surveys the whole catalog.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		f := cmd.Flags()

		path := "-"
		if len(args) == 1 {
			path = args[0]
		}
		req, err := readSuggestRequest(path, cmd.InOrStdin())
		if err != nil {
			return err
		}

		a, err := app.New(ctx, cfg, app.Overrides{})
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				slog.Error("SETUP: Failed to flush stage log", "error", err)
			}
		}()

		resp, err := a.Coordinator.Process(ctx, req)
		if err != nil {
			return err
		}

		if dump, _ := f.GetBool("dump"); dump {
			ecovalley.Dump(cmd.OutOrStdout(), resp)
		} else {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(resp); err != nil {
				return fmt.Errorf("encode response: %w", err)
			}
		}

		if notify, _ := f.GetBool("slack"); notify {
			if err := a.Notify(ctx, resp); err != nil {
				slog.Error("RESULT: Failed to post to Slack", "error", err)
			}
		}
		return nil
	},
}

func readSuggestRequest(path string, stdin io.Reader) (ecovalley.SuggestRequest, error) {
	var r io.Reader = stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return ecovalley.SuggestRequest{}, fmt.Errorf("open request: %w", err)
		}
		defer file.Close()
		r = file
	}

	var req ecovalley.SuggestRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return ecovalley.SuggestRequest{}, ecovalley.Validationf("invalid request: %v", err)
	}
	return req, nil
}

func init() {
	f := suggestCmd.Flags()
	f.Bool("dump", false, "print a deep Go rendering of the response instead of JSON")
	f.Bool("slack", false, "post a summary to SLACK_WEBHOOK_URL")
	rootCmd.AddCommand(suggestCmd)
}
