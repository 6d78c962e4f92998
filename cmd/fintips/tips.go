package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/waqaskhan137/fintips/app"
	"github.com/waqaskhan137/fintips/apperr"
	"github.com/waqaskhan137/fintips/config"
	"github.com/waqaskhan137/fintips/core"
	"github.com/waqaskhan137/fintips/dashboard"
	"github.com/waqaskhan137/fintips/flow"
)

var (
	flagFile    string
	flagGoal    string
	flagSample  bool
	flagJSON    bool
	flagTimeout time.Duration
)

var tipsCmd = &cobra.Command{
	Use:   "tips",
	Short: "Generate budgeting tips for a budget and its expenses",
	Example: `  fintips tips --file request.json
  cat request.json | fintips tips --file -
  fintips tips --sample --goal "Save for a holiday"`,
	RunE: runTips,
}

func init() {
	tipsCmd.Flags().StringVarP(&flagFile, "file", "f", "", "JSON request file, or - for stdin")
	tipsCmd.Flags().StringVarP(&flagGoal, "goal", "g", "", "Financial goals (overrides the request's financialGoals)")
	tipsCmd.Flags().BoolVar(&flagSample, "sample", false, "Use the sample dashboard figures as the request")
	tipsCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the result as JSON")
	tipsCmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "Generation timeout (overrides llm.timeout_seconds)")
	rootCmd.AddCommand(tipsCmd)
}

func runTips(cmd *cobra.Command, _ []string) error {
	in, err := readTipsInput(cmd.InOrStdin(), flagFile, flagSample, cmd.Flags().Changed("goal"), flagGoal)
	if err != nil {
		return describe(err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel, err := withTimeout(cmd.Context(), &cfg, flagTimeout)
	if err != nil {
		return err
	}
	defer cancel()

	tipsFlow, err := app.BuildFlow(cfg)
	if err != nil {
		return err
	}

	ctx = core.WithRequestID(ctx, uuid.NewString())
	out, err := tipsFlow.Generate(ctx, in)
	if err != nil {
		return describe(err)
	}
	return writeTips(cmd.OutOrStdout(), out, flagJSON)
}

// withTimeout applies --timeout as a deadline on ctx, replacing the configured
// generation timeout. Zero keeps the configured one.
func withTimeout(ctx context.Context, cfg *config.Config, timeout time.Duration) (context.Context, context.CancelFunc, error) {
	switch {
	case timeout < 0:
		return nil, nil, fmt.Errorf("--timeout must not be negative, got %s", timeout)
	case timeout == 0:
		return ctx, func() {}, nil
	}
	cfg.LLM.TimeoutSeconds = 0
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, cancel, nil
}

// readTipsInput builds the request from --sample or --file, then applies --goal.
func readTipsInput(stdin io.Reader, file string, sample, goalSet bool, goal string) (flow.Input, error) {
	var in flow.Input
	switch {
	case sample:
		in = dashboard.Sample().TipsInput("")
	case file == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return in, fmt.Errorf("reading stdin: %w", err)
		}
		if in, err = flow.DecodeInput(data); err != nil {
			return in, err
		}
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return in, fmt.Errorf("reading %s: %w", file, err)
		}
		if in, err = flow.DecodeInput(data); err != nil {
			return in, err
		}
	default:
		return in, errors.New("either --file or --sample is required")
	}
	if goalSet {
		in.FinancialGoals = goal
	}
	return in, nil
}

func writeTips(w io.Writer, out *flow.Output, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	return dashboard.RenderTips(w, out.Tips)
}

// describe expands validation details into the error message.
func describe(err error) error {
	appErr, ok := apperr.AsAppError(err)
	if !ok {
		return err
	}
	fields, _ := appErr.Details["fields"].([]map[string]string)
	if len(fields) == 0 {
		return err
	}
	msg := appErr.Message
	for _, f := range fields {
		msg += fmt.Sprintf("\n  %s: %s", f["field"], f["message"])
	}
	return errors.New(msg)
}
