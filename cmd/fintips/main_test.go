package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/waqaskhan137/fintips/config"
	"github.com/waqaskhan137/fintips/flow"
)

const request = `{
	"budget": {"categories": {"Food": 400}, "totalBudget": 1000},
	"expenses": {"categories": {"Food": 450}, "totalExpenses": 450},
	"financialGoals": "Save more"
}`

func TestReadTipsInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "req.json")
	if err := os.WriteFile(path, []byte(request), 0o600); err != nil {
		t.Fatal(err)
	}

	in, err := readTipsInput(nil, path, false, false, "")
	if err != nil {
		t.Fatal(err)
	}
	if in.FinancialGoals != "Save more" || in.Budget.TotalBudget != 1000 {
		t.Fatalf("input = %+v", in)
	}

	in, err = readTipsInput(strings.NewReader(request), "-", false, true, "")
	if err != nil {
		t.Fatal(err)
	}
	if in.FinancialGoals != "" {
		t.Fatalf("--goal did not override: %q", in.FinancialGoals)
	}

	in, err = readTipsInput(nil, "", true, true, "Retire early")
	if err != nil {
		t.Fatal(err)
	}
	if in.FinancialGoals != "Retire early" || in.Budget.Categories["Travel"] != 300 {
		t.Fatalf("sample input = %+v", in)
	}

	if _, err := readTipsInput(nil, "", false, false, ""); err == nil {
		t.Fatal("expected error without --file or --sample")
	}
}

func TestReadTipsInput_InvalidDescribesFields(t *testing.T) {
	bad := strings.Replace(request, `"totalBudget": 1000`, `"totalBudget": "1000"`, 1)
	_, err := readTipsInput(strings.NewReader(bad), "-", false, false, "")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if msg := describe(err).Error(); !strings.Contains(msg, "budget.totalBudget") {
		t.Fatalf("message = %q", msg)
	}
}

func TestWriteTips(t *testing.T) {
	var buf bytes.Buffer
	if err := writeTips(&buf, &flow.Output{Tips: []string{}}, true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"tips": []`) {
		t.Fatalf("json = %s", buf.String())
	}

	buf.Reset()
	if err := writeTips(&buf, &flow.Output{Tips: []string{"Cook at home."}}, false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Cook at home.") {
		t.Fatalf("output = %s", buf.String())
	}
}

func TestConfigInitAndShow(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-1234567890")
	flagConfig = filepath.Join(t.TempDir(), "fintips.toml")
	t.Cleanup(func() { flagConfig = "" })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"config", "init"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !config.Exists(flagConfig) {
		t.Fatal("config file not written")
	}

	rootCmd.SetArgs([]string{"config", "init"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error when config exists")
	}

	out.Reset()
	rootCmd.SetArgs([]string{"config", "--config", flagConfig})
	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	if !strings.Contains(got, "Status: loaded") || !strings.Contains(got, "sk-a...7890") {
		t.Fatalf("output = %s", got)
	}
	if strings.Contains(got, "sk-ant-1234567890") {
		t.Fatal("API key printed unmasked")
	}
}

func TestWithTimeout(t *testing.T) {
	cfg := config.DefaultConfig()
	ctx, cancel, err := withTimeout(context.Background(), &cfg, 0)
	if err != nil {
		t.Fatal(err)
	}
	cancel()
	if _, ok := ctx.Deadline(); ok || cfg.LLM.TimeoutSeconds != 60 {
		t.Fatalf("zero timeout changed the run: deadline=%v seconds=%d", ok, cfg.LLM.TimeoutSeconds)
	}

	ctx, cancel, err = withTimeout(context.Background(), &cfg, 400*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer cancel()
	deadline, ok := ctx.Deadline()
	if !ok || time.Until(deadline) > 400*time.Millisecond {
		t.Fatalf("deadline = %v, %v", deadline, ok)
	}
	if cfg.LLM.TimeoutSeconds != 0 {
		t.Fatalf("configured timeout = %d, want 0", cfg.LLM.TimeoutSeconds)
	}

	if _, _, err := withTimeout(context.Background(), &cfg, -time.Second); err == nil {
		t.Fatal("expected error for negative timeout")
	}
}

func TestMaskAPIKey(t *testing.T) {
	if got := maskAPIKey("short"); got != "*****" {
		t.Fatalf("mask = %q", got)
	}
}
