package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"Wayne/internal/catalog"
	"Wayne/internal/model"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("SQLITE_PATH", "")
	var stdout, stderr bytes.Buffer
	base := []string{"-config", filepath.Join(t.TempDir(), "missing.yaml")}
	code := run(context.Background(), append(base, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no command", nil, exitUsage},
		{"unknown command", []string{"fly"}, exitUsage},
		{"bad global flag", []string{"-nope"}, exitUsage},
		{"earn-money without symbol", []string{"-offline", "earn-money"}, exitUsage},
		{"earn-money bad limit", []string{"-offline", "earn-money", "-limit", "5000", "BTCUSDT"}, exitConfig},
		{"earn-money bad signal", []string{"-offline", "earn-money", "-signal", "sma", "BTCUSDT"}, exitConfig},
		{"download without credentials", []string{"download-coin-info"}, exitConfig},
		{"serve without telegram", []string{"serve"}, exitConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("API_KEY", "")
			t.Setenv("API_SECRET", "")
			t.Setenv("TELEGRAM_BOT_TOKEN", "")
			t.Setenv("TELEGRAM_CHAT_ID", "")
			if code, _, _ := runCLI(t, tt.args...); code != tt.want {
				t.Errorf("exit code = %d, want %d", code, tt.want)
			}
		})
	}
}

func TestRunVersion(t *testing.T) {
	code, out, _ := runCLI(t, "-version")
	if code != exitOK || !strings.HasPrefix(out, "wayne ") {
		t.Errorf("version: code %d, output %q", code, out)
	}
}

func TestRunEarnMoneyOffline(t *testing.T) {
	code, out, stderr := runCLI(t, "-offline", "earn-money", "-limit", "60", "btcusdt")
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}
	for _, want := range []string{"BTCUSDT", "TS strat", "Simple strat", "No strat", "60 x 1d"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<pre>") || strings.Contains(out, "<b>") {
		t.Errorf("output still carries markup:\n%s", out)
	}
}

func TestRunEvaluateSymbolsOffline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coin_info.json")
	raw := `[{"coin":"ETH","trading":true},{"coin":"ADA","trading":true},{"coin":"EUR","trading":true,"isLegalMoney":true}]`
	if err := catalog.Save(path, []byte(raw)); err != nil {
		t.Fatalf("save catalog: %v", err)
	}

	code, out, stderr := runCLI(t, "-offline", "evaluate-symbols", "-input-path", path, "-limit", "40", "-top", "1")
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}
	if !strings.Contains(out, "Top 1 of 2") || !strings.Contains(out, "ADAUSDT") {
		t.Errorf("unexpected ranking:\n%s", out)
	}
}

func TestRunEvaluateSymbolsArgs(t *testing.T) {
	code, out, stderr := runCLI(t, "-offline", "evaluate-symbols", "-limit", "40", "solusdt", "dotusdt")
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}
	if !strings.Contains(out, "DOTUSDT") {
		t.Errorf("unexpected ranking:\n%s", out)
	}
}

func TestRunEvaluateSymbolsMissingCatalog(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.json")
	if code, _, _ := runCLI(t, "-offline", "evaluate-symbols", "-input-path", missing); code != exitConfig {
		t.Errorf("exit code = %d, want %d", code, exitConfig)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, exitOK},
		{context.Canceled, exitSoftware},
		{model.ErrAlignment, exitSoftware},
		{model.ErrInvalidInput, exitSoftware},
		{bytes.ErrTooLarge, exitUnavailable},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
