package main

import (
	"context"
	"flag"
	"fmt"
	"html"
	"io"
	"log"
	"strings"

	"Wayne/internal/catalog"
	"Wayne/internal/collector"
	"Wayne/internal/config"
	"Wayne/internal/evaluator"
	"Wayne/internal/notifier"
)

// plain strips the Telegram markup from a formatted message.
var plain = strings.NewReplacer("<b>", "", "</b>", "", "<pre>", "", "</pre>", "")

func printMessage(w io.Writer, msg string) {
	fmt.Fprintln(w, html.UnescapeString(plain.Replace(msg)))
}

// backtestFlags registers the flags overriding the backtest section.
func backtestFlags(fs *flag.FlagSet, cfg *config.Config) {
	fs.Float64Var(&cfg.Backtest.Capital, "capital", cfg.Backtest.Capital, "starting capital")
	fs.IntVar(&cfg.Backtest.Limit, "limit", cfg.Backtest.Limit, "number of daily bars (1..1000)")
	fs.StringVar(&cfg.Backtest.Signal, "signal", cfg.Backtest.Signal, "signal generator: ema_rsi or macd")
}

func newEvaluator(g globals, cfg *config.Config) (*evaluator.Evaluator, func(), error) {
	fetcher, closeFetcher := newFetcher(g, cfg, nil)
	rec := newRecorder(cfg)
	ev, err := evaluator.New(collector.NewCollector(fetcher, nil), rec, nil, evaluatorConfig(cfg))
	cleanup := func() {
		if err := rec.Close(); err != nil {
			log.Printf("[WARN] close recorder: %v", err)
		}
		closeFetcher()
	}
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return ev, cleanup, nil
}

func runEarnMoney(ctx context.Context, g globals, cfg *config.Config, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("earn-money", flag.ContinueOnError)
	fs.SetOutput(stderr)
	backtestFlags(fs, cfg)
	report := fs.Bool("report", false, "also send the report to Telegram")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: wayne earn-money [flags] SYMBOL")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitUsage
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("[FATAL] config validation: %v", err)
		return exitConfig
	}
	if *report {
		if err := cfg.ValidateServe(); err != nil {
			log.Printf("[FATAL] -report needs telegram settings: %v", err)
			return exitConfig
		}
	}

	ev, cleanup, err := newEvaluator(g, cfg)
	if err != nil {
		log.Printf("[FATAL] init evaluator: %v", err)
		return exitConfig
	}
	defer cleanup()

	symbol := strings.ToUpper(fs.Arg(0))
	rep, err := ev.EarnMoney(ctx, symbol)
	if err != nil {
		log.Printf("[ERROR] earn money %s: %v", symbol, err)
		return exitCode(err)
	}
	msg := notifier.FormatReport(rep)
	printMessage(stdout, msg)

	if *report {
		tn, err := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		if err != nil {
			log.Printf("[ERROR] init telegram: %v", err)
			return exitUnavailable
		}
		if err := tn.SendWithRetry(ctx, msg, 3); err != nil {
			log.Printf("[ERROR] send report: %v", err)
			return exitUnavailable
		}
	}
	return exitOK
}

func runDownloadCoinInfo(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("download-coin-info", flag.ContinueOnError)
	fs.SetOutput(stderr)
	output := fs.String("output-path", cfg.Catalog.Path, "where to write the coin catalog")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if err := cfg.ValidateCredentials(); err != nil {
		log.Printf("[FATAL] %v", err)
		return exitConfig
	}

	cm, err := catalog.NewManager(*output)
	if err != nil {
		log.Printf("[FATAL] open coin catalog: %v", err)
		return exitConfig
	}
	src := collector.NewBinanceFetcher(cfg.Binance.BaseURL, cfg.Binance.APIKey, cfg.Binance.APISecret, cfg.Proxy)
	n, err := cm.Refresh(ctx, src)
	if err != nil {
		log.Printf("[ERROR] %v", err)
		return exitUnavailable
	}
	fmt.Fprintf(stdout, "saved %d coins (%d tradable) to %s\n", n, len(cm.Symbols()), *output)
	return exitOK
}

func runEvaluateSymbols(ctx context.Context, g globals, cfg *config.Config, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("evaluate-symbols", flag.ContinueOnError)
	fs.SetOutput(stderr)
	backtestFlags(fs, cfg)
	input := fs.String("input-path", cfg.Catalog.Path, "coin catalog to read symbols from")
	fs.IntVar(&cfg.Batch.Top, "top", cfg.Batch.Top, "number of symbols to print")
	fs.IntVar(&cfg.Batch.Workers, "workers", cfg.Batch.Workers, "symbols evaluated in parallel")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: wayne evaluate-symbols [flags] [SYMBOL...]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("[FATAL] config validation: %v", err)
		return exitConfig
	}

	symbols := fs.Args()
	if len(symbols) == 0 {
		coins, err := catalog.Load(*input)
		if err != nil {
			log.Printf("[FATAL] load coin catalog (run download-coin-info first): %v", err)
			return exitConfig
		}
		symbols = catalog.Symbols(catalog.Tradable(coins))
	}
	for i, s := range symbols {
		symbols[i] = strings.ToUpper(s)
	}
	if len(symbols) == 0 {
		log.Println("[ERROR] no symbol to evaluate")
		return exitUsage
	}

	ev, cleanup, err := newEvaluator(g, cfg)
	if err != nil {
		log.Printf("[FATAL] init evaluator: %v", err)
		return exitConfig
	}
	defer cleanup()

	batch, err := ev.EvaluateSymbols(ctx, symbols)
	if err != nil {
		log.Printf("[ERROR] %v", err)
		return exitCode(err)
	}
	printMessage(stdout, notifier.FormatRanking(evaluator.Top(batch.Ranking, cfg.Batch.Top), len(batch.Ranking)))
	if len(batch.Failed) > 0 {
		fmt.Fprintf(stdout, "failed: %s\n", strings.Join(batch.Failed, ", "))
	}
	return exitOK
}
