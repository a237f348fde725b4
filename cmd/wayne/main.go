package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"Wayne/internal/collector"
	"Wayne/internal/config"
	"Wayne/internal/evaluator"
	"Wayne/internal/metrics"
	"Wayne/internal/model"
	"Wayne/internal/recorder"

	"github.com/go-redis/redis/v8"
)

// Exit codes from sysexits.h.
const (
	exitOK          = 0
	exitUsage       = 64
	exitUnavailable = 69
	exitSoftware    = 70
	exitConfig      = 78
)

var version = "dev"

const usage = `Usage: wayne [global flags] <command> [flags] [args]

Commands:
  earn-money SYMBOL      backtest every strategy on one symbol
  download-coin-info     download the exchange coin catalog
  evaluate-symbols       backtest and rank the catalog symbols
  serve                  run the scheduler and the Telegram bot

Global flags:
`

// globals are the flags shared by every command.
type globals struct {
	configPath string
	verbose    bool
	offline    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("wayne", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	defaultConfig := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}
	var g globals
	var showVersion bool
	fs.StringVar(&g.configPath, "config", defaultConfig, "path to the YAML config file")
	fs.BoolVar(&g.verbose, "verbose", false, "log with file and microsecond detail")
	fs.BoolVar(&g.offline, "offline", false, "use generated market data instead of the exchange")
	fs.BoolVar(&showVersion, "version", false, "print the version and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if showVersion {
		fmt.Fprintf(stdout, "wayne %s\n", version)
		return exitOK
	}

	log.SetOutput(stderr)
	log.SetFlags(log.LstdFlags)
	if g.verbose {
		log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	cfg, err := config.Load(g.configPath)
	if err != nil {
		log.Printf("[FATAL] load config: %v", err)
		return exitConfig
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "earn-money":
		return runEarnMoney(ctx, g, cfg, rest, stdout, stderr)
	case "download-coin-info":
		return runDownloadCoinInfo(ctx, cfg, rest, stdout, stderr)
	case "evaluate-symbols":
		return runEvaluateSymbols(ctx, g, cfg, rest, stdout, stderr)
	case "serve":
		return runServe(ctx, g, cfg, rest, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", cmd)
		fs.Usage()
		return exitUsage
	}
}

// exitCode maps an evaluation error to a process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled):
		return exitSoftware
	case errors.Is(err, model.ErrInvalidInput), errors.Is(err, model.ErrAlignment):
		return exitSoftware
	default:
		return exitUnavailable
	}
}

// newFetcher builds the market data source, wrapped in the Redis cache when
// one is configured. The returned func releases the Redis client.
func newFetcher(g globals, cfg *config.Config, m *metrics.Metrics) (collector.Fetcher, func()) {
	var fetcher collector.Fetcher
	if g.offline {
		fetcher = &collector.MockFetcher{Price: 100}
	} else {
		fetcher = collector.NewBinanceFetcher(cfg.Binance.BaseURL, cfg.Binance.APIKey, cfg.Binance.APISecret, cfg.Proxy)
	}
	if cfg.Redis.Addr == "" {
		log.Printf("[INFO] data source: %s", fetcher.Name())
		return fetcher, func() {}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	cached := collector.NewCachedFetcher(fetcher, client, cfg.Redis.TTL, m)
	log.Printf("[INFO] data source: %s (ttl %s)", cached.Name(), cfg.Redis.TTL)
	return cached, func() {
		if err := client.Close(); err != nil {
			log.Printf("[WARN] close redis client: %v", err)
		}
	}
}

// newRecorder opens the SQLite recorder, falling back to a no-op one.
func newRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}

func evaluatorConfig(cfg *config.Config) evaluator.Config {
	bt := cfg.Backtest
	return evaluator.Config{
		Capital:      bt.Capital,
		Limit:        bt.Limit,
		Signal:       bt.Signal,
		EMARSI:       bt.EMARSI,
		MACD:         bt.MACD,
		TrailingStop: bt.TrailingStop,
		Workers:      cfg.Batch.Workers,
	}
}
