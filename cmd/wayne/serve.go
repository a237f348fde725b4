package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"Wayne/internal/catalog"
	"Wayne/internal/collector"
	"Wayne/internal/config"
	"Wayne/internal/evaluator"
	"Wayne/internal/metrics"
	"Wayne/internal/notifier"
	"Wayne/internal/scheduler"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func runServe(ctx context.Context, g globals, cfg *config.Config, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	runOnStart := fs.Bool("run-on-start", os.Getenv("RUN_ON_START") == "true", "evaluate the catalog immediately")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if err := cfg.ValidateServe(); err != nil {
		log.Printf("[FATAL] config validation: %v", err)
		return exitConfig
	}
	log.Println("[INFO] Wayne starting...")

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(reg)
	var srv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(reg))
		srv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("[ERROR] metrics server: %v", err)
			}
		}()
		log.Printf("[INFO] metrics listening on %s", cfg.MetricsAddr)
	}

	// Evaluator
	fetcher, closeFetcher := newFetcher(g, cfg, m)
	defer closeFetcher()
	rec := newRecorder(cfg)
	defer rec.Close()
	ev, err := evaluator.New(collector.NewCollector(fetcher, m), rec, m, evaluatorConfig(cfg))
	if err != nil {
		log.Printf("[FATAL] init evaluator: %v", err)
		return exitConfig
	}

	// Coin catalog
	cm, err := catalog.NewManager(cfg.Catalog.Path)
	if err != nil {
		log.Printf("[FATAL] init coin catalog: %v", err)
		return exitConfig
	}
	var src catalog.Source
	if cfg.ValidateCredentials() == nil {
		src = collector.NewBinanceFetcher(cfg.Binance.BaseURL, cfg.Binance.APIKey, cfg.Binance.APISecret, cfg.Proxy)
	}

	// Telegram
	tn, err := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	if err != nil {
		log.Printf("[FATAL] init telegram: %v", err)
		return exitUnavailable
	}

	// Scheduler
	sched := scheduler.NewScheduler(ctx, ev, cm, src, tn, cfg.Batch.Top)
	if err := sched.RegisterAll(cfg.Schedule.EvaluateCron, cfg.Schedule.CatalogCron); err != nil {
		log.Printf("[FATAL] register cron tasks: %v", err)
		return exitConfig
	}
	sched.Start()

	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	if *runOnStart {
		log.Println("[INFO] run-on-start enabled, executing evaluate task now")
		go sched.RunEvaluateNow()
	}

	log.Println("[INFO] Wayne is running. Press Ctrl+C to stop.")
	<-ctx.Done()

	log.Println("[INFO] shutdown signal received, stopping...")
	sched.Stop()
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] metrics server shutdown: %v", err)
		}
	}
	log.Println("[INFO] Wayne stopped")
	return exitOK
}
