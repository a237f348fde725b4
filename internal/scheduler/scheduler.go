package scheduler

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"
	"sync"

	"Wayne/internal/catalog"
	"Wayne/internal/evaluator"
	"Wayne/internal/notifier"

	"github.com/robfig/cron/v3"
)

// Sender delivers formatted messages.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages all cron tasks and chat commands.
type Scheduler struct {
	Cron      *cron.Cron
	Evaluator *evaluator.Evaluator
	Catalog   *catalog.Manager
	Source    catalog.Source
	Notifier  Sender
	Top       int
	Ctx       context.Context

	mu   sync.Mutex
	last *evaluator.Batch
}

// NewScheduler creates a new Scheduler. src may be nil when no API
// credentials are configured; the catalog is then never refreshed.
func NewScheduler(ctx context.Context, ev *evaluator.Evaluator, cm *catalog.Manager, src catalog.Source, n Sender, top int) *Scheduler {
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		Evaluator: ev,
		Catalog:   cm,
		Source:    src,
		Notifier:  n,
		Top:       top,
		Ctx:       ctx,
	}
}

// RegisterAll registers the batch evaluation and catalog refresh tasks.
func (s *Scheduler) RegisterAll(evaluateCron, catalogCron string) error {
	if _, err := s.Cron.AddFunc(evaluateCron, s.evaluateTask); err != nil {
		return fmt.Errorf("register evaluate task: %w", err)
	}
	if s.Source == nil {
		log.Println("[WARN] no catalog source configured, catalog refresh disabled")
		return nil
	}
	if _, err := s.Cron.AddFunc(catalogCron, s.catalogTask); err != nil {
		return fmt.Errorf("register catalog task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunEvaluateNow executes the batch evaluation immediately.
func (s *Scheduler) RunEvaluateNow() {
	s.evaluateTask()
}

// LastBatch returns the most recent batch result, or nil.
func (s *Scheduler) LastBatch() *evaluator.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Scheduler) evaluateTask() {
	symbols := s.Catalog.Symbols()
	if len(symbols) == 0 {
		log.Println("[WARN] evaluate task: coin catalog is empty")
		s.trySend("⚠️ Coin catalog is empty, nothing to evaluate. Run /catalog after a refresh.")
		return
	}
	log.Printf("[INFO] running evaluate task on %d symbols", len(symbols))

	batch, err := s.Evaluator.EvaluateSymbols(s.Ctx, symbols)
	if err != nil {
		log.Printf("[ERROR] evaluate task: %v", err)
		s.trySend(fmt.Sprintf("❌ Batch evaluation failed: %s", html.EscapeString(err.Error())))
		return
	}

	s.mu.Lock()
	s.last = batch
	s.mu.Unlock()

	s.trySend(notifier.FormatRanking(evaluator.Top(batch.Ranking, s.Top), len(batch.Ranking)))
}

func (s *Scheduler) catalogTask() {
	log.Println("[INFO] running catalog refresh")
	n, err := s.Catalog.Refresh(s.Ctx, s.Source)
	if err != nil {
		log.Printf("[ERROR] catalog refresh: %v", err)
		s.trySend(fmt.Sprintf("❌ Coin catalog refresh failed: %s", html.EscapeString(err.Error())))
		return
	}
	log.Printf("[INFO] catalog refreshed: %d coins", n)
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	// Group chats address commands as /cmd@bot_name.
	name, _, _ := strings.Cut(fields[0], "@")

	switch name {
	case "/evaluate":
		if len(fields) != 2 {
			return "Usage: /evaluate SYMBOL"
		}
		symbol := strings.ToUpper(fields[1])
		rep, err := s.Evaluator.EarnMoney(ctx, symbol)
		if err != nil {
			log.Printf("[ERROR] evaluate %s: %v", symbol, err)
			return fmt.Sprintf("❌ Evaluation of %s failed: %s", html.EscapeString(symbol), html.EscapeString(err.Error()))
		}
		return notifier.FormatReport(rep)
	case "/rank":
		batch := s.LastBatch()
		if batch == nil {
			return "No ranking yet, the next batch runs on schedule."
		}
		return notifier.FormatRanking(evaluator.Top(batch.Ranking, s.Top), len(batch.Ranking))
	case "/catalog":
		return notifier.FormatCatalogStatus(len(s.Catalog.Symbols()), s.Catalog.UpdatedAt())
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
