package evaluator

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"Wayne/internal/collector"
	"Wayne/internal/metrics"
	"Wayne/internal/model"
	"Wayne/internal/recorder"
	"Wayne/internal/signal"
	"Wayne/internal/strategy"

	"golang.org/x/sync/errgroup"
)

// Config holds the backtest parameters shared by every evaluation.
type Config struct {
	Capital      float64
	Limit        int
	Signal       string
	EMARSI       signal.EMARSIParams
	MACD         signal.MACDParams
	TrailingStop strategy.TrailingStopParams
	Workers      int
}

// Evaluator runs every strategy over the market data of a symbol.
type Evaluator struct {
	Collector *collector.Collector
	Recorder  recorder.Recorder
	Metrics   *metrics.Metrics

	cfg       Config
	generator signal.Generator
	// others run alongside generator for their last-bar state only.
	others []signal.Generator
}

// New validates cfg and builds its signal generator.
func New(col *collector.Collector, rec recorder.Recorder, m *metrics.Metrics, cfg Config) (*Evaluator, error) {
	if cfg.Capital <= 0 {
		return nil, fmt.Errorf("%w: capital %.2f must be positive", model.ErrInvalidInput, cfg.Capital)
	}
	if cfg.Limit <= 0 || cfg.Limit > collector.MaxLimit {
		return nil, fmt.Errorf("%w: limit %d outside 1..%d", model.ErrInvalidInput, cfg.Limit, collector.MaxLimit)
	}
	if err := cfg.TrailingStop.Validate(); err != nil {
		return nil, err
	}
	gen, err := signal.New(cfg.Signal, cfg.EMARSI, cfg.MACD)
	if err != nil {
		return nil, err
	}
	var others []signal.Generator
	for _, kind := range []string{signal.KindEMARSI, signal.KindMACD} {
		if kind == cfg.Signal {
			continue
		}
		g, err := signal.New(kind, cfg.EMARSI, cfg.MACD)
		if err != nil {
			return nil, err
		}
		others = append(others, g)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Evaluator{Collector: col, Recorder: rec, Metrics: m, cfg: cfg, generator: gen, others: others}, nil
}

// SignalState is the signal of one generator on the most recent bar.
type SignalState struct {
	Generator string
	Buy       bool
	Sell      bool
}

// Report holds the result of every strategy on one symbol.
type Report struct {
	RunID       string
	Symbol      string
	Limit       int
	Signal      string
	Latest      []SignalState
	Evaluations []model.InvestmentEvaluation
}

// Headline returns the trailing-stop evaluation, which represents the symbol
// in rankings.
func (r *Report) Headline() model.InvestmentEvaluation {
	for _, ev := range r.Evaluations {
		if ev.Strategy == strategy.NameDualTrailingStop {
			return ev
		}
	}
	return r.Evaluations[0]
}

// EarnMoney backtests symbol with the trailing-stop, simple and buy-and-hold strategies.
func (e *Evaluator) EarnMoney(ctx context.Context, symbol string) (*Report, error) {
	return e.earnMoney(ctx, recorder.NewRunID(), symbol)
}

func (e *Evaluator) earnMoney(ctx context.Context, runID, symbol string) (*Report, error) {
	day, hour, err := e.Collector.DayHourData(ctx, symbol, e.cfg.Limit)
	if err != nil {
		e.Metrics.EvaluationFailed("fetch")
		return nil, err
	}
	signals, err := e.generator.Generate(day)
	if err != nil {
		e.Metrics.EvaluationFailed("signal")
		return nil, fmt.Errorf("generate %s signals for %s: %w", e.generator.Name(), symbol, err)
	}

	strategies, err := e.strategies(hour)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:  runID,
		Symbol: symbol,
		Limit:  e.cfg.Limit,
		Signal: e.generator.Name(),
		Latest: []SignalState{latest(e.generator.Name(), signals)},
	}
	for _, g := range e.others {
		other, err := g.Generate(day)
		if err != nil {
			e.Metrics.EvaluationFailed("signal")
			return nil, fmt.Errorf("generate %s signals for %s: %w", g.Name(), symbol, err)
		}
		report.Latest = append(report.Latest, latest(g.Name(), other))
	}
	for _, s := range strategies {
		start := time.Now()
		res, err := s.Apply(signals)
		if err != nil {
			e.Metrics.EvaluationFailed("simulate")
			return nil, fmt.Errorf("%s on %s: %w", s.Name(), symbol, err)
		}
		e.Metrics.ObserveSimulation(s.Name(), time.Since(start))
		report.Evaluations = append(report.Evaluations, model.InvestmentEvaluation{
			Symbol:   symbol,
			Strategy: s.Name(),
			Result:   res,
		})

		if err := e.Recorder.RecordEvaluation(&recorder.EvaluationRecord{
			RunID:    runID,
			Symbol:   symbol,
			Strategy: s.Name(),
			Signal:   e.generator.Name(),
			Limit:    e.cfg.Limit,
			Result:   res,
		}); err != nil {
			log.Printf("[ERROR] record evaluation %s/%s: %v", symbol, s.Name(), err)
		}
	}
	return report, nil
}

func latest(name string, s *model.SignaledSeries) SignalState {
	i := s.Len() - 1
	return SignalState{Generator: name, Buy: s.Buy[i], Sell: s.Sell[i]}
}

func (e *Evaluator) strategies(hour *model.PriceSeries) ([]strategy.Strategy, error) {
	ts, err := strategy.NewDualTrailingStop(e.cfg.Capital, hour, e.cfg.TrailingStop)
	if err != nil {
		return nil, err
	}
	simple, err := strategy.NewSimpleStrategy(e.cfg.Capital)
	if err != nil {
		return nil, err
	}
	no, err := strategy.NewNoStrategy(e.cfg.Capital)
	if err != nil {
		return nil, err
	}
	return []strategy.Strategy{ts, simple, no}, nil
}

// Batch is the outcome of evaluating many symbols.
type Batch struct {
	RunID     string
	Requested int
	Ranking   []model.InvestmentEvaluation
	Failed    []string
	Duration  time.Duration
}

// EvaluateSymbols runs EarnMoney over symbols in parallel and ranks the
// headline results. Symbols that fail are logged and skipped; a cancelled
// context aborts the whole batch.
func (e *Evaluator) EvaluateSymbols(ctx context.Context, symbols []string) (*Batch, error) {
	start := time.Now()
	batch := &Batch{RunID: recorder.NewRunID(), Requested: len(symbols)}

	var mu sync.Mutex
	var evals []model.InvestmentEvaluation

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for _, sym := range symbols {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rep, err := e.earnMoney(gctx, batch.RunID, sym)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("[WARN] evaluate %s: %v", sym, err)
				mu.Lock()
				batch.Failed = append(batch.Failed, sym)
				mu.Unlock()
				return nil
			}
			mu.Lock()
			evals = append(evals, rep.Headline())
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("evaluate symbols: %w", err)
	}

	batch.Ranking = Rank(evals)
	batch.Duration = time.Since(start)

	rec := &recorder.BatchRecord{
		RunID:     batch.RunID,
		Requested: batch.Requested,
		Evaluated: len(batch.Ranking),
		Failed:    len(batch.Failed),
		Duration:  batch.Duration,
	}
	bestPct := 0.0
	if len(batch.Ranking) > 0 {
		rec.Best = &batch.Ranking[0]
		bestPct = batch.Ranking[0].Result.ProfitPercentage()
	}
	if err := e.Recorder.RecordBatch(rec); err != nil {
		log.Printf("[ERROR] record batch %s: %v", batch.RunID, err)
	}
	e.Metrics.BatchDone(len(batch.Ranking), bestPct)
	log.Printf("[INFO] batch %s: %d/%d symbols evaluated in %s", batch.RunID, len(batch.Ranking), batch.Requested, batch.Duration.Round(time.Millisecond))
	return batch, nil
}
