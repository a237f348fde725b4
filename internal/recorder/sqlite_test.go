package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"Wayne/internal/model"
)

func TestSQLiteRecorder_RecordEvaluation(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "wayne.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	runID := NewRunID()
	res := &model.InvestResult{
		CapitalStart: 1000,
		CapitalEnd:   1100,
		Drawdown:     0.05,
		PlatformFees: 2,
		CapitalCurve: []float64{999, 950, 1100},
	}
	for _, name := range []string{"TS strat", "No strat"} {
		if err := r.RecordEvaluation(&EvaluationRecord{
			RunID: runID, Symbol: "BTCUSDT", Strategy: name, Signal: "ema_rsi", Limit: 3, Result: res,
		}); err != nil {
			t.Fatalf("record %s: %v", name, err)
		}
	}

	var rows, points int
	var profit float64
	if err := r.db.QueryRow(`SELECT COUNT(*), MAX(profit) FROM evaluations WHERE run_id = ?`, runID).Scan(&rows, &profit); err != nil {
		t.Fatalf("query evaluations: %v", err)
	}
	if rows != 2 || profit != 100 {
		t.Errorf("rows=%d profit=%.2f, want 2 and 100", rows, profit)
	}
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM capital_curves`).Scan(&points); err != nil {
		t.Fatalf("query curves: %v", err)
	}
	if points != 6 {
		t.Errorf("curve points = %d, want 6", points)
	}
}

func TestSQLiteRecorder_RecordBatch(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "wayne.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	best := &model.InvestmentEvaluation{
		Symbol:   "ETHUSDT",
		Strategy: "TS strat",
		Result:   &model.InvestResult{CapitalStart: 1000, CapitalEnd: 1500, CapitalCurve: []float64{1500}},
	}
	if err := r.RecordBatch(&BatchRecord{RunID: NewRunID(), Requested: 3, Evaluated: 2, Failed: 1, Best: best, Duration: time.Second}); err != nil {
		t.Fatalf("record batch: %v", err)
	}
	if err := r.RecordBatch(&BatchRecord{RunID: NewRunID(), Requested: 1, Failed: 1}); err != nil {
		t.Fatalf("record empty batch: %v", err)
	}

	var symbol string
	var profit float64
	if err := r.db.QueryRow(`SELECT best_symbol, best_profit FROM batch_runs WHERE best_symbol IS NOT NULL`).Scan(&symbol, &profit); err != nil {
		t.Fatalf("query batch: %v", err)
	}
	if symbol != "ETHUSDT" || profit != 500 {
		t.Errorf("best = %s %.2f, want ETHUSDT 500", symbol, profit)
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	if err := r.RecordEvaluation(&EvaluationRecord{}); err != nil {
		t.Error(err)
	}
	if err := r.RecordBatch(&BatchRecord{}); err != nil {
		t.Error(err)
	}
	if err := r.Close(); err != nil {
		t.Error(err)
	}
}
