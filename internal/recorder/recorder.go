package recorder

import (
	"time"

	"Wayne/internal/model"

	"github.com/google/uuid"
)

// EvaluationRecord holds one strategy result for one symbol.
type EvaluationRecord struct {
	RunID    string
	Symbol   string
	Strategy string
	Signal   string // generator that produced the entries
	Limit    int
	Result   *model.InvestResult
}

// BatchRecord summarises one multi-symbol evaluation run.
type BatchRecord struct {
	RunID     string
	Requested int
	Evaluated int
	Failed    int
	Best      *model.InvestmentEvaluation // nil when nothing was evaluated
	Duration  time.Duration
}

// Recorder persists evaluation history for analysis.
type Recorder interface {
	RecordEvaluation(rec *EvaluationRecord) error
	RecordBatch(rec *BatchRecord) error
	Close() error
}

// NewRunID returns a fresh identifier grouping the records of one run.
func NewRunID() string { return uuid.NewString() }
