package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"Wayne/internal/catalog"
	"Wayne/internal/collector"
	"Wayne/internal/evaluator"
	"Wayne/internal/signal"
	"Wayne/internal/strategy"
)

const testCatalog = `[
 {"coin":"BTC","name":"Bitcoin","trading":true},
 {"coin":"ETH","name":"Ethereum","trading":true},
 {"coin":"EUR","name":"Euro","trading":true,"isLegalMoney":true}
]`

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeSender) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

type fakeSource struct {
	raw []byte
	err error
}

func (f fakeSource) CoinInfo(context.Context) ([]byte, error) { return f.raw, f.err }

func newTestScheduler(t *testing.T, withCatalog bool) (*Scheduler, *fakeSender) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "coin_info.json")
	if withCatalog {
		if err := catalog.Save(path, []byte(testCatalog)); err != nil {
			t.Fatalf("save catalog: %v", err)
		}
	}
	cm, err := catalog.NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	col := collector.NewCollector(&collector.MockFetcher{
		Price: 50,
		End:   time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
	}, nil)
	ev, err := evaluator.New(col, nil, nil, evaluator.Config{
		Capital:      1000,
		Limit:        40,
		Signal:       signal.KindEMARSI,
		EMARSI:       signal.DefaultEMARSIParams(),
		MACD:         signal.DefaultMACDParams(),
		TrailingStop: strategy.DefaultTrailingStopParams(),
		Workers:      2,
	})
	if err != nil {
		t.Fatalf("evaluator.New: %v", err)
	}

	sender := &fakeSender{}
	src := fakeSource{raw: []byte(testCatalog)}
	return NewScheduler(context.Background(), ev, cm, src, sender, 1), sender
}

func TestRegisterAll(t *testing.T) {
	s, _ := newTestScheduler(t, true)
	if err := s.RegisterAll("0 30 0 * * *", "0 0 0 * * 1"); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	if got := len(s.Cron.Entries()); got != 2 {
		t.Errorf("entries = %d, want 2", got)
	}
	if err := s.RegisterAll("not a cron", "0 0 0 * * 1"); err == nil {
		t.Error("expected invalid cron expression to fail")
	}
}

func TestRegisterAllWithoutSource(t *testing.T) {
	s, _ := newTestScheduler(t, true)
	s.Source = nil
	if err := s.RegisterAll("0 30 0 * * *", "0 0 0 * * 1"); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	if got := len(s.Cron.Entries()); got != 1 {
		t.Errorf("entries = %d, want 1", got)
	}
}

func TestRunEvaluateNow(t *testing.T) {
	s, sender := newTestScheduler(t, true)
	s.RunEvaluateNow()

	batch := s.LastBatch()
	if batch == nil {
		t.Fatal("no batch stored")
	}
	if batch.Requested != 2 || len(batch.Ranking) != 2 {
		t.Errorf("batch = %+v", batch)
	}
	msg := sender.last()
	if !strings.Contains(msg, "Top 1 of 2") || !strings.Contains(msg, "BTCUSDT") {
		t.Errorf("ranking message:\n%s", msg)
	}
}

func TestRunEvaluateNowEmptyCatalog(t *testing.T) {
	s, sender := newTestScheduler(t, false)
	s.RunEvaluateNow()
	if s.LastBatch() != nil {
		t.Error("batch should not be stored for an empty catalog")
	}
	if !strings.Contains(sender.last(), "empty") {
		t.Errorf("expected empty catalog warning, got %q", sender.last())
	}
}

func TestCatalogTask(t *testing.T) {
	s, sender := newTestScheduler(t, false)
	s.catalogTask()
	if got := s.Catalog.Symbols(); len(got) != 2 {
		t.Errorf("symbols after refresh = %v", got)
	}

	s.Source = fakeSource{err: errors.New("ip banned")}
	s.catalogTask()
	if !strings.Contains(sender.last(), "ip banned") {
		t.Errorf("expected refresh failure notice, got %q", sender.last())
	}
}

func TestHandleCommand(t *testing.T) {
	s, _ := newTestScheduler(t, true)
	ctx := context.Background()

	tests := []struct {
		command string
		want    string
	}{
		{"/evaluate", "Usage"},
		{"/evaluate btcusdt", "BTCUSDT"},
		{"/evaluate ethusdt", strategy.NameDualTrailingStop},
		{"/rank", "No ranking yet"},
		{"/catalog", "Tradable symbols: 2"},
		{"/catalog@wayne_bot", "Tradable symbols: 2"},
		{"/help", "/evaluate SYMBOL"},
		{"", "/evaluate SYMBOL"},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			if got := s.HandleCommand(ctx, tt.command); !strings.Contains(got, tt.want) {
				t.Errorf("HandleCommand(%q) = %q, want it to contain %q", tt.command, got, tt.want)
			}
		})
	}

	s.RunEvaluateNow()
	if got := s.HandleCommand(ctx, "/rank"); !strings.Contains(got, "Top 1 of 2") {
		t.Errorf("/rank after batch = %q", got)
	}
}
