package collector

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"Wayne/internal/metrics"
	"Wayne/internal/model"
)

// MockFetcher returns deterministic klines for development and testing.
type MockFetcher struct {
	Price float64
	End   time.Time
	// Data overrides generation per interval when set.
	Data map[string][]model.OHLCV
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchKlines(_ context.Context, _ string, interval string, limit int, startTime time.Time) ([]model.OHLCV, error) {
	if bars, ok := m.Data[interval]; ok {
		return pageOf(bars, limit, startTime), nil
	}
	step, err := model.IntervalDuration(interval)
	if err != nil {
		return nil, err
	}
	end := m.End
	if end.IsZero() {
		end = time.Now().UTC()
	}
	last := end.Truncate(24 * time.Hour).Add(24*time.Hour - step)

	from := startTime
	if from.IsZero() {
		from = last.Add(-time.Duration(limit-1) * step)
	}
	bars := make([]model.OHLCV, 0, limit)
	for t := from; !t.After(last) && len(bars) < limit; t = t.Add(step) {
		bars = append(bars, mockBar(m.Price, t, step))
	}
	return bars, nil
}

// pageOf mimics the exchange paging rules over a fixed slice.
func pageOf(bars []model.OHLCV, limit int, startTime time.Time) []model.OHLCV {
	if startTime.IsZero() {
		if len(bars) > limit {
			return bars[len(bars)-limit:]
		}
		return bars
	}
	out := make([]model.OHLCV, 0, limit)
	for _, b := range bars {
		if b.OpenTime.Before(startTime) {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, b)
	}
	return out
}

func mockBar(basePrice float64, t time.Time, step time.Duration) model.OHLCV {
	hours := float64(t.Unix()) / 3600
	p := basePrice * (1 + 0.2*math.Sin(hours/97) + 0.05*math.Sin(hours/7))
	return model.OHLCV{
		OpenTime:       t,
		Open:           p * 0.999,
		High:           p * 1.01,
		Low:            p * 0.99,
		Close:          p,
		Volume:         1000,
		CloseTime:      t.Add(step - time.Millisecond),
		NumberOfTrades: 100,
	}
}

// Collector fetches the price series consumed by the backtests.
type Collector struct {
	Fetcher Fetcher
	Metrics *metrics.Metrics
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, m *metrics.Metrics) *Collector {
	return &Collector{Fetcher: fetcher, Metrics: m}
}

func (c *Collector) fetch(ctx context.Context, symbol, interval string, limit int, startTime time.Time) ([]model.OHLCV, error) {
	start := time.Now()
	bars, err := c.Fetcher.FetchKlines(ctx, symbol, interval, limit, startTime)
	c.Metrics.ObserveFetch(interval, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("fetch %s %s bars: %w", symbol, interval, err)
	}
	return bars, nil
}

// DayData returns the last limit daily bars of symbol.
func (c *Collector) DayData(ctx context.Context, symbol string, limit int) (*model.PriceSeries, error) {
	if limit <= 0 || limit > MaxLimit {
		return nil, fmt.Errorf("%w: limit %d outside 1..%d", model.ErrInvalidInput, limit, MaxLimit)
	}
	bars, err := c.fetch(ctx, symbol, model.IntervalDay, limit, time.Time{})
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no daily bars for %s", model.ErrInvalidInput, symbol)
	}
	return model.NewPriceSeries(symbol, model.IntervalDay, bars)
}

// DayHourData returns the last limit daily bars of symbol together with the
// hourly bars covering them. Hourly pages are requested from the last hourly
// open time onwards until the last daily open time is reached.
func (c *Collector) DayHourData(ctx context.Context, symbol string, limit int) (*model.PriceSeries, *model.PriceSeries, error) {
	day, err := c.DayData(ctx, symbol, limit)
	if err != nil {
		return nil, nil, err
	}
	first, last := day.Span()

	hours, err := c.fetch(ctx, symbol, model.IntervalHour, MaxLimit, first)
	if err != nil {
		return nil, nil, err
	}
	if len(hours) == 0 {
		return nil, nil, fmt.Errorf("%w: no hourly bars for %s from %s", model.ErrAlignment, symbol, first.Format(time.RFC3339))
	}
	for pages := 1; hours[len(hours)-1].OpenTime.Before(last); pages++ {
		next := hours[len(hours)-1].OpenTime.Add(time.Hour)
		page, err := c.fetch(ctx, symbol, model.IntervalHour, MaxLimit, next)
		if err != nil {
			return nil, nil, err
		}
		if len(page) == 0 {
			return nil, nil, fmt.Errorf("%w: hourly bars for %s stop at %s before %s",
				model.ErrAlignment, symbol, hours[len(hours)-1].OpenTime.Format(time.RFC3339), last.Format(time.RFC3339))
		}
		hours = append(hours, page...)
		if pages%10 == 0 {
			log.Printf("[INFO] %s: fetched %d hourly pages (%d bars)", symbol, pages, len(hours))
		}
	}

	hour, err := model.NewPriceSeries(symbol, model.IntervalHour, hours)
	if err != nil {
		return nil, nil, err
	}
	return day, hour, nil
}
