package collector

import (
	"context"
	"time"

	"Wayne/internal/model"
)

// MaxLimit is the largest page a kline request may ask for.
const MaxLimit = 1000

// Fetcher defines the interface for fetching kline data.
// A zero startTime requests the most recent bars.
type Fetcher interface {
	FetchKlines(ctx context.Context, symbol, interval string, limit int, startTime time.Time) ([]model.OHLCV, error)
	Name() string
}
