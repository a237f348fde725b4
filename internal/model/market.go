package model

import (
	"fmt"
	"time"
)

// Kline intervals understood by the collectors.
const (
	IntervalDay  = "1d"
	IntervalHour = "1h"
)

// IntervalDuration returns the bar length of a kline interval.
func IntervalDuration(interval string) (time.Duration, error) {
	switch interval {
	case IntervalHour:
		return time.Hour, nil
	case IntervalDay:
		return 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("%w: unsupported interval %q", ErrInvalidInput, interval)
	}
}

// OHLCV represents a single kline bar.
type OHLCV struct {
	OpenTime            time.Time
	Open                float64
	High                float64
	Low                 float64
	Close               float64
	Volume              float64
	CloseTime           time.Time
	QuoteAssetVolume    float64
	NumberOfTrades      int64
	TakerBuyBaseVolume  float64
	TakerBuyQuoteVolume float64
}

// PriceSeries is an ordered sequence of bars for one symbol at one interval.
// Open times are strictly increasing.
type PriceSeries struct {
	Symbol   string
	Interval string
	Bars     []OHLCV
}

// NewPriceSeries validates bars and returns a series owning a copy of them.
func NewPriceSeries(symbol, interval string, bars []OHLCV) (*PriceSeries, error) {
	s := &PriceSeries{
		Symbol:   symbol,
		Interval: interval,
		Bars:     append([]OHLCV(nil), bars...),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks ordering and price positivity.
func (s *PriceSeries) Validate() error {
	for i, b := range s.Bars {
		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
			return fmt.Errorf("%w: %s bar %d has non-positive price", ErrInvalidInput, s.Symbol, i)
		}
		if i > 0 && !b.OpenTime.After(s.Bars[i-1].OpenTime) {
			return fmt.Errorf("%w: %s bar %d open time %s not after %s",
				ErrInvalidInput, s.Symbol, i, b.OpenTime.Format(time.RFC3339), s.Bars[i-1].OpenTime.Format(time.RFC3339))
		}
	}
	return nil
}

// Len returns the number of bars.
func (s *PriceSeries) Len() int { return len(s.Bars) }

// Closes returns the close prices in bar order.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Clone returns a deep copy.
func (s *PriceSeries) Clone() *PriceSeries {
	return &PriceSeries{
		Symbol:   s.Symbol,
		Interval: s.Interval,
		Bars:     append([]OHLCV(nil), s.Bars...),
	}
}

// Span returns the first and last open times. Both are zero for an empty series.
func (s *PriceSeries) Span() (time.Time, time.Time) {
	if len(s.Bars) == 0 {
		return time.Time{}, time.Time{}
	}
	return s.Bars[0].OpenTime, s.Bars[len(s.Bars)-1].OpenTime
}
