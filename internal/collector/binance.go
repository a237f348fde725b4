package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"Wayne/internal/model"

	"github.com/shopspring/decimal"
)

// DefaultBinanceURL is the public spot API endpoint.
const DefaultBinanceURL = "https://api.binance.com"

// BinanceFetcher implements Fetcher using the Binance spot REST API.
type BinanceFetcher struct {
	BaseURL   string
	APIKey    string
	APISecret string
	Client    *http.Client
}

// NewBinanceFetcher creates a new fetcher with optional proxy support.
func NewBinanceFetcher(baseURL, apiKey, apiSecret, proxyURL string) *BinanceFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = DefaultBinanceURL
	}
	return &BinanceFetcher{
		BaseURL:   baseURL,
		APIKey:    apiKey,
		APISecret: apiSecret,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *BinanceFetcher) Name() string { return "binance" }

// binanceError is the error body returned by the API.
type binanceError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (f *BinanceFetcher) get(ctx context.Context, path, rawQuery string, signed bool) ([]byte, error) {
	u := f.BaseURL + path + "?" + rawQuery
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if signed {
		req.Header.Set("X-MBX-APIKEY", f.APIKey)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("binance fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("binance read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr binanceError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Msg != "" {
			return nil, fmt.Errorf("binance api error %d: %s", apiErr.Code, apiErr.Msg)
		}
		return nil, fmt.Errorf("binance: status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// FetchKlines requests one page of UI klines.
func (f *BinanceFetcher) FetchKlines(ctx context.Context, symbol, interval string, limit int, startTime time.Time) ([]model.OHLCV, error) {
	if limit <= 0 || limit > MaxLimit {
		return nil, fmt.Errorf("binance: limit %d outside 1..%d", limit, MaxLimit)
	}
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("limit", strconv.Itoa(limit))
	if !startTime.IsZero() {
		q.Set("startTime", strconv.FormatInt(startTime.UnixMilli(), 10))
	}

	body, err := f.get(ctx, "/api/v3/uiKlines", q.Encode(), false)
	if err != nil {
		return nil, err
	}
	bars, err := decodeKlines(body)
	if err != nil {
		return nil, fmt.Errorf("binance decode %s %s: %w", symbol, interval, err)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].OpenTime.Before(bars[j].OpenTime) })
	return bars, nil
}

// decodeKlines parses the positional kline arrays:
// open time, open, high, low, close, volume, close time, quote volume,
// trades, taker base volume, taker quote volume, ignore.
func decodeKlines(body []byte) ([]model.OHLCV, error) {
	var rows [][]json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, err
	}
	bars := make([]model.OHLCV, 0, len(rows))
	for i, row := range rows {
		if len(row) < 11 {
			return nil, fmt.Errorf("row %d: %d fields", i, len(row))
		}
		var openMs, closeMs, trades int64
		var nums [8]float64
		if err := json.Unmarshal(row[0], &openMs); err != nil {
			return nil, fmt.Errorf("row %d open time: %w", i, err)
		}
		if err := json.Unmarshal(row[6], &closeMs); err != nil {
			return nil, fmt.Errorf("row %d close time: %w", i, err)
		}
		if err := json.Unmarshal(row[8], &trades); err != nil {
			return nil, fmt.Errorf("row %d trades: %w", i, err)
		}
		for k, idx := range []int{1, 2, 3, 4, 5, 7, 9, 10} {
			v, err := decimalField(row[idx])
			if err != nil {
				return nil, fmt.Errorf("row %d field %d: %w", i, idx, err)
			}
			nums[k] = v
		}
		bars = append(bars, model.OHLCV{
			OpenTime:            time.UnixMilli(openMs).UTC(),
			Open:                nums[0],
			High:                nums[1],
			Low:                 nums[2],
			Close:               nums[3],
			Volume:              nums[4],
			CloseTime:           time.UnixMilli(closeMs).UTC(),
			QuoteAssetVolume:    nums[5],
			NumberOfTrades:      trades,
			TakerBuyBaseVolume:  nums[6],
			TakerBuyQuoteVolume: nums[7],
		})
	}
	return bars, nil
}

func decimalField(raw json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}
