package collector

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// recvWindow bounds the accepted clock skew of signed requests, in ms.
const recvWindow = 5000

// sign returns the HMAC-SHA256 signature of a query string.
func (f *BinanceFetcher) sign(query string) string {
	mac := hmac.New(sha256.New, []byte(f.APISecret))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}

// CoinInfo downloads the raw coin catalog of the account. Requires API credentials.
func (f *BinanceFetcher) CoinInfo(ctx context.Context) ([]byte, error) {
	if f.APIKey == "" || f.APISecret == "" {
		return nil, fmt.Errorf("binance: coin info requires api_key and api_secret")
	}
	q := url.Values{}
	q.Set("recvWindow", strconv.Itoa(recvWindow))
	q.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	query := q.Encode()
	query += "&signature=" + f.sign(query)

	body, err := f.get(ctx, "/sapi/v1/capital/config/getall", query, true)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("binance: coin info is not valid JSON")
	}
	return body, nil
}
