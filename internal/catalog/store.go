package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"Wayne/internal/model"

	"github.com/samber/lo"
)

// Parse decodes a raw coin catalog.
func Parse(data []byte) ([]model.CoinInfo, error) {
	var coins []model.CoinInfo
	if err := json.Unmarshal(data, &coins); err != nil {
		return nil, fmt.Errorf("parse coin catalog: %w", err)
	}
	return coins, nil
}

// Load reads a coin catalog from a JSON file.
func Load(filePath string) ([]model.CoinInfo, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Save writes a raw coin catalog to a JSON file, indented.
func Save(filePath string, raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("format coin catalog: %w", err)
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, buf.Bytes(), 0644)
}

// Tradable keeps coins that are not fiat, can be traded and are not the
// quote asset itself.
func Tradable(coins []model.CoinInfo) []model.CoinInfo {
	return lo.Filter(coins, func(c model.CoinInfo, _ int) bool {
		return !c.IsLegalMoney && c.Trading && c.Coin != model.QuoteAsset
	})
}

// Symbols returns the quote-asset trading pair of each coin.
func Symbols(coins []model.CoinInfo) []string {
	return lo.Map(coins, func(c model.CoinInfo, _ int) string { return c.Symbol() })
}
