package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"Wayne/internal/model"
)

// Source downloads the raw coin catalog.
type Source interface {
	CoinInfo(ctx context.Context) ([]byte, error)
}

// Manager keeps the coin catalog in memory and on disk.
type Manager struct {
	mu        sync.Mutex
	coins     []model.CoinInfo
	filePath  string
	updatedAt time.Time
}

// NewManager creates a Manager, loading the catalog from disk when present.
func NewManager(filePath string) (*Manager, error) {
	m := &Manager{filePath: filePath}
	coins, err := Load(filePath)
	switch {
	case err == nil:
		m.coins = coins
		if st, err := os.Stat(filePath); err == nil {
			m.updatedAt = st.ModTime()
		}
	case errors.Is(err, os.ErrNotExist):
		log.Printf("[WARN] coin catalog %s not found, starting empty", filePath)
	default:
		return nil, err
	}
	return m, nil
}

// Refresh downloads the catalog from src and persists it.
func (m *Manager) Refresh(ctx context.Context, src Source) (int, error) {
	raw, err := src.CoinInfo(ctx)
	if err != nil {
		return 0, fmt.Errorf("download coin catalog: %w", err)
	}
	coins, err := Parse(raw)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := Save(m.filePath, raw); err != nil {
		return 0, fmt.Errorf("save coin catalog: %w", err)
	}
	m.coins = coins
	m.updatedAt = time.Now()
	return len(coins), nil
}

// Symbols returns the tradable symbols of the current catalog.
func (m *Manager) Symbols() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Symbols(Tradable(m.coins))
}

// Len returns the number of coins in the catalog, tradable or not.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.coins)
}

// UpdatedAt returns when the catalog was last written.
func (m *Manager) UpdatedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updatedAt
}
