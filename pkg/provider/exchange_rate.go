// Package provider defines the contract for external exchange-rate sources.
package provider

import (
	"context"
	"time"
)

// RateInfo describes one fetched exchange rate.
type RateInfo struct {
	From        string
	To          string
	Rate        float64
	Source      string
	LastUpdated time.Time
	ExpiresAt   time.Time
}

// ExchangeRate fetches foreign-exchange rates from an external source.
// Implementations may block on the network; callers must never invoke them
// while holding a lock or inside a store transaction.
type ExchangeRate interface {
	// FetchRate returns the current rate for one currency pair.
	FetchRate(ctx context.Context, from, to string) (*RateInfo, error)
	// Name identifies the source in logs.
	Name() string
}
