// Package cache defines the exchange-rate cache contract.
package cache

import (
	"time"

	"github.com/fintrack/fintrack/pkg/provider"
)

// ExchangeRateCache stores fetched rates for reuse within their TTL.
// A miss is (nil, nil), not an error.
type ExchangeRateCache interface {
	Get(key string) (*provider.RateInfo, error)
	Set(key string, rate *provider.RateInfo, ttl time.Duration) error
	Delete(key string) error
}
