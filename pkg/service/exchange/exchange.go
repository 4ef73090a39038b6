// Package exchange implements currency conversion over a cached external
// rate source.
//
// A failed rate lookup is always surfaced as a conversion failure; the
// service never substitutes a 1.0 rate for a pair it could not resolve. The
// only shortcut is the identity pair, which is 1.0 by definition and touches
// neither cache nor network.
package exchange

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fintrack/fintrack/pkg/cache"
	"github.com/fintrack/fintrack/pkg/currency"
	"github.com/fintrack/fintrack/pkg/domain"
	"github.com/fintrack/fintrack/pkg/money"
	"github.com/fintrack/fintrack/pkg/provider"
	"github.com/shopspring/decimal"
)

// Service resolves exchange rates and converts money values.
type Service struct {
	provider provider.ExchangeRate
	cache    cache.ExchangeRateCache
	ttl      time.Duration
	logger   *slog.Logger
}

// New creates an exchange service. ttl bounds how long a fetched rate is
// reused before the source is consulted again.
func New(p provider.ExchangeRate, c cache.ExchangeRateCache, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{provider: p, cache: c, ttl: ttl, logger: logger}
}

// Rate returns the rate from -> to. The identity pair is 1.0 without any
// lookup; every other pair comes from the cache or the external source.
func (s *Service) Rate(ctx context.Context, from, to currency.Code) (float64, error) {
	if !currency.IsValidFormat(string(from)) || !currency.IsValidFormat(string(to)) {
		return 0, fmt.Errorf("%w: invalid currency pair %s->%s", domain.ErrValidation, from, to)
	}
	if from == to {
		return 1.0, nil
	}

	key := fmt.Sprintf("%s:%s", from, to)
	if cached, err := s.cache.Get(key); err == nil && cached != nil {
		return cached.Rate, nil
	} else if err != nil {
		s.logger.Warn("Rate cache read failed", "key", key, "error", err)
	}

	info, err := s.provider.FetchRate(ctx, string(from), string(to))
	if err != nil {
		return 0, fmt.Errorf("%w: %s->%s: %v", domain.ErrConversionFailure, from, to, err)
	}
	if err := s.cache.Set(key, info, s.ttl); err != nil {
		s.logger.Warn("Rate cache write failed", "key", key, "error", err)
	}

	s.logger.Info("Exchange rate resolved",
		"from", from, "to", to, "rate", info.Rate, "source", info.Source)
	return info.Rate, nil
}

// Convert returns m expressed in the target currency, rounded to the
// target's scale.
func (s *Service) Convert(ctx context.Context, m money.Money, target currency.Code) (money.Money, error) {
	if m.Currency() == target {
		return m, nil
	}
	rate, err := s.Rate(ctx, m.Currency(), target)
	if err != nil {
		return money.Money{}, err
	}
	meta := currency.Get(target)
	converted := m.Amount().Mul(decimal.NewFromFloat(rate)).Round(int32(meta.Decimals))
	return money.New(converted, target)
}

// ConvertAndSum totals amounts in the target currency. Amounts are first
// summed per source currency so each pair is converted (and each rate
// resolved) once, then the per-currency totals are converted and added.
func (s *Service) ConvertAndSum(ctx context.Context, amounts []money.Money, target currency.Code) (money.Money, error) {
	buckets := make(map[currency.Code]money.Money)
	order := make([]currency.Code, 0, len(amounts))
	for _, m := range amounts {
		code := m.Currency()
		bucket, ok := buckets[code]
		if !ok {
			bucket = money.Zero(code)
			order = append(order, code)
		}
		next, err := bucket.Add(m)
		if err != nil {
			return money.Money{}, err
		}
		buckets[code] = next
	}

	total := money.Zero(target)
	for _, code := range order {
		converted, err := s.Convert(ctx, buckets[code], target)
		if err != nil {
			return money.Money{}, err
		}
		next, err := total.Add(converted)
		if err != nil {
			return money.Money{}, err
		}
		total = next
	}
	return total, nil
}
