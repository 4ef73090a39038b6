// Package provider implements external exchange-rate sources.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fintrack/fintrack/pkg/config"
	"github.com/fintrack/fintrack/pkg/provider"
)

// rateTTL is how long a fetched rate stays valid.
const rateTTL = 24 * time.Hour

var _ provider.ExchangeRate = (*ExchangeRateAPI)(nil)

// ExchangeRateAPI fetches rates from exchangerate-api.com.
type ExchangeRateAPI struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type rateResponse struct {
	Result          string             `json:"result"`
	BaseCode        string             `json:"base_code"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
	// Rates is the v4 field name; either may be present.
	Rates     map[string]float64 `json:"rates"`
	ErrorType string             `json:"error-type,omitempty"`
}

// NewExchangeRateAPI creates the provider from config.
func NewExchangeRateAPI(cfg config.ExchangeRate, logger *slog.Logger) *ExchangeRateAPI {
	return &ExchangeRateAPI{
		apiKey:     cfg.ApiKey,
		baseURL:    cfg.ApiUrl,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		logger:     logger,
	}
}

// FetchRate fetches the current rate for a currency pair.
func (p *ExchangeRateAPI) FetchRate(ctx context.Context, from, to string) (*provider.RateInfo, error) {
	url := fmt.Sprintf("%s/%s", p.baseURL, from)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating rate request: %w", err)
	}
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching rate %s->%s: %w", from, to, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("rate API returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decoding rate response: %w", err)
	}
	if apiResp.ErrorType != "" {
		return nil, fmt.Errorf("rate API error: %s", apiResp.ErrorType)
	}

	rates := apiResp.ConversionRates
	if rates == nil {
		rates = apiResp.Rates
	}
	rate, ok := rates[to]
	if !ok {
		return nil, fmt.Errorf("currency %s not in rate response", to)
	}

	now := time.Now()
	p.logger.Debug("Fetched exchange rate", "from", from, "to", to, "rate", rate)
	return &provider.RateInfo{
		From:        from,
		To:          to,
		Rate:        rate,
		Source:      p.Name(),
		LastUpdated: now,
		ExpiresAt:   now.Add(rateTTL),
	}, nil
}

// Name returns the provider's name.
func (p *ExchangeRateAPI) Name() string { return "exchangerate-api" }
