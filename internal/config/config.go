package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
)

const (
	defaultPort           = 8080
	defaultFetchTimeout   = 15
	defaultSampleTradeURL = "https://raw.githubusercontent.com/finos/common-domain-model/master/rosetta-source/src/main/resources/result-json-files/fpml-5-13/products/equity-swaps/eqs-ex01-single-underlyer-execution-long-form.json"
	defaultCurrencyCode   = "USD"
	defaultCurrencyScheme = "http://www.fpml.org/coding-scheme/external/iso4217"
	defaultUnwindAmount   = "70000"
)

// Config keeps the runtime configuration for the service.
type Config struct {
	Port                int
	DatabaseURL         string // empty means in-memory taxonomy store
	SampleTradeURL      string
	FetchTimeoutSeconds int

	// Unwind instruction shape
	UnwindAmount   decimal.Decimal
	CurrencyCode   string
	CurrencyScheme string
}

// Load builds Config from environment variables.
func Load() (*Config, error) {
	port, err := getInt("PORT", defaultPort)
	if err != nil {
		return nil, fmt.Errorf("parse PORT: %w", err)
	}

	fetchTimeout, err := getInt("FETCH_TIMEOUT_SECONDS", defaultFetchTimeout)
	if err != nil {
		return nil, fmt.Errorf("parse FETCH_TIMEOUT_SECONDS: %w", err)
	}

	amountStr := getString("UNWIND_AMOUNT", defaultUnwindAmount)
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("parse UNWIND_AMOUNT %q: %w", amountStr, err)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("UNWIND_AMOUNT %s must not be negative", amount)
	}

	return &Config{
		Port:                port,
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		SampleTradeURL:      getString("SAMPLE_TRADE_URL", defaultSampleTradeURL),
		FetchTimeoutSeconds: fetchTimeout,
		UnwindAmount:        amount,
		CurrencyCode:        getString("UNWIND_CURRENCY", defaultCurrencyCode),
		CurrencyScheme:      getString("UNWIND_CURRENCY_SCHEME", defaultCurrencyScheme),
	}, nil
}

func getString(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}

func getInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("convert %s value %q to int: %w", key, value, err)
	}
	return parsed, nil
}
