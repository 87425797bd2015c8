package unwind

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/liamcoop/unwind/cdm"
)

// DefaultCurrencyScheme identifies the currency-code vocabulary stamped on
// the instruction's currency meta when none is configured.
const DefaultCurrencyScheme = "http://www.fpml.org/coding-scheme/external/iso4217"

// DefaultReductionAmount is the documented default unwind magnitude.
var DefaultReductionAmount = decimal.NewFromInt(70000)

// Config controls the shape of the produced instruction. The magnitude and
// currency are inputs rather than constants so the builder can serve other
// reduction amounts and currencies.
type Config struct {
	// ReductionAmount is the decimal magnitude of the decrease.
	ReductionAmount decimal.Decimal

	// CurrencyCode is the ISO-style code of the schedule's unit.
	CurrencyCode string

	// CurrencyScheme identifies the vocabulary the code is drawn from.
	CurrencyScheme string
}

// DefaultConfig returns the documented defaults: a 70000 USD reduction.
func DefaultConfig() Config {
	return Config{
		ReductionAmount: DefaultReductionAmount,
		CurrencyCode:    "USD",
		CurrencyScheme:  DefaultCurrencyScheme,
	}
}

// Builder constructs quantity-change instructions for qualified trades.
// Construction is pure: no I/O, nothing retained between calls.
type Builder struct {
	cfg Config
}

// NewBuilder validates the configuration once so Build never has to.
func NewBuilder(cfg Config) (*Builder, error) {
	if cfg.ReductionAmount.IsNegative() {
		return nil, fmt.Errorf("reduction amount %s is negative", cfg.ReductionAmount)
	}
	if cfg.CurrencyCode == "" {
		return nil, fmt.Errorf("currency code is required")
	}
	if cfg.CurrencyScheme == "" {
		return nil, fmt.Errorf("currency scheme is required")
	}
	return &Builder{cfg: cfg}, nil
}

// Build produces the unwind instruction for validated economic terms and an
// externally obtained qualification verdict. A false verdict is terminal:
// the caller gets a *QualificationError and no instruction. The success
// shape is fixed for this pipeline: direction DECREASE, one change entry,
// one schedule carrying the configured amount and meta-wrapped currency.
func (b *Builder) Build(terms *cdm.EconomicTerms, qualified bool) (*cdm.QuantityChangeInstruction, error) {
	if !terms.Present() {
		return nil, fmt.Errorf("economic terms are absent")
	}
	if !qualified {
		return nil, &QualificationError{}
	}

	schedule, err := cdm.NewNonNegativeQuantitySchedule(
		b.cfg.ReductionAmount,
		cdm.UnitType{
			Currency: cdm.WithScheme(b.cfg.CurrencyCode, b.cfg.CurrencyScheme),
		},
	)
	if err != nil {
		return nil, err
	}

	return &cdm.QuantityChangeInstruction{
		Direction: cdm.DirectionDecrease,
		Change: []cdm.PriceQuantity{
			{Quantity: []cdm.NonNegativeQuantitySchedule{schedule}},
		},
	}, nil
}
