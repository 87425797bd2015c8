package cdm

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TradeState is the root of a parsed trade document. The trade field is
// required; ParseTradeState rejects documents without it.
type TradeState struct {
	Trade *Trade `json:"trade,omitempty"`
}

// Trade owns exactly one tradable product.
type Trade struct {
	TradableProduct *TradableProduct `json:"tradableProduct,omitempty"`
}

// TradableProduct owns exactly one product.
type TradableProduct struct {
	Product *Product `json:"product,omitempty"`
}

// Product variant names, in the order the decoder probes them.
const (
	VariantContractualProduct = "contractualProduct"
	VariantIndex              = "index"
	VariantForeignExchange    = "foreignExchange"
	VariantBasket             = "basket"
)

var knownVariants = []string{
	VariantContractualProduct,
	VariantIndex,
	VariantForeignExchange,
	VariantBasket,
}

// Product is a tagged union over the known product variants. Only the
// contractual-product arm is decoded; the other arms are carried verbatim so
// that a rejected variant can still be named and round-tripped.
type Product struct {
	ContractualProduct *ContractualProduct

	variant string
	raw     json.RawMessage
}

// Variant returns the name of the populated arm, or "" when the product
// object carries none of the known variants.
func (p *Product) Variant() string {
	return p.variant
}

// UnmarshalJSON resolves which variant the product object carries. A product
// with more than one variant set is malformed.
func (p *Product) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var found []string
	for _, name := range knownVariants {
		if _, ok := fields[name]; ok {
			found = append(found, name)
		}
	}
	if len(found) > 1 {
		return fmt.Errorf("product carries %d variants %v, expected one", len(found), found)
	}

	p.raw = append(p.raw[:0], data...)
	if len(found) == 0 {
		p.variant = ""
		return nil
	}

	p.variant = found[0]
	if p.variant == VariantContractualProduct {
		var cp ContractualProduct
		if err := json.Unmarshal(fields[VariantContractualProduct], &cp); err != nil {
			return fmt.Errorf("contractualProduct: %w", err)
		}
		p.ContractualProduct = &cp
	}
	return nil
}

// MarshalJSON emits the original variant bytes when the product was parsed
// from a document, otherwise the contractual-product arm.
func (p Product) MarshalJSON() ([]byte, error) {
	if len(p.raw) > 0 {
		return p.raw, nil
	}
	return json.Marshal(map[string]*ContractualProduct{
		VariantContractualProduct: p.ContractualProduct,
	})
}

// ContractualProduct owns the economic terms consumed by qualification.
type ContractualProduct struct {
	EconomicTerms *EconomicTerms `json:"economicTerms,omitempty"`
}

// EconomicTerms is the payoff-relevant payload of a contractual product.
// The pipeline treats it as opaque: the raw bytes round-trip untouched, and
// Facts exposes a decoded view for taxonomy evaluation.
type EconomicTerms struct {
	raw json.RawMessage
}

// UnmarshalJSON retains the terms verbatim. A JSON null counts as absent.
func (et *EconomicTerms) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		et.raw = nil
		return nil
	}
	if !json.Valid(data) {
		return fmt.Errorf("economicTerms is not valid JSON")
	}
	et.raw = append(et.raw[:0], data...)
	return nil
}

// MarshalJSON emits the retained bytes unchanged.
func (et EconomicTerms) MarshalJSON() ([]byte, error) {
	if len(et.raw) == 0 {
		return []byte("null"), nil
	}
	return et.raw, nil
}

// Present reports whether the terms are structurally present. Qualification
// must not be attempted against absent terms.
func (et *EconomicTerms) Present() bool {
	return et != nil && len(et.raw) > 0
}

// Facts decodes the terms into the map form consumed by taxonomy predicates.
func (et *EconomicTerms) Facts() (map[string]any, error) {
	if !et.Present() {
		return nil, fmt.Errorf("economic terms are absent")
	}
	var facts map[string]any
	if err := json.Unmarshal(et.raw, &facts); err != nil {
		return nil, fmt.Errorf("decode economic terms: %w", err)
	}
	return facts, nil
}
