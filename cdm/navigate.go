package cdm

// EconomicTerms walks the ownership chain
// trade → tradableProduct → product → contractualProduct → economicTerms,
// enforcing presence at each step. A missing step yields a *NavigationError
// naming that step; a product that resolved to a non-contractual variant
// yields a *TypeMismatchError naming the variant.
func (ts *TradeState) EconomicTerms() (*EconomicTerms, error) {
	if ts.Trade == nil {
		return nil, &NavigationError{Step: "trade"}
	}
	if ts.Trade.TradableProduct == nil {
		return nil, &NavigationError{Step: "tradableProduct"}
	}
	product := ts.Trade.TradableProduct.Product
	if product == nil {
		return nil, &NavigationError{Step: "product"}
	}

	switch product.Variant() {
	case VariantContractualProduct:
		// fall through to the contractual arm below
	case "":
		return nil, &NavigationError{Step: "contractualProduct"}
	default:
		return nil, &TypeMismatchError{Field: "product", Variant: product.Variant()}
	}

	cp := product.ContractualProduct
	if cp == nil {
		return nil, &NavigationError{Step: "contractualProduct"}
	}
	if !cp.EconomicTerms.Present() {
		return nil, &NavigationError{Step: "economicTerms"}
	}
	return cp.EconomicTerms, nil
}
