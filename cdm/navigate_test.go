package cdm

import (
	"errors"
	"testing"
)

func mustParse(t *testing.T, doc string) *TradeState {
	t.Helper()
	ts, err := ParseTradeState([]byte(doc))
	if err != nil {
		t.Fatalf("ParseTradeState() failed: %v", err)
	}
	return ts
}

func TestEconomicTermsSuccess(t *testing.T) {
	ts := mustParse(t, validTradeDoc)

	terms, err := ts.EconomicTerms()
	if err != nil {
		t.Fatalf("EconomicTerms() failed: %v", err)
	}

	facts, err := terms.Facts()
	if err != nil {
		t.Fatalf("Facts() failed: %v", err)
	}
	if _, ok := facts["payout"]; !ok {
		t.Error("facts should expose the payout substructure")
	}
}

func TestEconomicTermsMissingSteps(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
		step string
	}{
		{
			"Missing tradableProduct",
			`{"trade": {}}`,
			"tradableProduct",
		},
		{
			"Missing product",
			`{"trade": {"tradableProduct": {}}}`,
			"product",
		},
		{
			"Product without any variant",
			`{"trade": {"tradableProduct": {"product": {}}}}`,
			"contractualProduct",
		},
		{
			"ContractualProduct without economicTerms",
			`{"trade": {"tradableProduct": {"product": {"contractualProduct": {}}}}}`,
			"economicTerms",
		},
		{
			"Null economicTerms",
			`{"trade": {"tradableProduct": {"product": {"contractualProduct": {"economicTerms": null}}}}}`,
			"economicTerms",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ts := mustParse(t, tc.doc)

			_, err := ts.EconomicTerms()
			if err == nil {
				t.Fatal("EconomicTerms() should fail")
			}

			var navErr *NavigationError
			if !errors.As(err, &navErr) {
				t.Fatalf("error should be *NavigationError, got %T: %v", err, err)
			}
			if navErr.Step != tc.step {
				t.Errorf("NavigationError.Step = %q, want %q", navErr.Step, tc.step)
			}
		})
	}
}

func TestEconomicTermsMissingTrade(t *testing.T) {
	// Parsing rejects a trade-less document, but the navigator still guards
	// the step for documents assembled in code.
	ts := &TradeState{}

	_, err := ts.EconomicTerms()
	var navErr *NavigationError
	if !errors.As(err, &navErr) {
		t.Fatalf("error should be *NavigationError, got %T: %v", err, err)
	}
	if navErr.Step != "trade" {
		t.Errorf("NavigationError.Step = %q, want \"trade\"", navErr.Step)
	}
}

func TestEconomicTermsVariantMismatch(t *testing.T) {
	testCases := []struct {
		name    string
		doc     string
		variant string
	}{
		{
			"Index product",
			`{"trade": {"tradableProduct": {"product": {"index": {"name": "SPX"}}}}}`,
			VariantIndex,
		},
		{
			"Foreign exchange product",
			`{"trade": {"tradableProduct": {"product": {"foreignExchange": {"pair": "EURUSD"}}}}}`,
			VariantForeignExchange,
		},
		{
			"Basket product",
			`{"trade": {"tradableProduct": {"product": {"basket": {"components": []}}}}}`,
			VariantBasket,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ts := mustParse(t, tc.doc)

			_, err := ts.EconomicTerms()
			if err == nil {
				t.Fatal("EconomicTerms() should fail for a non-contractual product")
			}

			var mismatch *TypeMismatchError
			if !errors.As(err, &mismatch) {
				t.Fatalf("error should be *TypeMismatchError, got %T: %v", err, err)
			}
			if mismatch.Field != "product" {
				t.Errorf("TypeMismatchError.Field = %q, want \"product\"", mismatch.Field)
			}
			if mismatch.Variant != tc.variant {
				t.Errorf("TypeMismatchError.Variant = %q, want %q", mismatch.Variant, tc.variant)
			}
		})
	}
}
