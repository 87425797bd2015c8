package unwind

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/liamcoop/unwind/cdm"
)

const tradeDoc = `{
	"trade": {
		"tradableProduct": {
			"product": {
				"contractualProduct": {
					"economicTerms": {
						"payout": {
							"performancePayout": [
								{
									"returnTerms": {"priceReturnTerms": {"returnType": "Total"}},
									"underlier": {"security": {"identifier": "IBM"}}
								}
							]
						}
					}
				}
			}
		}
	}
}`

// stubSource serves fixed bytes or a fixed error and records fetched URLs.
type stubSource struct {
	body []byte
	err  error
	urls []string
}

func (s *stubSource) Fetch(ctx context.Context, url string) ([]byte, error) {
	s.urls = append(s.urls, url)
	if s.err != nil {
		return nil, s.err
	}
	return s.body, nil
}

func alwaysQualified(*cdm.EconomicTerms) (bool, error) { return true, nil }
func neverQualified(*cdm.EconomicTerms) (bool, error)  { return false, nil }

func newTestService(t *testing.T, source DocumentSource, q QualifierFunc) *Service {
	t.Helper()
	svc, err := NewService(source, q, DefaultConfig())
	if err != nil {
		t.Fatalf("NewService() failed: %v", err)
	}
	return svc
}

func TestUnwindSuccess(t *testing.T) {
	source := &stubSource{body: []byte(tradeDoc)}
	svc := newTestService(t, source, alwaysQualified)

	instr, err := svc.Unwind(context.Background(), "http://example.test/trade.json")
	if err != nil {
		t.Fatalf("Unwind() failed: %v", err)
	}

	if instr.Direction != cdm.DirectionDecrease {
		t.Errorf("direction = %q, want %q", instr.Direction, cdm.DirectionDecrease)
	}
	if len(instr.Change) != 1 || len(instr.Change[0].Quantity) != 1 {
		t.Fatalf("instruction shape wrong: %+v", instr)
	}
	schedule := instr.Change[0].Quantity[0]
	if !schedule.Value.Equal(DefaultReductionAmount) {
		t.Errorf("value = %s, want %s", schedule.Value, DefaultReductionAmount)
	}
	if schedule.Unit.Currency.Value != "USD" {
		t.Errorf("currency = %q, want \"USD\"", schedule.Unit.Currency.Value)
	}

	if len(source.urls) != 1 || source.urls[0] != "http://example.test/trade.json" {
		t.Errorf("fetched urls = %v, want the request url exactly once", source.urls)
	}
}

func TestUnwindTransportFailure(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	source := &stubSource{err: &TransportError{URL: "http://example.test/x", Err: cause}}

	qualifierCalled := false
	svc := newTestService(t, source, func(*cdm.EconomicTerms) (bool, error) {
		qualifierCalled = true
		return true, nil
	})

	_, err := svc.Unwind(context.Background(), "http://example.test/x")

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error should be *TransportError, got %T: %v", err, err)
	}
	if !errors.Is(err, cause) {
		t.Error("the underlying transport cause should be propagated unchanged")
	}
	if qualifierCalled {
		t.Error("qualification must not run after a transport failure")
	}
}

func TestUnwindMalformedDocument(t *testing.T) {
	source := &stubSource{body: []byte(`{"trade": "not an object`)}

	qualifierCalled := false
	svc := newTestService(t, source, func(*cdm.EconomicTerms) (bool, error) {
		qualifierCalled = true
		return true, nil
	})

	_, err := svc.Unwind(context.Background(), "http://example.test/bad.json")

	var parseErr *cdm.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error should be *cdm.ParseError, got %T: %v", err, err)
	}
	if qualifierCalled {
		t.Error("qualification must not run on an unparseable document")
	}
}

func TestUnwindNonContractualProduct(t *testing.T) {
	doc := `{"trade": {"tradableProduct": {"product": {"index": {"name": "SPX"}}}}}`
	source := &stubSource{body: []byte(doc)}
	svc := newTestService(t, source, alwaysQualified)

	_, err := svc.Unwind(context.Background(), "http://example.test/index.json")

	var mismatch *cdm.TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("error should be *cdm.TypeMismatchError, got %T: %v", err, err)
	}
	if mismatch.Field != "product" {
		t.Errorf("TypeMismatchError.Field = %q, want \"product\"", mismatch.Field)
	}
}

func TestUnwindMissingNavigationStep(t *testing.T) {
	doc := `{"trade": {"tradableProduct": {}}}`
	source := &stubSource{body: []byte(doc)}
	svc := newTestService(t, source, alwaysQualified)

	_, err := svc.Unwind(context.Background(), "http://example.test/partial.json")

	var navErr *cdm.NavigationError
	if !errors.As(err, &navErr) {
		t.Fatalf("error should be *cdm.NavigationError, got %T: %v", err, err)
	}
	if navErr.Step != "product" {
		t.Errorf("NavigationError.Step = %q, want \"product\"", navErr.Step)
	}
}

func TestUnwindUnqualifiedTrade(t *testing.T) {
	source := &stubSource{body: []byte(tradeDoc)}
	svc := newTestService(t, source, neverQualified)

	// The same input with the same verdict yields the same failure.
	for i := 0; i < 2; i++ {
		instr, err := svc.Unwind(context.Background(), "http://example.test/trade.json")
		if instr != nil {
			t.Fatal("an unqualified trade must not produce an instruction")
		}
		var qualErr *QualificationError
		if !errors.As(err, &qualErr) {
			t.Fatalf("run %d: error should be *QualificationError, got %T: %v", i, err, err)
		}
	}
}

func TestUnwindQualifierError(t *testing.T) {
	source := &stubSource{body: []byte(tradeDoc)}
	svc := newTestService(t, source, func(*cdm.EconomicTerms) (bool, error) {
		return false, fmt.Errorf("taxonomy store unavailable")
	})

	instr, err := svc.Unwind(context.Background(), "http://example.test/trade.json")
	if instr != nil {
		t.Error("a failed qualification call must not produce an instruction")
	}
	if err == nil {
		t.Fatal("the qualifier's error should propagate")
	}
}

func TestUnwindInstructionRoundTrip(t *testing.T) {
	source := &stubSource{body: []byte(tradeDoc)}
	svc := newTestService(t, source, alwaysQualified)

	instr, err := svc.Unwind(context.Background(), "http://example.test/trade.json")
	if err != nil {
		t.Fatalf("Unwind() failed: %v", err)
	}

	data, err := json.Marshal(instr)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}

	reparsed, err := cdm.ParseQuantityChangeInstruction(data)
	if err != nil {
		t.Fatalf("re-parsing the produced instruction failed: %v", err)
	}
	if reparsed.Direction != instr.Direction {
		t.Errorf("direction = %q, want %q", reparsed.Direction, instr.Direction)
	}
	got := reparsed.Change[0].Quantity[0]
	want := instr.Change[0].Quantity[0]
	if !got.Value.Equal(want.Value) {
		t.Errorf("value = %s, want %s", got.Value, want.Value)
	}
	if got.Unit.Currency.Value != want.Unit.Currency.Value {
		t.Errorf("currency = %q, want %q", got.Unit.Currency.Value, want.Unit.Currency.Value)
	}
	if got.Unit.Currency.Meta == nil || got.Unit.Currency.Meta.Scheme != want.Unit.Currency.Meta.Scheme {
		t.Errorf("currency meta = %+v, want %+v", got.Unit.Currency.Meta, want.Unit.Currency.Meta)
	}
}

func TestHTTPDocumentSource(t *testing.T) {
	t.Run("Fetches body", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"trade": {}}`)
		}))
		defer ts.Close()

		source := NewHTTPDocumentSource(5 * time.Second)
		body, err := source.Fetch(context.Background(), ts.URL)
		if err != nil {
			t.Fatalf("Fetch() failed: %v", err)
		}
		if string(body) != `{"trade": {}}` {
			t.Errorf("body = %s", body)
		}
	})

	t.Run("Non-2xx status is a transport error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer ts.Close()

		source := NewHTTPDocumentSource(5 * time.Second)
		_, err := source.Fetch(context.Background(), ts.URL)

		var transportErr *TransportError
		if !errors.As(err, &transportErr) {
			t.Fatalf("error should be *TransportError, got %T: %v", err, err)
		}
	})

	t.Run("Unreachable host is a transport error", func(t *testing.T) {
		source := NewHTTPDocumentSource(time.Second)
		_, err := source.Fetch(context.Background(), "http://127.0.0.1:1/nothing")

		var transportErr *TransportError
		if !errors.As(err, &transportErr) {
			t.Fatalf("error should be *TransportError, got %T: %v", err, err)
		}
	})
}
