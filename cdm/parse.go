package cdm

import "encoding/json"

// ParseTradeState deserializes raw text into a typed trade-state document.
// Malformed syntax and schema violations both surface as *ParseError. The
// root trade field is required here, not deferred to navigation: a document
// without it never parsed as a trade state in the first place.
func ParseTradeState(data []byte) (*TradeState, error) {
	if len(data) == 0 {
		return nil, &ParseError{Reason: "empty document"}
	}

	var ts TradeState
	if err := json.Unmarshal(data, &ts); err != nil {
		return nil, &ParseError{Reason: "malformed document", Err: err}
	}

	if ts.Trade == nil {
		return nil, &ParseError{Reason: "document has no trade field"}
	}

	return &ts, nil
}
