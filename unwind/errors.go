package unwind

import "fmt"

// QualificationError reports that a trade's economic terms did not match any
// known product taxonomy. No instruction is built in that case.
type QualificationError struct {
	Reason string
}

func (e *QualificationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("trade does not qualify: %s", e.Reason)
	}
	return "trade does not qualify against any known product taxonomy"
}

// TransportError reports a failed document retrieval. The underlying cause
// is propagated unchanged; interpreting it is the collaborator's business.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch trade document from %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
