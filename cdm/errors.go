package cdm

import "fmt"

// ParseError reports input text that is not a well-formed document of the
// expected schema shape, including absence of the required root trade field.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse trade document: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parse trade document: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NavigationError reports a required substructure missing at a named step of
// the trade → economicTerms ownership chain. Each absence case is reported
// with its own step instead of a generic failure.
type NavigationError struct {
	Step string
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate trade document: %s is absent", e.Step)
}

// TypeMismatchError reports a polymorphic field that resolved to a variant
// the pipeline does not handle, naming the variant actually encountered.
type TypeMismatchError struct {
	Field   string
	Variant string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("navigate trade document: %s resolved to variant %q, expected %s", e.Field, e.Variant, VariantContractualProduct)
}
