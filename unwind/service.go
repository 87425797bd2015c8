package unwind

import (
	"context"

	"github.com/liamcoop/unwind/cdm"
)

// Qualifier is the classification predicate: given economic terms it returns
// a boolean qualification verdict. The pipeline calls it at most once per
// request and only acts on the verdict; the taxonomy logic behind it is not
// this package's business.
type Qualifier interface {
	Qualify(terms *cdm.EconomicTerms) (bool, error)
}

// QualifierFunc adapts a plain function to the Qualifier interface.
type QualifierFunc func(terms *cdm.EconomicTerms) (bool, error)

func (f QualifierFunc) Qualify(terms *cdm.EconomicTerms) (bool, error) {
	return f(terms)
}

// Service runs the unwind pipeline: fetch, parse, navigate, qualify, build.
// Every stage failure is terminal for the request and the caller never sees
// a partially populated instruction. All intermediate values are
// request-local, so a single Service is safe for concurrent requests.
type Service struct {
	source    DocumentSource
	qualifier Qualifier
	builder   *Builder
}

// NewService wires the pipeline's collaborators together.
func NewService(source DocumentSource, qualifier Qualifier, cfg Config) (*Service, error) {
	builder, err := NewBuilder(cfg)
	if err != nil {
		return nil, err
	}
	return &Service{
		source:    source,
		qualifier: qualifier,
		builder:   builder,
	}, nil
}

// Unwind retrieves the trade document at url and produces the reduction
// instruction for it. Failures carry their stage's error type: *TransportError,
// *cdm.ParseError, *cdm.NavigationError, *cdm.TypeMismatchError or
// *QualificationError.
func (s *Service) Unwind(ctx context.Context, url string) (*cdm.QuantityChangeInstruction, error) {
	raw, err := s.source.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return s.UnwindDocument(raw)
}

// UnwindDocument runs the pipeline on already retrieved document text.
func (s *Service) UnwindDocument(raw []byte) (*cdm.QuantityChangeInstruction, error) {
	ts, err := cdm.ParseTradeState(raw)
	if err != nil {
		return nil, err
	}

	terms, err := ts.EconomicTerms()
	if err != nil {
		return nil, err
	}

	qualified, err := s.qualifier.Qualify(terms)
	if err != nil {
		return nil, err
	}

	return s.builder.Build(terms, qualified)
}
