package qualify

import "time"

// Taxonomy is a single product classification predicate: a CEL expression
// over the economicTerms facts of a trade. A trade qualifies when at least
// one active taxonomy matches it.
type Taxonomy struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Expression string    `json:"expression"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// EvaluationResult is the outcome of evaluating one taxonomy against a set
// of economic terms.
type EvaluationResult struct {
	TaxonomyID   string `json:"taxonomyId"`
	TaxonomyName string `json:"taxonomyName"`
	Matched      bool   `json:"matched"`
	Error        error  `json:"-"`
}
