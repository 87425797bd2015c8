package main

import "time"

// API request and response models.

// CreateTaxonomyRequest is the body for registering a product taxonomy.
type CreateTaxonomyRequest struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
	Active     bool   `json:"active"`
}

// UpdateTaxonomyRequest is the body for updating a product taxonomy.
type UpdateTaxonomyRequest struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
	Active     bool   `json:"active"`
}

// TaxonomyResponse represents a taxonomy in API responses.
type TaxonomyResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Expression string    `json:"expression"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ErrorResponse carries a classified pipeline failure back to the caller.
// Kind is one of: transport, parse, navigation, type_mismatch,
// qualification, bad_request, not_found, internal.
type ErrorResponse struct {
	Kind    string `json:"kind"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
