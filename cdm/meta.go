package cdm

// MetaFields carries reference-data lineage for a wrapped scalar.
// Scheme identifies the controlled vocabulary the value is drawn from.
type MetaFields struct {
	Scheme string `json:"scheme,omitempty"`
}

// FieldWithMeta pairs a scalar with its metadata. Values that carry
// regulatory or reference-data meaning (currency codes, identifiers) are
// always wrapped this way instead of being passed as bare scalars, and the
// wrapping serializes as a nested pair, never flattened.
type FieldWithMeta[T any] struct {
	Value T           `json:"value"`
	Meta  *MetaFields `json:"meta,omitempty"`
}

// WithScheme wraps a value together with the vocabulary scheme it belongs to.
func WithScheme[T any](value T, scheme string) FieldWithMeta[T] {
	return FieldWithMeta[T]{
		Value: value,
		Meta:  &MetaFields{Scheme: scheme},
	}
}
