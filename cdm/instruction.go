package cdm

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// QuantityChangeDirection says whether a position quantity grows or shrinks.
type QuantityChangeDirection string

const (
	DirectionIncrease QuantityChangeDirection = "INCREASE"
	DirectionDecrease QuantityChangeDirection = "DECREASE"
)

// Valid reports whether the direction is one of the known enum values.
func (d QuantityChangeDirection) Valid() bool {
	return d == DirectionIncrease || d == DirectionDecrease
}

// UnmarshalJSON rejects directions outside the enum instead of carrying them
// through as free-form strings.
func (d *QuantityChangeDirection) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	dir := QuantityChangeDirection(s)
	if !dir.Valid() {
		return fmt.Errorf("unknown quantity change direction %q", s)
	}
	*d = dir
	return nil
}

// UnitType identifies what a quantity is measured in. For the unwind flow
// this is always a currency, wrapped with its vocabulary scheme.
type UnitType struct {
	Currency FieldWithMeta[string] `json:"currency"`
}

// NonNegativeQuantitySchedule is a quantity magnitude with its unit. The
// type name is the contract: a negative value never gets constructed.
type NonNegativeQuantitySchedule struct {
	Value decimal.Decimal `json:"value"`
	Unit  UnitType        `json:"unit"`
}

// NewNonNegativeQuantitySchedule builds a schedule, rejecting negative
// magnitudes at construction rather than relying on downstream validation.
func NewNonNegativeQuantitySchedule(value decimal.Decimal, unit UnitType) (NonNegativeQuantitySchedule, error) {
	if value.IsNegative() {
		return NonNegativeQuantitySchedule{}, fmt.Errorf("quantity schedule value %s is negative", value)
	}
	return NonNegativeQuantitySchedule{Value: value, Unit: unit}, nil
}

// PriceQuantity groups the quantity schedules of a single change entry.
type PriceQuantity struct {
	Quantity []NonNegativeQuantitySchedule `json:"quantity"`
}

// QuantityChangeInstruction is the artifact the pipeline produces: a
// directive to change a position's quantity by an ordered set of priced
// quantities. It belongs to the same schema family as the trade document, so
// callers can serialize it back through the same encoding.
type QuantityChangeInstruction struct {
	Direction QuantityChangeDirection `json:"direction"`
	Change    []PriceQuantity         `json:"change"`
}

// ParseQuantityChangeInstruction deserializes an instruction, enforcing the
// same schema strictness as the trade document parser.
func ParseQuantityChangeInstruction(data []byte) (*QuantityChangeInstruction, error) {
	var instr QuantityChangeInstruction
	if err := json.Unmarshal(data, &instr); err != nil {
		return nil, &ParseError{Reason: "malformed quantity change instruction", Err: err}
	}
	if !instr.Direction.Valid() {
		return nil, &ParseError{Reason: "instruction is missing a direction"}
	}
	return &instr, nil
}
