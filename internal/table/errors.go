package table

import "fmt"

// ShapeError reports a row that does not have the fixed table shape.
type ShapeError struct {
	State  string
	Row    string
	Fields int
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("state %q row %q: %s (got %d fields, want %d)", e.State, e.Row, e.Reason, e.Fields, len(Columns))
}

// CoercionError reports a count column that cannot be stored as a non-negative integer.
type CoercionError struct {
	State  string
	Row    string
	Column string
	Value  float64
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("state %q row %q: column %q value %v is not a non-negative integer", e.State, e.Row, e.Column, e.Value)
}

// KeyCollisionError reports two rows, or two tables, that resolve to the same key.
type KeyCollisionError struct {
	First  string
	Second string
}

func (e *KeyCollisionError) Error() string {
	if e.First == e.Second {
		return fmt.Sprintf("duplicate key %q", e.First)
	}
	return fmt.Sprintf("key collision between %q and %q", e.First, e.Second)
}
