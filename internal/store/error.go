package store

import (
	"errors"
	"fmt"
)

var (
	// -- Validation & Input --
	ErrInvalidQuantity   = errors.New("invalid cart quantity")
	ErrInsufficientStock = errors.New("insufficient stock")

	// -- Resource State --
	ErrLineNotFound = errors.New("cart line not found")

	// -- Persistence Failures --
	ErrFailedLoadState = errors.New("failed to load persisted state")
	ErrFailedSaveState = errors.New("failed to persist state")
)

// CapacityError rejects a mutation that would push a line past its
// inventory ceiling. Remaining is how much room the line still has.
type CapacityError struct {
	Ceiling   int
	Remaining int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("insufficient stock: ceiling %d, remaining %d", e.Ceiling, e.Remaining)
}

func (e *CapacityError) Unwrap() error {
	return ErrInsufficientStock
}
