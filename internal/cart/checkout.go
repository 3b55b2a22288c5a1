package cart

import (
	"context"
	"errors"
)

// ErrCheckoutNotImplemented is returned by Unimplemented.
var ErrCheckoutNotImplemented = errors.New("checkout is not implemented")

// Checkout is the boundary to an order placement service. It receives the
// cart being checked out and reports success or failure; nothing else about
// the contract is defined here.
type Checkout interface {
	Checkout(ctx context.Context, state State) error
}

// Unimplemented is the Checkout used until an order service exists.
type Unimplemented struct{}

// Checkout always fails with ErrCheckoutNotImplemented.
func (Unimplemented) Checkout(context.Context, State) error {
	return ErrCheckoutNotImplemented
}
