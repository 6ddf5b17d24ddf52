// internal/services/errors.go
package services

import "errors"

// Sentinel errors surfaced by the marketplace services. Handlers map these to
// HTTP responses; anything else is treated as an internal persistence failure.
var (
	ErrStoreResolution      = errors.New("cannot resolve owning store for cart line")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrNoPendingCommissions = errors.New("no pending commission transactions")
	ErrNotStoreOwner        = errors.New("not the owner of this store")
	ErrStoreNotApproved     = errors.New("store is not approved for selling")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidTransition    = errors.New("invalid fulfillment status transition")
	ErrInvalidEvent         = errors.New("invalid event payload")
)
