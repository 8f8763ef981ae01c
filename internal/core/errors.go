package core

import "errors"

// Sentinel errors returned by the pricing, lifecycle and service layers.
// Callers match them with errors.Is; messages are wrapped with context at the
// point of failure.
var (
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrInvalidDiscount     = errors.New("invalid discount")
	ErrInvalidPrice        = errors.New("invalid price")
	ErrIllegalSourceStatus = errors.New("illegal source status")
	ErrIllegalTransition   = errors.New("illegal status transition")
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
)
