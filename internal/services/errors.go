// Package services implements the order-to-thread correlation engine:
// the thread locator and the update dispatcher. This file centralizes
// service-level error values so they can be consistently returned by
// service methods and checked by callers.
//
// These errors are internal to the dispatch layer; translation into HTTP
// responses happens at the handler layer via the structured Result type,
// never by letting one of these escape Handle.
package services

import "errors"

var (
	// ErrMissingOrderKey indicates the payload carried no usable order
	// identifier in any of the documented fallback fields.
	ErrMissingOrderKey = errors.New("payload has no order identifier")

	// ErrThreadNotFound indicates no root announcement message could be
	// located for the order in any configured channel. Not a failure; the
	// sender should retry after the announcement exists.
	ErrThreadNotFound = errors.New("no announcement message found for order")
)
