package orders

import "errors"

var (
	ErrNotFound          = errors.New("order not found")
	ErrEmptyOrder        = errors.New("no items in order")
	ErrInvalidOrder      = errors.New("invalid order")
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrAllocationQuery means the day-scoped id lookup failed and no id was produced.
	ErrAllocationQuery = errors.New("order id allocation query failed")
	// ErrIDCollision means another order took the allocated id first.
	ErrIDCollision = errors.New("order id already taken")
	ErrInsert      = errors.New("order insert failed")
)
