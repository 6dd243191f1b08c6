package domain

import "strings"

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// ParseStatus normalizes raw input (case-insensitive) to a canonical status.
func ParseStatus(raw string) (OrderStatus, error) {
	switch OrderStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusPending:
		return StatusPending, nil
	case StatusShipped:
		return StatusShipped, nil
	case StatusDelivered:
		return StatusDelivered, nil
	case StatusCancelled:
		return StatusCancelled, nil
	default:
		return "", ErrInvalidStatus
	}
}

// CanTransition reports whether a status write from s to target is allowed.
// Writing the current status again is always a permitted no-op; delivered
// and cancelled are terminal.
func (s OrderStatus) CanTransition(target OrderStatus) bool {
	if s == target {
		return true
	}
	switch s {
	case StatusPending:
		return target == StatusShipped || target == StatusCancelled
	case StatusShipped:
		return target == StatusDelivered || target == StatusCancelled
	default:
		return false
	}
}

// Terminal reports whether no further transition is defined away from s.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}
