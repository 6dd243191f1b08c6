package domain

import "errors"

var (
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrDuplicateProduct   = errors.New("duplicate product in order")
	ErrEmptyOrder         = errors.New("order has no items")
	ErrProductInUse       = errors.New("product referenced by order items")
	ErrCustomerHasOrders  = errors.New("customer has existing orders")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidID          = errors.New("invalid id")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrConflict           = errors.New("concurrent modification detected")
)
