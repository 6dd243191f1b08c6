package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/slmbngl/order-management-api/internal/auth"
	"github.com/slmbngl/order-management-api/internal/domain"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeInvalidID          = "invalid_id"
	codeInvalidQuantity    = "invalid_quantity"
	codeInvalidStatus      = "invalid_status"
	codeInvalidTransition  = "invalid_status_transition"
	codeDuplicateProduct   = "duplicate_product"
	codeEmptyOrder         = "empty_order"
	codeCustomerNotFound   = "customer_not_found"
	codeProductNotFound    = "product_not_found"
	codeOrderNotFound      = "order_not_found"
	codeInsufficientStock  = "insufficient_stock"
	codeProductInUse       = "product_in_use"
	codeCustomerHasOrders  = "customer_has_orders"
	codeEmailTaken         = "email_taken"
	codeInvalidCredentials = "invalid_credentials"
	codeUnauthorized       = "unauthorized"
	codeConflict           = "conflict"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{Error: msg, Code: code})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeDomainError maps service errors onto HTTP statuses and stable error
// codes. Business-rule failures keep their detail; anything unknown is a 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrCustomerNotFound):
		writeError(w, http.StatusNotFound, codeCustomerNotFound, err.Error())
	case errors.Is(err, domain.ErrProductNotFound):
		writeError(w, http.StatusNotFound, codeProductNotFound, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, codeOrderNotFound, err.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		writeError(w, http.StatusConflict, codeInsufficientStock, err.Error())
	case errors.Is(err, domain.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, codeInvalidStatus, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		writeError(w, http.StatusConflict, codeInvalidTransition, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
	case errors.Is(err, domain.ErrDuplicateProduct):
		writeError(w, http.StatusBadRequest, codeDuplicateProduct, err.Error())
	case errors.Is(err, domain.ErrEmptyOrder):
		writeError(w, http.StatusBadRequest, codeEmptyOrder, err.Error())
	case errors.Is(err, domain.ErrProductInUse):
		writeError(w, http.StatusConflict, codeProductInUse, err.Error())
	case errors.Is(err, domain.ErrCustomerHasOrders):
		writeError(w, http.StatusConflict, codeCustomerHasOrders, err.Error())
	case errors.Is(err, domain.ErrEmailTaken):
		writeError(w, http.StatusConflict, codeEmailTaken, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, codeInvalidCredentials, err.Error())
	case errors.Is(err, auth.ErrPasswordTooShort):
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, codeConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
