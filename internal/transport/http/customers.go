package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/slmbngl/order-management-api/internal/app"
	"github.com/slmbngl/order-management-api/internal/domain"
)

type Customers interface {
	List(ctx context.Context) ([]domain.Customer, error)
	Get(ctx context.Context, id int64) (domain.Customer, error)
	Create(ctx context.Context, in app.CustomerInput) (domain.Customer, error)
	Delete(ctx context.Context, id int64) error
}

type CustomerHandler struct {
	svc Customers
}

func NewCustomerHandler(svc Customers) *CustomerHandler {
	return &CustomerHandler{svc: svc}
}

type customerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type customerResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func toCustomerResponse(c domain.Customer) customerResponse {
	return customerResponse{ID: c.ID, FirstName: c.FirstName, LastName: c.LastName, Email: c.Email}
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.svc.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]customerResponse, 0, len(customers))
	for _, c := range customers {
		out = append(out, toCustomerResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerResponse(c))
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "email is required")
		return
	}
	if req.FirstName == "" && req.LastName == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "first or last name is required")
		return
	}

	c, err := h.svc.Create(r.Context(), app.CustomerInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCustomerResponse(c))
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
