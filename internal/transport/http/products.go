package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/slmbngl/order-management-api/internal/app"
	"github.com/slmbngl/order-management-api/internal/domain"
)

type Catalog interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (domain.Product, error)
	Create(ctx context.Context, in app.ProductInput) (domain.Product, error)
	Update(ctx context.Context, id int64, in app.ProductInput) (domain.Product, error)
	Delete(ctx context.Context, id int64) error
}

type ProductHandler struct {
	svc Catalog
}

func NewProductHandler(svc Catalog) *ProductHandler {
	return &ProductHandler{svc: svc}
}

type productRequest struct {
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
}

type productResponse struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{ID: p.ID, Name: p.Name, Price: p.Price, StockQuantity: p.StockQuantity}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeProduct(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Create(r.Context(), app.ProductInput{
		Name:          req.Name,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, ok := decodeProduct(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Update(r.Context(), id, app.ProductInput{
		Name:          req.Name,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

func decodeProduct(w http.ResponseWriter, r *http.Request) (productRequest, bool) {
	var req productRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return productRequest{}, false
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "name is required")
		return productRequest{}, false
	}
	if req.Price.IsNegative() {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "price must not be negative")
		return productRequest{}, false
	}
	if req.StockQuantity < 0 {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "stockQuantity must not be negative")
		return productRequest{}, false
	}
	return req, true
}
