package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/slmbngl/order-management-api/internal/app"
	"github.com/slmbngl/order-management-api/internal/domain"
)

// OrderProcessor is the surface of the order service the handlers need.
type OrderProcessor interface {
	CreateOrder(ctx context.Context, in app.CreateOrderInput) (domain.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, rawStatus string) error
	Delete(ctx context.Context, orderID int64) error
	Get(ctx context.Context, orderID int64) (domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
}

type OrderHandler struct {
	svc OrderProcessor
}

func NewOrderHandler(svc OrderProcessor) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type createOrderRequest struct {
	CustomerID int64              `json:"customerId"`
	Items      []orderItemRequest `json:"items"`
}

type orderItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type orderResponse struct {
	ID               int64               `json:"id"`
	OrderDate        time.Time           `json:"orderDate"`
	Status           string              `json:"status"`
	TotalAmount      decimal.Decimal     `json:"totalAmount"`
	CustomerID       int64               `json:"customerId"`
	CustomerFullName string              `json:"customerFullName"`
	Items            []orderItemResponse `json:"items"`
}

type orderItemResponse struct {
	ProductID         int64           `json:"productId"`
	ProductName       string          `json:"productName"`
	Quantity          int             `json:"quantity"`
	UnitPriceSnapshot decimal.Decimal `json:"unitPriceSnapshot"`
}

func toOrderResponse(o domain.Order) orderResponse {
	resp := orderResponse{
		ID:               o.ID,
		OrderDate:        o.OrderDate,
		Status:           string(o.Status),
		TotalAmount:      o.TotalAmount,
		CustomerID:       o.CustomerID,
		CustomerFullName: o.CustomerName,
		Items:            make([]orderItemResponse, 0, len(o.Items)),
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ProductID:         item.ProductID,
			ProductName:       item.ProductName,
			Quantity:          item.Quantity,
			UnitPriceSnapshot: item.UnitPrice,
		})
	}
	return resp
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	order, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	in := app.CreateOrderInput{CustomerID: req.CustomerID}
	for _, item := range req.Items {
		in.Items = append(in.Items, app.Reservation{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := h.svc.CreateOrder(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	if err := h.svc.UpdateStatus(r.Context(), id, req.Status); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// ListMine returns the orders of the customer linked to the caller identity
// resolved by the auth middleware.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing identity")
		return
	}
	orders, err := h.svc.ListForUser(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrderHandler) ListItemsByOrder(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "orderID")
	orderID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidID, "invalid order id")
		return
	}

	items, err := h.svc.ListItems(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]orderItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, orderItemResponse{
			ProductID:         item.ProductID,
			ProductName:       item.ProductName,
			Quantity:          item.Quantity,
			UnitPriceSnapshot: item.UnitPrice,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidID, "invalid id")
		return 0, false
	}
	return id, true
}
