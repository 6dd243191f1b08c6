package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RouterDeps bundles everything the router mounts.
type RouterDeps struct {
	Orders    OrderProcessor
	Products  Catalog
	Customers Customers
	Auth      Authenticator
	Tokens    TokenValidator
	Logger    *zap.Logger
	CORS      []string
}

// NewRouter builds the API router. Order routes require a bearer token;
// catalog, customer and auth routes are open, matching the original API.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestLogger(deps.Logger))
	r.Use(CORS(deps.CORS))

	r.Get("/health", HealthHandler)

	authHandler := NewAuthHandler(deps.Auth)
	productHandler := NewProductHandler(deps.Products)
	customerHandler := NewCustomerHandler(deps.Customers)
	orderHandler := NewOrderHandler(deps.Orders)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Get("/products", productHandler.List)
		r.Post("/products", productHandler.Create)
		r.Get("/products/{id}", productHandler.Get)
		r.Put("/products/{id}", productHandler.Update)
		r.Delete("/products/{id}", productHandler.Delete)

		r.Get("/customers", customerHandler.List)
		r.Post("/customers", customerHandler.Create)
		r.Get("/customers/{id}", customerHandler.Get)
		r.Delete("/customers/{id}", customerHandler.Delete)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(deps.Tokens))

			r.Get("/orders", orderHandler.List)
			r.Post("/orders", orderHandler.Create)
			r.Get("/orders/my", orderHandler.ListMine)
			r.Get("/orders/{id}", orderHandler.Get)
			r.Put("/orders/{id}", orderHandler.UpdateStatus)
			r.Delete("/orders/{id}", orderHandler.Delete)

			r.Get("/orderitems/byorder/{orderID}", orderHandler.ListItemsByOrder)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})

	return r
}
