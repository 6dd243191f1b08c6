package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCORS(t *testing.T) {
	t.Parallel()

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	do := func(handler http.Handler, method, origin, requestMethod string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/api/orders", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		if requestMethod != "" {
			req.Header.Set("Access-Control-Request-Method", requestMethod)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("allowed origin is echoed", func(t *testing.T) {
		handler := CORS([]string{"https://app.example.com"})(okHandler)

		rec := do(handler, http.MethodGet, "https://app.example.com", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight from allowed origin short-circuits", func(t *testing.T) {
		handler := CORS([]string{"https://app.example.com"})(okHandler)

		rec := do(handler, http.MethodOptions, "https://app.example.com", http.MethodPut)
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PUT")
		require.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	})

	t.Run("preflight from unknown origin is forbidden", func(t *testing.T) {
		handler := CORS([]string{"https://app.example.com"})(okHandler)

		rec := do(handler, http.MethodOptions, "https://evil.example.com", http.MethodPut)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("plain request from unknown origin passes without headers", func(t *testing.T) {
		handler := CORS([]string{"https://app.example.com"})(okHandler)

		rec := do(handler, http.MethodGet, "https://evil.example.com", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard allows any origin", func(t *testing.T) {
		handler := CORS([]string{"*"})(okHandler)

		rec := do(handler, http.MethodGet, "https://anything.example.com", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
