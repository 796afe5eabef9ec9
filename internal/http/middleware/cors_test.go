package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		allowed    []string
		method     string
		origin     string
		preflight  bool
		wantOrigin string
		wantStatus int
		wantCalled bool
	}{
		{"listed origin", []string{"https://vitrine.sn"}, http.MethodGet, "https://vitrine.sn", false, "https://vitrine.sn", http.StatusOK, true},
		{"listed with trailing slash", []string{"https://vitrine.sn/"}, http.MethodGet, "https://vitrine.sn", false, "https://vitrine.sn", http.StatusOK, true},
		{"unknown origin", []string{"https://vitrine.sn"}, http.MethodGet, "https://other.example", false, "", http.StatusOK, true},
		{"wildcard", []string{"*"}, http.MethodPut, "https://random.example", false, "https://random.example", http.StatusOK, true},
		{"no origin header", []string{"*"}, http.MethodGet, "", false, "", http.StatusOK, true},
		{"preflight", []string{"https://vitrine.sn"}, http.MethodOptions, "https://vitrine.sn", true, "https://vitrine.sn", http.StatusNoContent, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})
			req := httptest.NewRequest(tt.method, "/sessions", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()

			CORS(tt.allowed)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCalled, called)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantOrigin != "" {
				assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PUT")
				assert.Equal(t, corsAllowedHeaders, rec.Header().Get("Access-Control-Allow-Headers"))
			}
		})
	}
}
