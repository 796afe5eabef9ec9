package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/vitrine/pkg/logging"
)

func TestRequestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter("info", &buf)
	h := chimw.RequestID(RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{}`))
	})))

	req := httptest.NewRequest(http.MethodPost, "/sessions/x/purchase/confirm", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	sc := bufio.NewScanner(&buf)
	require.True(t, sc.Scan())
	var entry map[string]any
	require.NoError(t, json.Unmarshal(sc.Bytes(), &entry))
	assert.Equal(t, "request completed", entry["msg"])
	assert.Equal(t, "http", entry["component"])
	assert.EqualValues(t, http.StatusUnprocessableEntity, entry["status"])
	assert.EqualValues(t, 2, entry["bytes"])
	assert.NotEmpty(t, entry["request_id"])
}

func TestRequestLoggerServerError(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter("info", &buf)
	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "ERROR", entry["level"])
}
