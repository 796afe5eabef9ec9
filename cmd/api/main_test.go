package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/wolfman30/vitrine/internal/config"
	"github.com/wolfman30/vitrine/internal/site"
	"github.com/wolfman30/vitrine/pkg/logging"
)

func TestSetupMetricsExposesModalMetrics(t *testing.T) {
	handler, m := setupMetrics()
	require.NotNil(t, handler)
	m.ObserveRedirect()

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "vitrine_purchase_redirects_total 1")
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}

func TestConnectRedis(t *testing.T) {
	logger := logging.New("error")
	assert.Nil(t, connectRedis(context.Background(), &appconfig.Config{}, logger))
	assert.Nil(t, connectRedis(context.Background(), &appconfig.Config{RedisAddr: "127.0.0.1:1"}, logger))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := connectRedis(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logger)
	require.NotNil(t, client)
	_ = client.Close()
}

func TestNewAppServesStorefront(t *testing.T) {
	t.Setenv("PROCESSING_DELAY", "1ms")
	t.Setenv("PAYMENT_FEEDBACK_DELAY", "1ms")
	cfg := appconfig.Load()
	logger := logging.New("error")
	storefront, err := site.Load("../../site.yaml")
	require.NoError(t, err)
	handler, m := setupMetrics()

	a := newApp(cfg, logger, storefront, nil, m, handler)

	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewBufferString(`{"page":"prods"}`)))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var view map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	id := view["id"].(string)
	base := "/sessions/" + id

	steps := []struct{ method, path, body string }{
		{http.MethodPost, "/buy", `{"card_id":"affiche-dakar"}`},
		{http.MethodPost, "/purchase/license", `{"license":"copy"}`},
		{http.MethodPost, "/purchase/method", `{"method":"orange"}`},
		{http.MethodPut, "/purchase/fields/phone_number", `{"value":"77 123 45 67"}`},
		{http.MethodPost, "/purchase/confirm", ``},
	}
	for _, st := range steps {
		rr := httptest.NewRecorder()
		a.handler.ServeHTTP(rr, httptest.NewRequest(st.method, base+st.path, strings.NewReader(st.body)))
		require.Equal(t, http.StatusOK, rr.Code, "%s: %s", st.path, rr.Body.String())
	}

	require.Eventually(t, func() bool {
		toasts := a.hub.Recent(id)
		return len(toasts) == 1 && toasts[0].Message == "Paiement simulé : 10.00€ — ORANGE"
	}, time.Second, 10*time.Millisecond)
}
