package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/wolfman30/vitrine/pkg/logging"
)

func TestHubRecentIsBoundedAndScoped(t *testing.T) {
	h := NewHub(logging.New("error"))
	for i := 0; i < recentToastLimit+5; i++ {
		require.NoError(t, h.ForSession("s1").Notify(context.Background(), fmt.Sprintf("toast %d", i)))
	}
	require.NoError(t, h.ForSession("s2").Notify(context.Background(), "other"))

	recent := h.Recent("s1")
	require.Len(t, recent, recentToastLimit)
	assert.Equal(t, "toast 5", recent[0].Message)
	assert.Equal(t, fmt.Sprintf("toast %d", recentToastLimit+4), recent[len(recent)-1].Message)
	assert.Len(t, h.Recent("s2"), 1)

	h.Forget("s1")
	assert.Empty(t, h.Recent("s1"))
}

func TestHubDropsToastsAfterForget(t *testing.T) {
	h := NewHub(logging.New("error"))
	inFlight := h.ForSession("s1")
	h.Forget("s1")

	require.NoError(t, inFlight.Notify(context.Background(), "Paiement simulé : 10.00€ — ORANGE"))
	h.Publish("never-created", NewToast("stray", time.Now()))

	assert.Empty(t, h.Recent("s1"))
	h.mu.RLock()
	defer h.mu.RUnlock()
	assert.Empty(t, h.recent)
	assert.Empty(t, h.sessions)
}

func TestHubPushesToWebsocket(t *testing.T) {
	h := NewHub(logging.New("error"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeSession(w, r, "s1")
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, err := websocket.Dial(wsURL, "", "http://localhost/")
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		_, ok := h.conns["s1"]
		return ok
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, h.ForSession("s1").Notify(context.Background(), "Demande envoyée"))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var toast Toast
	require.NoError(t, websocket.JSON.Receive(conn, &toast))
	assert.Equal(t, "Demande envoyée", toast.Message)
	assert.Equal(t, int64(2200), toast.DisplayMS)

	require.NoError(t, websocket.JSON.Send(conn, map[string]string{"type": "ping"}))
	var pong map[string]string
	require.NoError(t, websocket.JSON.Receive(conn, &pong))
	assert.Equal(t, "pong", pong["type"])
}
