package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/vitrine/pkg/logging"
)

func TestRecorder(t *testing.T) {
	var r Recorder
	assert.Equal(t, "", r.Last())
	require.NoError(t, r.Notify(context.Background(), "one"))
	require.NoError(t, r.Notify(context.Background(), "two"))
	assert.Equal(t, []string{"one", "two"}, r.Messages())
	assert.Equal(t, "two", r.Last())
}

func TestMultiJoinsErrors(t *testing.T) {
	var rec Recorder
	boom := errors.New("boom")
	m := Multi{&rec, nil, Func(func(context.Context, string) error { return boom })}

	err := m.Notify(context.Background(), "hello")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "hello", rec.Last())
}

func TestLogNotifierWritesMessage(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(logging.NewWithWriter("info", &buf), "session_id", "s1")
	require.NoError(t, n.Notify(context.Background(), "Paiement simulé : 60.00€ — CARD"))
	assert.Contains(t, buf.String(), "Paiement simulé")
	assert.Contains(t, buf.String(), `"session_id":"s1"`)
}

func TestNewToastTiming(t *testing.T) {
	at := time.Date(2026, 10, 17, 9, 0, 0, 0, time.FixedZone("x", 3600))
	toast := NewToast("hi", at)
	assert.Equal(t, int64(2200), toast.DisplayMS)
	assert.Equal(t, int64(400), toast.FadeMS)
	assert.Equal(t, time.UTC, toast.At.Location())
}
