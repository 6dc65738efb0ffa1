package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/iskra/internal/domain"
)

func TestObserversFeedCollectors(t *testing.T) {
	m := New()
	m.ObserveUpdate("callback", 20*time.Millisecond, nil)
	m.ObserveUpdate("callback", 20*time.Millisecond, errors.New("x"))
	m.ObserveHandler("callback", "callback.search", time.Millisecond, domain.Validation("bad"))
	m.ObserveHandler("text", "text.freeform", time.Millisecond, nil)
	m.ObserveMatch(true)
	m.ObserveMatch(false)
	m.ObserveInteraction(domain.ActionLike)
	m.SendResult("send.match", nil)
	m.SetSessions(3)
	m.SessionsPruned(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.updatesTotal.WithLabelValues("callback", "fail")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.handlersTotal.WithLabelValues("callback", "callback.search", "VALIDATION_ERROR")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.handlersTotal.WithLabelValues("text", "text.freeform", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.matchesTotal.WithLabelValues("created")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.sessions))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.sessionsPruned))
}

func TestHandlerServesMetricsAndHealth(t *testing.T) {
	m := New()
	m.ObserveInteraction(domain.ActionPass)
	srv := httptest.NewServer(Handler(m, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body := new(strings.Builder)
	_, err = io.Copy(body, resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Contains(t, body.String(), `iskra_interactions_total{action="pass"} 1`)

	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	down := httptest.NewServer(Handler(m, func(context.Context) error { return errors.New("db gone") }))
	defer down.Close()
	resp, err = http.Get(down.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
