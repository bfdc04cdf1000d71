package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveChatCountsByOutcome(t *testing.T) {
	m := New()

	m.ObserveChat("http", OutcomeOK)
	m.ObserveChat("http", OutcomeOK)
	m.ObserveChat("ws", OutcomeProviderError)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.chatRequests.WithLabelValues("http", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.chatRequests.WithLabelValues("ws", OutcomeProviderError)))
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveReset(OutcomeOK)
	m.ObserveProvider(time.Now())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "chatbot_conversation_resets_total"))
	assert.True(t, strings.Contains(body, "chatbot_provider_request_duration_seconds"))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveChat("http", OutcomeOK)
	m.ObserveReset(OutcomeOK)
	m.ObserveProvider(time.Now())
}
