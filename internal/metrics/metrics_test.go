package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitwiser/internal/ledger"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestObserveRPC(t *testing.T) {
	m := New()
	m.ObserveRPC("/splitwiser.v1.GroupService/GetGroup", "ok", 20*time.Millisecond)
	m.ObserveRPC("/splitwiser.v1.GroupService/GetGroup", "ok", 30*time.Millisecond)
	m.ObserveRPC("/splitwiser.v1.GroupService/GetGroup", "not_found", time.Millisecond)

	out := scrape(t, m)
	assert.Contains(t, out, `splitwiser_rpc_requests_total{code="ok",procedure="/splitwiser.v1.GroupService/GetGroup"} 2`)
	assert.Contains(t, out, `splitwiser_rpc_requests_total{code="not_found",procedure="/splitwiser.v1.GroupService/GetGroup"} 1`)
	assert.Contains(t, out, `splitwiser_rpc_duration_seconds_count{procedure="/splitwiser.v1.GroupService/GetGroup"} 3`)
}

func TestObserveBalance(t *testing.T) {
	m := New()
	m.ObserveBalance(ScopeGroup, []ledger.Warning{{Kind: ledger.WarningSplitSum}}, nil)
	m.ObserveBalance(ScopeGroup, nil, &ledger.IntegrityError{Record: ledger.RecordExpense, Err: ledger.ErrUnknownMember})
	m.ObserveBalance(ScopePair, nil, errors.New("db down"))

	out := scrape(t, m)
	assert.Contains(t, out, `splitwiser_balance_computations_total{outcome="ok",scope="group"} 1`)
	assert.Contains(t, out, `splitwiser_balance_computations_total{outcome="rejected",scope="group"} 1`)
	assert.Contains(t, out, `splitwiser_balance_computations_total{outcome="error",scope="pair"} 1`)
	assert.Contains(t, out, `splitwiser_ledger_warnings_total{kind="split_sum_mismatch"} 1`)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRPC("/x", "ok", time.Second)
		m.ObserveBalance(ScopePair, nil, nil)
	})
}
