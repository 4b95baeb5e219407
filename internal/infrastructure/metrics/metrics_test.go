package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	pebbleerrors "github.com/FishShrimp/Pebble/internal/domain/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportHandleResultExposedOverHTTP(t *testing.T) {
	Reset()
	sink := NewSink("test-instance")

	sink.ReportHandleResult(1, int32(pebbleerrors.Success), 12)
	sink.ReportHandleResult(1, int32(pebbleerrors.RPCRequestTimeout), 50)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "pebble_rpc_handle_results_total")
	assert.Contains(t, body, `instance="test-instance"`)
}

func TestSetResourceGauges(t *testing.T) {
	Reset()
	SetResourceGauges("engine-a", 3, 7)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "pebble_rpc_live_timers{instance=\"engine-a\"} 3"))
	assert.True(t, strings.Contains(body, "pebble_rpc_live_sessions{instance=\"engine-a\"} 7"))
}
