package koala

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetricsCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewMetricsCollectorWithRegistry(registry)

	if collector == nil {
		t.Fatal("NewMetricsCollectorWithRegistry() returned nil")
	}
	if collector.requestsTotal == nil {
		t.Error("requestsTotal metric not initialized")
	}
	if collector.requestDuration == nil {
		t.Error("requestDuration metric not initialized")
	}
	if collector.requestsInFlight == nil {
		t.Error("requestsInFlight metric not initialized")
	}
	if collector.errorsTotal == nil {
		t.Error("errorsTotal metric not initialized")
	}
	if collector.ruleHits == nil {
		t.Error("ruleHits metric not initialized")
	}
	if collector.multiJobs == nil {
		t.Error("multiJobs metric not initialized")
	}
	if collector.GetRegistry() != registry {
		t.Error("Expected registry to be exposed")
	}
}

func TestMetricsCollectorForeignRegisterer(t *testing.T) {
	registerer := prometheus.WrapRegistererWithPrefix("app_", prometheus.NewRegistry())
	collector := NewMetricsCollectorWithRegistry(registerer)

	if collector.GetRegistry() != nil {
		t.Error("Expected nil registry for a wrapped registerer")
	}
}

func TestNilMetricsCollector(t *testing.T) {
	var collector *MetricsCollector

	collector.RecordRequest(OpCheck, 200, time.Millisecond)
	collector.RecordRequestStart(OpCheck)
	collector.RecordRequestEnd(OpCheck)
	collector.RecordError(ErrorTypeNetwork, OpCheck)
	collector.RecordResult(OpCheck, Result{Code: intPtr(1)})
	collector.RecordMultiJobs(3)
}

func TestRecordResultCountsHitsOnly(t *testing.T) {
	collector := NewMetricsCollectorWithRegistry(prometheus.NewRegistry())

	collector.RecordResult(OpCheck, Result{})
	collector.RecordResult(OpCheck, Result{Code: intPtr(0)})
	collector.RecordResult(OpCheck, Result{Code: intPtr(3)})
	collector.RecordResult(OpCheck, Result{Code: intPtr(3)})

	if got := testutil.ToFloat64(collector.ruleHits.WithLabelValues(OpCheck, "3")); got != 2 {
		t.Errorf("Expected 2 hits, got %v", got)
	}
	if got := testutil.CollectAndCount(collector.ruleHits); got != 1 {
		t.Errorf("Expected a single label set, got %d", got)
	}
}

func TestClientRecordsRequests(t *testing.T) {
	server := httptest.NewServer(jsonHandler(`{"Err_no":0,"Str_reason":"deny","Ret_code":2,"Vcode_len":0}`))
	defer server.Close()

	collector := NewMetricsCollectorWithRegistry(prometheus.NewRegistry())
	client := newTestClient(t, server, WithMetricsCollector(collector))

	for i := 0; i < 3; i++ {
		if _, err := client.Check(context.Background(), submitParams()); err != nil {
			t.Fatalf(unexpectedErrorMsg, err)
		}
	}

	if got := testutil.ToFloat64(collector.requestsTotal.WithLabelValues(OpCheck, "200")); got != 3 {
		t.Errorf("Expected 3 requests, got %v", got)
	}
	if got := testutil.ToFloat64(collector.requestsInFlight.WithLabelValues(OpCheck)); got != 0 {
		t.Errorf("Expected no requests in flight, got %v", got)
	}
	if got := testutil.ToFloat64(collector.ruleHits.WithLabelValues(OpCheck, "2")); got != 3 {
		t.Errorf("Expected 3 rule hits, got %v", got)
	}
}

func TestClientRecordsErrors(t *testing.T) {
	server := httptest.NewServer(jsonHandler("<html>bad gateway</html>"))
	defer server.Close()

	collector := NewMetricsCollectorWithRegistry(prometheus.NewRegistry())
	client := newTestClient(t, server, WithMetricsCollector(collector))

	if _, err := client.Check(context.Background(), submitParams()); !IsTransport(err) {
		t.Fatalf(expectedTransportMsg, err)
	}

	if got := testutil.ToFloat64(collector.errorsTotal.WithLabelValues(ErrorTypeDecode, OpCheck)); got != 1 {
		t.Errorf("Expected 1 decode error, got %v", got)
	}
}

func TestClientRecordsMultiJobs(t *testing.T) {
	server := httptest.NewServer(jsonHandler(`[{"ID":"0","Result":{"Err_no":0,"Ret_code":4}},{"ID":"1","Result":{"Err_no":0,"Ret_code":0}}]`))
	defer server.Close()

	registry := prometheus.NewRegistry()
	collector := NewMetricsCollectorWithRegistry(registry)
	client := newTestClient(t, server, WithMetricsCollector(collector))

	results, err := client.MultiCheck(context.Background(), []Params{submitParams(), submitParams()})
	if err != nil {
		t.Fatalf(unexpectedErrorMsg, err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}

	if got := testutil.ToFloat64(collector.ruleHits.WithLabelValues(OpMultiCheck, "4")); got != 1 {
		t.Errorf("Expected 1 multi-check hit, got %v", got)
	}

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	for _, family := range families {
		if family.GetName() != "koala_multi_jobs" {
			continue
		}
		h := family.GetMetric()[0].GetHistogram()
		if h.GetSampleCount() != 1 || h.GetSampleSum() != 2 {
			t.Errorf("Expected one batch of 2 jobs, got count=%d sum=%v", h.GetSampleCount(), h.GetSampleSum())
		}
		return
	}
	t.Error("koala_multi_jobs not gathered")
}
