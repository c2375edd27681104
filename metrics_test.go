package restclient

import (
	"context"
	"math"
	"net/http"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
)

func TestRecorderObserveSend(t *testing.T) {
	rec := NewRecorder(nil)
	rec.ObserveSend(http.MethodGet, 200, 250*time.Millisecond)
	rec.ObserveSend(http.MethodGet, 0, time.Millisecond)

	families := gather(t, rec, "restclient_request_sent_total", "restclient_request_duration_seconds")

	counter := findMetric(t, families["restclient_request_sent_total"], map[string]string{
		"method":      "GET",
		"status_code": "200",
	})
	if got := counter.GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected counter value 1, got %v", got)
	}
	findMetric(t, families["restclient_request_sent_total"], map[string]string{
		"method":      "GET",
		"status_code": "none",
	})

	hist := findMetric(t, families["restclient_request_duration_seconds"], map[string]string{"method": "GET"}).GetHistogram()
	if hist == nil {
		t.Fatalf("expected histogram metric for request latency")
	}
	if hist.GetSampleCount() != 2 {
		t.Fatalf("expected histogram count 2, got %d", hist.GetSampleCount())
	}
	if diff := math.Abs(hist.GetSampleSum() - 0.251); diff > 0.001 {
		t.Fatalf("expected histogram sum near 0.251, got %v", hist.GetSampleSum())
	}
}

func TestRecorderDecodeOutcomes(t *testing.T) {
	rec := NewRecorder(nil)

	send := func(status int, body string) *Request {
		r := New(http.MethodGet, "http://api.test/items", WithTransport(respond(status, body)), WithRecorder(rec))
		if err := r.Send(context.Background()).Wait(context.Background()); err != nil {
			t.Fatalf("wait: %v", err)
		}
		return r
	}

	DecodeObject[map[string]any](send(200, `{"a":1}`), nil)
	DecodeObject[map[string]any](send(200, `{"a":`), nil)
	DecodeXML[struct{}](send(403, `<denied/>`), nil)
	send(500, "").DecodeBytes(nil)

	families := gather(t, rec, "restclient_decode_total", "restclient_request_sent_total")

	for _, labels := range []map[string]string{
		{"operation": "object", "outcome": "success"},
		{"operation": "object", "outcome": "decode"},
		{"operation": "xml", "outcome": "auth"},
		{"operation": "bytes", "outcome": "status"},
	} {
		if got := findMetric(t, families["restclient_decode_total"], labels).GetCounter().GetValue(); got != 1 {
			t.Fatalf("expected decode counter %v to be 1, got %v", labels, got)
		}
	}

	sent := findMetric(t, families["restclient_request_sent_total"], map[string]string{"method": "GET", "status_code": "200"})
	if got := sent.GetCounter().GetValue(); got != 2 {
		t.Fatalf("expected two 200 responses, got %v", got)
	}
}

func TestRecorderNil(t *testing.T) {
	var rec *Recorder
	rec.ObserveSend(http.MethodGet, 200, time.Second)
	rec.ObserveDecode("object", "success")
	families, err := rec.Gatherer().Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if len(families) != 0 {
		t.Fatalf("expected no metrics from a nil recorder, got %d families", len(families))
	}
}

func gather(t *testing.T, rec *Recorder, names ...string) map[string][]*dto.Metric {
	t.Helper()
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}
	families, err := rec.Gatherer().Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	collected := make(map[string][]*dto.Metric, len(names))
	for _, mf := range families {
		if !wanted[mf.GetName()] {
			continue
		}
		collected[mf.GetName()] = append(collected[mf.GetName()], mf.GetMetric()...)
	}
	for _, name := range names {
		if len(collected[name]) == 0 {
			t.Fatalf("metric %q not collected", name)
		}
	}
	return collected
}

func findMetric(t *testing.T, metrics []*dto.Metric, labels map[string]string) *dto.Metric {
	t.Helper()
	for _, metric := range metrics {
		if matchLabels(metric, labels) {
			return metric
		}
	}
	t.Fatalf("metric with labels %v not found", labels)
	return nil
}

func matchLabels(metric *dto.Metric, labels map[string]string) bool {
	for key, expected := range labels {
		found := false
		for _, label := range metric.GetLabel() {
			if label.GetName() == key && label.GetValue() == expected {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
