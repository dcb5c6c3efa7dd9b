package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vango-dev/hallocord/pkg/gateway"
)

type fakeView struct {
	status  gateway.Status
	latency []time.Duration
}

func (v fakeView) Status() gateway.Status   { return v.status }
func (v fakeView) Latency() []time.Duration { return v.latency }

func TestRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := gateway.NewMetrics(gateway.WithRegistry(reg))
	m.HeartbeatSent()

	view := fakeView{status: gateway.StatusOpen, latency: []time.Duration{95 * time.Millisecond, 80 * time.Millisecond}}
	srv := httptest.NewServer(newRouter(view, reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/healthz = %d, want 200", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/debug/latency")
	if err != nil {
		t.Fatal(err)
	}
	var body struct {
		LatencyMS []float64 `json:"latency_ms"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if len(body.LatencyMS) != 2 || body.LatencyMS[0] != 95 || body.LatencyMS[1] != 80 {
		t.Errorf("/debug/latency = %v, want [95 80]", body.LatencyMS)
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	resp.Body.Close()
	if !strings.Contains(buf.String(), "hallocord_gateway_heartbeats_sent_total 1") {
		t.Errorf("/metrics missing heartbeat counter:\n%s", buf.String())
	}
}

func TestRouterUnhealthy(t *testing.T) {
	srv := httptest.NewServer(newRouter(fakeView{status: gateway.StatusDisconnected}, prometheus.NewRegistry()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("/healthz = %d, want 503", resp.StatusCode)
	}
}
