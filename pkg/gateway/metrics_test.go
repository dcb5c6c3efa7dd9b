package gateway

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecordProtocolActivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg))
	h := newHarness(t, func(o *Options) { o.Metrics = m })
	tr := h.open(t)

	tr.message(`{"op":0,"s":1,"t":"READY","d":{}}`)
	tr.message("garbage")
	hb := h.sup.Connection().Heartbeat()
	hb.Beat()
	hb.Beat()
	h.clock.Advance(50 * time.Millisecond)
	tr.message(`{"op":11}`)
	tr.remoteClose(CloseAuthenticationFailed, "nope")

	if got := testutil.ToFloat64(m.heartbeatsSent); got != 2 {
		t.Errorf("heartbeats_sent_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.heartbeatsMissed); got != 1 {
		t.Errorf("heartbeats_missed_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.decodeErrors); got != 1 {
		t.Errorf("decode_errors_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.dispatches.WithLabelValues("READY")); got != 1 {
		t.Errorf("dispatches_total{READY} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.framesReceived.WithLabelValues("Text")); got != 3 {
		t.Errorf("frames_received_total{Text} = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.closes.WithLabelValues("4004")); got != 1 {
		t.Errorf("closes_total{4004} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.status); got != float64(StatusDisconnected) {
		t.Errorf("status = %v, want %v", got, float64(StatusDisconnected))
	}
	if got := testutil.CollectAndCount(m.heartbeatLatency); got != 1 {
		t.Errorf("heartbeat_latency_seconds series = %d, want 1", got)
	}
}

func TestMetricsNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("bot"), WithSubsystem(""))
	m.HeartbeatSent()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "bot_heartbeats_sent_total" {
			found = true
		}
	}
	if !found {
		t.Error("bot_heartbeats_sent_total not registered")
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.HeartbeatSent()
	m.HeartbeatMissed()
	m.HeartbeatAcked(time.Second)
	m.FrameReceived(FrameText)
	m.DecodeError()
	m.Dispatched("READY")
	m.SendError()
	m.Closed(CloseNormal)
	m.SetStatus(StatusOpen)
}
