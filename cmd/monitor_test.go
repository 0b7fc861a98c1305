package cmd

import (
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestLinkSmootherObserve(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	metrics := newMonitorMetrics(prometheus.NewRegistry())
	s := newLinkSmoother(start, []linkStat{
		{Index: 1, Name: "lo"},
		{Index: 2, Name: "eth0"},
	}, metrics)

	// baseline only
	s.observe(start, []linkStat{{Index: 2, Name: "eth0", Bytes: 0}})
	require.Zero(t, s.emas[2].Count())

	// 125000 bytes in one second is 1 Mbit/s
	s.observe(start.Add(time.Second), []linkStat{{Index: 2, Name: "eth0", Bytes: 125_000}})
	require.Equal(t, uint64(1), s.emas[2].Count())
	require.InDelta(t, 1e6, s.emas[2].Value(), 1e-6)
	require.InDelta(t, 1.0, testutil.ToFloat64(metrics.throughput.WithLabelValues("eth0")), 1e-9)

	// 2 Mbit/s one second later: weight exp(-1/2)
	s.observe(start.Add(2*time.Second), []linkStat{{Index: 2, Name: "eth0", Bytes: 375_000}})
	w := math.Exp(-0.5)
	expected := w*2e6 + (1-w)*1e6
	require.InDelta(t, expected, s.emas[2].Value(), 1e-6)
	require.InDelta(t, expected/1e6, testutil.ToFloat64(metrics.throughput.WithLabelValues("eth0")), 1e-9)

	require.Zero(t, s.emas[1].Count())
}

func TestLinkSmootherStaleSample(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	metrics := newMonitorMetrics(prometheus.NewRegistry())
	s := newLinkSmoother(start, []linkStat{{Index: 2, Name: "eth0"}}, metrics)

	s.observe(start.Add(2*time.Second), []linkStat{{Index: 2, Name: "eth0", Bytes: 100}})
	s.observe(start.Add(time.Second), []linkStat{{Index: 2, Name: "eth0", Bytes: 200}})
	s.observe(start.Add(2*time.Second), []linkStat{{Index: 2, Name: "eth0", Bytes: 300}})

	require.Equal(t, 2.0, testutil.ToFloat64(metrics.staleSamples))
	require.Zero(t, s.emas[2].Count())
	require.Equal(t, uint64(100), s.last[2].bytes)
}

func TestLinkSmootherCounterReset(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	metrics := newMonitorMetrics(prometheus.NewRegistry())
	s := newLinkSmoother(start, []linkStat{{Index: 3, Name: "wlan0"}}, metrics)

	s.observe(start, []linkStat{{Index: 3, Name: "wlan0", Bytes: 10_000}})
	s.observe(start.Add(time.Second), []linkStat{{Index: 3, Name: "wlan0", Bytes: 50}})
	require.Zero(t, s.emas[3].Count())
	require.Equal(t, uint64(50), s.last[3].bytes)

	s.observe(start.Add(2*time.Second), []linkStat{{Index: 3, Name: "wlan0", Bytes: 175}})
	require.Equal(t, uint64(1), s.emas[3].Count())
	require.InDelta(t, 1000.0, s.emas[3].Value(), 1e-9)
}

func TestLinkSmootherIgnoresNewLinks(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	s := newLinkSmoother(start, nil, newMonitorMetrics(prometheus.NewRegistry()))

	s.observe(start, []linkStat{{Index: 9, Name: "veth9", Bytes: 1}})
	s.observe(start.Add(time.Second), []linkStat{{Index: 9, Name: "veth9", Bytes: 2}})
	require.Empty(t, s.emas)
	require.Empty(t, s.last)
}
