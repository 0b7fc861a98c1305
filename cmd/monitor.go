package cmd

import (
	"context"
	"maps"
	"os"
	"os/signal"
	"slices"
	"sync"
	"time"

	"emwa/ema"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/vishvananda/netlink"
)

type linkStat struct {
	Index int
	Name  string
	Bytes uint64 // tx + rx
}

type linkSample struct {
	bytes uint64
	at    time.Time
}

// linkSmoother turns successive byte counters into per-link time-weighted
// throughput averages. The set of links is fixed at construction; the
// averages may be read from another goroutine while observe runs.
type linkSmoother struct {
	start   time.Time
	names   map[int]string
	emas    map[int]*ema.Locked
	last    map[int]linkSample
	metrics *monitorMetrics
}

func newLinkSmoother(start time.Time, links []linkStat, metrics *monitorMetrics) *linkSmoother {
	s := &linkSmoother{
		start:   start,
		names:   make(map[int]string, len(links)),
		emas:    make(map[int]*ema.Locked, len(links)),
		last:    make(map[int]linkSample, len(links)),
		metrics: metrics,
	}
	for _, link := range links {
		s.names[link.Index] = link.Name
		s.emas[link.Index] = ema.NewLocked(ema.New(0, ema.TimeWeighted))
	}
	return s
}

// observe must not be called concurrently with itself.
func (s *linkSmoother) observe(now time.Time, stats []linkStat) {
	timestamp := now.Sub(s.start).Seconds()
	for _, stat := range stats {
		acc, ok := s.emas[stat.Index]
		if !ok {
			log.Debug("Ignoring link added after start", "link", stat.Name, "index", stat.Index)
			continue
		}

		prev, ok := s.last[stat.Index]
		if ok && !now.After(prev.at) {
			s.metrics.staleSamples.Inc()
			log.Warn("Dropping stale sample", "link", stat.Name, "at", now, "last", prev.at)
			continue
		}
		s.last[stat.Index] = linkSample{bytes: stat.Bytes, at: now}
		if !ok {
			continue
		}
		if stat.Bytes < prev.bytes {
			log.Debug("Counter reset, rebaselining", "link", stat.Name)
			continue
		}

		bitsPerSec := float64(stat.Bytes-prev.bytes) * 8 / now.Sub(prev.at).Seconds()
		value, err := acc.UpdateAt(bitsPerSec, timestamp)
		if err != nil {
			log.Error("Failed to update average", "link", stat.Name, "err", err)
			continue
		}
		s.metrics.throughput.WithLabelValues(stat.Name).Set(value / 1e6)
	}
}

func (s *linkSmoother) logRates() {
	for _, idx := range slices.Sorted(maps.Keys(s.emas)) {
		acc := s.emas[idx]
		if acc.Count() == 0 {
			continue
		}
		log.Info("Throughput", "link", s.names[idx], "avg", humanizeBitRate(acc.Value()))
	}
}

func listLinkStats() ([]linkStat, error) {
	links, err := netlink.LinkList()
	if err != nil {
		return nil, errors.Wrap(err, "Failed to list links")
	}
	stats := make([]linkStat, 0, len(links))
	for _, link := range links {
		attrs := link.Attrs()
		if attrs.Statistics == nil {
			continue
		}
		stats = append(stats, linkStat{
			Index: attrs.Index,
			Name:  attrs.Name,
			Bytes: attrs.Statistics.TxBytes + attrs.Statistics.RxBytes,
		})
	}
	return stats, nil
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Smooth per-interface throughput sampled over netlink",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := newViper(cmd.Flags())
		if err != nil {
			return err
		}
		interval := v.GetDuration("interval")
		if interval <= 0 {
			return errors.Newf("interval must be positive, got %s", interval)
		}
		return runMonitor(interval, v.GetString("metrics-addr"))
	},
}

func runMonitor(interval time.Duration, metricsAddr string) error {
	links, err := listLinkStats()
	if err != nil {
		return err
	}
	log.Info("Monitoring links", "count", len(links), "interval", interval)

	metrics := newMonitorMetrics(prometheus.NewRegistry())
	if metricsAddr != "" {
		ms := metrics.serve(context.Background(), metricsAddr)
		defer ms.shutdown()
	}

	smoother := newLinkSmoother(time.Now(), links, metrics)
	smoother.observe(time.Now(), links)

	wg := &sync.WaitGroup{}
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		statTimer := time.NewTicker(interval)
		defer statTimer.Stop()
		for {
			select {
			case <-statTimer.C:
				stats, err := listLinkStats()
				if err != nil {
					log.Error("Sampling links", "err", err)
					continue
				}
				smoother.observe(time.Now(), stats)
			case <-stop:
				return
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		logTimer := time.NewTicker(1 * time.Second)
		defer logTimer.Stop()
		for {
			select {
			case <-logTimer.C:
				smoother.logRates()
			case <-stop:
				return
			}
		}
	}()

	interrupt := make(chan os.Signal, 5)
	signal.Notify(interrupt, os.Interrupt)

	// Wait for the program to be interrupted.
	<-interrupt
	close(stop)
	log.Info("Stopping monitor")

	wg.Wait()
	return nil
}

func init() {
	monitorCmd.Flags().DurationP("interval", "i", time.Second, "Sampling interval")
	monitorCmd.Flags().String("metrics-addr", "", "Address to serve Prometheus metrics on (empty disables)")
}
