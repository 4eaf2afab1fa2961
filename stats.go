package main

import (
	"time"

	"github.com/DataDog/datadog-go/statsd"

	"github.com/stripe/locusmap/log"
	"github.com/stripe/locusmap/mapper"
)

// stats reports command results to statsd. A nil *stats discards everything,
// so commands don't need to check whether reporting is configured.
type stats struct {
	client *statsd.Client
	tags   []string
}

func newStats(config locusmapConfig, command string) *stats {
	if config.Datadog.Url == "" {
		return nil
	}

	client, err := statsd.New(config.Datadog.Url, statsd.WithNamespace("locusmap."))
	if err != nil {
		log.Printf("Error connecting to statsd, not reporting stats: %s", err)
		return nil
	}

	return &stats{
		client: client,
		tags:   []string{"locusmap_command:" + command},
	}
}

func (s *stats) count(name string, value int64) {
	if s == nil {
		return
	}

	s.client.Count(name, value, s.tags, 1)
}

func (s *stats) duration(name string, d time.Duration) {
	if s == nil {
		return
	}

	s.client.Timing(name, d, s.tags, 1)
}

func (s *stats) mapped(ms *mapper.Stats) {
	if s == nil || ms == nil {
		return
	}

	s.count("map.rows", ms.Rows)
	s.count("map.written", ms.Written)
	s.count("map.missing", ms.Missing)
	if ms.Latency.TotalCount() > 0 {
		s.client.Gauge("map.lookup_latency.p50", float64(ms.Latency.ValueAtQuantile(50)), s.tags, 1)
		s.client.Gauge("map.lookup_latency.p99", float64(ms.Latency.ValueAtQuantile(99)), s.tags, 1)
		s.client.Gauge("map.lookup_latency.max", float64(ms.Latency.Max()), s.tags, 1)
	}
}

func (s *stats) close() {
	if s == nil {
		return
	}

	s.client.Close()
}
