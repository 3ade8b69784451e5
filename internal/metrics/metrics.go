package metrics

import (
	"sort"
	"sync"
	"time"
)

const maxDurations = 1000

type Metrics struct {
	mutex       sync.RWMutex
	started     map[string]int64
	successes   int64
	failures    int64
	discarded   int64
	durations   []time.Duration
	lastSuccess time.Time
	services    map[string]*serviceCounters
	startTime   time.Time
}

type serviceCounters struct {
	checks      int64
	online      int64
	transitions int64
	accessible  bool
}

type Snapshot struct {
	Uptime      time.Duration             `json:"uptime"`
	Refreshes   map[string]int64          `json:"refreshes"`
	Successes   int64                     `json:"successes"`
	Failures    int64                     `json:"failures"`
	Discarded   int64                     `json:"discarded"`
	AvgDuration time.Duration             `json:"avg_duration"`
	P50Duration time.Duration             `json:"p50_duration"`
	P95Duration time.Duration             `json:"p95_duration"`
	P99Duration time.Duration             `json:"p99_duration"`
	LastSuccess time.Time                 `json:"last_success"`
	Services    map[string]ServiceMetrics `json:"services"`
}

type ServiceMetrics struct {
	Accessible   bool    `json:"accessible"`
	Checks       int64   `json:"checks"`
	Online       int64   `json:"online"`
	Transitions  int64   `json:"transitions"`
	Availability float64 `json:"availability"`
}

func (m *Metrics) RecordStart(trigger string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.started[trigger]++
}

func (m *Metrics) RecordSuccess(duration time.Duration, at time.Time) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.successes++
	m.lastSuccess = at
	m.recordDuration(duration)
}

func (m *Metrics) RecordFailure(duration time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.failures++
	m.recordDuration(duration)
}

func (m *Metrics) RecordDiscarded() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.discarded++
}

func (m *Metrics) recordDuration(d time.Duration) {
	m.durations = append(m.durations, d)
	if len(m.durations) > maxDurations {
		m.durations = m.durations[1:]
	}
}

// RecordServiceStatus counts one observation of a service. A transition is
// a change from the previously observed value.
func (m *Metrics) RecordServiceStatus(service string, accessible bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	sc, ok := m.services[service]
	if !ok {
		sc = &serviceCounters{accessible: accessible}
		m.services[service] = sc
	} else if sc.accessible != accessible {
		sc.transitions++
		sc.accessible = accessible
	}

	sc.checks++
	if accessible {
		sc.online++
	}
}

func (m *Metrics) Snapshot() Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		Uptime:      time.Since(m.startTime),
		Refreshes:   make(map[string]int64, len(m.started)),
		Successes:   m.successes,
		Failures:    m.failures,
		Discarded:   m.discarded,
		LastSuccess: m.lastSuccess,
		Services:    make(map[string]ServiceMetrics, len(m.services)),
	}

	for trigger, n := range m.started {
		snap.Refreshes[trigger] = n
	}

	if len(m.durations) > 0 {
		sorted := make([]time.Duration, len(m.durations))
		copy(sorted, m.durations)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i] < sorted[j]
		})

		snap.AvgDuration = average(sorted)
		snap.P50Duration = percentile(sorted, 0.50)
		snap.P95Duration = percentile(sorted, 0.95)
		snap.P99Duration = percentile(sorted, 0.99)
	}

	for name, sc := range m.services {
		snap.Services[name] = ServiceMetrics{
			Accessible:   sc.accessible,
			Checks:       sc.checks,
			Online:       sc.online,
			Transitions:  sc.transitions,
			Availability: float64(sc.online) / float64(sc.checks),
		}
	}

	return snap
}

func NewMetrics() *Metrics {
	return &Metrics{
		started:   make(map[string]int64),
		services:  make(map[string]*serviceCounters),
		startTime: time.Now(),
	}
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return sum / time.Duration(len(durations))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
