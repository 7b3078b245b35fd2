package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics covers a single batch run. A run is short-lived, so metrics are
// written to a node-exporter textfile at the end instead of being scraped.
type Metrics struct {
	candidatesTotal  prometheus.Counter
	malformedTotal   prometheus.Counter
	decisionsTotal   *prometheus.CounterVec
	ruleMatchesTotal *prometheus.CounterVec
	actionsTotal     *prometheus.CounterVec
	trustListSize    prometheus.Gauge
	runDuration      prometheus.Gauge
	lastRun          prometheus.Gauge

	gatherer prometheus.Gatherer
}

func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		candidatesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "patroller_candidates_total", Help: "Unreviewed redirects fetched"},
		),
		malformedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "patroller_malformed_records_total", Help: "Candidates skipped for missing fields"},
		),
		decisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "patroller_decisions_total", Help: "Classification decisions"},
			[]string{"patrol"},
		),
		ruleMatchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "patroller_rule_matches_total", Help: "Decisions by matching rule"},
			[]string{"rule"},
		),
		actionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "patroller_actions_total", Help: "Review actions by result"},
			[]string{"result", "code"},
		),
		trustListSize: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "patroller_trust_list_size", Help: "Creators on the trust list"},
		),
		runDuration: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "patroller_run_duration_seconds", Help: "Duration of the last run"},
		),
		lastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "patroller_last_run_timestamp_seconds", Help: "Unix time the last run finished"},
		),
	}

	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	reg.MustRegister(
		m.candidatesTotal,
		m.malformedTotal,
		m.decisionsTotal,
		m.ruleMatchesTotal,
		m.actionsTotal,
		m.trustListSize,
		m.runDuration,
		m.lastRun,
	)
	m.gatherer = reg

	return m
}

func (m *Metrics) ObserveCandidates(fetched, malformed int) {
	if m == nil {
		return
	}
	m.candidatesTotal.Add(float64(fetched))
	m.malformedTotal.Add(float64(malformed))
}

func (m *Metrics) ObserveTrustList(size int) {
	if m == nil {
		return
	}
	m.trustListSize.Set(float64(size))
}

// ObserveDecision counts one decision. rule is empty when nothing matched.
func (m *Metrics) ObserveDecision(patrol, trusted bool, rule string) {
	if m == nil {
		return
	}
	m.decisionsTotal.WithLabelValues(boolLabel(patrol)).Inc()
	switch {
	case trusted:
		m.ruleMatchesTotal.WithLabelValues("trusted").Inc()
	case rule != "":
		m.ruleMatchesTotal.WithLabelValues(rule).Inc()
	}
}

func (m *Metrics) ObserveAction(result, code string) {
	if m == nil {
		return
	}
	if code == "" {
		code = "none"
	}
	m.actionsTotal.WithLabelValues(result, code).Inc()
}

func (m *Metrics) ObserveRun(duration time.Duration, finished time.Time) {
	if m == nil {
		return
	}
	m.runDuration.Set(duration.Seconds())
	m.lastRun.Set(float64(finished.Unix()))
}

// WriteTextfile writes all registered metrics in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.gatherer)
}

func boolLabel(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
