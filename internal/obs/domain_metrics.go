package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// ContributionsTotal counts recorded contributions by kind and outcome.
	ContributionsTotal *prometheus.CounterVec
	// ContributionAmount observes recorded contribution totals in minor units.
	ContributionAmount *prometheus.HistogramVec
	// GoalReachedTotal counts goal threshold transitions fired by campaigns.
	GoalReachedTotal *prometheus.CounterVec
	// NotifyEnqueueTotal counts notification task enqueue outcomes.
	NotifyEnqueueTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific
// Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		ContributionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contributions_total",
			Help:      "Count of contribution recording outcomes by kind.",
		}, []string{"kind", "result"})
		ContributionAmount = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "contribution_amount_minor_units",
			Help:      "Distribution of recorded contribution totals in minor units.",
			Buckets:   []float64{500, 1000, 2500, 5000, 10000, 25000, 50000, 100000, 500000},
		}, []string{"kind"})
		GoalReachedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "goal_threshold_transitions_total",
			Help:      "Count of goal and half-goal threshold crossings.",
		}, []string{"threshold"})
		NotifyEnqueueTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notify_enqueue_total",
			Help:      "Count of notification task enqueue outcomes.",
		}, []string{"result"})

		mustRegisterCollector(reg, ContributionsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				ContributionsTotal = v
			}
		})
		mustRegisterCollector(reg, ContributionAmount, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.HistogramVec); ok {
				ContributionAmount = v
			}
		})
		mustRegisterCollector(reg, GoalReachedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				GoalReachedTotal = v
			}
		})
		mustRegisterCollector(reg, NotifyEnqueueTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				NotifyEnqueueTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
