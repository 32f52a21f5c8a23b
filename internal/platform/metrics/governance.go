// Package metrics provides the Prometheus collectors of the governance core.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"lexicon/contexts/editorial-governance/governance-service/domain/entities"
	"lexicon/contexts/editorial-governance/governance-service/ports"
)

const namespace = "lexicon_governance"

// GovernanceMetrics contains all Prometheus metrics recorded by the
// governance use cases and workers.
type GovernanceMetrics struct {
	Reviews              *prometheus.CounterVec
	Outcomes             *prometheus.CounterVec
	Publications         *prometheus.CounterVec
	RevisionsPruned      *prometheus.CounterVec
	ContributionsAwarded *prometheus.CounterVec
	LifecycleTransitions *prometheus.CounterVec
	LifecycleFailures    prometheus.Counter
	OutboxPublished      prometheus.Counter
	registry             *prometheus.Registry
}

// NewGovernanceMetrics creates the collectors and registers them on registry.
func NewGovernanceMetrics(registry *prometheus.Registry) (*GovernanceMetrics, error) {
	m := &GovernanceMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register governance metrics: %w", err)
	}
	return m, nil
}

func (m *GovernanceMetrics) initMetrics() {
	m.Reviews = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reviews_total",
		Help:      "Total number of reviews recorded, by entry kind and decision",
	}, []string{"kind", "decision"})

	m.Outcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outcomes_total",
		Help:      "Total number of review outcomes applied, by entry kind and outcome",
	}, []string{"kind", "outcome"})

	m.Publications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "publications_total",
		Help:      "Total number of revisions published, by entry kind and mode",
	}, []string{"kind", "mode"})

	m.RevisionsPruned = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "revisions_pruned_total",
		Help:      "Total number of approved revisions removed by retention",
	}, []string{"kind"})

	m.ContributionsAwarded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contributions_awarded_total",
		Help:      "Total number of contribution credits awarded, by type",
	}, []string{"type"})

	m.LifecycleTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lifecycle_transitions_total",
		Help:      "Total number of lifecycle archive and delete transitions",
	}, []string{"kind", "action"})

	m.LifecycleFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lifecycle_failures_total",
		Help:      "Total number of entries the lifecycle sweeper failed to process",
	})

	m.OutboxPublished = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outbox_published_total",
		Help:      "Total number of outbox events relayed to the publisher",
	})
}

func (m *GovernanceMetrics) RecordReview(kind entities.EntryKind, decision entities.ReviewDecision) {
	m.Reviews.WithLabelValues(string(kind), string(decision)).Inc()
}

func (m *GovernanceMetrics) RecordOutcome(kind entities.EntryKind, outcome string) {
	m.Outcomes.WithLabelValues(string(kind), outcome).Inc()
}

func (m *GovernanceMetrics) RecordPublication(kind entities.EntryKind, mode string) {
	m.Publications.WithLabelValues(string(kind), mode).Inc()
}

func (m *GovernanceMetrics) RecordRevisionsPruned(kind entities.EntryKind, count int) {
	if count <= 0 {
		return
	}
	m.RevisionsPruned.WithLabelValues(string(kind)).Add(float64(count))
}

func (m *GovernanceMetrics) RecordContribution(contributionType entities.ContributionType) {
	m.ContributionsAwarded.WithLabelValues(string(contributionType)).Inc()
}

func (m *GovernanceMetrics) RecordLifecycleTransition(kind entities.EntryKind, action string) {
	m.LifecycleTransitions.WithLabelValues(string(kind), action).Inc()
}

func (m *GovernanceMetrics) RecordLifecycleFailure() {
	m.LifecycleFailures.Inc()
}

func (m *GovernanceMetrics) RecordOutboxPublished(count int) {
	if count <= 0 {
		return
	}
	m.OutboxPublished.Add(float64(count))
}

// Describe implements the prometheus.Collector interface.
func (m *GovernanceMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.Reviews.Describe(ch)
	m.Outcomes.Describe(ch)
	m.Publications.Describe(ch)
	m.RevisionsPruned.Describe(ch)
	m.ContributionsAwarded.Describe(ch)
	m.LifecycleTransitions.Describe(ch)
	ch <- m.LifecycleFailures.Desc()
	ch <- m.OutboxPublished.Desc()
}

// Collect implements the prometheus.Collector interface.
func (m *GovernanceMetrics) Collect(ch chan<- prometheus.Metric) {
	m.Reviews.Collect(ch)
	m.Outcomes.Collect(ch)
	m.Publications.Collect(ch)
	m.RevisionsPruned.Collect(ch)
	m.ContributionsAwarded.Collect(ch)
	m.LifecycleTransitions.Collect(ch)
	ch <- m.LifecycleFailures
	ch <- m.OutboxPublished
}

var _ ports.Metrics = (*GovernanceMetrics)(nil)
var _ prometheus.Collector = (*GovernanceMetrics)(nil)
