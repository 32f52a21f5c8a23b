package metrics

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexicon/contexts/editorial-governance/governance-service/domain/entities"
)

func TestGovernanceMetricsRecord(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewGovernanceMetrics(registry)
	require.NoError(t, err)

	m.RecordReview(entities.EntryKindDictionary, entities.ReviewDecisionApprove)
	m.RecordReview(entities.EntryKindDictionary, entities.ReviewDecisionApprove)
	m.RecordOutcome(entities.EntryKindFolklore, "rejected")
	m.RecordRevisionsPruned(entities.EntryKindDictionary, 3)
	m.RecordRevisionsPruned(entities.EntryKindDictionary, 0)
	m.RecordContribution(entities.ContributionTypeRevision)
	m.RecordLifecycleFailure()
	m.RecordOutboxPublished(4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Reviews.WithLabelValues("dictionary", "approve")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Outcomes.WithLabelValues("folklore", "rejected")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RevisionsPruned.WithLabelValues("dictionary")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ContributionsAwarded.WithLabelValues("revision")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LifecycleFailures))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.OutboxPublished))
}

func TestGovernanceMetricsRegisterOnce(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := NewGovernanceMetrics(registry)
	require.NoError(t, err)

	_, err = NewGovernanceMetrics(registry)
	assert.Error(t, err)
}

func TestNewMuxServesRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewGovernanceMetrics(registry)
	require.NoError(t, err)
	m.RecordPublication(entities.EntryKindDictionary, "created")

	server := httptest.NewServer(NewMux(registry, slog.New(slog.NewTextHandler(io.Discard, nil))))
	defer server.Close()

	resp, err := http.Get(server.URL + MetricsPath)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `lexicon_governance_publications_total{kind="dictionary",mode="created"} 1`)
}
