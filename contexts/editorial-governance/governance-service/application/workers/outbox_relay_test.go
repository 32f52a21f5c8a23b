package workers_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexicon/contexts/editorial-governance/governance-service/application/commands"
	"lexicon/contexts/editorial-governance/governance-service/domain/entities"
	"lexicon/contexts/editorial-governance/governance-service/ports"
)

type recordingPublisher struct {
	mu        sync.Mutex
	topics    []string
	failAfter int
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failAfter >= 0 && len(p.topics) >= p.failAfter {
		return errors.New("broker unavailable")
	}
	p.topics = append(p.topics, topic)
	return nil
}

func pending(t *testing.T, e *env) int {
	t.Helper()
	rows, err := e.module.Store.ListPendingOutbox(e.ctx, 1000)
	require.NoError(t, err)
	return len(rows)
}

func submitNewTerm(t *testing.T, e *env, term string) {
	t.Helper()
	draft, err := e.module.Drafts.CreateDraft(e.ctx, commands.CreateDraftCommand{
		Kind:          entities.EntryKindDictionary,
		ContributorID: "author",
		ProposedData:  map[string]any{"term": term},
	})
	require.NoError(t, err)
	_, err = e.module.Drafts.SubmitDraftForReview(e.ctx, commands.SubmitDraftCommand{RevisionID: draft.RevisionID, ActorID: "author"})
	require.NoError(t, err)
	e.review(draft.RevisionID, "rev-1", entities.ReviewDecisionApprove, "")
	e.review(draft.RevisionID, "rev-2", entities.ReviewDecisionApprove, "")
}

func TestRelayPublishesPendingRowsInOrder(t *testing.T) {
	publisher := &recordingPublisher{failAfter: -1}
	e := newEnv(t, publisher)
	submitNewTerm(t, e, "vahay")

	total := pending(t, e)
	require.Positive(t, total)

	published, err := e.module.Relay.RunOnce(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, total, published)
	assert.Zero(t, pending(t, e))
	assert.Equal(t, []string{
		commands.EventReviewRecorded,
		commands.EventReviewRecorded,
		commands.EventEntryPublished,
		commands.EventContributionAwarded,
	}, publisher.topics)

	again, err := e.module.Relay.RunOnce(e.ctx)
	require.NoError(t, err)
	assert.Zero(t, again)
}

func TestRelayStopsAtFirstFailure(t *testing.T) {
	publisher := &recordingPublisher{failAfter: 1}
	e := newEnv(t, publisher)
	submitNewTerm(t, e, "rayon")
	total := pending(t, e)

	published, err := e.module.Relay.RunOnce(e.ctx)
	require.Error(t, err)
	assert.Equal(t, 1, published)
	assert.Equal(t, total-1, pending(t, e))

	publisher.failAfter = -1
	published, err = e.module.Relay.RunOnce(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, total-1, published)
}

func TestRelayBatchSizeAndDisable(t *testing.T) {
	publisher := &recordingPublisher{failAfter: -1}
	e := newEnv(t, publisher)
	submitNewTerm(t, e, "among")

	relay := e.module.Relay
	relay.BatchSize = 2
	published, err := relay.RunOnce(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, published)

	relay.Disabled = true
	published, err = relay.RunOnce(e.ctx)
	require.NoError(t, err)
	assert.Zero(t, published)
	assert.Equal(t, 2, pending(t, e))
}
