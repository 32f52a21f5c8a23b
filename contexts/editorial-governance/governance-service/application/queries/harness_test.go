package queries_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	governanceservice "lexicon/contexts/editorial-governance/governance-service"
	"lexicon/contexts/editorial-governance/governance-service/adapters/memory"
	"lexicon/contexts/editorial-governance/governance-service/application/commands"
	"lexicon/contexts/editorial-governance/governance-service/domain/entities"
)

type harness struct {
	t      *testing.T
	ctx    context.Context
	module governanceservice.Module
	clock  *memory.Clock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clock := memory.NewClock(time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC))
	module := governanceservice.NewInMemoryModule(clock, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	for _, id := range []string{"rev-1", "rev-2", "rev-3"} {
		module.Directory.SetRoles(id, true, false)
	}
	module.Directory.SetRoles("admin-1", false, true)
	return &harness{t: t, ctx: context.Background(), module: module, clock: clock}
}

func (h *harness) submit(kind entities.EntryKind, contributor string, baseEntryID string, data map[string]any) entities.Revision {
	h.t.Helper()
	h.clock.Advance(time.Minute)
	draft, err := h.module.Drafts.CreateDraft(h.ctx, commands.CreateDraftCommand{
		Kind:          kind,
		ContributorID: contributor,
		BaseEntryID:   baseEntryID,
		ProposedData:  data,
	})
	require.NoError(h.t, err)
	pending, err := h.module.Drafts.SubmitDraftForReview(h.ctx, commands.SubmitDraftCommand{RevisionID: draft.RevisionID, ActorID: contributor})
	require.NoError(h.t, err)
	return pending
}

func (h *harness) vote(revisionID string, reviewerID string, decision entities.ReviewDecision, notes string) commands.SubmitReviewResult {
	h.t.Helper()
	h.clock.Advance(time.Minute)
	result, err := h.module.Reviews.SubmitReview(h.ctx, commands.SubmitReviewCommand{
		RevisionID: revisionID,
		ReviewerID: reviewerID,
		Decision:   decision,
		Notes:      notes,
	})
	require.NoError(h.t, err)
	return result
}

func (h *harness) publish(kind entities.EntryKind, contributor string, baseEntryID string, data map[string]any) commands.SubmitReviewResult {
	h.t.Helper()
	revision := h.submit(kind, contributor, baseEntryID, data)
	h.vote(revision.RevisionID, "rev-1", entities.ReviewDecisionApprove, "")
	result := h.vote(revision.RevisionID, "rev-2", entities.ReviewDecisionApprove, "")
	require.Equal(h.t, commands.ReviewOutcomePublished, result.Outcome)
	return result
}
