package commands_test

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
	"lexicon/contexts/editorial-governance/governance-service/ports"
)

const (
	reviewerA = "reviewer-a"
	reviewerB = "reviewer-b"
	reviewerC = "reviewer-c"
	adminA    = "admin-a"
	author    = "author-1"
	editor    = "editor-1"
	outsider  = "outsider"
)

type fixture struct {
	t      *testing.T
	ctx    context.Context
	module governanceservice.Module
	clock  *memory.Clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := memory.NewClock(time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	module := governanceservice.NewInMemoryModule(clock, nil, logger)
	module.Directory.SetRoles(reviewerA, true, false)
	module.Directory.SetRoles(reviewerB, true, false)
	module.Directory.SetRoles(reviewerC, true, false)
	module.Directory.SetRoles(adminA, false, true)
	return &fixture{t: t, ctx: context.Background(), module: module, clock: clock}
}

func (f *fixture) tick() {
	f.clock.Advance(time.Minute)
}

// submitted creates a draft and moves it to pending.
func (f *fixture) submitted(kind entities.EntryKind, contributor string, baseEntryID string, targetGroupID string, data map[string]any) entities.Revision {
	f.t.Helper()
	f.tick()
	draft, err := f.module.Drafts.CreateDraft(f.ctx, commands.CreateDraftCommand{
		Kind:          kind,
		ContributorID: contributor,
		BaseEntryID:   baseEntryID,
		ProposedData:  data,
		TargetGroupID: targetGroupID,
	})
	require.NoError(f.t, err)
	pending, err := f.module.Drafts.SubmitDraftForReview(f.ctx, commands.SubmitDraftCommand{
		RevisionID: draft.RevisionID,
		ActorID:    contributor,
	})
	require.NoError(f.t, err)
	require.Equal(f.t, entities.RevisionStatusPending, pending.Status)
	return pending
}

func (f *fixture) review(revisionID string, reviewerID string, decision entities.ReviewDecision, notes string) commands.SubmitReviewResult {
	f.t.Helper()
	f.tick()
	result, err := f.module.Reviews.SubmitReview(f.ctx, commands.SubmitReviewCommand{
		RevisionID: revisionID,
		ReviewerID: reviewerID,
		Decision:   decision,
		Notes:      notes,
	})
	require.NoError(f.t, err)
	return result
}

func (f *fixture) tryReview(revisionID string, reviewerID string, decision entities.ReviewDecision, notes string) error {
	f.tick()
	_, err := f.module.Reviews.SubmitReview(f.ctx, commands.SubmitReviewCommand{
		RevisionID: revisionID,
		ReviewerID: reviewerID,
		Decision:   decision,
		Notes:      notes,
	})
	return err
}

// approve runs the two reviewer approvals that publish a pending revision.
func (f *fixture) approve(revision entities.Revision) commands.SubmitReviewResult {
	f.t.Helper()
	first := f.review(revision.RevisionID, reviewerA, entities.ReviewDecisionApprove, "")
	require.Equal(f.t, commands.ReviewOutcomeAwaitingQuorum, first.Outcome)
	second := f.review(revision.RevisionID, reviewerB, entities.ReviewDecisionApprove, "")
	require.Equal(f.t, commands.ReviewOutcomePublished, second.Outcome)
	require.NotNil(f.t, second.Entry)
	return second
}

func (f *fixture) publishTerm(contributor string, term string, variantType string, targetGroupID string) commands.SubmitReviewResult {
	f.t.Helper()
	revision := f.submitted(entities.EntryKindDictionary, contributor, "", targetGroupID, map[string]any{
		"term":         term,
		"meaning":      "meaning of " + term,
		"variant_type": variantType,
	})
	return f.approve(revision)
}

func (f *fixture) edit(entryID string, contributor string, data map[string]any) commands.SubmitReviewResult {
	f.t.Helper()
	entry := f.entry(entryID)
	revision := f.submitted(entry.Kind, contributor, entryID, "", data)
	return f.approve(revision)
}

func (f *fixture) entry(entryID string) entities.Entry {
	f.t.Helper()
	entry, err := f.module.Store.GetEntry(f.ctx, entryID)
	require.NoError(f.t, err)
	return entry
}

func (f *fixture) revision(revisionID string) entities.Revision {
	f.t.Helper()
	revision, err := f.module.Store.GetRevision(f.ctx, revisionID)
	require.NoError(f.t, err)
	return revision
}

func (f *fixture) group(groupID string) entities.VariantGroup {
	f.t.Helper()
	group, err := f.module.Store.GetVariantGroup(f.ctx, groupID)
	require.NoError(f.t, err)
	return group
}

func (f *fixture) contributions(userID string) []entities.ContributionEvent {
	f.t.Helper()
	events, err := f.module.Store.ListContributions(f.ctx, ports.ContributionFilter{UserID: userID})
	require.NoError(f.t, err)
	return events
}

// flag puts a published entry under re-review through its latest approved
// revision.
func (f *fixture) flag(revisionID string, reviewerID string) commands.SubmitReviewResult {
	f.t.Helper()
	result := f.review(revisionID, reviewerID, entities.ReviewDecisionFlag, "needs a source")
	require.Equal(f.t, commands.ReviewOutcomeFlagged, result.Outcome)
	return result
}

func (f *fixture) eventTypes() []string {
	messages := f.module.Store.OutboxMessages()
	types := make([]string, 0, len(messages))
	for _, message := range messages {
		types = append(types, message.EventType)
	}
	return types
}
