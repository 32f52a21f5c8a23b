package queries_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexicon/contexts/editorial-governance/governance-service/application/queries"
	"lexicon/contexts/editorial-governance/governance-service/domain/entities"
	domainerrors "lexicon/contexts/editorial-governance/governance-service/domain/errors"
)

func revisionIDs(items []queries.DashboardItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.Revision.RevisionID)
	}
	return ids
}

func TestDashboardTracksPendingVotes(t *testing.T) {
	h := newHarness(t)
	pending := h.submit(entities.EntryKindDictionary, "author", "", map[string]any{"term": "rayon"})
	own := h.submit(entities.EntryKindDictionary, "rev-1", "", map[string]any{"term": "among"})

	before, err := h.module.Dashboard.ReviewerDashboard(h.ctx, entities.EntryKindDictionary, "rev-1")
	require.NoError(t, err)
	assert.Equal(t, []string{pending.RevisionID}, revisionIDs(before.Pending))
	assert.NotContains(t, revisionIDs(before.Pending), own.RevisionID)

	h.vote(pending.RevisionID, "rev-1", entities.ReviewDecisionApprove, "")

	after, err := h.module.Dashboard.ReviewerDashboard(h.ctx, entities.EntryKindDictionary, "rev-1")
	require.NoError(t, err)
	assert.Empty(t, after.Pending)
	assert.Equal(t, []string{pending.RevisionID}, revisionIDs(after.AwaitingQuorum))
	require.Len(t, after.MyReviews, 1)
	assert.Equal(t, string(entities.RevisionStatusPending), after.MyReviews[0].FinalOutcome)

	admin, err := h.module.Dashboard.ReviewerDashboard(h.ctx, entities.EntryKindDictionary, "admin-1")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)
	assert.ElementsMatch(t, []string{pending.RevisionID, own.RevisionID}, revisionIDs(admin.Pending))

	folklore, err := h.module.Dashboard.ReviewerDashboard(h.ctx, entities.EntryKindFolklore, "rev-1")
	require.NoError(t, err)
	assert.Empty(t, folklore.Pending)
}

func TestDashboardListsFlaggedEntriesForRereview(t *testing.T) {
	h := newHarness(t)
	published := h.publish(entities.EntryKindDictionary, "author", "", map[string]any{"term": "vahay"})

	flaggable, err := h.module.Dashboard.ReviewerDashboard(h.ctx, entities.EntryKindDictionary, "rev-3")
	require.NoError(t, err)
	assert.Equal(t, []string{published.Revision.RevisionID}, revisionIDs(flaggable.Flaggable))

	h.vote(published.Revision.RevisionID, "rev-3", entities.ReviewDecisionFlag, "wrong meaning")

	flagger, err := h.module.Dashboard.ReviewerDashboard(h.ctx, entities.EntryKindDictionary, "rev-3")
	require.NoError(t, err)
	assert.Empty(t, flagger.PendingReview)
	assert.Empty(t, flagger.Flaggable)

	other, err := h.module.Dashboard.ReviewerDashboard(h.ctx, entities.EntryKindDictionary, "rev-1")
	require.NoError(t, err)
	require.Len(t, other.PendingReview, 1)
	assert.Equal(t, 1, other.PendingReview[0].Round)
	require.NotNil(t, other.PendingReview[0].Entry)
	assert.Equal(t, entities.EntryStatusApprovedUnderReview, other.PendingReview[0].Entry.Status)

	require.Len(t, other.MyReviews, 1)
	assert.Equal(t, string(entities.RevisionStatusApproved), other.MyReviews[0].FinalOutcome)
	assert.Empty(t, other.AwaitingQuorum)
}

func TestDashboardRequiresRole(t *testing.T) {
	h := newHarness(t)
	_, err := h.module.Dashboard.ReviewerDashboard(h.ctx, entities.EntryKindDictionary, "author")
	assert.ErrorIs(t, err, domainerrors.ErrRoleRequired)
	_, err = h.module.Dashboard.ReviewerDashboard(h.ctx, "song", "rev-1")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidKind)
}
