package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexicon/contexts/editorial-governance/governance-service/domain/entities"
)

func approvedRevision(id string, approvedAt time.Time) entities.Revision {
	at := approvedAt
	return entities.Revision{
		RevisionID: id,
		Status:     entities.RevisionStatusApproved,
		ApprovedAt: &at,
		CreatedAt:  approvedAt.Add(-time.Hour),
	}
}

func TestRetentionOverflowKeepsNewestAndBase(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	base := approvedRevision("base", start.Add(-time.Hour))
	base.IsBaseSnapshot = true

	revisions := []entities.Revision{base}
	for i := 0; i < RetainedRevisions+3; i++ {
		revisions = append(revisions, approvedRevision(fmt.Sprintf("rev-%02d", i), start.Add(time.Duration(i)*time.Minute)))
	}
	revisions = append(revisions, entities.Revision{RevisionID: "pending", Status: entities.RevisionStatusPending})

	overflow := RetentionOverflow(revisions, RetainedRevisions)
	require.Len(t, overflow, 3)
	assert.Equal(t, "rev-00", overflow[0].RevisionID)
	assert.Equal(t, "rev-01", overflow[1].RevisionID)
	assert.Equal(t, "rev-02", overflow[2].RevisionID)
	for _, revision := range overflow {
		assert.False(t, revision.IsBaseSnapshot)
	}
}

func TestRetentionOverflowUnderLimit(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	revisions := []entities.Revision{
		approvedRevision("a", start),
		approvedRevision("b", start.Add(time.Minute)),
	}
	assert.Empty(t, RetentionOverflow(revisions, RetainedRevisions))
	assert.Len(t, RetentionOverflow(revisions, -1), 2)
}

func TestSortRevisionsByRecencyBreaksTies(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	older := approvedRevision("a", at)
	newerCreated := approvedRevision("b", at)
	newerCreated.CreatedAt = at
	sameCreated := approvedRevision("c", at)
	sameCreated.CreatedAt = at

	revisions := []entities.Revision{older, newerCreated, sameCreated}
	SortRevisionsByRecency(revisions)

	assert.Equal(t, []string{"c", "b", "a"}, []string{
		revisions[0].RevisionID,
		revisions[1].RevisionID,
		revisions[2].RevisionID,
	})
}

func TestHistoryLimit(t *testing.T) {
	assert.Equal(t, 5, HistoryLimit(AudiencePublic))
	assert.Equal(t, 15, HistoryLimit(AudienceStaff))
	assert.Equal(t, 5, HistoryLimit("anonymous"))
}
