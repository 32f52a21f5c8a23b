package services

import (
	"sort"
	"time"

	"lexicon/contexts/editorial-governance/governance-service/domain/entities"
)

const (
	// RetainedRevisions is how many approved non-base revisions an entry keeps.
	RetainedRevisions = 20

	PublicHistoryLimit = 5
	StaffHistoryLimit  = 15
)

type Audience string

const (
	AudiencePublic Audience = "public"
	AudienceStaff  Audience = "staff"
)

// HistoryLimit returns how many recent revisions the audience may see.
func HistoryLimit(audience Audience) int {
	if audience == AudienceStaff {
		return StaffHistoryLimit
	}
	return PublicHistoryLimit
}

// SortRevisionsByRecency orders revisions most recent first by approval
// time, then creation time, then id.
func SortRevisionsByRecency(revisions []entities.Revision) {
	sort.SliceStable(revisions, func(i, j int) bool {
		return revisionNewer(revisions[i], revisions[j])
	})
}

// RetentionOverflow returns the approved non-base revisions beyond the newest
// keep, oldest first. The base snapshot is never returned.
func RetentionOverflow(revisions []entities.Revision, keep int) []entities.Revision {
	candidates := make([]entities.Revision, 0, len(revisions))
	for _, revision := range revisions {
		if revision.IsBaseSnapshot || revision.Status != entities.RevisionStatusApproved {
			continue
		}
		candidates = append(candidates, revision)
	}
	if keep < 0 {
		keep = 0
	}
	if len(candidates) <= keep {
		return nil
	}
	SortRevisionsByRecency(candidates)
	overflow := append([]entities.Revision(nil), candidates[keep:]...)
	for i, j := 0, len(overflow)-1; i < j; i, j = i+1, j-1 {
		overflow[i], overflow[j] = overflow[j], overflow[i]
	}
	return overflow
}

func revisionNewer(a entities.Revision, b entities.Revision) bool {
	at, bt := approvalTime(a), approvalTime(b)
	if !at.Equal(bt) {
		return at.After(bt)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.RevisionID > b.RevisionID
}

func approvalTime(revision entities.Revision) time.Time {
	if revision.ApprovedAt != nil {
		return *revision.ApprovedAt
	}
	return time.Time{}
}
