package entities

import "time"

type RevisionStatus string

const (
	RevisionStatusDraft    RevisionStatus = "draft"
	RevisionStatusPending  RevisionStatus = "pending"
	RevisionStatusApproved RevisionStatus = "approved"
	RevisionStatusRejected RevisionStatus = "rejected"
)

// Revision is a proposed snapshot of entry content. An empty EntryID marks a
// brand-new submission that is bound to its entry on first approval.
type Revision struct {
	RevisionID     string
	Kind           EntryKind
	EntryID        string
	ContributorID  string
	ProposedData   ProposedData
	Status         RevisionStatus
	IsBaseSnapshot bool
	ReviewerNotes  string
	TargetGroupID  string
	ApprovedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (r Revision) IsNewSubmission() bool {
	return r.EntryID == ""
}

func (r Revision) Clone() Revision {
	out := r
	out.ProposedData = r.ProposedData.Clone()
	out.ApprovedAt = cloneTime(r.ApprovedAt)
	return out
}
