package entities

import "time"

type ReviewDecision string

const (
	ReviewDecisionApprove ReviewDecision = "approve"
	ReviewDecisionReject  ReviewDecision = "reject"
	ReviewDecisionFlag    ReviewDecision = "flag"
)

func (d ReviewDecision) Valid() bool {
	return d == ReviewDecisionApprove || d == ReviewDecisionReject || d == ReviewDecisionFlag
}

// RequiresNotes reports whether the decision must carry reviewer notes.
func (d ReviewDecision) RequiresNotes() bool {
	return d == ReviewDecisionReject || d == ReviewDecisionFlag
}

// InitialRound is the review round of a revision's first review.
const InitialRound = 0

// Review is one reviewer's immutable decision on one revision in one round.
type Review struct {
	ReviewID   string
	RevisionID string
	Kind       EntryKind
	ReviewerID string
	Decision   ReviewDecision
	Notes      string
	Round      int
	CreatedAt  time.Time
}
