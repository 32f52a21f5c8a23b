package commands

import (
	"context"
	"log/slog"
	"strings"

	application "lexicon/contexts/editorial-governance/governance-service/application"
	"lexicon/contexts/editorial-governance/governance-service/domain/entities"
	domainerrors "lexicon/contexts/editorial-governance/governance-service/domain/errors"
	"lexicon/contexts/editorial-governance/governance-service/domain/services"
	"lexicon/contexts/editorial-governance/governance-service/ports"
)

// ReviewLedger records reviewer decisions per revision and round and
// answers quorum questions.
type ReviewLedger struct {
	Identity ports.IdentityProvider
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

type RecordInput struct {
	Revision   entities.Revision
	Entry      *entities.Entry
	ReviewerID string
	Decision   entities.ReviewDecision
	Notes      string
}

// ReviewContext describes which round a decision lands in.
type ReviewContext struct {
	Round      int
	IsRereview bool
}

// IsRereview reports whether a revision sits in an active re-review.
func IsRereview(revision entities.Revision, entry *entities.Entry) bool {
	return entry != nil &&
		entry.Status == entities.EntryStatusApprovedUnderReview &&
		revision.Status == entities.RevisionStatusApproved
}

// ResolveRound picks the round for a decision: a flag opens the round after
// the highest flagged one, a re-review votes in the latest flag round, and
// anything else is the initial round.
func (l ReviewLedger) ResolveRound(
	ctx context.Context,
	repo ports.Repository,
	revision entities.Revision,
	entry *entities.Entry,
	decision entities.ReviewDecision,
) (ReviewContext, error) {
	rereview := IsRereview(revision, entry)
	switch {
	case decision == entities.ReviewDecisionFlag:
		highest, found, err := repo.MaxReviewRound(ctx, revision.RevisionID, entities.ReviewDecisionFlag)
		if err != nil {
			return ReviewContext{}, err
		}
		if !found {
			highest = entities.InitialRound
		}
		return ReviewContext{Round: highest + 1}, nil
	case rereview:
		round, err := l.ActiveRound(ctx, repo, revision.RevisionID)
		if err != nil {
			return ReviewContext{}, err
		}
		return ReviewContext{Round: round, IsRereview: true}, nil
	default:
		return ReviewContext{Round: entities.InitialRound}, nil
	}
}

// ActiveRound is the round of the latest flag review, falling back to 1.
func (l ReviewLedger) ActiveRound(ctx context.Context, repo ports.Repository, revisionID string) (int, error) {
	round, found, err := repo.MaxReviewRound(ctx, revisionID, entities.ReviewDecisionFlag)
	if err != nil {
		return 0, err
	}
	if !found || round < 1 {
		return 1, nil
	}
	return round, nil
}

// Record validates and stores one decision. All checks run before the
// review row is written.
func (l ReviewLedger) Record(ctx context.Context, repo ports.Repository, input RecordInput) (entities.Review, ReviewContext, error) {
	reviewerID := strings.TrimSpace(input.ReviewerID)
	notes := strings.TrimSpace(input.Notes)
	if reviewerID == "" {
		return entities.Review{}, ReviewContext{}, domainerrors.ErrInvalidInput
	}
	if !input.Decision.Valid() {
		return entities.Review{}, ReviewContext{}, domainerrors.ErrInvalidDecision
	}

	isReviewer, isAdmin, err := l.roles(ctx, reviewerID)
	if err != nil {
		return entities.Review{}, ReviewContext{}, err
	}
	if !isReviewer && !isAdmin {
		return entities.Review{}, ReviewContext{}, domainerrors.ErrRoleRequired
	}
	if reviewerID == input.Revision.ContributorID {
		return entities.Review{}, ReviewContext{}, domainerrors.ErrSelfReview
	}
	if input.Decision.RequiresNotes() && notes == "" {
		return entities.Review{}, ReviewContext{}, domainerrors.ErrNotesRequired
	}
	if err := reviewable(input.Revision, input.Entry, input.Decision); err != nil {
		return entities.Review{}, ReviewContext{}, err
	}

	reviewContext, err := l.ResolveRound(ctx, repo, input.Revision, input.Entry, input.Decision)
	if err != nil {
		return entities.Review{}, ReviewContext{}, err
	}
	round := reviewContext.Round
	existing, err := repo.ListReviews(ctx, ports.ReviewFilter{
		RevisionIDs: []string{input.Revision.RevisionID},
		ReviewerID:  reviewerID,
		Round:       &round,
	})
	if err != nil {
		return entities.Review{}, ReviewContext{}, err
	}
	if len(existing) > 0 {
		return entities.Review{}, ReviewContext{}, domainerrors.ErrAlreadyReviewed
	}

	reviewID, err := newID(ctx, l.IDGen)
	if err != nil {
		return entities.Review{}, ReviewContext{}, err
	}
	review := entities.Review{
		ReviewID:   reviewID,
		RevisionID: input.Revision.RevisionID,
		Kind:       input.Revision.Kind,
		ReviewerID: reviewerID,
		Decision:   input.Decision,
		Notes:      notes,
		Round:      round,
		CreatedAt:  now(l.Clock),
	}
	if err := repo.CreateReview(ctx, review); err != nil {
		return entities.Review{}, ReviewContext{}, err
	}

	application.ResolveLogger(l.Logger).Info("review recorded",
		"event", "governance_review_recorded",
		"module", application.ModuleName,
		"layer", "application",
		"review_id", review.ReviewID,
		"revision_id", review.RevisionID,
		"reviewer_id", review.ReviewerID,
		"decision", string(review.Decision),
		"round", review.Round,
	)
	return review, reviewContext, nil
}

// Tally partitions the approvers of one round by role.
func (l ReviewLedger) Tally(ctx context.Context, repo ports.Repository, revisionID string, round int) (services.QuorumTally, error) {
	approvals, err := repo.ListReviews(ctx, ports.ReviewFilter{
		RevisionIDs: []string{revisionID},
		Round:       &round,
		Decision:    entities.ReviewDecisionApprove,
	})
	if err != nil {
		return services.QuorumTally{}, err
	}
	approverIDs := make([]string, 0, len(approvals))
	for _, review := range approvals {
		approverIDs = append(approverIDs, review.ReviewerID)
	}
	return services.TallyApprovals(approverIDs, func(userID string) (bool, bool, error) {
		return l.roles(ctx, userID)
	})
}

// QuorumMet reports whether the approvals of round satisfy quorum.
func (l ReviewLedger) QuorumMet(ctx context.Context, repo ports.Repository, revisionID string, round int) (bool, error) {
	tally, err := l.Tally(ctx, repo, revisionID, round)
	if err != nil {
		return false, err
	}
	return tally.Met(), nil
}

func (l ReviewLedger) roles(ctx context.Context, userID string) (bool, bool, error) {
	if l.Identity == nil {
		return false, false, nil
	}
	isAdmin, err := l.Identity.IsAdmin(ctx, userID)
	if err != nil {
		return false, false, err
	}
	isReviewer, err := l.Identity.IsReviewer(ctx, userID)
	if err != nil {
		return false, false, err
	}
	return isReviewer, isAdmin, nil
}

func reviewable(revision entities.Revision, entry *entities.Entry, decision entities.ReviewDecision) error {
	if decision == entities.ReviewDecisionFlag {
		if revision.Status == entities.RevisionStatusApproved && entry != nil && entry.Status == entities.EntryStatusApproved {
			return nil
		}
		return domainerrors.ErrNotReviewable
	}
	if revision.Status == entities.RevisionStatusPending || IsRereview(revision, entry) {
		return nil
	}
	return domainerrors.ErrNotReviewable
}
