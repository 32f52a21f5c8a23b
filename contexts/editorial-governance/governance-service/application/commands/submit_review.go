package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "lexicon/contexts/editorial-governance/governance-service/application"
	"lexicon/contexts/editorial-governance/governance-service/domain/entities"
	domainerrors "lexicon/contexts/editorial-governance/governance-service/domain/errors"
	"lexicon/contexts/editorial-governance/governance-service/domain/services"
	"lexicon/contexts/editorial-governance/governance-service/ports"
)

type ReviewOutcome string

const (
	ReviewOutcomeFlagged          ReviewOutcome = "flagged"
	ReviewOutcomeEntryRejected    ReviewOutcome = "entry_rejected"
	ReviewOutcomeRevisionRejected ReviewOutcome = "revision_rejected"
	ReviewOutcomeAwaitingQuorum   ReviewOutcome = "awaiting_quorum"
	ReviewOutcomeRestored         ReviewOutcome = "restored"
	ReviewOutcomePublished        ReviewOutcome = "published"
)

type SubmitReviewCommand struct {
	RevisionID string
	ReviewerID string
	Decision   entities.ReviewDecision
	Notes      string
}

type SubmitReviewResult struct {
	Review              entities.Review
	Round               int
	Outcome             ReviewOutcome
	Revision            entities.Revision
	Entry               *entities.Entry
	PublicationMode     string
	Contribution        *entities.ContributionEvent
	ContributionCreated bool
	BaseSnapshotMarked  bool
	PrunedRevisions     int
}

// ReviewUseCase is the governance orchestrator: one reviewer decision runs
// as a single transaction across the ledger, publication, variants and
// contribution credit.
type ReviewUseCase struct {
	Store         ports.Store
	Ledger        ReviewLedger
	Revisions     RevisionStore
	Publisher     PublicationService
	Contributions ContributionLedger
	Metrics       ports.Metrics
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	Logger        *slog.Logger
}

func (uc ReviewUseCase) SubmitReview(ctx context.Context, cmd SubmitReviewCommand) (SubmitReviewResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	cmd.RevisionID = strings.TrimSpace(cmd.RevisionID)
	cmd.ReviewerID = strings.TrimSpace(cmd.ReviewerID)
	cmd.Decision = entities.ReviewDecision(strings.ToLower(strings.TrimSpace(string(cmd.Decision))))
	if cmd.RevisionID == "" || cmd.ReviewerID == "" {
		return SubmitReviewResult{}, domainerrors.ErrInvalidInput
	}
	if !cmd.Decision.Valid() {
		return SubmitReviewResult{}, domainerrors.ErrInvalidDecision
	}

	var result SubmitReviewResult
	err := uc.Store.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		revision, entry, err := lockReviewTarget(ctx, repo, cmd.RevisionID)
		if err != nil {
			return err
		}

		review, reviewContext, err := uc.Ledger.Record(ctx, repo, RecordInput{
			Revision:   revision,
			Entry:      entry,
			ReviewerID: cmd.ReviewerID,
			Decision:   cmd.Decision,
			Notes:      cmd.Notes,
		})
		if err != nil {
			return err
		}
		result = SubmitReviewResult{Review: review, Round: review.Round, Revision: revision, Entry: entry}
		occurredAt := now(uc.Clock)
		if err := appendEvent(ctx, repo, uc.IDGen, occurredAt, EventReviewRecorded, "revision_id", revision.RevisionID, map[string]any{
			"review_id":   review.ReviewID,
			"revision_id": review.RevisionID,
			"entry_id":    revision.EntryID,
			"kind":        string(review.Kind),
			"reviewer_id": review.ReviewerID,
			"decision":    string(review.Decision),
			"round":       review.Round,
		}); err != nil {
			return err
		}

		switch {
		case cmd.Decision == entities.ReviewDecisionFlag:
			return uc.moveEntry(ctx, repo, &result, entities.EntryStatusApprovedUnderReview, ReviewOutcomeFlagged, EventEntryFlagged, occurredAt)
		case cmd.Decision == entities.ReviewDecisionReject && reviewContext.IsRereview:
			return uc.moveEntry(ctx, repo, &result, entities.EntryStatusRejected, ReviewOutcomeEntryRejected, EventEntryRejected, occurredAt)
		case cmd.Decision == entities.ReviewDecisionReject:
			return uc.rejectRevision(ctx, repo, &result, review.Notes, occurredAt)
		}

		tally, err := uc.Ledger.Tally(ctx, repo, revision.RevisionID, reviewContext.Round)
		if err != nil {
			return err
		}
		if !tally.Met() {
			result.Outcome = ReviewOutcomeAwaitingQuorum
			return nil
		}
		if reviewContext.IsRereview {
			return uc.moveEntry(ctx, repo, &result, entities.EntryStatusApproved, ReviewOutcomeRestored, EventEntryRestored, occurredAt)
		}
		return uc.approveAndPublish(ctx, repo, &result, tally, occurredAt)
	})
	if err != nil {
		logger.Warn("submit review failed",
			"event", "governance_submit_review_failed",
			"module", application.ModuleName,
			"layer", "application",
			"revision_id", cmd.RevisionID,
			"reviewer_id", cmd.ReviewerID,
			"decision", string(cmd.Decision),
			"error", err.Error(),
		)
		return SubmitReviewResult{}, err
	}

	metrics := resolveMetrics(uc.Metrics)
	metrics.RecordReview(result.Revision.Kind, result.Review.Decision)
	metrics.RecordOutcome(result.Revision.Kind, string(result.Outcome))
	if result.Outcome == ReviewOutcomePublished {
		metrics.RecordPublication(result.Revision.Kind, result.PublicationMode)
	}
	if result.PrunedRevisions > 0 {
		metrics.RecordRevisionsPruned(result.Revision.Kind, result.PrunedRevisions)
	}
	if result.ContributionCreated && result.Contribution != nil {
		metrics.RecordContribution(result.Contribution.Type)
	}

	logger.Info("review submitted",
		"event", "governance_review_submitted",
		"module", application.ModuleName,
		"layer", "application",
		"revision_id", result.Revision.RevisionID,
		"reviewer_id", result.Review.ReviewerID,
		"decision", string(result.Review.Decision),
		"round", result.Round,
		"outcome", string(result.Outcome),
	)
	return result, nil
}

// lockReviewTarget locks the entry before the revision so review
// transactions take row locks in the same order as lifecycle maintenance.
func lockReviewTarget(ctx context.Context, repo ports.Repository, revisionID string) (entities.Revision, *entities.Entry, error) {
	peek, err := repo.GetRevision(ctx, revisionID)
	if err != nil {
		return entities.Revision{}, nil, err
	}
	var entry *entities.Entry
	if peek.EntryID != "" {
		locked, err := repo.LockEntry(ctx, peek.EntryID)
		if err != nil {
			return entities.Revision{}, nil, err
		}
		entry = &locked
	}
	revision, err := repo.LockRevision(ctx, revisionID)
	if err != nil {
		return entities.Revision{}, nil, err
	}
	if revision.EntryID != "" && (entry == nil || entry.EntryID != revision.EntryID) {
		locked, err := repo.LockEntry(ctx, revision.EntryID)
		if err != nil {
			return entities.Revision{}, nil, err
		}
		entry = &locked
	}
	return revision, entry, nil
}

func (uc ReviewUseCase) moveEntry(
	ctx context.Context,
	repo ports.Repository,
	result *SubmitReviewResult,
	to entities.EntryStatus,
	outcome ReviewOutcome,
	eventType string,
	occurredAt time.Time,
) error {
	if result.Entry == nil {
		return domainerrors.ErrEntryNotFound
	}
	entry := *result.Entry
	from := entry.Status
	if err := services.ValidateTransition(entry.Kind, from, to, false); err != nil {
		return err
	}
	entry.Status = to
	entry.UpdatedAt = occurredAt
	if err := repo.UpdateEntry(ctx, entry); err != nil {
		return err
	}
	result.Entry = &entry
	result.Outcome = outcome
	return appendEvent(ctx, repo, uc.IDGen, occurredAt, eventType, "entry_id", entry.EntryID, map[string]any{
		"entry_id":    entry.EntryID,
		"kind":        string(entry.Kind),
		"revision_id": result.Revision.RevisionID,
		"from_status": string(from),
		"to_status":   string(to),
		"round":       result.Round,
	})
}

func (uc ReviewUseCase) rejectRevision(
	ctx context.Context,
	repo ports.Repository,
	result *SubmitReviewResult,
	notes string,
	occurredAt time.Time,
) error {
	revision := result.Revision
	if err := services.ValidateRevisionTransition(revision.Status, entities.RevisionStatusRejected); err != nil {
		return err
	}
	revision.Status = entities.RevisionStatusRejected
	revision.ReviewerNotes = notes
	revision.UpdatedAt = occurredAt
	if err := repo.UpdateRevision(ctx, revision); err != nil {
		return err
	}
	result.Revision = revision
	result.Outcome = ReviewOutcomeRevisionRejected
	return appendEvent(ctx, repo, uc.IDGen, occurredAt, EventRevisionRejected, "revision_id", revision.RevisionID, map[string]any{
		"revision_id":    revision.RevisionID,
		"entry_id":       revision.EntryID,
		"kind":           string(revision.Kind),
		"contributor_id": revision.ContributorID,
		"reviewer_notes": revision.ReviewerNotes,
	})
}

func (uc ReviewUseCase) approveAndPublish(
	ctx context.Context,
	repo ports.Repository,
	result *SubmitReviewResult,
	tally services.QuorumTally,
	occurredAt time.Time,
) error {
	revision := result.Revision
	if err := services.ValidateRevisionTransition(revision.Status, entities.RevisionStatusApproved); err != nil {
		return err
	}
	newSubmission := revision.IsNewSubmission()
	revision.Status = entities.RevisionStatusApproved
	revision.ApprovedAt = timePtr(occurredAt)
	revision.UpdatedAt = occurredAt

	approvers := tally.Approvers()
	entry, mode, err := uc.Publisher.Publish(ctx, repo, &revision, approvers)
	if err != nil {
		return err
	}
	marked, err := uc.Revisions.MarkBaseSnapshotIfFirst(ctx, repo, &revision)
	if err != nil {
		return err
	}
	pruned, err := uc.Revisions.EnforceRetention(ctx, repo, entry.Kind, entry.EntryID)
	if err != nil {
		return err
	}

	awardType := AwardTypeFor(entry.Kind, newSubmission, entry.IsMother)
	event, created, err := uc.Contributions.Award(ctx, repo, AwardInput{
		UserID:     revision.ContributorID,
		EntryKind:  entry.Kind,
		EntryID:    entry.EntryID,
		Type:       awardType,
		RevisionID: revision.RevisionID,
	})
	if err != nil {
		return err
	}

	result.Revision = revision
	result.Entry = &entry
	result.Outcome = ReviewOutcomePublished
	result.PublicationMode = mode
	result.Contribution = &event
	result.ContributionCreated = created
	result.BaseSnapshotMarked = marked
	result.PrunedRevisions = pruned

	if err := appendEvent(ctx, repo, uc.IDGen, occurredAt, EventEntryPublished, "entry_id", entry.EntryID, map[string]any{
		"entry_id":    entry.EntryID,
		"kind":        string(entry.Kind),
		"revision_id": revision.RevisionID,
		"mode":        mode,
		"approvers":   approvers,
		"is_mother":   entry.IsMother,
	}); err != nil {
		return err
	}
	if !created {
		return nil
	}
	return appendEvent(ctx, repo, uc.IDGen, occurredAt, EventContributionAwarded, "user_id", event.UserID, map[string]any{
		"event_id":          event.EventID,
		"user_id":           event.UserID,
		"entry_id":          event.EntryID,
		"kind":              string(event.EntryKind),
		"contribution_type": string(event.Type),
	})
}
