package commands

import (
	"context"
	"log/slog"

	application "lexicon/contexts/editorial-governance/governance-service/application"
	"lexicon/contexts/editorial-governance/governance-service/domain/entities"
	domainerrors "lexicon/contexts/editorial-governance/governance-service/domain/errors"
	"lexicon/contexts/editorial-governance/governance-service/domain/services"
	"lexicon/contexts/editorial-governance/governance-service/ports"
)

const (
	PublicationModeCreated = "created"
	PublicationModeUpdated = "updated"
)

// PublicationService applies an approved revision onto its canonical entry.
type PublicationService struct {
	Variants VariantGovernance
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

// Publish creates or updates the entry from revision and replaces its
// approver set with approvers. revision is bound to the new entry when it
// was a brand-new submission; the caller persists nothing else.
func (p PublicationService) Publish(
	ctx context.Context,
	repo ports.Repository,
	revision *entities.Revision,
	approvers []string,
) (entities.Entry, string, error) {
	if revision == nil || revision.Status != entities.RevisionStatusApproved {
		return entities.Entry{}, "", domainerrors.ErrNotReviewable
	}
	publishedAt := now(p.Clock)

	var (
		entry entities.Entry
		mode  string
	)
	if revision.IsNewSubmission() {
		entryID, err := newID(ctx, p.IDGen)
		if err != nil {
			return entities.Entry{}, "", err
		}
		entry = entities.Entry{
			EntryID:              entryID,
			Kind:                 revision.Kind,
			Status:               entities.EntryStatusApproved,
			InitialContributorID: revision.ContributorID,
			LastRevisedByID:      revision.ContributorID,
			IsMother:             revision.Kind == entities.EntryKindDictionary,
			ApprovedAt:           timePtr(publishedAt),
			CreatedAt:            publishedAt,
			UpdatedAt:            publishedAt,
		}
		entry.ApplyProposed(revision.ProposedData)
		entry.AttributeMedia(entry.PresentMedia(), revision.ContributorID)
		entry.ApproverIDs = append([]string(nil), approvers...)
		if err := repo.CreateEntry(ctx, entry); err != nil {
			return entities.Entry{}, "", err
		}

		revision.EntryID = entry.EntryID
		revision.UpdatedAt = publishedAt
		if err := repo.UpdateRevision(ctx, *revision); err != nil {
			return entities.Entry{}, "", err
		}
		mode = PublicationModeCreated
	} else {
		existing, err := repo.GetEntry(ctx, revision.EntryID)
		if err != nil {
			return entities.Entry{}, "", err
		}
		if err := services.ValidateTransition(existing.Kind, existing.Status, entities.EntryStatusApproved, true); err != nil {
			return entities.Entry{}, "", err
		}
		entry = existing
		changedMedia := entry.ApplyProposed(revision.ProposedData)
		entry.AttributeMedia(changedMedia, revision.ContributorID)
		entry.LastRevisedByID = revision.ContributorID
		entry.Status = entities.EntryStatusApproved
		entry.ApprovedAt = timePtr(publishedAt)
		entry.UpdatedAt = publishedAt
		entry.ApproverIDs = append([]string(nil), approvers...)
		if err := repo.UpdateEntry(ctx, entry); err != nil {
			return entities.Entry{}, "", err
		}
		if err := repo.UpdateRevision(ctx, *revision); err != nil {
			return entities.Entry{}, "", err
		}
		mode = PublicationModeUpdated
	}

	if entry.Kind == entities.EntryKindDictionary {
		if err := p.Variants.EnsureGroupAndMother(ctx, repo, &entry, revision.TargetGroupID); err != nil {
			return entities.Entry{}, "", err
		}
		if _, err := p.Variants.MaybePromoteGeneralIvatan(ctx, repo, &entry); err != nil {
			return entities.Entry{}, "", err
		}
	}

	application.ResolveLogger(p.Logger).Info("revision published",
		"event", "governance_revision_published",
		"module", application.ModuleName,
		"layer", "application",
		"entry_id", entry.EntryID,
		"revision_id", revision.RevisionID,
		"kind", string(entry.Kind),
		"mode", mode,
		"approver_count", len(approvers),
	)
	return entry, mode, nil
}
