package commands

import (
	"context"
	"log/slog"
	"strings"

	application "lexicon/contexts/editorial-governance/governance-service/application"
	"lexicon/contexts/editorial-governance/governance-service/domain/entities"
	domainerrors "lexicon/contexts/editorial-governance/governance-service/domain/errors"
	"lexicon/contexts/editorial-governance/governance-service/ports"
)

// ContributionLedger credits users once per (entry, contribution type).
type ContributionLedger struct {
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

type AwardInput struct {
	UserID     string
	EntryKind  entities.EntryKind
	EntryID    string
	Type       entities.ContributionType
	RevisionID string
}

// AwardTypeFor picks the credit for an approval. First-time authorship of a
// dictionary term only counts when the entry became its group's mother.
func AwardTypeFor(kind entities.EntryKind, newSubmission bool, isMother bool) entities.ContributionType {
	switch {
	case kind == entities.EntryKindFolklore && newSubmission:
		return entities.ContributionTypeFolkloreEntry
	case kind == entities.EntryKindDictionary && newSubmission && isMother:
		return entities.ContributionTypeDictionaryTerm
	default:
		return entities.ContributionTypeRevision
	}
}

// Award gets or creates the event. A repeat award for the same key returns
// the original event with created=false.
func (l ContributionLedger) Award(ctx context.Context, repo ports.Repository, input AwardInput) (entities.ContributionEvent, bool, error) {
	userID := strings.TrimSpace(input.UserID)
	entryID := strings.TrimSpace(input.EntryID)
	if userID == "" || entryID == "" || !input.EntryKind.Valid() {
		return entities.ContributionEvent{}, false, domainerrors.ErrInvalidInput
	}
	switch input.Type {
	case entities.ContributionTypeDictionaryTerm:
		if input.EntryKind != entities.EntryKindDictionary {
			return entities.ContributionEvent{}, false, domainerrors.ErrInvalidKind
		}
	case entities.ContributionTypeFolkloreEntry:
		if input.EntryKind != entities.EntryKindFolklore {
			return entities.ContributionEvent{}, false, domainerrors.ErrInvalidKind
		}
	case entities.ContributionTypeRevision:
	default:
		return entities.ContributionEvent{}, false, domainerrors.ErrInvalidInput
	}

	eventID, err := newID(ctx, l.IDGen)
	if err != nil {
		return entities.ContributionEvent{}, false, err
	}
	event, created, err := repo.AwardContribution(ctx, entities.ContributionEvent{
		EventID:    eventID,
		UserID:     userID,
		Type:       input.Type,
		EntryKind:  input.EntryKind,
		EntryID:    entryID,
		RevisionID: strings.TrimSpace(input.RevisionID),
		AwardedAt:  now(l.Clock),
	})
	if err != nil {
		return entities.ContributionEvent{}, false, err
	}

	logger := application.ResolveLogger(l.Logger)
	if created {
		logger.Info("contribution awarded",
			"event", "governance_contribution_awarded",
			"module", application.ModuleName,
			"layer", "application",
			"user_id", userID,
			"entry_id", entryID,
			"contribution_type", string(input.Type),
		)
	} else {
		logger.Debug("contribution already credited",
			"event", "governance_contribution_already_credited",
			"module", application.ModuleName,
			"layer", "application",
			"user_id", userID,
			"entry_id", entryID,
			"contribution_type", string(input.Type),
		)
	}
	return event, created, nil
}
