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

// CreateDraftCommand starts from the snapshot of BaseEntryID when set;
// an empty BaseEntryID is a brand-new submission.
type CreateDraftCommand struct {
	Kind          entities.EntryKind
	ContributorID string
	BaseEntryID   string
	ProposedData  map[string]any
	TargetGroupID string
}

type UpdateDraftCommand struct {
	RevisionID   string
	ActorID      string
	ProposedData map[string]any
}

type SubmitDraftCommand struct {
	RevisionID string
	ActorID    string
}

// DraftUseCase covers contributor-side authoring before review.
type DraftUseCase struct {
	Store     ports.Store
	Revisions RevisionStore
	Clock     ports.Clock
	Logger    *slog.Logger
}

func (uc DraftUseCase) CreateDraft(ctx context.Context, cmd CreateDraftCommand) (entities.Revision, error) {
	logger := application.ResolveLogger(uc.Logger)
	if !cmd.Kind.Valid() {
		return entities.Revision{}, domainerrors.ErrInvalidKind
	}
	data, err := NormalizeProposedData(cmd.Kind, cmd.ProposedData)
	if err != nil {
		return entities.Revision{}, err
	}

	var revision entities.Revision
	err = uc.Store.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		var base *entities.Entry
		if entryID := strings.TrimSpace(cmd.BaseEntryID); entryID != "" {
			entry, err := repo.GetEntry(ctx, entryID)
			if err != nil {
				return err
			}
			if entry.Kind != cmd.Kind {
				return domainerrors.ErrEntryNotFound
			}
			if err := services.ValidateTransition(entry.Kind, entry.Status, entities.EntryStatusApproved, true); err != nil {
				return err
			}
			base = &entry
		}
		if groupID := strings.TrimSpace(cmd.TargetGroupID); groupID != "" && base == nil {
			if cmd.Kind != entities.EntryKindDictionary {
				return domainerrors.ErrInvalidKind
			}
			if _, err := repo.GetVariantGroup(ctx, groupID); err != nil {
				return err
			}
		}
		created, err := uc.Revisions.CreateDraft(ctx, repo, DraftInput{
			Kind:          cmd.Kind,
			ContributorID: cmd.ContributorID,
			Base:          base,
			ProposedData:  data,
			TargetGroupID: cmd.TargetGroupID,
		})
		if err != nil {
			return err
		}
		revision = created
		return nil
	})
	if err != nil {
		return entities.Revision{}, err
	}

	logger.Info("draft created",
		"event", "governance_draft_created",
		"module", application.ModuleName,
		"layer", "application",
		"revision_id", revision.RevisionID,
		"entry_id", revision.EntryID,
		"kind", string(revision.Kind),
		"contributor_id", revision.ContributorID,
	)
	return revision, nil
}

// UpdateDraft overlays fields onto a draft. Only the owner may edit, and
// only while the revision is still a draft.
func (uc DraftUseCase) UpdateDraft(ctx context.Context, cmd UpdateDraftCommand) (entities.Revision, error) {
	actorID := strings.TrimSpace(cmd.ActorID)
	if actorID == "" {
		return entities.Revision{}, domainerrors.ErrInvalidInput
	}

	var revision entities.Revision
	err := uc.Store.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		current, err := repo.LockRevision(ctx, strings.TrimSpace(cmd.RevisionID))
		if err != nil {
			return err
		}
		if current.ContributorID != actorID {
			return domainerrors.ErrNotRevisionOwner
		}
		if current.Status != entities.RevisionStatusDraft {
			return &domainerrors.TransitionError{Entity: "revision", From: string(current.Status), To: string(entities.RevisionStatusDraft)}
		}
		data, err := NormalizeProposedData(current.Kind, cmd.ProposedData)
		if err != nil {
			return err
		}
		if current.ProposedData == nil {
			current.ProposedData = entities.ProposedData{}
		}
		for key, value := range data {
			current.ProposedData[key] = value
		}
		current.UpdatedAt = now(uc.Clock)
		if err := repo.UpdateRevision(ctx, current); err != nil {
			return err
		}
		revision = current
		return nil
	})
	if err != nil {
		return entities.Revision{}, err
	}
	return revision, nil
}

// SubmitDraftForReview moves a draft to pending after required-field
// validation.
func (uc DraftUseCase) SubmitDraftForReview(ctx context.Context, cmd SubmitDraftCommand) (entities.Revision, error) {
	logger := application.ResolveLogger(uc.Logger)
	actorID := strings.TrimSpace(cmd.ActorID)
	if actorID == "" {
		return entities.Revision{}, domainerrors.ErrInvalidInput
	}

	var revision entities.Revision
	err := uc.Store.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		current, err := repo.LockRevision(ctx, strings.TrimSpace(cmd.RevisionID))
		if err != nil {
			return err
		}
		if current.ContributorID != actorID {
			return domainerrors.ErrNotRevisionOwner
		}
		if err := services.ValidateRevisionTransition(current.Status, entities.RevisionStatusPending); err != nil {
			return err
		}
		if missing := entities.MissingRequired(current.Kind, current.ProposedData); len(missing) > 0 {
			return &domainerrors.MissingFieldsError{Fields: missing}
		}
		current.Status = entities.RevisionStatusPending
		current.UpdatedAt = now(uc.Clock)
		if err := repo.UpdateRevision(ctx, current); err != nil {
			return err
		}
		revision = current
		return nil
	})
	if err != nil {
		return entities.Revision{}, err
	}

	logger.Info("draft submitted for review",
		"event", "governance_draft_submitted",
		"module", application.ModuleName,
		"layer", "application",
		"revision_id", revision.RevisionID,
		"kind", string(revision.Kind),
	)
	return revision, nil
}
