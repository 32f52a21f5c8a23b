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

type AdminOverrideCommand struct {
	Kind    entities.EntryKind
	EntryID string
	AdminID string
	Action  entities.OverrideAction
	Notes   string
}

type AdminOverrideResult struct {
	Override entities.AdminOverride
	Entry    entities.Entry
}

// AdminOverrideUseCase lets an admin resolve a flagged entry without
// waiting for re-review quorum.
type AdminOverrideUseCase struct {
	Store    ports.Store
	Identity ports.IdentityProvider
	Variants VariantGovernance
	Metrics  ports.Metrics
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func (uc AdminOverrideUseCase) Execute(ctx context.Context, cmd AdminOverrideCommand) (AdminOverrideResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	adminID := strings.TrimSpace(cmd.AdminID)
	entryID := strings.TrimSpace(cmd.EntryID)
	notes := strings.TrimSpace(cmd.Notes)
	action := entities.OverrideAction(strings.ToLower(strings.TrimSpace(string(cmd.Action))))
	if adminID == "" || entryID == "" {
		return AdminOverrideResult{}, domainerrors.ErrInvalidInput
	}
	if !cmd.Kind.Valid() {
		return AdminOverrideResult{}, domainerrors.ErrInvalidKind
	}
	if uc.Identity == nil {
		return AdminOverrideResult{}, domainerrors.ErrAdminRequired
	}
	isAdmin, err := uc.Identity.IsAdmin(ctx, adminID)
	if err != nil {
		return AdminOverrideResult{}, err
	}
	if !isAdmin {
		return AdminOverrideResult{}, domainerrors.ErrAdminRequired
	}
	if notes == "" {
		return AdminOverrideResult{}, domainerrors.ErrNotesRequired
	}
	if !action.Valid() {
		return AdminOverrideResult{}, domainerrors.ErrInvalidAction
	}

	var result AdminOverrideResult
	err = uc.Store.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		entry, err := repo.LockEntry(ctx, entryID)
		if err != nil {
			return err
		}
		if entry.Kind != cmd.Kind {
			return domainerrors.ErrEntryNotFound
		}
		if err := services.ValidateOverride(entry.Kind, entry.Status, action); err != nil {
			return err
		}

		at := now(uc.Clock)
		before := entry.Status
		entry.Status = action.TargetStatus()
		entry.UpdatedAt = at
		switch action {
		case entities.OverrideActionRestoreApproved:
			if entry.Kind == entities.EntryKindFolklore {
				entry.ArchivedAt = nil
			}
		case entities.OverrideActionArchive:
			entry.ArchivedAt = timePtr(at)
		}
		if err := repo.UpdateEntry(ctx, entry); err != nil {
			return err
		}
		if action == entities.OverrideActionArchive && entry.Kind == entities.EntryKindDictionary {
			if err := uc.Variants.HandleMotherRemovedOrArchived(ctx, repo, &entry, false); err != nil {
				return err
			}
		}

		overrideID, err := newID(ctx, uc.IDGen)
		if err != nil {
			return err
		}
		override := entities.AdminOverride{
			OverrideID:   overrideID,
			AdminID:      adminID,
			Kind:         entry.Kind,
			EntryID:      entry.EntryID,
			Action:       action,
			Notes:        notes,
			StatusBefore: before,
			StatusAfter:  entry.Status,
			CreatedAt:    at,
		}
		if err := repo.CreateAdminOverride(ctx, override); err != nil {
			return err
		}
		if err := appendEvent(ctx, repo, uc.IDGen, at, EventEntryOverridden, "entry_id", entry.EntryID, map[string]any{
			"override_id": override.OverrideID,
			"entry_id":    entry.EntryID,
			"kind":        string(entry.Kind),
			"admin_id":    adminID,
			"action":      string(action),
			"from_status": string(before),
			"to_status":   string(entry.Status),
		}); err != nil {
			return err
		}
		result = AdminOverrideResult{Override: override, Entry: entry}
		return nil
	})
	if err != nil {
		logger.Warn("admin override failed",
			"event", "governance_admin_override_failed",
			"module", application.ModuleName,
			"layer", "application",
			"entry_id", entryID,
			"admin_id", adminID,
			"action", string(action),
			"error", err.Error(),
		)
		return AdminOverrideResult{}, err
	}

	resolveMetrics(uc.Metrics).RecordOutcome(result.Entry.Kind, "override_"+string(action))
	logger.Info("admin override applied",
		"event", "governance_admin_override_applied",
		"module", application.ModuleName,
		"layer", "application",
		"entry_id", result.Entry.EntryID,
		"admin_id", adminID,
		"action", string(action),
		"status_before", string(result.Override.StatusBefore),
		"status_after", string(result.Override.StatusAfter),
	)
	return result, nil
}
