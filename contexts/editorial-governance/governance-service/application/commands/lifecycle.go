package commands

import (
	"context"
	"log/slog"
	"time"

	application "lexicon/contexts/editorial-governance/governance-service/application"
	"lexicon/contexts/editorial-governance/governance-service/domain/entities"
	"lexicon/contexts/editorial-governance/governance-service/domain/services"
	"lexicon/contexts/editorial-governance/governance-service/ports"
)

// RetentionWindow is how long a rejected entry may sit idle before it is
// archived, and how long an archived entry is kept before deletion.
const RetentionWindow = 365 * 24 * time.Hour

// LifecycleTransitions applies the time-based archive and delete edges to a
// single entry. Callers run each method inside a transaction.
type LifecycleTransitions struct {
	Variants VariantGovernance
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

// DeletedEntry describes a hard-deleted entry and the media it left behind.
type DeletedEntry struct {
	EntryID   string
	Kind      entities.EntryKind
	MediaRefs []string
}

// LastActivity is the later of the entry's own last update and its latest
// revision creation, of any status.
func LastActivity(ctx context.Context, repo ports.Repository, entry entities.Entry) (time.Time, error) {
	latest, err := repo.LatestRevisionCreatedAt(ctx, entry.EntryID)
	if err != nil {
		return time.Time{}, err
	}
	activity := entry.UpdatedAt
	if entry.CreatedAt.After(activity) {
		activity = entry.CreatedAt
	}
	if latest != nil && latest.After(activity) {
		activity = *latest
	}
	return activity, nil
}

// ArchiveIfStale archives a rejected entry whose last activity is at or
// before now minus the retention window. It reports whether it acted.
func (l LifecycleTransitions) ArchiveIfStale(ctx context.Context, repo ports.Repository, entryID string) (entities.Entry, bool, error) {
	entry, err := repo.LockEntry(ctx, entryID)
	if err != nil {
		return entities.Entry{}, false, err
	}
	if entry.Status != entities.EntryStatusRejected {
		return entry, false, nil
	}
	at := now(l.Clock)
	activity, err := LastActivity(ctx, repo, entry)
	if err != nil {
		return entities.Entry{}, false, err
	}
	if activity.After(at.Add(-RetentionWindow)) {
		return entry, false, nil
	}
	if err := services.ValidateTransition(entry.Kind, entry.Status, entities.EntryStatusArchived, false); err != nil {
		return entities.Entry{}, false, err
	}

	entry.Status = entities.EntryStatusArchived
	entry.ArchivedAt = timePtr(at)
	entry.UpdatedAt = at
	if err := repo.UpdateEntry(ctx, entry); err != nil {
		return entities.Entry{}, false, err
	}
	if entry.Kind == entities.EntryKindDictionary {
		if err := l.Variants.HandleMotherRemovedOrArchived(ctx, repo, &entry, false); err != nil {
			return entities.Entry{}, false, err
		}
	}
	if err := appendEvent(ctx, repo, l.IDGen, at, EventEntryArchived, "entry_id", entry.EntryID, map[string]any{
		"entry_id":      entry.EntryID,
		"kind":          string(entry.Kind),
		"last_activity": activity.UTC(),
	}); err != nil {
		return entities.Entry{}, false, err
	}

	application.ResolveLogger(l.Logger).Info("stale rejected entry archived",
		"event", "governance_entry_archived",
		"module", application.ModuleName,
		"layer", "application",
		"entry_id", entry.EntryID,
		"kind", string(entry.Kind),
	)
	return entry, true, nil
}

// DeleteIfExpired hard-deletes an entry archived for at least the retention
// window. Contribution events survive with their entry reference cleared.
func (l LifecycleTransitions) DeleteIfExpired(ctx context.Context, repo ports.Repository, entryID string) (DeletedEntry, bool, error) {
	entry, err := repo.LockEntry(ctx, entryID)
	if err != nil {
		return DeletedEntry{}, false, err
	}
	if entry.Status != entities.EntryStatusArchived {
		return DeletedEntry{}, false, nil
	}
	at := now(l.Clock)
	archivedAt := entry.UpdatedAt
	if entry.ArchivedAt != nil {
		archivedAt = *entry.ArchivedAt
	}
	if archivedAt.After(at.Add(-RetentionWindow)) {
		return DeletedEntry{}, false, nil
	}
	if err := services.ValidateHardDelete(entry.Kind, entry.Status); err != nil {
		return DeletedEntry{}, false, err
	}

	if entry.Kind == entities.EntryKindDictionary {
		if err := l.Variants.HandleMotherRemovedOrArchived(ctx, repo, &entry, true); err != nil {
			return DeletedEntry{}, false, err
		}
	}
	deleted := DeletedEntry{EntryID: entry.EntryID, Kind: entry.Kind, MediaRefs: entry.MediaRefs()}
	if err := repo.DeleteEntry(ctx, entry.EntryID); err != nil {
		return DeletedEntry{}, false, err
	}
	if err := appendEvent(ctx, repo, l.IDGen, at, EventEntryDeleted, "entry_id", entry.EntryID, map[string]any{
		"entry_id":    entry.EntryID,
		"kind":        string(entry.Kind),
		"archived_at": archivedAt.UTC(),
		"media_refs":  deleted.MediaRefs,
	}); err != nil {
		return DeletedEntry{}, false, err
	}

	application.ResolveLogger(l.Logger).Info("expired archived entry deleted",
		"event", "governance_entry_deleted",
		"module", application.ModuleName,
		"layer", "application",
		"entry_id", entry.EntryID,
		"kind", string(entry.Kind),
		"media_count", len(deleted.MediaRefs),
	)
	return deleted, true, nil
}
