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

// VariantGovernance keeps every variant group pointing at exactly one
// published mother entry. Each method runs inside the caller's transaction
// and updates the passed entry in place.
type VariantGovernance struct {
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// CreateGroup founds a group with entry as its only member and mother.
func (v VariantGovernance) CreateGroup(ctx context.Context, repo ports.Repository, entry *entities.Entry) (entities.VariantGroup, error) {
	if entry == nil || entry.Kind != entities.EntryKindDictionary {
		return entities.VariantGroup{}, domainerrors.ErrInvalidKind
	}
	groupID, err := newID(ctx, v.IDGen)
	if err != nil {
		return entities.VariantGroup{}, err
	}
	at := now(v.Clock)
	group := entities.VariantGroup{
		GroupID:       groupID,
		MotherEntryID: entry.EntryID,
		CreatedAt:     at,
		UpdatedAt:     at,
	}
	if err := repo.CreateVariantGroup(ctx, group); err != nil {
		return entities.VariantGroup{}, err
	}
	entry.VariantGroupID = group.GroupID
	entry.IsMother = true
	entry.UpdatedAt = at
	if err := repo.UpdateEntry(ctx, *entry); err != nil {
		return entities.VariantGroup{}, err
	}
	v.logElection("variant group created", "governance_variant_group_created", group.GroupID, entry.EntryID)
	return group, nil
}

// Attach joins entry to an existing group. A published entry joining a
// group without a valid mother is promoted immediately.
func (v VariantGovernance) Attach(ctx context.Context, repo ports.Repository, entry *entities.Entry, groupID string) error {
	if entry == nil || entry.Kind != entities.EntryKindDictionary {
		return domainerrors.ErrInvalidKind
	}
	group, err := repo.GetVariantGroup(ctx, strings.TrimSpace(groupID))
	if err != nil {
		return err
	}
	_, hasMother, err := v.currentMother(ctx, repo, group)
	if err != nil {
		return err
	}

	entry.VariantGroupID = group.GroupID
	entry.IsMother = false
	entry.UpdatedAt = now(v.Clock)
	if err := repo.UpdateEntry(ctx, *entry); err != nil {
		return err
	}
	if !hasMother && entry.Status.Published() {
		return v.PromoteToMother(ctx, repo, entry)
	}
	return nil
}

// PromoteToMother makes entry the single mother of its group.
func (v VariantGovernance) PromoteToMother(ctx context.Context, repo ports.Repository, entry *entities.Entry) error {
	if entry == nil || entry.VariantGroupID == "" {
		return domainerrors.ErrVariantGroupNotFound
	}
	group, err := repo.GetVariantGroup(ctx, entry.VariantGroupID)
	if err != nil {
		return err
	}
	members, err := repo.ListEntries(ctx, ports.EntryFilter{VariantGroupID: group.GroupID})
	if err != nil {
		return err
	}
	at := now(v.Clock)
	for _, member := range members {
		if member.EntryID == entry.EntryID || !member.IsMother {
			continue
		}
		member.IsMother = false
		member.UpdatedAt = at
		if err := repo.UpdateEntry(ctx, member); err != nil {
			return err
		}
	}

	entry.IsMother = true
	entry.UpdatedAt = at
	if err := repo.UpdateEntry(ctx, *entry); err != nil {
		return err
	}
	group.MotherEntryID = entry.EntryID
	group.UpdatedAt = at
	if err := repo.UpdateVariantGroup(ctx, group); err != nil {
		return err
	}
	v.logElection("variant mother promoted", "governance_variant_mother_promoted", group.GroupID, entry.EntryID)
	return nil
}

// RecomputeMother re-runs the election among published members other than
// excludeEntryID. With no candidates the group is left without a mother.
func (v VariantGovernance) RecomputeMother(ctx context.Context, repo ports.Repository, groupID string, excludeEntryID string) (string, error) {
	group, err := repo.GetVariantGroup(ctx, groupID)
	if err != nil {
		return "", err
	}
	members, err := repo.ListEntries(ctx, ports.EntryFilter{VariantGroupID: group.GroupID})
	if err != nil {
		return "", err
	}

	candidates := make([]services.MotherCandidate, 0, len(members))
	for _, member := range members {
		firstApproved, err := firstApprovalAt(ctx, repo, member)
		if err != nil {
			return "", err
		}
		candidates = append(candidates, services.MotherCandidate{
			EntryID:         member.EntryID,
			Status:          member.Status,
			FirstApprovedAt: firstApproved,
			EntryCreatedAt:  member.CreatedAt,
		})
	}

	winnerID, ok := services.ElectMother(candidates, excludeEntryID)
	if !ok {
		at := now(v.Clock)
		for _, member := range members {
			if !member.IsMother {
				continue
			}
			member.IsMother = false
			member.UpdatedAt = at
			if err := repo.UpdateEntry(ctx, member); err != nil {
				return "", err
			}
		}
		group.MotherEntryID = ""
		group.UpdatedAt = at
		if err := repo.UpdateVariantGroup(ctx, group); err != nil {
			return "", err
		}
		v.logElection("variant group left without mother", "governance_variant_mother_cleared", group.GroupID, "")
		return "", nil
	}

	for _, member := range members {
		if member.EntryID != winnerID {
			continue
		}
		winner := member
		if err := v.PromoteToMother(ctx, repo, &winner); err != nil {
			return "", err
		}
	}
	return winnerID, nil
}

// MaybePromoteGeneralIvatan promotes a generalized-form entry over any
// other variant. It reports whether entry is mother afterwards.
func (v VariantGovernance) MaybePromoteGeneralIvatan(ctx context.Context, repo ports.Repository, entry *entities.Entry) (bool, error) {
	if entry == nil || entry.VariantGroupID == "" || !services.IsGeneralizedForm(entry.VariantType()) {
		return false, nil
	}
	if !entry.Status.Published() {
		return false, nil
	}
	group, err := repo.GetVariantGroup(ctx, entry.VariantGroupID)
	if err != nil {
		return false, err
	}
	if entry.IsMother && group.MotherEntryID == entry.EntryID {
		return true, nil
	}
	if err := v.PromoteToMother(ctx, repo, entry); err != nil {
		return false, err
	}
	return true, nil
}

// HandleMotherRemovedOrArchived re-elects when the mother leaves the
// published set. removed excludes the entry even if still present.
func (v VariantGovernance) HandleMotherRemovedOrArchived(ctx context.Context, repo ports.Repository, entry *entities.Entry, removed bool) error {
	if entry == nil || entry.VariantGroupID == "" {
		return nil
	}
	group, err := repo.GetVariantGroup(ctx, entry.VariantGroupID)
	if err != nil {
		return err
	}
	if group.MotherEntryID != entry.EntryID && !entry.IsMother {
		return nil
	}

	exclude := ""
	if removed {
		exclude = entry.EntryID
	}
	if _, err := v.RecomputeMother(ctx, repo, group.GroupID, exclude); err != nil {
		return err
	}
	refreshed, err := repo.GetEntry(ctx, entry.EntryID)
	if err != nil {
		return err
	}
	*entry = refreshed
	return nil
}

// EnsureGroupAndMother places a freshly published dictionary entry in a
// group and repairs the single-mother invariant around it.
func (v VariantGovernance) EnsureGroupAndMother(ctx context.Context, repo ports.Repository, entry *entities.Entry, targetGroupID string) error {
	if entry == nil || entry.Kind != entities.EntryKindDictionary {
		return nil
	}
	if entry.VariantGroupID == "" {
		if strings.TrimSpace(targetGroupID) != "" {
			return v.Attach(ctx, repo, entry, targetGroupID)
		}
		_, err := v.CreateGroup(ctx, repo, entry)
		return err
	}

	group, err := repo.GetVariantGroup(ctx, entry.VariantGroupID)
	if err != nil {
		return err
	}
	mother, hasMother, err := v.currentMother(ctx, repo, group)
	if err != nil {
		return err
	}
	if !hasMother {
		if entry.Status.Published() {
			return v.PromoteToMother(ctx, repo, entry)
		}
		return nil
	}
	if mother.EntryID != entry.EntryID && entry.IsMother {
		entry.IsMother = false
		entry.UpdatedAt = now(v.Clock)
		return repo.UpdateEntry(ctx, *entry)
	}
	return nil
}

func (v VariantGovernance) currentMother(ctx context.Context, repo ports.Repository, group entities.VariantGroup) (entities.Entry, bool, error) {
	if group.MotherEntryID == "" {
		return entities.Entry{}, false, nil
	}
	members, err := repo.ListEntries(ctx, ports.EntryFilter{VariantGroupID: group.GroupID})
	if err != nil {
		return entities.Entry{}, false, err
	}
	mother, ok := group.MotherOf(members)
	return mother, ok, nil
}

func (v VariantGovernance) logElection(message string, event string, groupID string, entryID string) {
	application.ResolveLogger(v.Logger).Info(message,
		"event", event,
		"module", application.ModuleName,
		"layer", "application",
		"variant_group_id", groupID,
		"entry_id", entryID,
	)
}

// firstApprovalAt is the earliest approval among the entry's approved
// revisions. The base snapshot is never pruned, so it is always included.
func firstApprovalAt(ctx context.Context, repo ports.Repository, entry entities.Entry) (*time.Time, error) {
	approved, err := repo.ListRevisions(ctx, ports.RevisionFilter{
		EntryID:  entry.EntryID,
		Statuses: []entities.RevisionStatus{entities.RevisionStatusApproved},
	})
	if err != nil {
		return nil, err
	}
	var earliest *time.Time
	for _, revision := range approved {
		if revision.ApprovedAt == nil {
			continue
		}
		if earliest == nil || revision.ApprovedAt.Before(*earliest) {
			earliest = timePtr(*revision.ApprovedAt)
		}
	}
	return earliest, nil
}
