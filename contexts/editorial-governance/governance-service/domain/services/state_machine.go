package services

import (
	"lexicon/contexts/editorial-governance/governance-service/domain/entities"
	domainerrors "lexicon/contexts/editorial-governance/governance-service/domain/errors"
)

// TransitionTable maps a status to the statuses it may move to.
type TransitionTable map[entities.EntryStatus][]entities.EntryStatus

var dictionaryTransitions = TransitionTable{
	entities.EntryStatusDraft:               {entities.EntryStatusPending},
	entities.EntryStatusPending:             {entities.EntryStatusApproved, entities.EntryStatusRejected},
	entities.EntryStatusApproved:            {entities.EntryStatusApprovedUnderReview, entities.EntryStatusArchived},
	entities.EntryStatusApprovedUnderReview: {entities.EntryStatusApproved, entities.EntryStatusRejected},
	entities.EntryStatusRejected:            {entities.EntryStatusArchived},
	entities.EntryStatusArchived:            {entities.EntryStatusApproved},
}

var folkloreTransitions = TransitionTable{
	entities.EntryStatusDraft:               {entities.EntryStatusPending},
	entities.EntryStatusPending:             {entities.EntryStatusApproved, entities.EntryStatusRejected},
	entities.EntryStatusApproved:            {entities.EntryStatusApprovedUnderReview, entities.EntryStatusArchived},
	entities.EntryStatusApprovedUnderReview: {entities.EntryStatusApproved, entities.EntryStatusRejected},
	entities.EntryStatusRejected:            {entities.EntryStatusArchived},
	entities.EntryStatusArchived:            {entities.EntryStatusApproved, entities.EntryStatusDeleted},
}

// Transitions returns a copy of the table for kind.
func Transitions(kind entities.EntryKind) TransitionTable {
	source := tableFor(kind)
	out := make(TransitionTable, len(source))
	for from, targets := range source {
		out[from] = append([]entities.EntryStatus(nil), targets...)
	}
	return out
}

// Allows reports whether the table has an edge from one status to another.
func (t TransitionTable) Allows(from entities.EntryStatus, to entities.EntryStatus) bool {
	for _, target := range t[from] {
		if target == to {
			return true
		}
	}
	return false
}

// ValidateTransition fails with a *TransitionError unless to is an edge out
// of from, or from equals to and allowSame is set.
func ValidateTransition(kind entities.EntryKind, from entities.EntryStatus, to entities.EntryStatus, allowSame bool) error {
	if from == to && allowSame {
		return nil
	}
	if tableFor(kind).Allows(from, to) {
		return nil
	}
	return &domainerrors.TransitionError{Entity: entityName(kind), From: string(from), To: string(to)}
}

// ValidateHardDelete is the checked path to deletion used by lifecycle
// maintenance. Only archived entries may be deleted.
func ValidateHardDelete(kind entities.EntryKind, from entities.EntryStatus) error {
	if from == entities.EntryStatusArchived {
		return nil
	}
	return &domainerrors.TransitionError{Entity: entityName(kind), From: string(from), To: string(entities.EntryStatusDeleted)}
}

// AllStatuses lists every entry status.
func AllStatuses() []entities.EntryStatus {
	return []entities.EntryStatus{
		entities.EntryStatusDraft,
		entities.EntryStatusPending,
		entities.EntryStatusApproved,
		entities.EntryStatusApprovedUnderReview,
		entities.EntryStatusRejected,
		entities.EntryStatusArchived,
		entities.EntryStatusDeleted,
	}
}

func tableFor(kind entities.EntryKind) TransitionTable {
	if kind == entities.EntryKindFolklore {
		return folkloreTransitions
	}
	return dictionaryTransitions
}

func entityName(kind entities.EntryKind) string {
	if kind == entities.EntryKindFolklore {
		return "folklore_entry"
	}
	return "dictionary_entry"
}

var revisionTransitions = map[entities.RevisionStatus][]entities.RevisionStatus{
	entities.RevisionStatusDraft:   {entities.RevisionStatusPending},
	entities.RevisionStatusPending: {entities.RevisionStatusApproved, entities.RevisionStatusRejected},
}

// ValidateRevisionTransition guards the revision workflow status.
func ValidateRevisionTransition(from entities.RevisionStatus, to entities.RevisionStatus) error {
	for _, target := range revisionTransitions[from] {
		if target == to {
			return nil
		}
	}
	return &domainerrors.TransitionError{Entity: "revision", From: string(from), To: string(to)}
}

// ValidateOverride guards admin resolution of a flagged entry. Overrides
// only apply to entries under re-review and may archive them directly.
func ValidateOverride(kind entities.EntryKind, from entities.EntryStatus, action entities.OverrideAction) error {
	if !action.Valid() {
		return domainerrors.ErrInvalidAction
	}
	if from != entities.EntryStatusApprovedUnderReview {
		return &domainerrors.TransitionError{Entity: entityName(kind), From: string(from), To: string(action.TargetStatus())}
	}
	return nil
}
