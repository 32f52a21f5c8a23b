package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexicon/contexts/editorial-governance/governance-service/domain/entities"
	domainerrors "lexicon/contexts/editorial-governance/governance-service/domain/errors"
)

type edge struct {
	from entities.EntryStatus
	to   entities.EntryStatus
}

func expectedEdges(kind entities.EntryKind) map[edge]bool {
	edges := map[edge]bool{
		{entities.EntryStatusDraft, entities.EntryStatusPending}:                true,
		{entities.EntryStatusPending, entities.EntryStatusApproved}:             true,
		{entities.EntryStatusPending, entities.EntryStatusRejected}:             true,
		{entities.EntryStatusApproved, entities.EntryStatusApprovedUnderReview}: true,
		{entities.EntryStatusApproved, entities.EntryStatusArchived}:            true,
		{entities.EntryStatusApprovedUnderReview, entities.EntryStatusApproved}: true,
		{entities.EntryStatusApprovedUnderReview, entities.EntryStatusRejected}: true,
		{entities.EntryStatusRejected, entities.EntryStatusArchived}:            true,
		{entities.EntryStatusArchived, entities.EntryStatusApproved}:            true,
	}
	if kind == entities.EntryKindFolklore {
		edges[edge{entities.EntryStatusArchived, entities.EntryStatusDeleted}] = true
	}
	return edges
}

func TestTransitionTableCoversEveryStatusPair(t *testing.T) {
	for _, kind := range []entities.EntryKind{entities.EntryKindDictionary, entities.EntryKindFolklore} {
		allowed := expectedEdges(kind)
		for _, from := range AllStatuses() {
			for _, to := range AllStatuses() {
				err := ValidateTransition(kind, from, to, false)
				if allowed[edge{from, to}] {
					assert.NoError(t, err, "%s %s -> %s", kind, from, to)
					continue
				}
				require.Error(t, err, "%s %s -> %s", kind, from, to)
				assert.ErrorIs(t, err, domainerrors.ErrInvalidTransition)

				var transitionErr *domainerrors.TransitionError
				require.ErrorAs(t, err, &transitionErr)
				assert.Equal(t, string(from), transitionErr.From)
				assert.Equal(t, string(to), transitionErr.To)
			}
		}
	}
}

func TestValidateTransitionAllowSame(t *testing.T) {
	assert.NoError(t, ValidateTransition(entities.EntryKindDictionary, entities.EntryStatusApproved, entities.EntryStatusApproved, true))
	assert.ErrorIs(t,
		ValidateTransition(entities.EntryKindDictionary, entities.EntryStatusApproved, entities.EntryStatusApproved, false),
		domainerrors.ErrInvalidTransition,
	)
	assert.NoError(t, ValidateTransition(entities.EntryKindFolklore, entities.EntryStatusRejected, entities.EntryStatusRejected, true))
}

func TestTerminalDeletedHasNoExits(t *testing.T) {
	for _, kind := range []entities.EntryKind{entities.EntryKindDictionary, entities.EntryKindFolklore} {
		assert.Empty(t, Transitions(kind)[entities.EntryStatusDeleted])
	}
}

func TestTransitionsReturnsCopy(t *testing.T) {
	table := Transitions(entities.EntryKindDictionary)
	table[entities.EntryStatusDraft] = append(table[entities.EntryStatusDraft], entities.EntryStatusDeleted)

	err := ValidateTransition(entities.EntryKindDictionary, entities.EntryStatusDraft, entities.EntryStatusDeleted, false)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidTransition)
}

func TestValidateHardDelete(t *testing.T) {
	for _, kind := range []entities.EntryKind{entities.EntryKindDictionary, entities.EntryKindFolklore} {
		for _, from := range AllStatuses() {
			err := ValidateHardDelete(kind, from)
			if from == entities.EntryStatusArchived {
				assert.NoError(t, err)
				continue
			}
			assert.ErrorIs(t, err, domainerrors.ErrInvalidTransition, "%s %s", kind, from)
		}
	}
}

func TestValidateRevisionTransition(t *testing.T) {
	assert.NoError(t, ValidateRevisionTransition(entities.RevisionStatusDraft, entities.RevisionStatusPending))
	assert.NoError(t, ValidateRevisionTransition(entities.RevisionStatusPending, entities.RevisionStatusApproved))
	assert.NoError(t, ValidateRevisionTransition(entities.RevisionStatusPending, entities.RevisionStatusRejected))

	assert.ErrorIs(t, ValidateRevisionTransition(entities.RevisionStatusDraft, entities.RevisionStatusApproved), domainerrors.ErrInvalidTransition)
	assert.ErrorIs(t, ValidateRevisionTransition(entities.RevisionStatusApproved, entities.RevisionStatusPending), domainerrors.ErrInvalidTransition)
	assert.ErrorIs(t, ValidateRevisionTransition(entities.RevisionStatusRejected, entities.RevisionStatusApproved), domainerrors.ErrInvalidTransition)
}

func TestValidateOverride(t *testing.T) {
	actions := []entities.OverrideAction{
		entities.OverrideActionForceReject,
		entities.OverrideActionRestoreApproved,
		entities.OverrideActionArchive,
	}
	for _, action := range actions {
		assert.NoError(t, ValidateOverride(entities.EntryKindDictionary, entities.EntryStatusApprovedUnderReview, action))
		assert.ErrorIs(t,
			ValidateOverride(entities.EntryKindFolklore, entities.EntryStatusApproved, action),
			domainerrors.ErrInvalidTransition,
		)
	}
	assert.ErrorIs(t,
		ValidateOverride(entities.EntryKindDictionary, entities.EntryStatusApprovedUnderReview, "purge"),
		domainerrors.ErrInvalidAction,
	)
}
