package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexicon/contexts/editorial-governance/governance-service/application/commands"
	"lexicon/contexts/editorial-governance/governance-service/domain/entities"
	domainerrors "lexicon/contexts/editorial-governance/governance-service/domain/errors"
)

func (f *fixture) override(entryID string, action entities.OverrideAction) commands.AdminOverrideResult {
	f.t.Helper()
	f.tick()
	result, err := f.module.Overrides.Execute(f.ctx, commands.AdminOverrideCommand{
		Kind:    entities.EntryKindDictionary,
		EntryID: entryID,
		AdminID: adminA,
		Action:  action,
		Notes:   "resolved by admin",
	})
	require.NoError(f.t, err)
	return result
}

func TestAdminOverrideRules(t *testing.T) {
	f := newFixture(t)
	published := f.publishTerm(author, "ahep", "", "")
	entryID := published.Entry.EntryID

	cases := []struct {
		name string
		cmd  commands.AdminOverrideCommand
		want error
	}{
		{
			name: "reviewer is not admin",
			cmd:  commands.AdminOverrideCommand{Kind: entities.EntryKindDictionary, EntryID: entryID, AdminID: reviewerA, Action: entities.OverrideActionForceReject, Notes: "x"},
			want: domainerrors.ErrAdminRequired,
		},
		{
			name: "notes required",
			cmd:  commands.AdminOverrideCommand{Kind: entities.EntryKindDictionary, EntryID: entryID, AdminID: adminA, Action: entities.OverrideActionForceReject, Notes: " "},
			want: domainerrors.ErrNotesRequired,
		},
		{
			name: "unknown action",
			cmd:  commands.AdminOverrideCommand{Kind: entities.EntryKindDictionary, EntryID: entryID, AdminID: adminA, Action: "purge", Notes: "x"},
			want: domainerrors.ErrInvalidAction,
		},
		{
			name: "entry not under review",
			cmd:  commands.AdminOverrideCommand{Kind: entities.EntryKindDictionary, EntryID: entryID, AdminID: adminA, Action: entities.OverrideActionArchive, Notes: "x"},
			want: domainerrors.ErrInvalidTransition,
		},
		{
			name: "kind mismatch",
			cmd:  commands.AdminOverrideCommand{Kind: entities.EntryKindFolklore, EntryID: entryID, AdminID: adminA, Action: entities.OverrideActionArchive, Notes: "x"},
			want: domainerrors.ErrNotFound,
		},
		{
			name: "invalid kind",
			cmd:  commands.AdminOverrideCommand{Kind: "song", EntryID: entryID, AdminID: adminA, Action: entities.OverrideActionArchive, Notes: "x"},
			want: domainerrors.ErrInvalidKind,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.module.Overrides.Execute(f.ctx, tc.cmd)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, entities.EntryStatusApproved, f.entry(entryID).Status)
}

func TestAdminForceRejectRecordsOverride(t *testing.T) {
	f := newFixture(t)
	published := f.publishTerm(author, "rakuh", "", "")
	f.flag(published.Revision.RevisionID, reviewerC)

	result := f.override(published.Entry.EntryID, entities.OverrideActionForceReject)
	assert.Equal(t, entities.EntryStatusRejected, result.Entry.Status)
	assert.Equal(t, entities.EntryStatusApprovedUnderReview, result.Override.StatusBefore)
	assert.Equal(t, entities.EntryStatusRejected, result.Override.StatusAfter)
	assert.Equal(t, "resolved by admin", result.Override.Notes)

	overrides, err := f.module.Store.ListAdminOverrides(f.ctx, published.Entry.EntryID)
	require.NoError(t, err)
	require.Len(t, overrides, 1)
	assert.Equal(t, entities.OverrideActionForceReject, overrides[0].Action)
	assert.Contains(t, f.eventTypes(), commands.EventEntryOverridden)

	// force_reject keeps the group pointing at the rejected entry.
	entry := f.entry(published.Entry.EntryID)
	assert.Equal(t, entry.EntryID, f.group(entry.VariantGroupID).MotherEntryID)
}

func TestAdminRestoreReturnsEntryToApproved(t *testing.T) {
	f := newFixture(t)
	published := f.publishTerm(author, "dekey", "", "")
	f.flag(published.Revision.RevisionID, reviewerC)

	result := f.override(published.Entry.EntryID, entities.OverrideActionRestoreApproved)
	assert.Equal(t, entities.EntryStatusApproved, result.Entry.Status)

	_, err := f.module.Overrides.Execute(f.ctx, commands.AdminOverrideCommand{
		Kind:    entities.EntryKindDictionary,
		EntryID: published.Entry.EntryID,
		AdminID: adminA,
		Action:  entities.OverrideActionRestoreApproved,
		Notes:   "again",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidTransition)
}

func TestArchivingMotherElectsEarliestApprovedVariant(t *testing.T) {
	f := newFixture(t)
	first := f.publishTerm(author, "vahay", "", "")
	groupID := first.Entry.VariantGroupID
	second := f.publishTerm(editor, "vahey", "isamurong", groupID)
	third := f.publishTerm(editor, "bahay", "itbayat", groupID)

	assert.False(t, f.entry(second.Entry.EntryID).IsMother)
	assert.False(t, f.entry(third.Entry.EntryID).IsMother)
	assert.Equal(t, first.Entry.EntryID, f.group(groupID).MotherEntryID)

	credits := f.contributions(editor)
	require.Len(t, credits, 2)
	for _, credit := range credits {
		assert.Equal(t, entities.ContributionTypeRevision, credit.Type)
	}

	f.flag(first.Revision.RevisionID, reviewerC)
	archived := f.override(first.Entry.EntryID, entities.OverrideActionArchive)
	assert.Equal(t, entities.EntryStatusArchived, archived.Entry.Status)
	assert.False(t, archived.Entry.IsMother)
	require.NotNil(t, archived.Entry.ArchivedAt)

	assert.Equal(t, second.Entry.EntryID, f.group(groupID).MotherEntryID)
	assert.True(t, f.entry(second.Entry.EntryID).IsMother)
	assert.False(t, f.entry(third.Entry.EntryID).IsMother)
}

func TestArchivingOnlyMemberClearsMother(t *testing.T) {
	f := newFixture(t)
	only := f.publishTerm(author, "kavavata", "", "")
	f.flag(only.Revision.RevisionID, reviewerC)

	archived := f.override(only.Entry.EntryID, entities.OverrideActionArchive)
	assert.False(t, archived.Entry.IsMother)
	assert.Empty(t, f.group(only.Entry.VariantGroupID).MotherEntryID)
}

func TestGeneralizedFormTakesOverMother(t *testing.T) {
	f := newFixture(t)
	first := f.publishTerm(author, "vahey", "isamurong", "")
	groupID := first.Entry.VariantGroupID

	general := f.publishTerm(editor, "vahay", "General Ivatan", groupID)
	assert.True(t, general.Entry.IsMother)
	assert.Equal(t, general.Entry.EntryID, f.group(groupID).MotherEntryID)
	assert.False(t, f.entry(first.Entry.EntryID).IsMother)

	credits := f.contributions(editor)
	require.Len(t, credits, 1)
	assert.Equal(t, entities.ContributionTypeDictionaryTerm, credits[0].Type)
}
