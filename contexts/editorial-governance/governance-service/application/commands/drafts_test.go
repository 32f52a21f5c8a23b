package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexicon/contexts/editorial-governance/governance-service/application/commands"
	"lexicon/contexts/editorial-governance/governance-service/domain/entities"
	domainerrors "lexicon/contexts/editorial-governance/governance-service/domain/errors"
)

func TestDraftEditsBelongToTheirOwner(t *testing.T) {
	f := newFixture(t)
	draft, err := f.module.Drafts.CreateDraft(f.ctx, commands.CreateDraftCommand{
		Kind:          entities.EntryKindDictionary,
		ContributorID: author,
		ProposedData:  map[string]any{"term": "pakapa"},
	})
	require.NoError(t, err)
	assert.Equal(t, entities.RevisionStatusDraft, draft.Status)

	_, err = f.module.Drafts.UpdateDraft(f.ctx, commands.UpdateDraftCommand{
		RevisionID:   draft.RevisionID,
		ActorID:      editor,
		ProposedData: map[string]any{"meaning": "hijacked"},
	})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	updated, err := f.module.Drafts.UpdateDraft(f.ctx, commands.UpdateDraftCommand{
		RevisionID:   draft.RevisionID,
		ActorID:      author,
		ProposedData: map[string]any{"meaning": "to strengthen"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pakapa", updated.ProposedData.Text("term"))
	assert.Equal(t, "to strengthen", updated.ProposedData.Text("meaning"))

	_, err = f.module.Drafts.SubmitDraftForReview(f.ctx, commands.SubmitDraftCommand{RevisionID: draft.RevisionID, ActorID: editor})
	assert.ErrorIs(t, err, domainerrors.ErrNotRevisionOwner)

	_, err = f.module.Drafts.SubmitDraftForReview(f.ctx, commands.SubmitDraftCommand{RevisionID: draft.RevisionID, ActorID: author})
	require.NoError(t, err)

	_, err = f.module.Drafts.UpdateDraft(f.ctx, commands.UpdateDraftCommand{
		RevisionID:   draft.RevisionID,
		ActorID:      author,
		ProposedData: map[string]any{"meaning": "late change"},
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidTransition)
}

func TestSubmitRequiresFieldsPerKind(t *testing.T) {
	f := newFixture(t)
	draft, err := f.module.Drafts.CreateDraft(f.ctx, commands.CreateDraftCommand{
		Kind:          entities.EntryKindFolklore,
		ContributorID: author,
		ProposedData:  map[string]any{"title": "Laji of the sea", "category": "Laji"},
	})
	require.NoError(t, err)
	assert.Equal(t, string(entities.FolkloreCategoryLaji), draft.ProposedData.Text("category"))

	_, err = f.module.Drafts.SubmitDraftForReview(f.ctx, commands.SubmitDraftCommand{RevisionID: draft.RevisionID, ActorID: author})
	require.ErrorIs(t, err, domainerrors.ErrMissingRequiredField)
	var missing *domainerrors.MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.ElementsMatch(t, []string{"content", "source"}, missing.Fields)
	assert.Equal(t, entities.RevisionStatusDraft, f.revision(draft.RevisionID).Status)
}

func TestDraftFromEntryStartsFromSnapshot(t *testing.T) {
	f := newFixture(t)
	published := f.publishTerm(author, "mayvanuvanua", "", "")

	draft, err := f.module.Drafts.CreateDraft(f.ctx, commands.CreateDraftCommand{
		Kind:          entities.EntryKindDictionary,
		ContributorID: editor,
		BaseEntryID:   published.Entry.EntryID,
		ProposedData:  map[string]any{"usage_notes": "formal"},
		TargetGroupID: "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, published.Entry.EntryID, draft.EntryID)
	assert.Equal(t, "mayvanuvanua", draft.ProposedData.Text("term"))
	assert.Equal(t, "formal", draft.ProposedData.Text("usage_notes"))
	assert.Empty(t, draft.TargetGroupID)

	_, err = f.module.Drafts.CreateDraft(f.ctx, commands.CreateDraftCommand{
		Kind:          entities.EntryKindFolklore,
		ContributorID: editor,
		BaseEntryID:   published.Entry.EntryID,
	})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = f.module.Drafts.CreateDraft(f.ctx, commands.CreateDraftCommand{
		Kind:          entities.EntryKindDictionary,
		ContributorID: editor,
		TargetGroupID: "missing-group",
		ProposedData:  map[string]any{"term": "x"},
	})
	assert.ErrorIs(t, err, domainerrors.ErrVariantGroupNotFound)
}

func TestCreateDraftValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.module.Drafts.CreateDraft(f.ctx, commands.CreateDraftCommand{
		Kind:          "song",
		ContributorID: author,
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidKind)

	_, err = f.module.Drafts.CreateDraft(f.ctx, commands.CreateDraftCommand{
		Kind:          entities.EntryKindDictionary,
		ContributorID: "  ",
		ProposedData:  map[string]any{"term": "x"},
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestNormalizeProposedData(t *testing.T) {
	data, err := commands.NormalizeProposedData(entities.EntryKindDictionary, map[string]any{
		"term":                          42,
		"audio_source_is_self_recorded": "true",
		"inflected_forms":               map[string]any{"past": "nivahay"},
		"unknown":                       "dropped",
	})
	require.NoError(t, err)
	assert.Equal(t, "42", data["term"])
	assert.Equal(t, true, data["audio_source_is_self_recorded"])
	assert.Equal(t, map[string]string{"past": "nivahay"}, data["inflected_forms"])
	assert.NotContains(t, data, "unknown")

	_, err = commands.NormalizeProposedData(entities.EntryKindDictionary, map[string]any{
		"term_source_is_self_knowledge": "perhaps",
	})
	var invalid *domainerrors.MissingFieldsError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{"term_source_is_self_knowledge"}, invalid.Fields)
}
