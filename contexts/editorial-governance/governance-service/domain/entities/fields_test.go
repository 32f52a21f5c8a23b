package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTripsThroughApplyProposed(t *testing.T) {
	source := Entry{
		Kind: EntryKindDictionary,
		Dictionary: DictionaryContent{
			Term:                      "vahay",
			Meaning:                   "house",
			AudioPronunciation:        "audio/vahay.mp3",
			TermSourceIsSelfKnowledge: true,
			InflectedForms:            map[string]string{"plural": "vahavahay"},
		},
	}

	restored := Entry{Kind: EntryKindDictionary}
	changed := restored.ApplyProposed(Snapshot(source))

	assert.Equal(t, source.Dictionary, restored.Dictionary)
	assert.Equal(t, []string{"audio_pronunciation"}, changed)
}

func TestApplyProposedIgnoresWrongTypesAndUnknownKeys(t *testing.T) {
	entry := Entry{Kind: EntryKindFolklore, Folklore: FolkloreContent{Title: "Old", SelfKnowledge: true}}
	changed := entry.ApplyProposed(ProposedData{
		"title":          42,
		"self_knowledge": "nope",
		"term":           "not a folklore field",
		"content":        "A story",
	})

	assert.Empty(t, changed)
	assert.Equal(t, "Old", entry.Folklore.Title)
	assert.True(t, entry.Folklore.SelfKnowledge)
	assert.Equal(t, "A story", entry.Folklore.Content)
}

func TestApplyProposedAcceptsDecodedInflectedForms(t *testing.T) {
	entry := Entry{Kind: EntryKindDictionary}
	entry.ApplyProposed(ProposedData{FieldInflectedForms: map[string]any{"past": "nivahay"}})
	assert.Equal(t, map[string]string{"past": "nivahay"}, entry.Dictionary.InflectedForms)

	entry.ApplyProposed(ProposedData{FieldInflectedForms: map[string]any{"past": 1}})
	assert.Equal(t, map[string]string{"past": "nivahay"}, entry.Dictionary.InflectedForms)
}

func TestMediaAttributionAndRefs(t *testing.T) {
	entry := Entry{Kind: EntryKindDictionary}
	changed := entry.ApplyProposed(ProposedData{"photo": "img/vahay.jpg"})
	entry.AttributeMedia(changed, "user-7")

	assert.Equal(t, "user-7", entry.PhotoContributorID)
	assert.Empty(t, entry.AudioContributorID)
	assert.Equal(t, []string{"photo"}, entry.PresentMedia())
	assert.Equal(t, []string{"img/vahay.jpg"}, entry.MediaRefs())
	assert.Equal(t, []string{"audio_pronunciation", "photo"}, MediaFieldKeys(EntryKindDictionary))
	assert.Equal(t, []string{"media_url"}, MediaFieldKeys(EntryKindFolklore))
}

func TestMissingRequired(t *testing.T) {
	assert.Equal(t, []string{"term"}, MissingRequired(EntryKindDictionary, ProposedData{"term": "  "}))
	assert.Empty(t, MissingRequired(EntryKindDictionary, ProposedData{"term": "vahay"}))

	missing := MissingRequired(EntryKindFolklore, ProposedData{
		"title":    "The Tale",
		"content":  "Once",
		"category": "novel",
	})
	assert.Equal(t, []string{"category", "source"}, missing)

	assert.Empty(t, MissingRequired(EntryKindFolklore, ProposedData{
		"title":    "The Tale",
		"content":  "Once",
		"category": "Legend",
		"source":   "elder",
	}))
}

func TestFieldSchema(t *testing.T) {
	schema := FieldSchema(EntryKindDictionary)
	assert.Equal(t, FieldTypeText, schema["term"])
	assert.Equal(t, FieldTypeBool, schema["audio_source_is_self_recorded"])
	assert.Equal(t, FieldTypeMap, schema[FieldInflectedForms])

	folklore := FieldSchema(EntryKindFolklore)
	_, hasForms := folklore[FieldInflectedForms]
	assert.False(t, hasForms)
	assert.Equal(t, FieldTypeBool, folklore["self_produced_media"])
}

func TestCloneIsDeep(t *testing.T) {
	entry := Entry{
		Kind:        EntryKindDictionary,
		ApproverIDs: []string{"r1"},
		Dictionary:  DictionaryContent{InflectedForms: map[string]string{"a": "b"}},
	}
	clone := entry.Clone()
	clone.ApproverIDs[0] = "changed"
	clone.Dictionary.InflectedForms["a"] = "changed"

	assert.Equal(t, "r1", entry.ApproverIDs[0])
	assert.Equal(t, "b", entry.Dictionary.InflectedForms["a"])

	data := ProposedData{FieldInflectedForms: map[string]string{"x": "y"}}
	copied := data.Clone()
	copied[FieldInflectedForms].(map[string]string)["x"] = "z"
	assert.Equal(t, "y", data[FieldInflectedForms].(map[string]string)["x"])
}

func TestVariantGroupMotherOf(t *testing.T) {
	group := VariantGroup{GroupID: "g1", MotherEntryID: "e1"}
	members := []Entry{
		{EntryID: "e1", IsMother: true, VariantGroupID: "g1"},
		{EntryID: "e2", VariantGroupID: "g1"},
	}
	mother, ok := group.MotherOf(members)
	require.True(t, ok)
	assert.Equal(t, "e1", mother.EntryID)

	members[0].IsMother = false
	_, ok = group.MotherOf(members)
	assert.False(t, ok)

	_, ok = VariantGroup{GroupID: "g1"}.MotherOf(members)
	assert.False(t, ok)
}

func TestOverrideActionTargets(t *testing.T) {
	assert.Equal(t, EntryStatusRejected, OverrideActionForceReject.TargetStatus())
	assert.Equal(t, EntryStatusApproved, OverrideActionRestoreApproved.TargetStatus())
	assert.Equal(t, EntryStatusArchived, OverrideActionArchive.TargetStatus())
	assert.False(t, OverrideAction("undo").Valid())
}
