package queries_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexicon/contexts/editorial-governance/governance-service/domain/entities"
	domainerrors "lexicon/contexts/editorial-governance/governance-service/domain/errors"
	"lexicon/contexts/editorial-governance/governance-service/domain/services"
)

func TestVisibleHistoryLimitsPerAudience(t *testing.T) {
	h := newHarness(t)
	base := h.publish(entities.EntryKindDictionary, "author", "", map[string]any{"term": "vakul"})
	entryID := base.Entry.EntryID
	for i := 0; i < 20; i++ {
		h.publish(entities.EntryKindDictionary, "editor", entryID, map[string]any{"meaning": fmt.Sprintf("hat %d", i)})
	}

	public, err := h.module.History.VisibleHistory(h.ctx, entryID, services.AudiencePublic)
	require.NoError(t, err)
	require.NotNil(t, public.BaseSnapshot)
	assert.Equal(t, base.Revision.RevisionID, public.BaseSnapshot.Revision.RevisionID)
	require.Len(t, public.Recent, 5)
	assert.Equal(t, "hat 19", public.Recent[0].Revision.ProposedData.Text("meaning"))
	assert.Equal(t, "hat 15", public.Recent[4].Revision.ProposedData.Text("meaning"))

	staff, err := h.module.History.VisibleHistory(h.ctx, entryID, services.AudienceStaff)
	require.NoError(t, err)
	require.NotNil(t, staff.BaseSnapshot)
	assert.Len(t, staff.Recent, 15)

	other, err := h.module.History.VisibleHistory(h.ctx, entryID, "anonymous")
	require.NoError(t, err)
	assert.Equal(t, services.AudiencePublic, other.Audience)
	assert.Len(t, other.Recent, 5)
}

func TestVisibleHistoryResolvesMedia(t *testing.T) {
	h := newHarness(t)
	base := h.publish(entities.EntryKindDictionary, "author", "", map[string]any{
		"term":                "payaman",
		"audio_pronunciation": "audio/payaman.mp3",
	})

	history, err := h.module.History.VisibleHistory(h.ctx, base.Entry.EntryID, services.AudiencePublic)
	require.NoError(t, err)
	require.NotNil(t, history.BaseSnapshot)
	assert.Equal(t, map[string]string{"audio_pronunciation": "/media/audio/payaman.mp3"}, history.BaseSnapshot.MediaURLs)
	assert.Empty(t, history.Recent)
}

func TestVisibleHistoryErrors(t *testing.T) {
	h := newHarness(t)
	_, err := h.module.History.VisibleHistory(h.ctx, " ", services.AudiencePublic)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	_, err = h.module.History.VisibleHistory(h.ctx, "missing", services.AudiencePublic)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
