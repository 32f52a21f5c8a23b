package queries

import (
	"context"
	"strings"

	"lexicon/contexts/editorial-governance/governance-service/domain/entities"
	domainerrors "lexicon/contexts/editorial-governance/governance-service/domain/errors"
	"lexicon/contexts/editorial-governance/governance-service/domain/services"
	"lexicon/contexts/editorial-governance/governance-service/ports"
)

type HistoryItem struct {
	Revision  entities.Revision
	MediaURLs map[string]string
}

type RevisionHistory struct {
	EntryID      string
	Audience     services.Audience
	BaseSnapshot *HistoryItem
	Recent       []HistoryItem
}

type HistoryUseCase struct {
	Repository ports.Repository
	Media      ports.MediaResolver
}

// VisibleHistory lists the base snapshot and the most recent approved
// revisions the audience may see, newest first.
func (uc HistoryUseCase) VisibleHistory(ctx context.Context, entryID string, audience services.Audience) (RevisionHistory, error) {
	entryID = strings.TrimSpace(entryID)
	if entryID == "" {
		return RevisionHistory{}, domainerrors.ErrInvalidInput
	}
	if audience != services.AudienceStaff {
		audience = services.AudiencePublic
	}
	entry, err := uc.Repository.GetEntry(ctx, entryID)
	if err != nil {
		return RevisionHistory{}, err
	}
	approved, err := uc.Repository.ListRevisions(ctx, ports.RevisionFilter{
		EntryID:  entry.EntryID,
		Statuses: []entities.RevisionStatus{entities.RevisionStatusApproved},
	})
	if err != nil {
		return RevisionHistory{}, err
	}
	services.SortRevisionsByRecency(approved)

	history := RevisionHistory{EntryID: entry.EntryID, Audience: audience, Recent: []HistoryItem{}}
	limit := services.HistoryLimit(audience)
	for _, revision := range approved {
		if revision.IsBaseSnapshot {
			if history.BaseSnapshot == nil {
				item := uc.item(revision)
				history.BaseSnapshot = &item
			}
			continue
		}
		if len(history.Recent) < limit {
			history.Recent = append(history.Recent, uc.item(revision))
		}
	}
	return history, nil
}

func (uc HistoryUseCase) item(revision entities.Revision) HistoryItem {
	urls := map[string]string{}
	for _, key := range entities.MediaFieldKeys(revision.Kind) {
		ref := strings.TrimSpace(revision.ProposedData.Text(key))
		if ref == "" {
			continue
		}
		if uc.Media == nil {
			urls[key] = ref
			continue
		}
		urls[key] = uc.Media.ResolveURL(ref)
	}
	return HistoryItem{Revision: revision.Clone(), MediaURLs: urls}
}
