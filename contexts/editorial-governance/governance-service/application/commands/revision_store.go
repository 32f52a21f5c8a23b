package commands

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"

	application "lexicon/contexts/editorial-governance/governance-service/application"
	"lexicon/contexts/editorial-governance/governance-service/domain/entities"
	domainerrors "lexicon/contexts/editorial-governance/governance-service/domain/errors"
	"lexicon/contexts/editorial-governance/governance-service/domain/services"
	"lexicon/contexts/editorial-governance/governance-service/ports"
)

// RevisionStore owns revision snapshots: draft creation, base-snapshot
// marking and retention pruning. Methods run against the repository of the
// caller's transaction.
type RevisionStore struct {
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

type DraftInput struct {
	Kind          entities.EntryKind
	ContributorID string
	Base          *entities.Entry
	ProposedData  entities.ProposedData
	TargetGroupID string
}

// Snapshot returns the entry's current fields as proposed data.
func (s RevisionStore) Snapshot(entry entities.Entry) entities.ProposedData {
	return entities.Snapshot(entry)
}

// CreateDraft stores a draft revision. Drafts based on an existing entry
// start from its snapshot with the supplied fields overlaid.
func (s RevisionStore) CreateDraft(ctx context.Context, repo ports.Repository, input DraftInput) (entities.Revision, error) {
	contributorID := strings.TrimSpace(input.ContributorID)
	if contributorID == "" || !input.Kind.Valid() {
		return entities.Revision{}, domainerrors.ErrInvalidInput
	}

	data := entities.ProposedData{}
	entryID := ""
	if input.Base != nil {
		if input.Base.Kind != input.Kind {
			return entities.Revision{}, domainerrors.ErrInvalidKind
		}
		entryID = input.Base.EntryID
		data = s.Snapshot(*input.Base)
	}
	for key, value := range input.ProposedData {
		data[key] = value
	}

	revisionID, err := newID(ctx, s.IDGen)
	if err != nil {
		return entities.Revision{}, err
	}
	createdAt := now(s.Clock)
	revision := entities.Revision{
		RevisionID:    revisionID,
		Kind:          input.Kind,
		EntryID:       entryID,
		ContributorID: contributorID,
		ProposedData:  data,
		Status:        entities.RevisionStatusDraft,
		TargetGroupID: strings.TrimSpace(input.TargetGroupID),
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	if entryID != "" {
		revision.TargetGroupID = ""
	}
	if err := repo.CreateRevision(ctx, revision); err != nil {
		return entities.Revision{}, err
	}
	return revision, nil
}

// MarkBaseSnapshotIfFirst flags an approved revision as the entry's base
// snapshot unless another revision already holds the flag.
func (s RevisionStore) MarkBaseSnapshotIfFirst(ctx context.Context, repo ports.Repository, revision *entities.Revision) (bool, error) {
	if revision == nil || revision.EntryID == "" || revision.Status != entities.RevisionStatusApproved {
		return false, nil
	}
	if revision.IsBaseSnapshot {
		return true, nil
	}
	base := true
	existing, err := repo.ListRevisions(ctx, ports.RevisionFilter{
		EntryID:      revision.EntryID,
		BaseSnapshot: &base,
	})
	if err != nil {
		return false, err
	}
	for _, item := range existing {
		if item.RevisionID != revision.RevisionID {
			return false, nil
		}
	}

	revision.IsBaseSnapshot = true
	revision.UpdatedAt = now(s.Clock)
	if err := repo.UpdateRevision(ctx, *revision); err != nil {
		return false, err
	}
	return true, nil
}

// EnforceRetention deletes approved non-base revisions beyond the newest
// RetainedRevisions and returns how many were removed.
func (s RevisionStore) EnforceRetention(ctx context.Context, repo ports.Repository, kind entities.EntryKind, entryID string) (int, error) {
	approved, err := repo.ListRevisions(ctx, ports.RevisionFilter{
		EntryID:  entryID,
		Statuses: []entities.RevisionStatus{entities.RevisionStatusApproved},
	})
	if err != nil {
		return 0, err
	}
	overflow := services.RetentionOverflow(approved, services.RetainedRevisions)
	if len(overflow) == 0 {
		return 0, nil
	}
	ids := make([]string, 0, len(overflow))
	for _, revision := range overflow {
		ids = append(ids, revision.RevisionID)
	}
	if err := repo.DeleteRevisions(ctx, ids); err != nil {
		return 0, err
	}

	application.ResolveLogger(s.Logger).Debug("revision retention pruned history",
		"event", "governance_revision_retention_pruned",
		"module", application.ModuleName,
		"layer", "application",
		"entry_id", entryID,
		"kind", string(kind),
		"pruned_count", len(ids),
	)
	return len(ids), nil
}

// NormalizeProposedData coerces loosely typed client values onto the field
// schema of kind. Unknown keys are dropped; inconvertible values are
// reported as a MissingFieldsError.
func NormalizeProposedData(kind entities.EntryKind, raw map[string]any) (entities.ProposedData, error) {
	schema := entities.FieldSchema(kind)
	data := make(entities.ProposedData, len(raw))
	var invalid []string
	for rawKey, value := range raw {
		key := strings.TrimSpace(rawKey)
		fieldType, ok := schema[key]
		if !ok {
			continue
		}
		switch fieldType {
		case entities.FieldTypeText:
			text, err := cast.ToStringE(value)
			if err != nil {
				invalid = append(invalid, key)
				continue
			}
			if kind == entities.EntryKindFolklore && key == "category" {
				text = strings.ToLower(strings.TrimSpace(text))
			}
			data[key] = text
		case entities.FieldTypeBool:
			flag, err := cast.ToBoolE(value)
			if err != nil {
				invalid = append(invalid, key)
				continue
			}
			data[key] = flag
		case entities.FieldTypeMap:
			if value == nil {
				data[key] = map[string]string{}
				continue
			}
			forms, err := cast.ToStringMapStringE(value)
			if err != nil {
				invalid = append(invalid, key)
				continue
			}
			data[key] = forms
		}
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return nil, &domainerrors.MissingFieldsError{Fields: invalid}
	}
	return data, nil
}

func timePtr(value time.Time) *time.Time {
	return &value
}
