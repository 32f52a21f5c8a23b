package postgresadapter

import (
	"strings"
	"time"

	"gorm.io/datatypes"

	"lexicon/contexts/editorial-governance/governance-service/domain/entities"
	"lexicon/contexts/editorial-governance/governance-service/ports"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type entryModel struct {
	EntryID              string            `gorm:"column:entry_id;primaryKey"`
	Kind                 string            `gorm:"column:kind;index:idx_governance_entries_kind_status,priority:1"`
	Status               string            `gorm:"column:status;index:idx_governance_entries_kind_status,priority:2"`
	Content              datatypes.JSONMap `gorm:"column:content"`
	InitialContributorID string            `gorm:"column:initial_contributor_id"`
	LastRevisedByID      string            `gorm:"column:last_revised_by_id"`
	AudioContributorID   string            `gorm:"column:audio_contributor_id"`
	PhotoContributorID   string            `gorm:"column:photo_contributor_id"`
	MediaContributorID   string            `gorm:"column:media_contributor_id"`
	IsMother             bool              `gorm:"column:is_mother"`
	VariantGroupID       *string           `gorm:"column:variant_group_id;index"`
	ApprovedAt           *time.Time        `gorm:"column:approved_at"`
	ArchivedAt           *time.Time        `gorm:"column:archived_at"`
	CreatedAt            time.Time         `gorm:"column:created_at"`
	UpdatedAt            time.Time         `gorm:"column:updated_at"`
}

func (entryModel) TableName() string {
	return "governance_entries"
}

func entryModelFromEntity(entry entities.Entry) entryModel {
	row := entryModel{
		EntryID:              strings.TrimSpace(entry.EntryID),
		Kind:                 string(entry.Kind),
		Status:               string(entry.Status),
		Content:              datatypes.JSONMap(entities.Snapshot(entry)),
		InitialContributorID: entry.InitialContributorID,
		LastRevisedByID:      entry.LastRevisedByID,
		AudioContributorID:   entry.AudioContributorID,
		PhotoContributorID:   entry.PhotoContributorID,
		MediaContributorID:   entry.MediaContributorID,
		IsMother:             entry.IsMother,
		VariantGroupID:       optionalString(entry.VariantGroupID),
		ApprovedAt:           normalizeOptionalTime(entry.ApprovedAt),
		ArchivedAt:           normalizeOptionalTime(entry.ArchivedAt),
		CreatedAt:            entry.CreatedAt.UTC(),
		UpdatedAt:            entry.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m entryModel) toEntity(approvers []string) entities.Entry {
	entry := entities.Entry{
		EntryID:              m.EntryID,
		Kind:                 entities.EntryKind(m.Kind),
		Status:               entities.EntryStatus(m.Status),
		InitialContributorID: m.InitialContributorID,
		LastRevisedByID:      m.LastRevisedByID,
		AudioContributorID:   m.AudioContributorID,
		PhotoContributorID:   m.PhotoContributorID,
		MediaContributorID:   m.MediaContributorID,
		ApproverIDs:          approvers,
		IsMother:             m.IsMother,
		VariantGroupID:       derefString(m.VariantGroupID),
		ApprovedAt:           normalizeOptionalTime(m.ApprovedAt),
		ArchivedAt:           normalizeOptionalTime(m.ArchivedAt),
		CreatedAt:            m.CreatedAt.UTC(),
		UpdatedAt:            m.UpdatedAt.UTC(),
	}
	entry.ApplyProposed(entities.ProposedData(m.Content))
	return entry
}

type entryApproverModel struct {
	EntryID string `gorm:"column:entry_id;primaryKey"`
	UserID  string `gorm:"column:user_id;primaryKey"`
}

func (entryApproverModel) TableName() string {
	return "governance_entry_approvers"
}

type revisionModel struct {
	RevisionID     string            `gorm:"column:revision_id;primaryKey"`
	Kind           string            `gorm:"column:kind;index"`
	EntryID        *string           `gorm:"column:entry_id;index"`
	ContributorID  string            `gorm:"column:contributor_id;index"`
	ProposedData   datatypes.JSONMap `gorm:"column:proposed_data"`
	Status         string            `gorm:"column:status;index"`
	IsBaseSnapshot bool              `gorm:"column:is_base_snapshot"`
	ReviewerNotes  string            `gorm:"column:reviewer_notes"`
	TargetGroupID  *string           `gorm:"column:target_group_id"`
	ApprovedAt     *time.Time        `gorm:"column:approved_at"`
	CreatedAt      time.Time         `gorm:"column:created_at"`
	UpdatedAt      time.Time         `gorm:"column:updated_at"`
}

func (revisionModel) TableName() string {
	return "governance_revisions"
}

func revisionModelFromEntity(revision entities.Revision) revisionModel {
	data := datatypes.JSONMap{}
	for key, value := range revision.ProposedData {
		data[key] = value
	}
	row := revisionModel{
		RevisionID:     strings.TrimSpace(revision.RevisionID),
		Kind:           string(revision.Kind),
		EntryID:        optionalString(revision.EntryID),
		ContributorID:  strings.TrimSpace(revision.ContributorID),
		ProposedData:   data,
		Status:         string(revision.Status),
		IsBaseSnapshot: revision.IsBaseSnapshot,
		ReviewerNotes:  revision.ReviewerNotes,
		TargetGroupID:  optionalString(revision.TargetGroupID),
		ApprovedAt:     normalizeOptionalTime(revision.ApprovedAt),
		CreatedAt:      revision.CreatedAt.UTC(),
		UpdatedAt:      revision.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m revisionModel) toEntity() entities.Revision {
	data := entities.ProposedData{}
	for key, value := range m.ProposedData {
		data[key] = value
	}
	return entities.Revision{
		RevisionID:     m.RevisionID,
		Kind:           entities.EntryKind(m.Kind),
		EntryID:        derefString(m.EntryID),
		ContributorID:  m.ContributorID,
		ProposedData:   data,
		Status:         entities.RevisionStatus(m.Status),
		IsBaseSnapshot: m.IsBaseSnapshot,
		ReviewerNotes:  m.ReviewerNotes,
		TargetGroupID:  derefString(m.TargetGroupID),
		ApprovedAt:     normalizeOptionalTime(m.ApprovedAt),
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

type reviewModel struct {
	ReviewID   string    `gorm:"column:review_id;primaryKey"`
	RevisionID string    `gorm:"column:revision_id;uniqueIndex:uq_governance_reviews_vote,priority:1"`
	Kind       string    `gorm:"column:kind"`
	ReviewerID string    `gorm:"column:reviewer_id;uniqueIndex:uq_governance_reviews_vote,priority:2"`
	Decision   string    `gorm:"column:decision"`
	Notes      string    `gorm:"column:notes"`
	Round      int       `gorm:"column:round;uniqueIndex:uq_governance_reviews_vote,priority:3"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (reviewModel) TableName() string {
	return "governance_reviews"
}

func (m reviewModel) toEntity() entities.Review {
	return entities.Review{
		ReviewID:   m.ReviewID,
		RevisionID: m.RevisionID,
		Kind:       entities.EntryKind(m.Kind),
		ReviewerID: m.ReviewerID,
		Decision:   entities.ReviewDecision(m.Decision),
		Notes:      m.Notes,
		Round:      m.Round,
		CreatedAt:  m.CreatedAt.UTC(),
	}
}

type variantGroupModel struct {
	GroupID       string    `gorm:"column:group_id;primaryKey"`
	MotherEntryID *string   `gorm:"column:mother_entry_id"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (variantGroupModel) TableName() string {
	return "governance_variant_groups"
}

func (m variantGroupModel) toEntity() entities.VariantGroup {
	return entities.VariantGroup{
		GroupID:       m.GroupID,
		MotherEntryID: derefString(m.MotherEntryID),
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

type contributionModel struct {
	EventID    string    `gorm:"column:event_id;primaryKey"`
	UserID     string    `gorm:"column:user_id;uniqueIndex:uq_governance_contribution_credit,priority:1"`
	EntryKind  string    `gorm:"column:entry_kind;uniqueIndex:uq_governance_contribution_credit,priority:2"`
	EntryID    *string   `gorm:"column:entry_id;uniqueIndex:uq_governance_contribution_credit,priority:3"`
	Type       string    `gorm:"column:type;uniqueIndex:uq_governance_contribution_credit,priority:4"`
	RevisionID *string   `gorm:"column:revision_id"`
	AwardedAt  time.Time `gorm:"column:awarded_at"`
}

func (contributionModel) TableName() string {
	return "governance_contribution_events"
}

func (m contributionModel) toEntity() entities.ContributionEvent {
	return entities.ContributionEvent{
		EventID:    m.EventID,
		UserID:     m.UserID,
		Type:       entities.ContributionType(m.Type),
		EntryKind:  entities.EntryKind(m.EntryKind),
		EntryID:    derefString(m.EntryID),
		RevisionID: derefString(m.RevisionID),
		AwardedAt:  m.AwardedAt.UTC(),
	}
}

type adminOverrideModel struct {
	OverrideID   string    `gorm:"column:override_id;primaryKey"`
	AdminID      string    `gorm:"column:admin_id"`
	Kind         string    `gorm:"column:kind"`
	EntryID      string    `gorm:"column:entry_id;index"`
	Action       string    `gorm:"column:action"`
	Notes        string    `gorm:"column:notes"`
	StatusBefore string    `gorm:"column:status_before"`
	StatusAfter  string    `gorm:"column:status_after"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (adminOverrideModel) TableName() string {
	return "governance_admin_overrides"
}

func (m adminOverrideModel) toEntity() entities.AdminOverride {
	return entities.AdminOverride{
		OverrideID:   m.OverrideID,
		AdminID:      m.AdminID,
		Kind:         entities.EntryKind(m.Kind),
		EntryID:      m.EntryID,
		Action:       entities.OverrideAction(m.Action),
		Notes:        m.Notes,
		StatusBefore: entities.EntryStatus(m.StatusBefore),
		StatusAfter:  entities.EntryStatus(m.StatusAfter),
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID     string         `gorm:"column:outbox_id;primaryKey"`
	EventType    string         `gorm:"column:event_type"`
	PartitionKey string         `gorm:"column:partition_key"`
	Payload      datatypes.JSON `gorm:"column:payload"`
	Status       string         `gorm:"column:status;index"`
	CreatedAt    time.Time      `gorm:"column:created_at"`
	PublishedAt  *time.Time     `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "governance_outbox"
}

func (m outboxModel) toMessage() ports.OutboxMessage {
	return ports.OutboxMessage{
		OutboxID:     m.OutboxID,
		EventType:    m.EventType,
		PartitionKey: m.PartitionKey,
		Payload:      append([]byte(nil), m.Payload...),
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

type userRoleModel struct {
	UserID     string    `gorm:"column:user_id;primaryKey"`
	IsReviewer bool      `gorm:"column:is_reviewer"`
	IsAdmin    bool      `gorm:"column:is_admin"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (userRoleModel) TableName() string {
	return "governance_user_roles"
}

type userProfileModel struct {
	UserID       string    `gorm:"column:user_id;primaryKey"`
	Username     string    `gorm:"column:username"`
	Municipality string    `gorm:"column:municipality"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userProfileModel) TableName() string {
	return "governance_user_profiles"
}

// Models lists every table owned by the governance store, in migration
// order.
func Models() []any {
	return []any{
		&entryModel{},
		&entryApproverModel{},
		&revisionModel{},
		&reviewModel{},
		&variantGroupModel{},
		&contributionModel{},
		&adminOverrideModel{},
		&outboxModel{},
		&userRoleModel{},
		&userProfileModel{},
	}
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}
