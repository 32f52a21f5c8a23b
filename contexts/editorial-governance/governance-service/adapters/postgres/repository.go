package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	application "lexicon/contexts/editorial-governance/governance-service/application"
	"lexicon/contexts/editorial-governance/governance-service/domain/entities"
	domainerrors "lexicon/contexts/editorial-governance/governance-service/domain/errors"
	"lexicon/contexts/editorial-governance/governance-service/ports"
)

// Repository is the gorm-backed governance store. Row locks are taken with
// SELECT ... FOR UPDATE on PostgreSQL; SQLite serializes writers itself.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// WithinTx runs fn in one transaction. The ctx handed to fn carries the
// transaction, so adapters sharing the database (Directory) read on the same
// connection.
func (r *Repository) WithinTx(ctx context.Context, fn func(ctx context.Context, repo ports.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(contextWithTx(ctx, tx), &Repository{db: tx, logger: r.logger})
	})
}

type txKey struct{}

func contextWithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// conn returns the transaction carried by ctx, or fallback outside one.
func conn(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return fallback.WithContext(ctx)
}

func (r *Repository) CreateEntry(ctx context.Context, entry entities.Entry) error {
	row := entryModelFromEntity(entry)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrRepositoryConflict
		}
		return r.logError("governance_repo_create_entry_failed", err, "entry_id", row.EntryID)
	}
	return r.replaceApprovers(ctx, row.EntryID, entry.ApproverIDs)
}

func (r *Repository) UpdateEntry(ctx context.Context, entry entities.Entry) error {
	row := entryModelFromEntity(entry)
	result := r.db.WithContext(ctx).
		Model(&entryModel{}).
		Where("entry_id = ?", row.EntryID).
		Select("*").
		Omit("entry_id", "created_at").
		Updates(&row)
	if result.Error != nil {
		return r.logError("governance_repo_update_entry_failed", result.Error, "entry_id", row.EntryID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrEntryNotFound
	}
	return r.replaceApprovers(ctx, row.EntryID, entry.ApproverIDs)
}

func (r *Repository) GetEntry(ctx context.Context, entryID string) (entities.Entry, error) {
	return r.loadEntry(ctx, r.db.WithContext(ctx), entryID)
}

func (r *Repository) LockEntry(ctx context.Context, entryID string) (entities.Entry, error) {
	return r.loadEntry(ctx, r.forUpdate(r.db.WithContext(ctx)), entryID)
}

func (r *Repository) loadEntry(ctx context.Context, tx *gorm.DB, entryID string) (entities.Entry, error) {
	entryID = strings.TrimSpace(entryID)
	var row entryModel
	if err := tx.Where("entry_id = ?", entryID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Entry{}, domainerrors.ErrEntryNotFound
		}
		return entities.Entry{}, r.logError("governance_repo_get_entry_failed", err, "entry_id", entryID)
	}
	approvers, err := r.approversFor(ctx, []string{row.EntryID})
	if err != nil {
		return entities.Entry{}, err
	}
	return row.toEntity(approvers[row.EntryID]), nil
}

func (r *Repository) ListEntries(ctx context.Context, filter ports.EntryFilter) ([]entities.Entry, error) {
	tx := r.db.WithContext(ctx).Model(&entryModel{})
	if filter.Kind != "" {
		tx = tx.Where("kind = ?", string(filter.Kind))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			statuses = append(statuses, string(status))
		}
		tx = tx.Where("status IN ?", statuses)
	}
	if groupID := strings.TrimSpace(filter.VariantGroupID); groupID != "" {
		tx = tx.Where("variant_group_id = ?", groupID)
	}
	if len(filter.EntryIDs) > 0 {
		tx = tx.Where("entry_id IN ?", filter.EntryIDs)
	}
	var rows []entryModel
	if err := tx.Order("created_at ASC").Order("entry_id ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("governance_repo_list_entries_failed", err, "kind", string(filter.Kind))
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.EntryID)
	}
	approvers, err := r.approversFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	items := make([]entities.Entry, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity(approvers[row.EntryID]))
	}
	return items, nil
}

func (r *Repository) DeleteEntry(ctx context.Context, entryID string) error {
	entryID = strings.TrimSpace(entryID)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		revisionIDs := tx.Model(&revisionModel{}).Select("revision_id").Where("entry_id = ?", entryID)
		if err := tx.Where("revision_id IN (?)", revisionIDs).Delete(&reviewModel{}).Error; err != nil {
			return r.logError("governance_repo_delete_entry_reviews_failed", err, "entry_id", entryID)
		}
		if err := tx.Where("entry_id = ?", entryID).Delete(&revisionModel{}).Error; err != nil {
			return r.logError("governance_repo_delete_entry_revisions_failed", err, "entry_id", entryID)
		}
		if err := tx.Where("entry_id = ?", entryID).Delete(&entryApproverModel{}).Error; err != nil {
			return r.logError("governance_repo_delete_entry_approvers_failed", err, "entry_id", entryID)
		}
		if err := tx.Model(&contributionModel{}).
			Where("entry_id = ?", entryID).
			Update("entry_id", nil).Error; err != nil {
			return r.logError("governance_repo_detach_contributions_failed", err, "entry_id", entryID)
		}
		result := tx.Where("entry_id = ?", entryID).Delete(&entryModel{})
		if result.Error != nil {
			return r.logError("governance_repo_delete_entry_failed", result.Error, "entry_id", entryID)
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrEntryNotFound
		}
		return nil
	})
}

func (r *Repository) CreateRevision(ctx context.Context, revision entities.Revision) error {
	row := revisionModelFromEntity(revision)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrRepositoryConflict
		}
		return r.logError("governance_repo_create_revision_failed", err, "revision_id", row.RevisionID)
	}
	return nil
}

func (r *Repository) UpdateRevision(ctx context.Context, revision entities.Revision) error {
	row := revisionModelFromEntity(revision)
	result := r.db.WithContext(ctx).
		Model(&revisionModel{}).
		Where("revision_id = ?", row.RevisionID).
		Select("*").
		Omit("revision_id", "created_at").
		Updates(&row)
	if result.Error != nil {
		return r.logError("governance_repo_update_revision_failed", result.Error, "revision_id", row.RevisionID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrRevisionNotFound
	}
	return nil
}

func (r *Repository) GetRevision(ctx context.Context, revisionID string) (entities.Revision, error) {
	return r.loadRevision(r.db.WithContext(ctx), revisionID)
}

func (r *Repository) LockRevision(ctx context.Context, revisionID string) (entities.Revision, error) {
	return r.loadRevision(r.forUpdate(r.db.WithContext(ctx)), revisionID)
}

func (r *Repository) loadRevision(tx *gorm.DB, revisionID string) (entities.Revision, error) {
	revisionID = strings.TrimSpace(revisionID)
	var row revisionModel
	if err := tx.Where("revision_id = ?", revisionID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Revision{}, domainerrors.ErrRevisionNotFound
		}
		return entities.Revision{}, r.logError("governance_repo_get_revision_failed", err, "revision_id", revisionID)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListRevisions(ctx context.Context, filter ports.RevisionFilter) ([]entities.Revision, error) {
	tx := r.db.WithContext(ctx).Model(&revisionModel{})
	if filter.Kind != "" {
		tx = tx.Where("kind = ?", string(filter.Kind))
	}
	if entryID := strings.TrimSpace(filter.EntryID); entryID != "" {
		tx = tx.Where("entry_id = ?", entryID)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			statuses = append(statuses, string(status))
		}
		tx = tx.Where("status IN ?", statuses)
	}
	if contributorID := strings.TrimSpace(filter.ContributorID); contributorID != "" {
		tx = tx.Where("contributor_id = ?", contributorID)
	}
	if excluded := strings.TrimSpace(filter.ExcludeContributorID); excluded != "" {
		tx = tx.Where("contributor_id <> ?", excluded)
	}
	if filter.BaseSnapshot != nil {
		tx = tx.Where("is_base_snapshot = ?", *filter.BaseSnapshot)
	}
	var rows []revisionModel
	if err := tx.Order("created_at ASC").Order("revision_id ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("governance_repo_list_revisions_failed", err, "entry_id", filter.EntryID)
	}
	items := make([]entities.Revision, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) DeleteRevisions(ctx context.Context, revisionIDs []string) error {
	if len(revisionIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("revision_id IN ?", revisionIDs).Delete(&reviewModel{}).Error; err != nil {
			return r.logError("governance_repo_delete_revision_reviews_failed", err, "count", len(revisionIDs))
		}
		if err := tx.Where("revision_id IN ?", revisionIDs).Delete(&revisionModel{}).Error; err != nil {
			return r.logError("governance_repo_delete_revisions_failed", err, "count", len(revisionIDs))
		}
		return nil
	})
}

func (r *Repository) LatestRevisionCreatedAt(ctx context.Context, entryID string) (*time.Time, error) {
	entryID = strings.TrimSpace(entryID)
	var row revisionModel
	err := r.db.WithContext(ctx).
		Select("revision_id", "created_at").
		Where("entry_id = ?", entryID).
		Order("created_at DESC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, r.logError("governance_repo_latest_revision_failed", err, "entry_id", entryID)
	}
	createdAt := row.CreatedAt.UTC()
	return &createdAt, nil
}

func (r *Repository) CreateReview(ctx context.Context, review entities.Review) error {
	createdAt := review.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	row := reviewModel{
		ReviewID:   strings.TrimSpace(review.ReviewID),
		RevisionID: strings.TrimSpace(review.RevisionID),
		Kind:       string(review.Kind),
		ReviewerID: strings.TrimSpace(review.ReviewerID),
		Decision:   string(review.Decision),
		Notes:      review.Notes,
		Round:      review.Round,
		CreatedAt:  createdAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyReviewed
		}
		return r.logError("governance_repo_create_review_failed", err,
			"revision_id", row.RevisionID,
			"reviewer_id", row.ReviewerID,
			"round", row.Round,
		)
	}
	return nil
}

func (r *Repository) ListReviews(ctx context.Context, filter ports.ReviewFilter) ([]entities.Review, error) {
	tx := r.db.WithContext(ctx).Model(&reviewModel{})
	if filter.Kind != "" {
		tx = tx.Where("kind = ?", string(filter.Kind))
	}
	if len(filter.RevisionIDs) > 0 {
		tx = tx.Where("revision_id IN ?", filter.RevisionIDs)
	}
	if reviewerID := strings.TrimSpace(filter.ReviewerID); reviewerID != "" {
		tx = tx.Where("reviewer_id = ?", reviewerID)
	}
	if filter.Round != nil {
		tx = tx.Where("round = ?", *filter.Round)
	}
	if filter.Decision != "" {
		tx = tx.Where("decision = ?", string(filter.Decision))
	}
	var rows []reviewModel
	if err := tx.Order("created_at ASC").Order("review_id ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("governance_repo_list_reviews_failed", err, "reviewer_id", filter.ReviewerID)
	}
	items := make([]entities.Review, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) MaxReviewRound(ctx context.Context, revisionID string, decision entities.ReviewDecision) (int, bool, error) {
	tx := r.db.WithContext(ctx).Where("revision_id = ?", strings.TrimSpace(revisionID))
	if decision != "" {
		tx = tx.Where("decision = ?", string(decision))
	}
	var row reviewModel
	if err := tx.Order("round DESC").First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, r.logError("governance_repo_max_review_round_failed", err, "revision_id", revisionID)
	}
	return row.Round, true, nil
}

func (r *Repository) CreateVariantGroup(ctx context.Context, group entities.VariantGroup) error {
	row := variantGroupModel{
		GroupID:       strings.TrimSpace(group.GroupID),
		MotherEntryID: optionalString(group.MotherEntryID),
		CreatedAt:     group.CreatedAt.UTC(),
		UpdatedAt:     group.UpdatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrRepositoryConflict
		}
		return r.logError("governance_repo_create_variant_group_failed", err, "variant_group_id", row.GroupID)
	}
	return nil
}

func (r *Repository) UpdateVariantGroup(ctx context.Context, group entities.VariantGroup) error {
	groupID := strings.TrimSpace(group.GroupID)
	result := r.db.WithContext(ctx).
		Model(&variantGroupModel{}).
		Where("group_id = ?", groupID).
		Updates(map[string]any{
			"mother_entry_id": optionalString(group.MotherEntryID),
			"updated_at":      group.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("governance_repo_update_variant_group_failed", result.Error, "variant_group_id", groupID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrVariantGroupNotFound
	}
	return nil
}

func (r *Repository) GetVariantGroup(ctx context.Context, groupID string) (entities.VariantGroup, error) {
	groupID = strings.TrimSpace(groupID)
	var row variantGroupModel
	if err := r.db.WithContext(ctx).Where("group_id = ?", groupID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VariantGroup{}, domainerrors.ErrVariantGroupNotFound
		}
		return entities.VariantGroup{}, r.logError("governance_repo_get_variant_group_failed", err, "variant_group_id", groupID)
	}
	return row.toEntity(), nil
}

func (r *Repository) AwardContribution(ctx context.Context, event entities.ContributionEvent) (entities.ContributionEvent, bool, error) {
	row := contributionModel{
		EventID:    strings.TrimSpace(event.EventID),
		UserID:     strings.TrimSpace(event.UserID),
		EntryKind:  string(event.EntryKind),
		EntryID:    optionalString(event.EntryID),
		Type:       string(event.Type),
		RevisionID: optionalString(event.RevisionID),
		AwardedAt:  event.AwardedAt.UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "entry_kind"},
			{Name: "entry_id"},
			{Name: "type"},
		},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return entities.ContributionEvent{}, false, r.logError("governance_repo_award_contribution_failed", create.Error,
			"user_id", row.UserID,
			"entry_id", event.EntryID,
			"type", row.Type,
		)
	}
	if create.RowsAffected > 0 {
		return row.toEntity(), true, nil
	}

	var existing contributionModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND entry_kind = ? AND entry_id = ? AND type = ?", row.UserID, row.EntryKind, derefString(row.EntryID), row.Type).
		First(&existing).Error; err != nil {
		return entities.ContributionEvent{}, false, r.logError("governance_repo_award_contribution_load_existing_failed", err,
			"user_id", row.UserID,
			"entry_id", event.EntryID,
		)
	}
	return existing.toEntity(), false, nil
}

func (r *Repository) ListContributions(ctx context.Context, filter ports.ContributionFilter) ([]entities.ContributionEvent, error) {
	tx := r.db.WithContext(ctx).Model(&contributionModel{})
	if userID := strings.TrimSpace(filter.UserID); userID != "" {
		tx = tx.Where("user_id = ?", userID)
	}
	if filter.EntryKind != "" {
		tx = tx.Where("entry_kind = ?", string(filter.EntryKind))
	}
	if entryID := strings.TrimSpace(filter.EntryID); entryID != "" {
		tx = tx.Where("entry_id = ?", entryID)
	}
	var rows []contributionModel
	if err := tx.Order("awarded_at ASC").Order("event_id ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("governance_repo_list_contributions_failed", err, "user_id", filter.UserID)
	}
	items := make([]entities.ContributionEvent, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) CreateAdminOverride(ctx context.Context, override entities.AdminOverride) error {
	row := adminOverrideModel{
		OverrideID:   strings.TrimSpace(override.OverrideID),
		AdminID:      strings.TrimSpace(override.AdminID),
		Kind:         string(override.Kind),
		EntryID:      strings.TrimSpace(override.EntryID),
		Action:       string(override.Action),
		Notes:        override.Notes,
		StatusBefore: string(override.StatusBefore),
		StatusAfter:  string(override.StatusAfter),
		CreatedAt:    override.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("governance_repo_create_admin_override_failed", err, "entry_id", row.EntryID)
	}
	return nil
}

func (r *Repository) ListAdminOverrides(ctx context.Context, entryID string) ([]entities.AdminOverride, error) {
	tx := r.db.WithContext(ctx).Model(&adminOverrideModel{})
	if entryID = strings.TrimSpace(entryID); entryID != "" {
		tx = tx.Where("entry_id = ?", entryID)
	}
	var rows []adminOverrideModel
	if err := tx.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("governance_repo_list_admin_overrides_failed", err, "entry_id", entryID)
	}
	items := make([]entities.AdminOverride, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, message ports.OutboxMessage) error {
	row := outboxModel{
		OutboxID:     strings.TrimSpace(message.OutboxID),
		EventType:    strings.TrimSpace(message.EventType),
		PartitionKey: strings.TrimSpace(message.PartitionKey),
		Payload:      append([]byte(nil), message.Payload...),
		Status:       outboxStatusPending,
		CreatedAt:    message.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrRepositoryConflict
		}
		return r.logError("governance_repo_append_outbox_failed", err,
			"outbox_id", row.OutboxID,
			"event_type", row.EventType,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Order("outbox_id ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("governance_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toMessage())
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	outboxID = strings.TrimSpace(outboxID)
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("governance_repo_mark_outbox_published_failed", result.Error, "outbox_id", outboxID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *Repository) replaceApprovers(ctx context.Context, entryID string, approverIDs []string) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("entry_id = ?", entryID).Delete(&entryApproverModel{}).Error; err != nil {
		return r.logError("governance_repo_clear_approvers_failed", err, "entry_id", entryID)
	}
	seen := make(map[string]struct{}, len(approverIDs))
	rows := make([]entryApproverModel, 0, len(approverIDs))
	for _, userID := range approverIDs {
		userID = strings.TrimSpace(userID)
		if userID == "" {
			continue
		}
		if _, ok := seen[userID]; ok {
			continue
		}
		seen[userID] = struct{}{}
		rows = append(rows, entryApproverModel{EntryID: entryID, UserID: userID})
	}
	if len(rows) == 0 {
		return nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		return r.logError("governance_repo_insert_approvers_failed", err, "entry_id", entryID)
	}
	return nil
}

func (r *Repository) approversFor(ctx context.Context, entryIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(entryIDs))
	if len(entryIDs) == 0 {
		return out, nil
	}
	var rows []entryApproverModel
	if err := r.db.WithContext(ctx).Where("entry_id IN ?", entryIDs).Find(&rows).Error; err != nil {
		return nil, r.logError("governance_repo_list_approvers_failed", err, "count", len(entryIDs))
	}
	for _, row := range rows {
		out[row.EntryID] = append(out[row.EntryID], row.UserID)
	}
	for entryID := range out {
		sort.Strings(out[entryID])
	}
	return out, nil
}

func (r *Repository) forUpdate(tx *gorm.DB) *gorm.DB {
	if r.db.Dialector != nil && r.db.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", application.ModuleName,
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("governance repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

var _ ports.Store = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
