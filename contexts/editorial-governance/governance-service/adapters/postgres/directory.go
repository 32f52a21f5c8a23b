package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	application "lexicon/contexts/editorial-governance/governance-service/application"
	"lexicon/contexts/editorial-governance/governance-service/ports"
)

// Directory reads the role and profile projections kept alongside the
// governance tables. Users missing from the projection hold no role.
type Directory struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewDirectory(db *gorm.DB, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{db: db, logger: logger}
}

func (d *Directory) IsReviewer(ctx context.Context, userID string) (bool, error) {
	row, err := d.roles(ctx, userID)
	if err != nil {
		return false, err
	}
	return row.IsReviewer, nil
}

func (d *Directory) IsAdmin(ctx context.Context, userID string) (bool, error) {
	row, err := d.roles(ctx, userID)
	if err != nil {
		return false, err
	}
	return row.IsAdmin, nil
}

func (d *Directory) roles(ctx context.Context, userID string) (userRoleModel, error) {
	userID = strings.TrimSpace(userID)
	var row userRoleModel
	err := conn(ctx, d.db).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return userRoleModel{UserID: userID}, nil
	}
	if err != nil {
		return userRoleModel{}, d.logError("governance_directory_roles_failed", err, "user_id", userID)
	}
	return row, nil
}

func (d *Directory) ListProfiles(ctx context.Context, userIDs []string) (map[string]ports.Profile, error) {
	out := make(map[string]ports.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var rows []userProfileModel
	if err := conn(ctx, d.db).Where("user_id IN ?", userIDs).Find(&rows).Error; err != nil {
		return nil, d.logError("governance_directory_profiles_failed", err, "count", len(userIDs))
	}
	for _, row := range rows {
		out[row.UserID] = ports.Profile{
			UserID:       row.UserID,
			Username:     row.Username,
			Municipality: row.Municipality,
		}
	}
	return out, nil
}

// UpsertRoles replaces the stored roles of a user.
func (d *Directory) UpsertRoles(ctx context.Context, userID string, reviewer bool, admin bool) error {
	row := userRoleModel{
		UserID:     strings.TrimSpace(userID),
		IsReviewer: reviewer,
		IsAdmin:    admin,
		UpdatedAt:  time.Now().UTC(),
	}
	err := conn(ctx, d.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_reviewer", "is_admin", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return d.logError("governance_directory_upsert_roles_failed", err, "user_id", row.UserID)
	}
	return nil
}

func (d *Directory) UpsertProfile(ctx context.Context, profile ports.Profile) error {
	row := userProfileModel{
		UserID:       strings.TrimSpace(profile.UserID),
		Username:     strings.TrimSpace(profile.Username),
		Municipality: strings.TrimSpace(profile.Municipality),
		UpdatedAt:    time.Now().UTC(),
	}
	err := conn(ctx, d.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "municipality", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return d.logError("governance_directory_upsert_profile_failed", err, "user_id", row.UserID)
	}
	return nil
}

func (d *Directory) logError(event string, err error, attrs ...any) error {
	fields := append([]any{
		"event", event,
		"module", application.ModuleName,
		"layer", "adapter",
		"error", err.Error(),
	}, attrs...)
	d.logger.Error("governance directory operation failed", fields...)
	return err
}

var _ ports.IdentityProvider = (*Directory)(nil)
var _ ports.ProfileDirectory = (*Directory)(nil)
