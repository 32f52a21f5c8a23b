package postgresadapter

import (
	"context"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates every governance table and index.
func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(Models()...)
}
