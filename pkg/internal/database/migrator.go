package database

import (
	"github.com/desmin2102/HostelApp/pkg/internal/models"
	"gorm.io/gorm"
)

// AutoMaintainRange holds the soft-deleted models purged by the cleanup task.
var AutoMaintainRange = []any{
	&models.Category{},
	&models.Tag{},
	&models.RentalPost{},
	&models.RentalImage{},
	&models.TenantRequest{},
	&models.Follow{},
	&models.Comment{},
	&models.Like{},
}

func RunMigration(source *gorm.DB) error {
	if err := source.AutoMigrate(
		append(
			[]any{
				&models.City{},
				&models.District{},
				&models.Ward{},
				&models.Account{},
				&models.AddressClaim{},
			},
			AutoMaintainRange...,
		)...,
	); err != nil {
		return err
	}

	likes := source.NamingStrategy.TableName("Like")
	if err := source.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_likes_account_target ON " + likes + " (account_id, target_kind, target_id)",
	).Error; err != nil {
		return err
	}

	return nil
}
