package services

import (
	"context"
	"fmt"
	"time"

	"github.com/desmin2102/HostelApp/pkg/internal/database"
	"github.com/desmin2102/HostelApp/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	CleanupRetention  = 30 * 24 * time.Hour
	BackfillBatchSize = 50
)

// DoAutoDatabaseCleanup purges rows soft deleted longer ago than the retention.
func DoAutoDatabaseCleanup() {
	deadline := time.Now().Add(-CleanupRetention)
	log.Debug().Time("deadline", deadline).Msg("Now cleaning up entire database...")

	var count int64
	for _, model := range database.AutoMaintainRange {
		var affected int64
		err := database.C.Transaction(func(tx *gorm.DB) error {
			var ids []uint
			if err := tx.Unscoped().Model(model).Where("deleted_at < ?", deadline).Pluck("id", &ids).Error; err != nil {
				return err
			} else if len(ids) == 0 {
				return nil
			}
			if err := clearDependents(tx, model, ids); err != nil {
				return err
			}
			res := tx.Unscoped().Where("id IN ?", ids).Delete(model)
			affected = res.RowsAffected
			return res.Error
		})
		if err != nil {
			log.Error().Err(err).Msg("An error occurred when running auto database cleanup...")
			continue
		}
		count += affected
	}

	log.Debug().Int64("affected", count).Msg("Clean up entire database accomplished.")
}

// clearDependents drops the many2many rows and the self referencing children
// of the purged ids. Databases migrated before the cascading constraints existed
// still reject the purge without this.
func clearDependents(tx *gorm.DB, model any, ids []uint) error {
	stmt := &gorm.Statement{DB: tx}
	if err := stmt.Parse(model); err != nil {
		return err
	}

	purge := func(table, column string) error {
		if err := tx.Exec(
			"DELETE FROM ? WHERE ? IN ?",
			clause.Table{Name: table}, clause.Column{Name: column}, ids,
		).Error; err != nil {
			return fmt.Errorf("unable to clear %s: %v", table, err)
		}
		return nil
	}

	for _, rel := range stmt.Schema.Relationships.Many2Many {
		for _, ref := range rel.References {
			if ref.OwnPrimaryKey {
				if err := purge(rel.JoinTable.Table, ref.ForeignKey.DBName); err != nil {
					return err
				}
			}
		}
	}
	for _, rel := range stmt.Schema.Relationships.HasMany {
		if rel.FieldSchema.Table != stmt.Schema.Table {
			continue
		}
		for _, ref := range rel.References {
			if ref.OwnPrimaryKey {
				if err := purge(stmt.Schema.Table, ref.ForeignKey.DBName); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// DoCoordinateBackfill retries geocoding for active posts still missing coordinates.
// Posts never tried go first, then the ones whose last attempt is oldest.
func DoCoordinateBackfill() {
	if Geocoder == nil {
		return
	}

	var posts []models.RentalPost
	if err := database.C.
		Preload("City").Preload("District").Preload("Ward").
		Where("active = ? AND latitude IS NULL", true).
		Order("geocode_attempted_at IS NOT NULL, geocode_attempted_at, id").
		Limit(BackfillBatchSize).
		Find(&posts).Error; err != nil {
		log.Error().Err(err).Msg("An error occurred when listing posts without coordinates...")
		return
	}

	var resolved int
	for idx := range posts {
		post := &posts[idx]
		if post.City == nil || post.District == nil || post.Ward == nil {
			continue
		}
		path := LocationPath{City: *post.City, District: *post.District, Ward: *post.Ward}
		if geocodeRentalPost(context.Background(), post, path) {
			resolved++
		}
	}

	log.Debug().Int("total", len(posts)).Int("resolved", resolved).Msg("Coordinate backfill accomplished.")
}
