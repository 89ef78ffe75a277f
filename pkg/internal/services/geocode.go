package services

import (
	"context"
	"errors"
	"time"

	"github.com/desmin2102/HostelApp/pkg/internal/database"
	"github.com/desmin2102/HostelApp/pkg/internal/models"
	"github.com/desmin2102/HostelApp/pkg/internal/services/gomaps"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/datatypes"
)

// geocodeRentalPost resolves and stores the coordinates of a committed post.
// Failures are logged and leave the coordinates empty, they never fail the caller.
func geocodeRentalPost(ctx context.Context, item *models.RentalPost, path LocationPath) bool {
	if Geocoder == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), GeocodeTimeout)
	defer cancel()

	attemptedAt := time.Now()
	item.GeocodeAttemptedAt = &attemptedAt

	coords, err := Geocoder.Resolve(ctx, item.Address, path.Ward.Name, path.District.Name, path.City.Name)
	if err != nil {
		if saveErr := database.C.Model(&models.RentalPost{}).
			Where("id = ?", item.ID).
			UpdateColumn("geocode_attempted_at", attemptedAt).Error; saveErr != nil {
			log.Error().Err(saveErr).Uint("post", item.ID).Msg("An error occurred when saving geocode attempt of rental post...")
		}

		event := log.Warn().Err(err).Uint("post", item.ID)
		var svcErr *gomaps.ServiceError
		if errors.Is(err, gomaps.ErrNotFound) {
			event.Msg("Unable to find coordinates of rental post, keep it without...")
		} else if errors.As(err, &svcErr) {
			event.Int("status", svcErr.StatusCode).Msg("Geocoding service failed, keep rental post without coordinates...")
		} else {
			event.Msg("An error occurred when geocoding rental post...")
		}
		return false
	}

	item.Latitude = lo.ToPtr(coords.Latitude)
	item.Longitude = lo.ToPtr(coords.Longitude)
	item.Geohash = lo.ToPtr(coords.Geohash())
	item.GeocodeMeta = datatypes.JSONMap{
		"formatted_address": coords.FormattedAddress,
		"place_id":          coords.PlaceID,
		"resolved_at":       attemptedAt.Unix(),
	}

	if err := database.C.Model(&models.RentalPost{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"latitude":     item.Latitude,
			"longitude":    item.Longitude,
			"geohash":      item.Geohash,
			"geocode_meta": item.GeocodeMeta,

			"geocode_attempted_at": attemptedAt,
		}).Error; err != nil {
		log.Error().Err(err).Uint("post", item.ID).Msg("An error occurred when saving coordinates of rental post...")
		return false
	}

	return true
}
