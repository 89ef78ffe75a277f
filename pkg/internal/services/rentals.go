package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/desmin2102/HostelApp/pkg/internal/database"
	"github.com/desmin2102/HostelApp/pkg/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RentalPostPatch holds the fields an owner may change, nil means unchanged.
type RentalPostPatch struct {
	Title       *string
	Description *string
	CategoryID  *uint
	Area        *float64
	Price       *int
	Tags        []string
	Address     *string
	CityID      *uint
	DistrictID  *uint
	WardID      *uint
	Images      []ImageUpload
}

func (v RentalPostPatch) touchesAddress() bool {
	return v.Address != nil || v.CityID != nil || v.DistrictID != nil || v.WardID != nil
}

func (v RentalPostPatch) hasFullAddress() bool {
	return v.Address != nil && v.CityID != nil && v.DistrictID != nil && v.WardID != nil
}

func GetRentalPost(tx *gorm.DB, id uint) (models.RentalPost, error) {
	var item models.RentalPost
	err := PreloadRental(tx).Where("id = ?", id).First(&item).Error
	return item, wrapLookupError("rental post", err)
}

// GetVisibleRentalPost hides unapproved posts from everyone except staff and the owner.
func GetVisibleRentalPost(id uint, user *models.Account) (models.RentalPost, error) {
	item, err := GetRentalPost(database.C, id)
	if err != nil {
		return item, err
	}
	if user != nil && (user.IsStaff() || user.ID == item.OwnerID) {
		return item, nil
	}
	if !item.IsApproved || !item.Active {
		return item, NewNotFoundError("rental post")
	}
	return item, nil
}

func validateRentalFields(item models.RentalPost) error {
	if len(item.Title) == 0 {
		return NewValidationError("title", "title is required")
	} else if item.Price <= 0 {
		return NewValidationError("price", "price must be positive")
	} else if item.Area < 0 {
		return NewValidationError("area", "area must not be negative")
	} else if len(item.Address) == 0 {
		return NewValidationError("address", "address is required")
	}
	return nil
}

func validateUploads(uploads []ImageUpload) error {
	for _, upload := range uploads {
		if !strings.HasPrefix(upload.ContentType, "image/") {
			return NewValidationError("images", fmt.Sprintf("%s is not an image", upload.Filename))
		}
		if upload.Open == nil {
			return NewValidationError("images", fmt.Sprintf("%s has no content", upload.Filename))
		}
	}
	return nil
}

func NewRentalPost(ctx context.Context, owner models.Account, item models.RentalPost, tags []string, uploads []ImageUpload) (models.RentalPost, error) {
	if err := requireRole(owner, models.AccountRoleOwner, "create rental posts"); err != nil {
		return item, err
	}
	if len(uploads) < MinRentalImages {
		return item, NewValidationError("images", fmt.Sprintf("at least %d images are required", MinRentalImages))
	}
	if err := validateUploads(uploads); err != nil {
		return item, err
	}

	item.Title = strings.TrimSpace(item.Title)
	item.Address = strings.TrimSpace(item.Address)
	if err := validateRentalFields(item); err != nil {
		return item, err
	}
	path, err := ValidateLocation(item.CityID, item.DistrictID, item.WardID)
	if err != nil {
		return item, err
	}
	if err := ensureCategory(item.CategoryID); err != nil {
		return item, err
	}

	item.ID = 0
	item.OwnerID = owner.ID
	item.Owner, item.Category, item.City, item.District, item.Ward = nil, nil, nil, nil, nil
	item.Images = nil
	item.IsApproved = false
	item.Active = true
	item.Latitude, item.Longitude, item.Geohash, item.GeocodeMeta = nil, nil, nil, nil
	item.Language = DetectLanguage(item.Title, item.Description)

	var stored []string
	err = database.C.Transaction(func(tx *gorm.DB) error {
		if err := claimAddress(tx, owner.ID, addressKeyOf(item)); err != nil {
			return err
		}

		var err error
		if item.Tags, err = EnsureTags(tx, tags); err != nil {
			return err
		}
		if err := tx.Omit("Tags.*").Create(&item).Error; err != nil {
			return fmt.Errorf("unable to create rental post: %v", err)
		}

		stored, err = attachRentalImages(ctx, tx, item.ID, uploads)
		return err
	})
	if err != nil {
		discardImages(stored)
		return item, err
	}

	log.Info().Uint("post", item.ID).Uint("owner", owner.ID).Msg("Rental post created...")

	geocodeRentalPost(ctx, &item, path)

	return GetRentalPost(database.C, item.ID)
}

func EditRentalPost(ctx context.Context, actor models.Account, item models.RentalPost, patch RentalPostPatch) (models.RentalPost, error) {
	if actor.ID != item.OwnerID {
		return item, NewPermissionDeniedError("only the owner can edit this rental post")
	}
	if err := validateUploads(patch.Images); err != nil {
		return item, err
	}

	previous := addressKeyOf(item)

	if patch.Title != nil {
		item.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.CategoryID != nil {
		if err := ensureCategory(patch.CategoryID); err != nil {
			return item, err
		}
		item.CategoryID = patch.CategoryID
	}
	if patch.Area != nil {
		item.Area = *patch.Area
	}
	if patch.Price != nil {
		item.Price = *patch.Price
	}
	if patch.Address != nil {
		item.Address = strings.TrimSpace(*patch.Address)
	}
	if patch.CityID != nil {
		item.CityID = *patch.CityID
	}
	if patch.DistrictID != nil {
		item.DistrictID = *patch.DistrictID
	}
	if patch.WardID != nil {
		item.WardID = *patch.WardID
	}
	if err := validateRentalFields(item); err != nil {
		return item, err
	}

	current := addressKeyOf(item)
	moved := current != previous

	var path LocationPath
	if patch.touchesAddress() {
		var err error
		if path, err = ValidateLocation(item.CityID, item.DistrictID, item.WardID); err != nil {
			return item, err
		}
	}
	if moved {
		// The old coordinates no longer describe this post
		item.Latitude, item.Longitude, item.Geohash, item.GeocodeMeta = nil, nil, nil, nil
	}
	item.Owner, item.Category, item.City, item.District, item.Ward = nil, nil, nil, nil, nil
	if patch.Title != nil || patch.Description != nil {
		item.Language = DetectLanguage(item.Title, item.Description)
	}

	var stored []string
	err := database.C.Transaction(func(tx *gorm.DB) error {
		if moved {
			if err := claimAddress(tx, item.OwnerID, current); err != nil {
				return err
			}
		}

		if err := tx.Omit(clause.Associations).Save(&item).Error; err != nil {
			return fmt.Errorf("unable to update rental post: %v", err)
		}

		if patch.Tags != nil {
			tags, err := EnsureTags(tx, patch.Tags)
			if err != nil {
				return err
			}
			if err := tx.Model(&item).Association("Tags").Replace(tags); err != nil {
				return fmt.Errorf("unable to update tags: %v", err)
			}
		}

		if moved {
			if err := releaseAddress(tx, item.OwnerID, previous); err != nil {
				return err
			}
		}

		var err error
		stored, err = attachRentalImages(ctx, tx, item.ID, patch.Images)
		return err
	})
	if err != nil {
		discardImages(stored)
		return item, err
	}

	if patch.hasFullAddress() && (moved || !item.HasCoordinates()) {
		geocodeRentalPost(ctx, &item, path)
	}

	return GetRentalPost(database.C, item.ID)
}

func DeleteRentalPost(ctx context.Context, actor models.Account, item models.RentalPost) error {
	if actor.ID != item.OwnerID {
		return NewPermissionDeniedError("only the owner can delete this rental post")
	}

	var images []models.RentalImage
	err := database.C.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("rental_post_id = ?", item.ID).Find(&images).Error; err != nil {
			return fmt.Errorf("unable to get rental images: %v", err)
		}
		if err := tx.Unscoped().Where("rental_post_id = ?", item.ID).Delete(&models.RentalImage{}).Error; err != nil {
			return fmt.Errorf("unable to delete rental images: %v", err)
		}
		if err := tx.Delete(&models.RentalPost{}, item.ID).Error; err != nil {
			return fmt.Errorf("unable to delete rental post: %v", err)
		}
		return releaseAddress(tx, item.OwnerID, addressKeyOf(item))
	})
	if err != nil {
		return err
	}

	discardImages(lo.Map(images, func(item models.RentalImage, _ int) string {
		return item.FileID
	}))
	return nil
}

// ApproveRentalPost makes the post public and queues the follower notification.
// Approving an approved post changes nothing and notifies nobody.
func ApproveRentalPost(ctx context.Context, actor models.Account, item models.RentalPost) (models.RentalPost, error) {
	if err := requireRole(actor, models.AccountRoleStaff, "approve rental posts"); err != nil {
		return item, err
	}

	res := database.C.Model(&models.RentalPost{}).
		Where("id = ? AND is_approved = ?", item.ID, false).
		Update("is_approved", true)
	if res.Error != nil {
		return item, fmt.Errorf("unable to approve rental post: %v", res.Error)
	}

	item, err := GetRentalPost(database.C, item.ID)
	if err != nil {
		return item, err
	}
	if res.RowsAffected == 0 {
		return item, nil
	}

	log.Info().Uint("post", item.ID).Uint("staff", actor.ID).Msg("Rental post approved...")
	if err := NotifyFollowers(ctx, item); err != nil {
		log.Error().Err(err).Uint("post", item.ID).Msg("An error occurred when notifying followers...")
	}

	return item, nil
}

func RejectRentalPost(actor models.Account, item models.RentalPost) (models.RentalPost, error) {
	if err := requireRole(actor, models.AccountRoleStaff, "reject rental posts"); err != nil {
		return item, err
	}

	if err := database.C.Model(&models.RentalPost{}).
		Where("id = ?", item.ID).
		Update("is_approved", false).Error; err != nil {
		return item, fmt.Errorf("unable to reject rental post: %v", err)
	}

	log.Info().Uint("post", item.ID).Uint("staff", actor.ID).Msg("Rental post rejected...")
	return GetRentalPost(database.C, item.ID)
}

func GetRentalImage(postID, imageID uint) (models.RentalImage, error) {
	var image models.RentalImage
	err := database.C.Where("id = ? AND rental_post_id = ?", imageID, postID).First(&image).Error
	return image, wrapLookupError("image", err)
}

// attachRentalImages stores the blobs and their rows, returning the blob ids written so far
// so the caller can clean them up when the transaction fails.
func attachRentalImages(ctx context.Context, tx *gorm.DB, postID uint, uploads []ImageUpload) ([]string, error) {
	if len(uploads) == 0 {
		return nil, nil
	}
	if Images == nil {
		return nil, fmt.Errorf("image store is not configured")
	}

	var stored []string
	for _, upload := range uploads {
		reader, err := upload.Open()
		if err != nil {
			return stored, NewValidationError("images", fmt.Sprintf("unable to read %s", upload.Filename))
		}

		filename := uuid.NewString() + strings.ToLower(filepath.Ext(upload.Filename))
		id, size, err := Images.Put(ctx, filename, upload.ContentType, reader)
		_ = reader.Close()
		if err != nil {
			return stored, fmt.Errorf("unable to store image: %v", err)
		}
		stored = append(stored, id)

		image := models.RentalImage{
			RentalPostID: postID,
			FileID:       id,
			Filename:     upload.Filename,
			ContentType:  upload.ContentType,
			Size:         size,
		}
		if err := tx.Create(&image).Error; err != nil {
			return stored, fmt.Errorf("unable to create rental image: %v", err)
		}
	}

	return stored, nil
}

func discardImages(ids []string) {
	if Images == nil {
		return
	}
	for _, id := range ids {
		if err := Images.Delete(context.Background(), id); err != nil {
			log.Warn().Err(err).Str("file", id).Msg("Unable to delete image blob...")
		}
	}
}
