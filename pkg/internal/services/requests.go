package services

import (
	"fmt"
	"strings"

	"github.com/desmin2102/HostelApp/pkg/internal/database"
	"github.com/desmin2102/HostelApp/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TenantRequestPatch holds the fields a tenant may change.
// Nil slices mean unchanged, an empty slice clears the selection.
type TenantRequestPatch struct {
	Title       *string
	Description *string
	CategoryID  *uint
	Area        *float64
	MinPrice    *int
	MaxPrice    *int
	CityID      *uint
	Districts   []uint
	Wards       []uint
	Tags        []string
}

func GetTenantRequest(tx *gorm.DB, id uint) (models.TenantRequest, error) {
	var item models.TenantRequest
	err := PreloadRequest(tx).Where("id = ?", id).First(&item).Error
	return item, wrapLookupError("tenant request", err)
}

func validateRequestFields(item models.TenantRequest) error {
	if len(item.Title) == 0 {
		return NewValidationError("title", "title is required")
	}
	if item.MinPrice != nil && *item.MinPrice < 0 {
		return NewValidationError("min_price", "min_price must not be negative")
	}
	if item.MaxPrice != nil && *item.MaxPrice < 0 {
		return NewValidationError("max_price", "max_price must not be negative")
	}
	if item.MinPrice != nil && item.MaxPrice != nil && *item.MinPrice > *item.MaxPrice {
		return NewValidationError("min_price", "min_price must not be greater than max_price")
	}
	return nil
}

func NewTenantRequest(tenant models.Account, item models.TenantRequest, districtIDs, wardIDs []uint, tags []string) (models.TenantRequest, error) {
	if err := requireRole(tenant, models.AccountRoleTenant, "create tenant requests"); err != nil {
		return item, err
	}

	item.Title = strings.TrimSpace(item.Title)
	if err := validateRequestFields(item); err != nil {
		return item, err
	}
	districts, wards, err := ValidateLocationSet(item.CityID, districtIDs, wardIDs)
	if err != nil {
		return item, err
	}
	if err := ensureCategory(item.CategoryID); err != nil {
		return item, err
	}

	item.ID = 0
	item.TenantID = tenant.ID
	item.Tenant, item.Category, item.City = nil, nil, nil
	item.Districts = districts
	item.Wards = wards
	item.Active = true
	item.Language = DetectLanguage(item.Title, item.Description)

	err = database.C.Transaction(func(tx *gorm.DB) error {
		var err error
		if item.Tags, err = EnsureTags(tx, tags); err != nil {
			return err
		}
		if err := tx.Omit("Districts.*", "Wards.*", "Tags.*").Create(&item).Error; err != nil {
			return fmt.Errorf("unable to create tenant request: %v", err)
		}
		return nil
	})
	if err != nil {
		return item, err
	}

	log.Info().Uint("request", item.ID).Uint("tenant", tenant.ID).Msg("Tenant request created...")
	return GetTenantRequest(database.C, item.ID)
}

func EditTenantRequest(actor models.Account, item models.TenantRequest, patch TenantRequestPatch) (models.TenantRequest, error) {
	if actor.ID != item.TenantID {
		return item, NewPermissionDeniedError("only the requester can edit this tenant request")
	}

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
	if patch.MinPrice != nil {
		item.MinPrice = patch.MinPrice
	}
	if patch.MaxPrice != nil {
		item.MaxPrice = patch.MaxPrice
	}
	cityChanged := patch.CityID != nil && *patch.CityID != item.CityID
	if patch.CityID != nil {
		item.CityID = *patch.CityID
	}
	if err := validateRequestFields(item); err != nil {
		return item, err
	}

	// Moving to another city drops the old selection unless a new one comes with it
	districtIDs := patch.Districts
	wardIDs := patch.Wards
	relocate := patch.CityID != nil || districtIDs != nil || wardIDs != nil
	if districtIDs == nil && !cityChanged {
		districtIDs = lo.Map(item.Districts, func(v models.District, _ int) uint { return v.ID })
	}
	if wardIDs == nil && !cityChanged {
		wardIDs = lo.Map(item.Wards, func(v models.Ward, _ int) uint { return v.ID })
	}

	var districts []models.District
	var wards []models.Ward
	if relocate {
		var err error
		if districts, wards, err = ValidateLocationSet(item.CityID, districtIDs, wardIDs); err != nil {
			return item, err
		}
	}

	if patch.Title != nil || patch.Description != nil {
		item.Language = DetectLanguage(item.Title, item.Description)
	}
	item.Tenant, item.Category, item.City = nil, nil, nil

	err := database.C.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&item).Error; err != nil {
			return fmt.Errorf("unable to update tenant request: %v", err)
		}
		if relocate {
			if err := tx.Model(&item).Association("Districts").Replace(districts); err != nil {
				return fmt.Errorf("unable to update districts: %v", err)
			}
			if err := tx.Model(&item).Association("Wards").Replace(wards); err != nil {
				return fmt.Errorf("unable to update wards: %v", err)
			}
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
		return nil
	})
	if err != nil {
		return item, err
	}

	return GetTenantRequest(database.C, item.ID)
}

func DeleteTenantRequest(actor models.Account, item models.TenantRequest) error {
	if actor.ID != item.TenantID {
		return NewPermissionDeniedError("only the requester can delete this tenant request")
	}
	if err := database.C.Delete(&models.TenantRequest{}, item.ID).Error; err != nil {
		return fmt.Errorf("unable to delete tenant request: %v", err)
	}
	return nil
}
