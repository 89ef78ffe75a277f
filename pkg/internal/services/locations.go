package services

import (
	"fmt"
	"strings"

	"github.com/desmin2102/HostelApp/pkg/internal/database"
	"github.com/desmin2102/HostelApp/pkg/internal/models"
	"github.com/samber/lo"
)

// LocationPath is a city, district and ward triple already checked for containment.
type LocationPath struct {
	City     models.City
	District models.District
	Ward     models.Ward
}

func ListCities() ([]models.City, error) {
	const key = "locations#cities"
	if cities, ok := cacheGet[[]models.City](key); ok {
		return cities, nil
	}

	var cities []models.City
	if err := database.C.Where("active = ?", true).Order("name").Find(&cities).Error; err != nil {
		return nil, fmt.Errorf("unable to list cities: %v", err)
	}

	cacheSet(key, cities, LocationCacheTTL, locationCacheTag)
	return cities, nil
}

// ListDistricts returns the districts of a city ordered by name, cityID 0 lists every district.
func ListDistricts(cityID uint) ([]models.District, error) {
	key := fmt.Sprintf("locations#districts#%d", cityID)
	if districts, ok := cacheGet[[]models.District](key); ok {
		return districts, nil
	}

	tx := database.C.Where("active = ?", true)
	if cityID > 0 {
		tx = tx.Where("city_id = ?", cityID)
	}

	var districts []models.District
	if err := tx.Order("name").Find(&districts).Error; err != nil {
		return nil, fmt.Errorf("unable to list districts: %v", err)
	}

	cacheSet(key, districts, LocationCacheTTL, locationCacheTag)
	return districts, nil
}

// ListWards returns the wards of any of the given districts ordered by name, no ids lists every ward.
func ListWards(districtIDs []uint) ([]models.Ward, error) {
	districtIDs = lo.Uniq(districtIDs)
	key := "locations#wards#" + strings.Join(lo.Map(districtIDs, func(item uint, _ int) string {
		return fmt.Sprint(item)
	}), ",")
	if wards, ok := cacheGet[[]models.Ward](key); ok {
		return wards, nil
	}

	tx := database.C.Where("active = ?", true)
	if len(districtIDs) > 0 {
		tx = tx.Where("district_id IN ?", districtIDs)
	}

	var wards []models.Ward
	if err := tx.Order("name").Find(&wards).Error; err != nil {
		return nil, fmt.Errorf("unable to list wards: %v", err)
	}

	cacheSet(key, wards, LocationCacheTTL, locationCacheTag)
	return wards, nil
}

func GetCity(id uint) (models.City, error) {
	var city models.City
	err := database.C.Where("id = ?", id).First(&city).Error
	return city, wrapLookupError("city", err)
}

// ValidateLocation checks that the ward sits in the district and the district in the city.
func ValidateLocation(cityID, districtID, wardID uint) (LocationPath, error) {
	var path LocationPath
	if cityID == 0 {
		return path, NewValidationError("city", "city is required")
	} else if districtID == 0 {
		return path, NewValidationError("district", "district is required")
	} else if wardID == 0 {
		return path, NewValidationError("ward", "ward is required")
	}

	if err := database.C.Where("id = ?", cityID).First(&path.City).Error; err != nil {
		if database.IsNotFound(err) {
			return path, NewValidationError("city", "city does not exist")
		}
		return path, fmt.Errorf("unable to get city: %v", err)
	}
	if err := database.C.Where("id = ?", districtID).First(&path.District).Error; err != nil {
		if database.IsNotFound(err) {
			return path, NewValidationError("district", "district does not exist")
		}
		return path, fmt.Errorf("unable to get district: %v", err)
	}
	if err := database.C.Where("id = ?", wardID).First(&path.Ward).Error; err != nil {
		if database.IsNotFound(err) {
			return path, NewValidationError("ward", "ward does not exist")
		}
		return path, fmt.Errorf("unable to get ward: %v", err)
	}

	if path.District.CityID != path.City.ID {
		return path, NewValidationError("district", "district does not belong to the city")
	}
	if path.Ward.DistrictID != path.District.ID {
		return path, NewValidationError("ward", "ward does not belong to the district")
	}

	return path, nil
}

// ValidateLocationSet is the multi-select form used by tenant requests:
// every district must be in the city and every ward in one of the districts.
func ValidateLocationSet(cityID uint, districtIDs, wardIDs []uint) ([]models.District, []models.Ward, error) {
	if cityID == 0 {
		return nil, nil, NewValidationError("city", "city is required")
	}
	if _, err := GetCity(cityID); err != nil {
		if KindOf(err) == KindNotFound {
			return nil, nil, NewValidationError("city", "city does not exist")
		}
		return nil, nil, err
	}

	districtIDs = lo.Uniq(districtIDs)
	wardIDs = lo.Uniq(wardIDs)
	if len(wardIDs) > 0 && len(districtIDs) == 0 {
		return nil, nil, NewValidationError("wards", "wards require at least one district")
	}

	var districts []models.District
	if len(districtIDs) > 0 {
		if err := database.C.Where("id IN ?", districtIDs).Find(&districts).Error; err != nil {
			return nil, nil, fmt.Errorf("unable to get districts: %v", err)
		}
		if len(districts) != len(districtIDs) {
			return nil, nil, NewValidationError("districts", "some districts do not exist")
		}
		for _, district := range districts {
			if district.CityID != cityID {
				return nil, nil, NewValidationError("districts", fmt.Sprintf("district %d does not belong to the city", district.ID))
			}
		}
	}

	var wards []models.Ward
	if len(wardIDs) > 0 {
		if err := database.C.Where("id IN ?", wardIDs).Find(&wards).Error; err != nil {
			return nil, nil, fmt.Errorf("unable to get wards: %v", err)
		}
		if len(wards) != len(wardIDs) {
			return nil, nil, NewValidationError("wards", "some wards do not exist")
		}
		for _, ward := range wards {
			if !lo.Contains(districtIDs, ward.DistrictID) {
				return nil, nil, NewValidationError("wards", fmt.Sprintf("ward %d does not belong to the selected districts", ward.ID))
			}
		}
	}

	return districts, wards, nil
}

func NewCity(name string) (models.City, error) {
	city := models.City{Name: strings.TrimSpace(name), Active: true}
	if len(city.Name) == 0 {
		return city, NewValidationError("name", "name is required")
	}
	if err := database.C.Create(&city).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return city, NewValidationError("name", "city already exists")
		}
		return city, fmt.Errorf("unable to create city: %v", err)
	}

	cacheInvalidate(locationCacheTag)
	return city, nil
}

func NewDistrict(cityID uint, name string) (models.District, error) {
	district := models.District{CityID: cityID, Name: strings.TrimSpace(name), Active: true}
	if len(district.Name) == 0 {
		return district, NewValidationError("name", "name is required")
	}
	if _, err := GetCity(cityID); err != nil {
		if KindOf(err) == KindNotFound {
			return district, NewValidationError("city", "city does not exist")
		}
		return district, err
	}
	if err := database.C.Create(&district).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return district, NewValidationError("name", "district already exists in this city")
		}
		return district, fmt.Errorf("unable to create district: %v", err)
	}

	cacheInvalidate(locationCacheTag)
	return district, nil
}

func NewWard(districtID uint, name string) (models.Ward, error) {
	ward := models.Ward{DistrictID: districtID, Name: strings.TrimSpace(name), Active: true}
	if len(ward.Name) == 0 {
		return ward, NewValidationError("name", "name is required")
	}
	var district models.District
	if err := database.C.Where("id = ?", districtID).First(&district).Error; err != nil {
		if database.IsNotFound(err) {
			return ward, NewValidationError("district", "district does not exist")
		}
		return ward, fmt.Errorf("unable to get district: %v", err)
	}
	if err := database.C.Create(&ward).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return ward, NewValidationError("name", "ward already exists in this district")
		}
		return ward, fmt.Errorf("unable to create ward: %v", err)
	}

	cacheInvalidate(locationCacheTag)
	return ward, nil
}
