package services

import (
	"fmt"
	"strings"

	"github.com/desmin2102/HostelApp/pkg/internal/database"
	"github.com/desmin2102/HostelApp/pkg/internal/models"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func ListCategory() ([]models.Category, error) {
	var categories []models.Category
	err := database.C.Order("name").Find(&categories).Error

	return categories, err
}

func GetCategoryWithID(id uint) (models.Category, error) {
	var category models.Category
	err := database.C.Where("id = ?", id).First(&category).Error
	return category, wrapLookupError("category", err)
}

func NewCategory(name, description string) (models.Category, error) {
	category := models.Category{
		Name:        strings.TrimSpace(name),
		Description: description,
	}
	if len(category.Name) == 0 {
		return category, NewValidationError("name", "name is required")
	}

	if err := database.C.Create(&category).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return category, NewValidationError("name", "category already exists")
		}
		return category, fmt.Errorf("unable to create category: %v", err)
	}
	return category, nil
}

// ensureCategory checks an optional category reference.
func ensureCategory(id *uint) error {
	if id == nil {
		return nil
	}
	if _, err := GetCategoryWithID(*id); err != nil {
		if KindOf(err) == KindNotFound {
			return NewValidationError("category", "category does not exist")
		}
		return err
	}
	return nil
}

// ParseTags splits a comma separated list, trims every token, drops empty ones
// and removes duplicates while keeping the first-seen order. Case is preserved.
func ParseTags(raw string) []string {
	return NormalizeTags(strings.Split(raw, ","))
}

func NormalizeTags(names []string) []string {
	names = lo.Map(names, func(item string, _ int) string {
		return strings.TrimSpace(item)
	})
	names = lo.Filter(names, func(item string, _ int) bool {
		return len(item) > 0
	})
	return lo.Uniq(names)
}

// EnsureTags is the get-or-create of tags by exact name.
// It runs on the given handle so it can join an open transaction.
func EnsureTags(tx *gorm.DB, names []string) ([]models.Tag, error) {
	names = NormalizeTags(names)
	if len(names) == 0 {
		return []models.Tag{}, nil
	}

	rows := lo.Map(names, func(item string, _ int) models.Tag {
		return models.Tag{Name: item}
	})
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("unable to create tags: %v", err)
	}

	var tags []models.Tag
	if err := tx.Where("name IN ?", names).Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("unable to get tags: %v", err)
	}

	// Keep the caller's order
	byName := lo.KeyBy(tags, func(item models.Tag) string { return item.Name })
	return lo.FilterMap(names, func(item string, _ int) (models.Tag, bool) {
		tag, ok := byName[item]
		return tag, ok
	}), nil
}

func GetTagOrCreate(name string) (models.Tag, error) {
	tags, err := EnsureTags(database.C, []string{name})
	if err != nil {
		return models.Tag{}, err
	} else if len(tags) == 0 {
		return models.Tag{}, NewValidationError("tags", "tag name is empty")
	}
	return tags[0], nil
}
