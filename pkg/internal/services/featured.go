package services

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/desmin2102/HostelApp/pkg/internal/database"
	"github.com/desmin2102/HostelApp/pkg/internal/models"
	"github.com/samber/lo"
)

var FeaturedWindow = 7 * 24 * time.Hour

type rankedTarget struct {
	TargetID uint
	Points   int64
}

// ListFeaturedRentals picks the approved posts liked the most during the last week.
// Ties go to the newer post.
func ListFeaturedRentals(count int) ([]models.RentalPost, error) {
	if count <= 0 || count > 50 {
		count = 10
	}
	deadline := time.Now().Add(-FeaturedWindow)

	var ranked []rankedTarget
	if err := database.C.Model(&models.Like{}).
		Select("target_id, COUNT(id) AS points").
		Where("target_kind = ? AND created_at >= ?", models.TargetRental, deadline).
		Group("target_id").
		Order("points DESC").
		Limit(count * 2).
		Scan(&ranked).Error; err != nil {
		return nil, fmt.Errorf("unable to rank rental posts: %v", err)
	}
	if len(ranked) == 0 {
		return []models.RentalPost{}, nil
	}

	ids := lo.Map(ranked, func(item rankedTarget, _ int) uint {
		return item.TargetID
	})
	var posts []models.RentalPost
	if err := FilterRentalVisibility(PreloadRental(database.C), nil, nil).
		Where("id IN ?", ids).
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("unable to get featured rental posts: %v", err)
	}

	points := make(map[uint]int64, len(ranked))
	for _, item := range ranked {
		points[item.TargetID] = item.Points
	}
	slices.SortStableFunc(posts, func(a, b models.RentalPost) int {
		if points[a.ID] != points[b.ID] {
			return cmp.Compare(points[b.ID], points[a.ID])
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(posts) > count {
		posts = posts[:count]
	}
	return posts, nil
}
