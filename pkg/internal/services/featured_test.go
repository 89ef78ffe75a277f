package services

import (
	"testing"
	"time"

	"github.com/desmin2102/HostelApp/pkg/internal/database"
	"github.com/desmin2102/HostelApp/pkg/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFeaturedRentals(t *testing.T) {
	f := setupServices(t)
	quiet := f.seedRental(t, 0, 0, 100, true)
	popular := f.seedRental(t, 0, 1, 100, true)
	hidden := f.seedRental(t, 1, 0, 100, false)
	old := f.seedRental(t, 1, 1, 100, true)

	like := func(account models.Account, post models.RentalPost, at time.Time) {
		item := models.Like{Target: models.RentalTarget(post.ID), AccountID: account.ID}
		item.CreatedAt = at
		require.NoError(t, database.C.Create(&item).Error)
	}
	now := time.Now()
	like(f.tenant, quiet, now)
	like(f.tenant, popular, now)
	like(f.owner, popular, now)
	like(f.tenant, hidden, now)
	like(f.owner, hidden, now)
	like(f.staff, hidden, now)
	like(f.tenant, old, now.Add(-FeaturedWindow-time.Hour))
	like(f.owner, old, now.Add(-FeaturedWindow-time.Hour))
	like(f.staff, old, now.Add(-FeaturedWindow-time.Hour))

	posts, err := ListFeaturedRentals(10)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, popular.ID, posts[0].ID)
	assert.Equal(t, quiet.ID, posts[1].ID)

	posts, err = ListFeaturedRentals(1)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, popular.ID, posts[0].ID)
}

func TestListFeaturedRentalsEmpty(t *testing.T) {
	setupServices(t)

	posts, err := ListFeaturedRentals(0)
	require.NoError(t, err)
	assert.Empty(t, posts)
}
