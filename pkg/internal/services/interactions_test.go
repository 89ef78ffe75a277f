package services

import (
	"testing"

	"github.com/desmin2102/HostelApp/pkg/internal/database"
	"github.com/desmin2102/HostelApp/pkg/internal/models"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComments(t *testing.T) {
	f := setupServices(t)
	post := f.seedRental(t, 0, 0, 100, true)
	other := f.seedRental(t, 0, 0, 100, true)
	target := models.RentalTarget(post.ID)

	_, err := NewComment(f.tenant, models.RentalTarget(9999), "hello", nil)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = NewComment(f.tenant, target, "   ", nil)
	assert.ErrorIs(t, err, ErrValidation)

	root, err := NewComment(f.tenant, target, "Is parking included?", nil)
	require.NoError(t, err)
	reply, err := NewComment(f.owner, target, "Yes, for motorbikes.", &root.ID)
	require.NoError(t, err)

	_, err = NewComment(f.owner, models.RentalTarget(other.ID), "wrong thread", &root.ID)
	assert.ErrorIs(t, err, ErrValidation)

	comments, count, err := ListComments(target, 20, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	require.Len(t, comments, 1)
	assert.Equal(t, root.ID, comments[0].ID)
	require.Len(t, comments[0].Replies, 1)
	assert.Equal(t, reply.ID, comments[0].Replies[0].ID)
	require.NotNil(t, comments[0].Replies[0].Account)
	assert.Equal(t, f.owner.ID, comments[0].Replies[0].Account.ID)

	assert.ErrorIs(t, DeleteComment(f.otherOwner, target, root.ID), ErrNotFound)
	assert.ErrorIs(t, DeleteComment(f.tenant, models.RentalTarget(other.ID), root.ID), ErrNotFound)
	require.NoError(t, DeleteComment(f.tenant, target, root.ID))

	comments, _, err = ListComments(target, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestCommentsOnTenantRequests(t *testing.T) {
	f := setupServices(t)
	request := f.seedRequest(t, nil, nil, nil, nil)
	post := f.seedRental(t, 0, 0, 100, true)

	_, err := NewComment(f.owner, models.RequestTarget(request.ID), "I have a room for you", nil)
	require.NoError(t, err)

	comments, _, err := ListComments(models.RequestTarget(request.ID), 20, 0)
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	// Same numeric id, other kind
	comments, _, err = ListComments(models.RentalTarget(post.ID), 20, 0)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestLikes(t *testing.T) {
	f := setupServices(t)
	post := f.seedRental(t, 0, 0, 100, true)
	target := models.RentalTarget(post.ID)

	_, err := LikeTarget(f.tenant, target)
	require.NoError(t, err)
	_, err = LikeTarget(f.tenant, target)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = LikeTarget(f.owner, target)
	require.NoError(t, err)
	_, err = LikeTarget(f.owner, models.RequestTarget(9999))
	assert.ErrorIs(t, err, ErrNotFound)

	count, err := CountLikes(target)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	likes, err := ListLikes(target)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{f.tenant.ID, f.owner.ID}, lo.Map(likes, func(item models.Like, _ int) uint {
		return item.AccountID
	}))

	liked, err := HasLiked(f.tenant, target)
	require.NoError(t, err)
	assert.True(t, liked)

	require.NoError(t, UnlikeTarget(f.tenant, target))
	assert.ErrorIs(t, UnlikeTarget(f.tenant, target), ErrNotFound)

	_, err = LikeTarget(f.tenant, target)
	assert.NoError(t, err, "liking again after unliking")
}

func TestTargetRef(t *testing.T) {
	assert.True(t, models.RentalTarget(1).IsValid())
	assert.True(t, models.RequestTarget(1).IsValid())
	assert.False(t, models.RentalTarget(0).IsValid())
	assert.False(t, models.TargetRef{Kind: "post", ID: 1}.IsValid())
	assert.ErrorIs(t, EnsureTarget(models.TargetRef{Kind: "post", ID: 1}, nil), ErrValidation)
}

func TestInteractionsOnHiddenListings(t *testing.T) {
	f := setupServices(t)
	pending := f.seedRental(t, 0, 0, 100, false)
	target := models.RentalTarget(pending.ID)

	_, err := NewComment(f.tenant, target, "Is it still available?", nil)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = LikeTarget(f.tenant, target)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, EnsureTarget(target, nil), ErrNotFound)

	_, err = NewComment(f.owner, target, "Photos coming soon", nil)
	assert.NoError(t, err)
	_, err = LikeTarget(f.staff, target)
	assert.NoError(t, err)

	hidden := f.seedRental(t, 0, 0, 100, true)
	require.NoError(t, database.C.Model(&hidden).Update("active", false).Error)
	_, err = LikeTarget(f.tenant, models.RentalTarget(hidden.ID))
	assert.ErrorIs(t, err, ErrNotFound)

	request := f.seedRequest(t, nil, nil, nil, nil)
	require.NoError(t, database.C.Model(&request).Update("active", false).Error)
	_, err = NewComment(f.owner, models.RequestTarget(request.ID), "I have a room for you", nil)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, EnsureTarget(models.RequestTarget(request.ID), &f.staff))
}
