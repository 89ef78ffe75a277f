package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desmin2102/HostelApp/pkg/internal/database"
	"github.com/desmin2102/HostelApp/pkg/internal/models"
	"github.com/desmin2102/HostelApp/pkg/internal/services/mailer"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func GetFollow(tenant models.Account, ownerID uint) (*models.Follow, error) {
	var follow models.Follow
	if err := database.C.Where("tenant_id = ? AND owner_id = ?", tenant.ID, ownerID).First(&follow).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("unable to get follow: %v", err)
	}
	return &follow, nil
}

func FollowOwner(tenant models.Account, ownerID uint) (models.Follow, error) {
	var follow models.Follow
	if err := requireRole(tenant, models.AccountRoleTenant, "follow owners"); err != nil {
		return follow, err
	}

	owner, err := GetAccountWithID(ownerID)
	if err != nil {
		return follow, err
	} else if !owner.IsOwner() {
		return follow, NewNotFoundError("owner")
	}

	follow = models.Follow{
		TenantID: tenant.ID,
		OwnerID:  owner.ID,
	}
	if err := database.C.Create(&follow).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return follow, NewValidationError("owner", "already following this owner")
		}
		return follow, fmt.Errorf("unable to follow owner: %v", err)
	}

	return follow, nil
}

func UnfollowOwner(tenant models.Account, ownerID uint) error {
	follow, err := GetFollow(tenant, ownerID)
	if err != nil {
		return err
	} else if follow == nil {
		return NewNotFoundError("follow")
	}

	// Hard delete so the pair can be followed again
	if err := database.C.Unscoped().Delete(follow).Error; err != nil {
		return fmt.Errorf("unable to unfollow owner: %v", err)
	}
	return nil
}

func ListFollowers(ownerID uint) ([]models.Account, error) {
	var accounts []models.Account
	if err := database.C.
		Where("id IN (?)", database.C.Model(&models.Follow{}).Select("tenant_id").Where("owner_id = ?", ownerID)).
		Order("id").
		Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("unable to list followers: %v", err)
	}
	return accounts, nil
}

func ListFollowing(tenantID uint) ([]models.Account, error) {
	var accounts []models.Account
	if err := database.C.
		Where("id IN (?)", database.C.Model(&models.Follow{}).Select("owner_id").Where("tenant_id = ?", tenantID)).
		Order("id").
		Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("unable to list following: %v", err)
	}
	return accounts, nil
}

// FollowerEmails lists the mail addresses of tenants following the owner.
func FollowerEmails(ownerID uint) ([]string, error) {
	var emails []string
	if err := database.C.Model(&models.Account{}).
		Where("id IN (?)", database.C.Model(&models.Follow{}).Select("tenant_id").Where("owner_id = ?", ownerID)).
		Where("role = ? AND email <> ?", models.AccountRoleTenant, "").
		Order("id").
		Pluck("email", &emails).Error; err != nil {
		return nil, fmt.Errorf("unable to list follower emails: %v", err)
	}
	return emails, nil
}

func displayName(account models.Account) string {
	if name := strings.TrimSpace(account.Name); len(name) > 0 {
		return name
	} else if len(account.Nick) > 0 {
		return account.Nick
	}
	return fmt.Sprintf("Owner #%d", account.ID)
}

func NewRentalPostMail(owner models.Account, item models.RentalPost, recipients []string) mailer.Message {
	return mailer.Message{
		To:      recipients,
		Subject: "New rental post: " + item.Title,
		Body: fmt.Sprintf(
			"%s, whom you follow, has published a new rental post.\n\n%s\nAddress: %s\nPrice: %d\n",
			displayName(owner), item.Title, item.Address, item.Price,
		),
	}
}

// NotifyFollowers queues one announcement mail for every tenant following the owner of the post.
// The mail is only handed to the dispatcher here, sending happens elsewhere.
func NotifyFollowers(ctx context.Context, item models.RentalPost) error {
	if Dispatcher == nil {
		log.Warn().Uint("post", item.ID).Msg("No notification dispatcher configured, skip notifying followers...")
		return nil
	}

	owner, err := GetAccountWithID(item.OwnerID)
	if err != nil {
		return err
	}
	emails, err := FollowerEmails(item.OwnerID)
	if err != nil {
		return err
	} else if len(emails) == 0 {
		return nil
	}

	if err := Dispatcher.Dispatch(ctx, NewRentalPostMail(owner, item, emails)); err != nil {
		return fmt.Errorf("unable to dispatch notification: %v", err)
	}

	log.Debug().Uint("post", item.ID).Int("followers", len(emails)).Msg("Notified followers of new rental post...")
	return nil
}
