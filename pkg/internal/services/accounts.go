package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/desmin2102/HostelApp/pkg/internal/database"
	"github.com/desmin2102/HostelApp/pkg/internal/models"
	"github.com/samber/lo"
	"gorm.io/gorm/clause"
)

var AccountCacheTTL = 5 * time.Minute

// Principal is the identity asserted by a verified bearer token.
type Principal struct {
	ID    uint
	Name  string
	Nick  string
	Email string
	Phone string
	Role  string
}

func IsKnownRole(role string) bool {
	return lo.Contains([]string{models.AccountRoleStaff, models.AccountRoleOwner, models.AccountRoleTenant}, role)
}

func (v Principal) matches(account models.Account) bool {
	return account.ID == v.ID &&
		account.Name == v.Name &&
		account.Nick == v.Nick &&
		account.Email == v.Email &&
		account.Phone == v.Phone &&
		account.Role == v.Role
}

// EnsureAccount mirrors the principal into the accounts table.
// The row is only rewritten when the token carries different details than the cached copy.
func EnsureAccount(principal Principal) (models.Account, error) {
	principal.Role = strings.ToLower(principal.Role)
	if principal.ID == 0 {
		return models.Account{}, NewValidationError("sub", "token subject is missing")
	} else if !IsKnownRole(principal.Role) {
		return models.Account{}, NewPermissionDeniedError(fmt.Sprintf("unknown role %q", principal.Role))
	}

	key := fmt.Sprintf("account#%d", principal.ID)
	if account, ok := cacheGet[models.Account](key); ok && principal.matches(account) {
		return account, nil
	}

	account := models.Account{
		BaseModel: models.BaseModel{ID: principal.ID},
		Name:      principal.Name,
		Nick:      principal.Nick,
		Email:     principal.Email,
		Phone:     principal.Phone,
		Role:      principal.Role,
	}
	if err := database.C.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "nick", "email", "phone", "role", "updated_at"}),
	}).Create(&account).Error; err != nil {
		return account, fmt.Errorf("unable to sync account: %v", err)
	}

	if err := database.C.Where("id = ?", principal.ID).First(&account).Error; err != nil {
		return account, fmt.Errorf("unable to get account: %v", err)
	}

	cacheSet(key, account, AccountCacheTTL, fmt.Sprintf("account#%d", account.ID))
	return account, nil
}

func GetAccountWithID(id uint) (models.Account, error) {
	var account models.Account
	err := database.C.Where("id = ?", id).First(&account).Error
	return account, wrapLookupError("account", err)
}

func requireRole(user models.Account, role string, action string) error {
	if user.Role != role {
		return NewPermissionDeniedError(fmt.Sprintf("only %s accounts can %s", role, action))
	}
	return nil
}
