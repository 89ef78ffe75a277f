package models

const (
	AccountRoleStaff  = "staff"
	AccountRoleOwner  = "owner"
	AccountRoleTenant = "tenant"
)

// Account mirrors the principal issued by the identity provider.
// The ID is the provider's subject, it is never generated here.
type Account struct {
	BaseModel

	Name  string `json:"name"`
	Nick  string `json:"nick"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role" gorm:"index;size:10"`

	RentalPosts    []RentalPost    `json:"rental_posts,omitempty" gorm:"foreignKey:OwnerID"`
	TenantRequests []TenantRequest `json:"tenant_requests,omitempty" gorm:"foreignKey:TenantID"`
}

func (v Account) IsStaff() bool  { return v.Role == AccountRoleStaff }
func (v Account) IsOwner() bool  { return v.Role == AccountRoleOwner }
func (v Account) IsTenant() bool { return v.Role == AccountRoleTenant }
