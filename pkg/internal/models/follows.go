package models

type Follow struct {
	BaseModel

	TenantID uint     `json:"tenant_id" gorm:"uniqueIndex:idx_follow_pair"`
	Tenant   *Account `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
	OwnerID  uint     `json:"owner_id" gorm:"uniqueIndex:idx_follow_pair"`
	Owner    *Account `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}
