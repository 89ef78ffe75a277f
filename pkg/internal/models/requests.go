package models

type TenantRequest struct {
	BaseModel

	Title       string    `json:"title" gorm:"size:255"`
	Description string    `json:"description"`
	Language    string    `json:"language"`
	Area        float64   `json:"area"`
	CategoryID  *uint     `json:"category_id"`
	Category    *Category `json:"category,omitempty" gorm:"constraint:OnDelete:SET NULL"`
	Tags        []Tag     `json:"tags" gorm:"many2many:request_tags;constraint:OnDelete:CASCADE"`

	MinPrice *int `json:"min_price"`
	MaxPrice *int `json:"max_price"`

	CityID    uint       `json:"city_id" gorm:"index"`
	City      *City      `json:"city,omitempty"`
	Districts []District `json:"districts" gorm:"many2many:request_districts;constraint:OnDelete:CASCADE"`
	Wards     []Ward     `json:"wards" gorm:"many2many:request_wards;constraint:OnDelete:CASCADE"`

	Active bool `json:"active" gorm:"default:true"`

	TenantID uint     `json:"tenant_id" gorm:"index"`
	Tenant   *Account `json:"tenant,omitempty"`
}
