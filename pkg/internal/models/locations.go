package models

type City struct {
	BaseModel

	Name      string     `json:"name" gorm:"uniqueIndex;size:100"`
	Active    bool       `json:"active" gorm:"default:true"`
	Districts []District `json:"districts,omitempty"`
}

// District names are unique inside their city only.
type District struct {
	BaseModel

	Name   string `json:"name" gorm:"uniqueIndex:idx_district_city_name;size:100"`
	CityID uint   `json:"city_id" gorm:"uniqueIndex:idx_district_city_name;not null"`
	City   *City  `json:"city,omitempty"`
	Active bool   `json:"active" gorm:"default:true"`
	Wards  []Ward `json:"wards,omitempty"`
}

// Ward names are unique inside their district only.
type Ward struct {
	BaseModel

	Name       string    `json:"name" gorm:"uniqueIndex:idx_ward_district_name;size:100"`
	DistrictID uint      `json:"district_id" gorm:"uniqueIndex:idx_ward_district_name;not null"`
	District   *District `json:"district,omitempty"`
	Active     bool      `json:"active" gorm:"default:true"`
}

// AddressClaim reserves a street address for one owner.
// The unique index is what keeps two owners from listing the same place,
// the lifecycle never relies on a read-then-write check alone.
type AddressClaim struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	CityID     uint   `json:"city_id" gorm:"uniqueIndex:idx_address_claim"`
	DistrictID uint   `json:"district_id" gorm:"uniqueIndex:idx_address_claim"`
	WardID     uint   `json:"ward_id" gorm:"uniqueIndex:idx_address_claim"`
	Address    string `json:"address" gorm:"uniqueIndex:idx_address_claim;size:255"`
	OwnerID    uint   `json:"owner_id" gorm:"index"`
}
