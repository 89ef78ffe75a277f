package models

import (
	"time"

	"gorm.io/datatypes"
)

type RentalPost struct {
	BaseModel

	Title       string    `json:"title" gorm:"size:255"`
	Description string    `json:"description"`
	Language    string    `json:"language"`
	Area        float64   `json:"area"`
	Price       int       `json:"price" gorm:"index"`
	CategoryID  *uint     `json:"category_id"`
	Category    *Category `json:"category,omitempty" gorm:"constraint:OnDelete:SET NULL"`
	Tags        []Tag     `json:"tags" gorm:"many2many:rental_tags;constraint:OnDelete:CASCADE"`

	CityID     uint      `json:"city_id" gorm:"index"`
	City       *City     `json:"city,omitempty"`
	DistrictID uint      `json:"district_id" gorm:"index"`
	District   *District `json:"district,omitempty"`
	WardID     uint      `json:"ward_id" gorm:"index"`
	Ward       *Ward     `json:"ward,omitempty"`
	Address    string    `json:"address" gorm:"size:255"`

	Latitude    *float64          `json:"latitude"`
	Longitude   *float64          `json:"longitude"`
	Geohash     *string           `json:"geohash" gorm:"index;size:12"`
	GeocodeMeta datatypes.JSONMap `json:"geocode_meta,omitempty"`

	// GeocodeAttemptedAt is stamped on every lookup, resolved or not.
	GeocodeAttemptedAt *time.Time `json:"geocode_attempted_at,omitempty" gorm:"index"`

	IsApproved bool `json:"is_approved" gorm:"index;default:false"`
	Active     bool `json:"active" gorm:"default:true"`

	Images []RentalImage `json:"images,omitempty" gorm:"constraint:OnDelete:CASCADE"`

	OwnerID uint     `json:"owner_id" gorm:"index"`
	Owner   *Account `json:"owner,omitempty"`
}

// HasCoordinates reports whether the geocoder has resolved this post.
func (v RentalPost) HasCoordinates() bool {
	return v.Latitude != nil && v.Longitude != nil
}

// RentalImage points at a blob kept in the image store, FileID is the store's object id.
type RentalImage struct {
	BaseModel

	RentalPostID uint   `json:"rental_post_id" gorm:"index"`
	FileID       string `json:"file_id" gorm:"size:64"`
	Filename     string `json:"filename"`
	ContentType  string `json:"content_type"`
	Size         int64  `json:"size"`
}
