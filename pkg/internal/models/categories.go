package models

// Tag names are case-sensitive identifiers, "Wifi" and "wifi" are two tags.
type Tag struct {
	BaseModel

	Name string `json:"name" gorm:"uniqueIndex;size:64"`
}

type Category struct {
	BaseModel

	Name        string `json:"name" gorm:"uniqueIndex;size:100"`
	Description string `json:"description"`
}
