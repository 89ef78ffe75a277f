package models

type TargetKind string

const (
	TargetRental  = TargetKind("rental")
	TargetRequest = TargetKind("request")
)

// TargetRef identifies the listing a comment or like is attached to.
// Build it with RentalTarget or RequestTarget.
type TargetRef struct {
	Kind TargetKind `json:"kind" gorm:"size:16"`
	ID   uint       `json:"id"`
}

func RentalTarget(id uint) TargetRef {
	return TargetRef{Kind: TargetRental, ID: id}
}

func RequestTarget(id uint) TargetRef {
	return TargetRef{Kind: TargetRequest, ID: id}
}

func (v TargetRef) IsValid() bool {
	return (v.Kind == TargetRental || v.Kind == TargetRequest) && v.ID > 0
}

type Comment struct {
	BaseModel

	Content  string    `json:"content"`
	Active   bool      `json:"active" gorm:"default:true"`
	Target   TargetRef `json:"target" gorm:"embedded;embeddedPrefix:target_"`
	ParentID *uint     `json:"parent_id"`
	Replies  []Comment `json:"replies,omitempty" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`

	AccountID uint     `json:"account_id" gorm:"index"`
	Account   *Account `json:"account,omitempty"`
}

// Like is unique per account and target, the index is created by the migrator.
type Like struct {
	BaseModel

	Target TargetRef `json:"target" gorm:"embedded;embeddedPrefix:target_"`

	AccountID uint     `json:"account_id"`
	Account   *Account `json:"account,omitempty"`
}
