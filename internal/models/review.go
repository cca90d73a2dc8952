package models

import "time"

// ReviewApproved is the comment approval status the reviews feed accepts.
const ReviewApproved = "1"

// Review is a product comment. Approved holds the raw status string
// ("1", "0", "spam", "trash").
type Review struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ProductID int64     `json:"product_id" gorm:"index;not null"`
	Author    string    `json:"author"`
	Content   string    `json:"content" gorm:"type:text"`
	Approved  string    `json:"approved" gorm:"default:0"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *Review) IsApproved() bool {
	return r.Approved == ReviewApproved
}
