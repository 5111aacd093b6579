package models

import "time"

// Review is a user-submitted rating held for moderation. It is publicly
// visible only once Approved is true; rejected reviews are deleted.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:text;not null" json:"name"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Rating    int       `gorm:"not null" json:"rating"`
	Approved  bool      `gorm:"not null;default:false;index" json:"approved"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Review) TableName() string {
	return "reviews"
}
