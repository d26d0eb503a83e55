package models

import "time"

// ContactForm is a submitted contact request. UserID is set when the
// submitter was authenticated, nil for anonymous submissions.
type ContactForm struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FullName  string    `gorm:"size:255;not null" json:"full_name"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	Phone     string    `gorm:"size:50;not null" json:"phone"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
