package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Submission is one contact form entry. Rows are written exactly once after a
// request passes field validation and CAPTCHA verification; the CAPTCHA token
// itself is never stored.
type Submission struct {
	ID string `gorm:"primaryKey;type:uuid" json:"id"`

	FirstName string `gorm:"size:50;not null" json:"first_name"`
	LastName  string `gorm:"size:50" json:"last_name"`
	Email     string `gorm:"size:254;not null;index" json:"email"`
	Phone     string `gorm:"size:20" json:"phone"`
	Zip       string `gorm:"size:10" json:"zip"`
	City      string `gorm:"size:30" json:"city"`
	State     string `gorm:"size:30" json:"state"`
	Comments  string `gorm:"size:500" json:"comments"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// BeforeCreate assigns a UUID and stamps CreatedAt once, in UTC.
func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	return nil
}

// DisplayName joins the first and last name for acknowledgment messages.
func (s *Submission) DisplayName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}
