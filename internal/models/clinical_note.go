package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClinicalNote is a free-text note a clinician writes about a patient.
// AuthorID is set once at creation and never reassigned; UpdatedAt stays
// NULL until the author first edits the note.
type ClinicalNote struct {
	ID        string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	PatientID string     `gorm:"size:36;index;not null" json:"patientId"`
	AuthorID  string     `gorm:"size:36;index;not null" json:"authorId"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updatedAt"`

	// Relations
	Patient User `gorm:"foreignKey:PatientID" json:"-"`
	Author  User `gorm:"foreignKey:AuthorID" json:"-"`
}

// BeforeCreate assigns a UUID. ClinicalNote does not embed BaseModel because
// its UpdatedAt must be nullable rather than maintained by GORM; the field
// also carries autoUpdateTime:false since the naming convention alone would
// still have GORM stamp it on insert.
func (n *ClinicalNote) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}
