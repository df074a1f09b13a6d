package models

import (
	"time"
)

// Appointment represents a scheduled appointment between a doctor and a patient.
// The doctor who created it owns it: only that doctor may change or delete it.
type Appointment struct {
	BaseModel
	DoctorID        string    `gorm:"size:36;index;not null" json:"doctorId"`
	PatientID       string    `gorm:"size:36;index;not null" json:"patientId"`
	AppointmentTime time.Time `json:"appointmentTime"`

	// Relations
	Doctor  User `gorm:"foreignKey:DoctorID" json:"-"`
	Patient User `gorm:"foreignKey:PatientID" json:"-"`
}
