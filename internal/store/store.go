// Package store provides persistence for users, appointments and clinical
// notes. The GORM implementation backs the server; an in-memory
// implementation of the same interfaces backs the test suites.
package store

import (
	"context"

	"clinic-practice-server/internal/models"
)

// NoteFilter narrows a clinical-note listing. Zero values mean "no filter";
// Limit and Offset are applied after filtering and sorting.
type NoteFilter struct {
	PatientID string
	Search    string
	Limit     int
	Offset    int
}

// UserStore is the identity store.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id string) (*models.User, error)
	// UsersByIDs resolves many users in one call so list endpoints can
	// batch display-name lookups instead of issuing one query per row.
	UsersByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
}

// AppointmentStore persists appointments.
type AppointmentStore interface {
	CreateAppointment(ctx context.Context, a *models.Appointment) error
	AppointmentByID(ctx context.Context, id string) (*models.Appointment, error)
	SaveAppointment(ctx context.Context, a *models.Appointment) error
	DeleteAppointment(ctx context.Context, id string) error
	AppointmentsByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error)
	AppointmentsByPatient(ctx context.Context, patientID string) ([]models.Appointment, error)
}

// NoteStore persists clinical notes.
type NoteStore interface {
	CreateNote(ctx context.Context, n *models.ClinicalNote) error
	NoteByID(ctx context.Context, id string) (*models.ClinicalNote, error)
	SaveNote(ctx context.Context, n *models.ClinicalNote) error
	DeleteNote(ctx context.Context, id string) error
	ListNotes(ctx context.Context, f NoteFilter) ([]models.ClinicalNote, error)
}

// Store is the full persistence surface.
type Store interface {
	UserStore
	AppointmentStore
	NoteStore
}
