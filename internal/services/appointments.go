// Package services holds the resource services. Every write operation
// composes the same authorization pipeline: authenticate (done by the
// middleware), requireRole, requireCrossRoleTarget for new references and
// requireOwnership for mutations of existing resources.
package services

import (
	"context"
	"time"

	"clinic-practice-server/internal/access"
	"clinic-practice-server/internal/models"
	"clinic-practice-server/internal/store"
)

// AppointmentDoctorView is an appointment as seen by its doctor, with the
// patient's display data resolved at read time.
type AppointmentDoctorView struct {
	ID              string    `json:"id"`
	AppointmentTime time.Time `json:"appointment_time"`
	PatientName     string    `json:"patient_name"`
	PatientEmail    string    `json:"patient_email"`
}

// AppointmentPatientView is an appointment as seen by the patient.
type AppointmentPatientView struct {
	ID              string    `json:"id"`
	AppointmentTime time.Time `json:"appointment_time"`
	DoctorName      string    `json:"doctor_name"`
}

// AppointmentService manages appointments. Only doctors create them; the
// creating doctor owns them.
type AppointmentService struct {
	store store.Store
}

// NewAppointmentService creates a new AppointmentService.
func NewAppointmentService(s store.Store) *AppointmentService {
	return &AppointmentService{store: s}
}

// Create books an appointment for the doctor principal with the given
// patient. Overlapping appointments are permitted; there is no conflict
// checking at any time.
func (s *AppointmentService) Create(ctx context.Context, p *access.Principal, patientID string, at time.Time) (*models.Appointment, error) {
	if err := access.RequireRole(p, models.RoleDoctor); err != nil {
		return nil, err
	}
	if _, err := access.RequireCrossRoleTarget(ctx, s.store, patientID, models.RolePatient); err != nil {
		return nil, err
	}

	appointment := &models.Appointment{
		DoctorID:        p.ID,
		PatientID:       patientID,
		AppointmentTime: at,
	}
	if err := s.store.CreateAppointment(ctx, appointment); err != nil {
		return nil, err
	}
	return appointment, nil
}

// Update changes the appointment time. A nil newTime leaves the stored
// value untouched.
func (s *AppointmentService) Update(ctx context.Context, p *access.Principal, appointmentID string, newTime *time.Time) error {
	if err := access.RequireRole(p, models.RoleDoctor); err != nil {
		return err
	}
	appointment, err := s.store.AppointmentByID(ctx, appointmentID)
	if err != nil {
		return err
	}
	if err := access.RequireOwnership(appointment.DoctorID, p); err != nil {
		return err
	}

	if newTime != nil {
		appointment.AppointmentTime = *newTime
	}
	return s.store.SaveAppointment(ctx, appointment)
}

// Delete removes an appointment owned by the doctor principal.
func (s *AppointmentService) Delete(ctx context.Context, p *access.Principal, appointmentID string) error {
	if err := access.RequireRole(p, models.RoleDoctor); err != nil {
		return err
	}
	appointment, err := s.store.AppointmentByID(ctx, appointmentID)
	if err != nil {
		return err
	}
	if err := access.RequireOwnership(appointment.DoctorID, p); err != nil {
		return err
	}
	return s.store.DeleteAppointment(ctx, appointmentID)
}

// ListForDoctor returns the doctor principal's appointments with patient
// names and emails resolved in a single batched lookup.
func (s *AppointmentService) ListForDoctor(ctx context.Context, p *access.Principal) ([]AppointmentDoctorView, error) {
	if err := access.RequireRole(p, models.RoleDoctor); err != nil {
		return nil, err
	}
	appointments, err := s.store.AppointmentsByDoctor(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	patients, err := s.resolveUsers(ctx, appointments, func(a models.Appointment) string { return a.PatientID })
	if err != nil {
		return nil, err
	}

	views := make([]AppointmentDoctorView, 0, len(appointments))
	for _, a := range appointments {
		view := AppointmentDoctorView{
			ID:              a.ID,
			AppointmentTime: a.AppointmentTime,
			PatientName:     unknownName,
		}
		if patient, ok := patients[a.PatientID]; ok {
			view.PatientName = patient.FullName
			view.PatientEmail = patient.Email
		}
		views = append(views, view)
	}
	return views, nil
}

// ListForPatient returns the patient principal's appointments with doctor
// names resolved in a single batched lookup.
func (s *AppointmentService) ListForPatient(ctx context.Context, p *access.Principal) ([]AppointmentPatientView, error) {
	if err := access.RequireRole(p, models.RolePatient); err != nil {
		return nil, err
	}
	appointments, err := s.store.AppointmentsByPatient(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	doctors, err := s.resolveUsers(ctx, appointments, func(a models.Appointment) string { return a.DoctorID })
	if err != nil {
		return nil, err
	}

	views := make([]AppointmentPatientView, 0, len(appointments))
	for _, a := range appointments {
		view := AppointmentPatientView{
			ID:              a.ID,
			AppointmentTime: a.AppointmentTime,
			DoctorName:      unknownName,
		}
		if doctor, ok := doctors[a.DoctorID]; ok {
			view.DoctorName = doctor.FullName
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *AppointmentService) resolveUsers(ctx context.Context, appointments []models.Appointment, key func(models.Appointment) string) (map[string]models.User, error) {
	seen := make(map[string]bool, len(appointments))
	ids := make([]string, 0, len(appointments))
	for _, a := range appointments {
		id := key(a)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return s.store.UsersByIDs(ctx, ids)
}
