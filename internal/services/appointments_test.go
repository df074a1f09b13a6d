package services_test

import (
	"context"
	"testing"
	"time"

	"clinic-practice-server/internal/access"
	"clinic-practice-server/internal/models"
	"clinic-practice-server/internal/services"
	"clinic-practice-server/internal/store"
)

func seedUser(t *testing.T, m *store.Memory, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{
		Email:    email,
		FullName: "Test " + email,
		Role:     role,
	}
	if err := u.SetPassword("testpass123"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if err := m.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func principalOf(u *models.User) *access.Principal {
	return &access.Principal{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role}
}

func setupAppointments(t *testing.T) (*services.AppointmentService, *store.Memory) {
	t.Helper()
	m := store.NewMemory()
	return services.NewAppointmentService(m), m
}

func TestAppointmentCreate(t *testing.T) {
	svc, m := setupAppointments(t)
	doctor := seedUser(t, m, "doc@example.com", models.RoleDoctor)
	patient := seedUser(t, m, "pat@example.com", models.RolePatient)

	at := time.Now().Add(24 * time.Hour)
	appointment, err := svc.Create(context.Background(), principalOf(doctor), patient.ID, at)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if appointment.DoctorID != doctor.ID {
		t.Errorf("doctor id = %s, want the creating principal %s", appointment.DoctorID, doctor.ID)
	}
	if appointment.PatientID != patient.ID {
		t.Errorf("patient id = %s, want %s", appointment.PatientID, patient.ID)
	}
	if !appointment.AppointmentTime.Equal(at) {
		t.Errorf("time = %v, want %v", appointment.AppointmentTime, at)
	}
}

func TestAppointmentCreateRejections(t *testing.T) {
	svc, m := setupAppointments(t)
	doctorA := seedUser(t, m, "a@example.com", models.RoleDoctor)
	doctorB := seedUser(t, m, "b@example.com", models.RoleDoctor)
	patient := seedUser(t, m, "pat@example.com", models.RolePatient)

	at := time.Now().Add(time.Hour)
	tests := []struct {
		name      string
		principal *access.Principal
		patientID string
		wantKind  access.Kind
	}{
		{"patient caller", principalOf(patient), patient.ID, access.KindForbidden},
		{"target is a doctor", principalOf(doctorA), doctorB.ID, access.KindInvalidTarget},
		{"target missing", principalOf(doctorA), "no-such-user", access.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.principal, tt.patientID, at)
			if access.KindOf(err) != tt.wantKind {
				t.Errorf("err = %v, want kind %v", err, tt.wantKind)
			}
		})
	}
}

func TestAppointmentUpdate(t *testing.T) {
	svc, m := setupAppointments(t)
	doctor := seedUser(t, m, "doc@example.com", models.RoleDoctor)
	other := seedUser(t, m, "other@example.com", models.RoleDoctor)
	patient := seedUser(t, m, "pat@example.com", models.RolePatient)

	ctx := context.Background()
	original := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	appointment, err := svc.Create(ctx, principalOf(doctor), patient.ID, original)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Another doctor, same role, is not the owner.
	moved := original.Add(time.Hour)
	err = svc.Update(ctx, principalOf(other), appointment.ID, &moved)
	if access.KindOf(err) != access.KindForbidden {
		t.Fatalf("non-owner update err = %v, want KindForbidden", err)
	}

	// Omitted time leaves the stored value untouched.
	if err := svc.Update(ctx, principalOf(doctor), appointment.ID, nil); err != nil {
		t.Fatalf("nil-time update: %v", err)
	}
	stored, err := m.AppointmentByID(ctx, appointment.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !stored.AppointmentTime.Equal(original) {
		t.Errorf("time changed to %v on nil update, want %v", stored.AppointmentTime, original)
	}

	// Owner moves the appointment.
	if err := svc.Update(ctx, principalOf(doctor), appointment.ID, &moved); err != nil {
		t.Fatalf("owner update: %v", err)
	}
	stored, _ = m.AppointmentByID(ctx, appointment.ID)
	if !stored.AppointmentTime.Equal(moved) {
		t.Errorf("time = %v, want %v", stored.AppointmentTime, moved)
	}

	// Unknown id is NotFound, never Forbidden.
	err = svc.Update(ctx, principalOf(doctor), "no-such-id", &moved)
	if access.KindOf(err) != access.KindNotFound {
		t.Errorf("missing id err = %v, want KindNotFound", err)
	}
}

func TestAppointmentDelete(t *testing.T) {
	svc, m := setupAppointments(t)
	doctor := seedUser(t, m, "doc@example.com", models.RoleDoctor)
	other := seedUser(t, m, "other@example.com", models.RoleDoctor)
	patient := seedUser(t, m, "pat@example.com", models.RolePatient)

	ctx := context.Background()
	appointment, err := svc.Create(ctx, principalOf(doctor), patient.ID, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = svc.Delete(ctx, principalOf(other), appointment.ID)
	if access.KindOf(err) != access.KindForbidden {
		t.Fatalf("non-owner delete err = %v, want KindForbidden", err)
	}

	if err := svc.Delete(ctx, principalOf(doctor), appointment.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := m.AppointmentByID(ctx, appointment.ID); access.KindOf(err) != access.KindNotFound {
		t.Errorf("appointment still present after delete")
	}

	// Deleting an id that never existed yields NotFound.
	err = svc.Delete(ctx, principalOf(doctor), "no-such-id")
	if access.KindOf(err) != access.KindNotFound {
		t.Errorf("missing id err = %v, want KindNotFound", err)
	}
}

func TestAppointmentListViews(t *testing.T) {
	svc, m := setupAppointments(t)
	doctor := seedUser(t, m, "doc@example.com", models.RoleDoctor)
	patient1 := seedUser(t, m, "p1@example.com", models.RolePatient)
	patient2 := seedUser(t, m, "p2@example.com", models.RolePatient)

	ctx := context.Background()
	base := time.Now().Add(24 * time.Hour)
	if _, err := svc.Create(ctx, principalOf(doctor), patient1.ID, base); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, principalOf(doctor), patient2.ID, base.Add(time.Hour)); err != nil {
		t.Fatalf("create: %v", err)
	}

	views, err := svc.ListForDoctor(ctx, principalOf(doctor))
	if err != nil {
		t.Fatalf("list for doctor: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("len = %d, want 2", len(views))
	}
	if views[0].PatientName != patient1.FullName || views[0].PatientEmail != patient1.Email {
		t.Errorf("view[0] = %+v, want resolved name/email of %s", views[0], patient1.Email)
	}

	patientViews, err := svc.ListForPatient(ctx, principalOf(patient1))
	if err != nil {
		t.Fatalf("list for patient: %v", err)
	}
	if len(patientViews) != 1 {
		t.Fatalf("len = %d, want 1", len(patientViews))
	}
	if patientViews[0].DoctorName != doctor.FullName {
		t.Errorf("doctor name = %q, want %q", patientViews[0].DoctorName, doctor.FullName)
	}

	// Role gates on the list endpoints.
	if _, err := svc.ListForDoctor(ctx, principalOf(patient1)); access.KindOf(err) != access.KindForbidden {
		t.Errorf("patient listing doctor view: err = %v, want KindForbidden", err)
	}
	if _, err := svc.ListForPatient(ctx, principalOf(doctor)); access.KindOf(err) != access.KindForbidden {
		t.Errorf("doctor listing patient view: err = %v, want KindForbidden", err)
	}
}

func TestAppointmentListUnknownPatientName(t *testing.T) {
	svc, m := setupAppointments(t)
	doctor := seedUser(t, m, "doc@example.com", models.RoleDoctor)
	patient := seedUser(t, m, "pat@example.com", models.RolePatient)

	ctx := context.Background()
	if _, err := svc.Create(ctx, principalOf(doctor), patient.ID, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("create: %v", err)
	}
	m.DeleteUser(patient.ID)

	views, err := svc.ListForDoctor(ctx, principalOf(doctor))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if views[0].PatientName != "Unknown" {
		t.Errorf("patient name = %q, want Unknown sentinel", views[0].PatientName)
	}
}
