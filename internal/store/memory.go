package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"clinic-practice-server/internal/access"
	"clinic-practice-server/internal/models"
)

// Memory is an in-memory Store with the same contract as the GORM store.
// It keeps the test suites self-contained; it is not used by the server.
type Memory struct {
	mu           sync.RWMutex
	users        map[string]models.User
	appointments map[string]models.Appointment
	notes        map[string]models.ClinicalNote
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:        make(map[string]models.User),
		appointments: make(map[string]models.Appointment),
		notes:        make(map[string]models.ClinicalNote),
	}
}

func (m *Memory) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return access.Conflict("email already registered")
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	m.users[user.ID] = *user
	return nil
}

func (m *Memory) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, access.NotFound("user not found")
}

func (m *Memory) UserByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, access.NotFound("user not found")
	}
	user := u
	return &user, nil
}

func (m *Memory) UsersByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[string]models.User, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			result[id] = u
		}
	}
	return result, nil
}

// DeleteUser removes a user out of band. Not part of the Store interface;
// tests use it to simulate a principal whose account is gone.
func (m *Memory) DeleteUser(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

func (m *Memory) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	m.appointments[a.ID] = *a
	return nil
}

func (m *Memory) AppointmentByID(ctx context.Context, id string) (*models.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.appointments[id]
	if !ok {
		return nil, access.NotFound("appointment not found")
	}
	appointment := a
	return &appointment, nil
}

func (m *Memory) SaveAppointment(ctx context.Context, a *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.appointments[a.ID]; !ok {
		return access.NotFound("appointment not found")
	}
	m.appointments[a.ID] = *a
	return nil
}

func (m *Memory) DeleteAppointment(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.appointments[id]; !ok {
		return access.NotFound("appointment not found")
	}
	delete(m.appointments, id)
	return nil
}

func (m *Memory) AppointmentsByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Appointment
	for _, a := range m.appointments {
		if a.DoctorID == doctorID {
			out = append(out, a)
		}
	}
	sortAppointments(out)
	return out, nil
}

func (m *Memory) AppointmentsByPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Appointment
	for _, a := range m.appointments {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	sortAppointments(out)
	return out, nil
}

func sortAppointments(list []models.Appointment) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].AppointmentTime.Before(list[j].AppointmentTime)
	})
}

func (m *Memory) CreateNote(ctx context.Context, n *models.ClinicalNote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	m.notes[n.ID] = *n
	return nil
}

func (m *Memory) NoteByID(ctx context.Context, id string) (*models.ClinicalNote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.notes[id]
	if !ok {
		return nil, access.NotFound("clinical note not found")
	}
	note := n
	return &note, nil
}

func (m *Memory) SaveNote(ctx context.Context, n *models.ClinicalNote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notes[n.ID]; !ok {
		return access.NotFound("clinical note not found")
	}
	m.notes[n.ID] = *n
	return nil
}

func (m *Memory) DeleteNote(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notes[id]; !ok {
		return access.NotFound("clinical note not found")
	}
	delete(m.notes, id)
	return nil
}

func (m *Memory) ListNotes(ctx context.Context, f NoteFilter) ([]models.ClinicalNote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	search := strings.ToLower(f.Search)
	var matched []models.ClinicalNote
	for _, n := range m.notes {
		if f.PatientID != "" && n.PatientID != f.PatientID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(n.Content), search) {
			continue
		}
		matched = append(matched, n)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	if f.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[f.Offset:]
	if f.Limit > 0 && f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}
	return matched, nil
}
