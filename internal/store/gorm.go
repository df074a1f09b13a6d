package store

import (
	"context"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"clinic-practice-server/internal/access"
	"clinic-practice-server/internal/models"
)

const mysqlDuplicateEntry = 1062

// DB is the GORM-backed Store.
type DB struct {
	db *gorm.DB
}

// New creates a Store on top of a GORM connection.
func New(db *gorm.DB) *DB {
	return &DB{db: db}
}

func (s *DB) CreateUser(ctx context.Context, user *models.User) error {
	return userCreateError(s.db.WithContext(ctx).Create(user).Error)
}

// userCreateError maps a duplicate-key failure on the unique email index to
// Conflict. The handler pre-checks the email, so this only fires when two
// registrations race past that check.
func userCreateError(err error) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return access.Conflict("email already registered")
	}
	return err
}

func (s *DB) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.NotFound("user not found")
		}
		return nil, err
	}
	return &user, nil
}

func (s *DB) UserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.NotFound("user not found")
		}
		return nil, err
	}
	return &user, nil
}

func (s *DB) UsersByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	result := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

func (s *DB) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *DB) AppointmentByID(ctx context.Context, id string) (*models.Appointment, error) {
	var a models.Appointment
	if err := s.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.NotFound("appointment not found")
		}
		return nil, err
	}
	return &a, nil
}

func (s *DB) SaveAppointment(ctx context.Context, a *models.Appointment) error {
	return s.db.WithContext(ctx).Save(a).Error
}

func (s *DB) DeleteAppointment(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.Appointment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return access.NotFound("appointment not found")
	}
	return nil
}

func (s *DB) AppointmentsByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := s.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("appointment_time asc").
		Find(&appointments).Error
	return appointments, err
}

func (s *DB) AppointmentsByPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := s.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("appointment_time asc").
		Find(&appointments).Error
	return appointments, err
}

func (s *DB) CreateNote(ctx context.Context, n *models.ClinicalNote) error {
	return s.db.WithContext(ctx).Create(n).Error
}

func (s *DB) NoteByID(ctx context.Context, id string) (*models.ClinicalNote, error) {
	var n models.ClinicalNote
	if err := s.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, access.NotFound("clinical note not found")
		}
		return nil, err
	}
	return &n, nil
}

func (s *DB) SaveNote(ctx context.Context, n *models.ClinicalNote) error {
	return s.db.WithContext(ctx).Save(n).Error
}

func (s *DB) DeleteNote(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.ClinicalNote{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return access.NotFound("clinical note not found")
	}
	return nil
}

// ListNotes applies the filter, sorts newest first (id breaks creation-time
// ties so pagination stays a stable window) and pages with limit/offset.
// Search is a raw case-insensitive substring match over content.
func (s *DB) ListNotes(ctx context.Context, f NoteFilter) ([]models.ClinicalNote, error) {
	q := s.db.WithContext(ctx).Model(&models.ClinicalNote{})

	if f.PatientID != "" {
		q = q.Where("patient_id = ?", f.PatientID)
	}
	if f.Search != "" {
		q = q.Where("LOWER(content) LIKE ?", "%"+strings.ToLower(f.Search)+"%")
	}

	q = q.Order("created_at desc, id desc").Offset(f.Offset)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var notes []models.ClinicalNote
	if err := q.Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}
