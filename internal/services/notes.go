package services

import (
	"context"
	"time"

	"clinic-practice-server/internal/access"
	"clinic-practice-server/internal/models"
	"clinic-practice-server/internal/store"
)

// unknownName is the sentinel display name used when a referenced user
// record no longer exists.
const unknownName = "Unknown"

// defaultNoteLimit applies when a listing gives no limit.
const defaultNoteLimit = 20

// NoteView is a clinical note with the author's display name resolved at
// read time. Names are never stored on the note.
type NoteView struct {
	ID         string     `json:"id"`
	Content    string     `json:"content"`
	PatientID  string     `json:"patient_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
	AuthorName string     `json:"author_name"`
}

// NoteService manages clinical notes. Any clinician may read or search all
// notes; only the authoring clinician may change or delete one.
type NoteService struct {
	store store.Store
}

// NewNoteService creates a new NoteService.
func NewNoteService(s store.Store) *NoteService {
	return &NoteService{store: s}
}

// Create writes a note about a patient. The author is fixed to the creating
// principal and never reassigned.
func (s *NoteService) Create(ctx context.Context, p *access.Principal, patientID, content string) (*NoteView, error) {
	if err := access.RequireRole(p, models.RoleDoctor); err != nil {
		return nil, err
	}
	if _, err := access.RequireCrossRoleTarget(ctx, s.store, patientID, models.RolePatient); err != nil {
		return nil, err
	}

	note := &models.ClinicalNote{
		Content:   content,
		PatientID: patientID,
		AuthorID:  p.ID,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateNote(ctx, note); err != nil {
		return nil, err
	}

	view := noteView(note, p.FullName)
	return &view, nil
}

// List returns notes across all authors, filtered and paginated. A missing
// limit defaults to 20; a negative offset is treated as zero.
func (s *NoteService) List(ctx context.Context, p *access.Principal, f store.NoteFilter) ([]NoteView, error) {
	if err := access.RequireRole(p, models.RoleDoctor); err != nil {
		return nil, err
	}
	if f.Limit <= 0 {
		f.Limit = defaultNoteLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	notes, err := s.store.ListNotes(ctx, f)
	if err != nil {
		return nil, err
	}

	authors, err := s.resolveAuthors(ctx, notes)
	if err != nil {
		return nil, err
	}

	views := make([]NoteView, 0, len(notes))
	for _, n := range notes {
		name := unknownName
		if author, ok := authors[n.AuthorID]; ok {
			name = author.FullName
		}
		note := n
		views = append(views, noteView(&note, name))
	}
	return views, nil
}

// Get returns a single note. Any clinician may read any note; there is no
// ownership check on reads.
func (s *NoteService) Get(ctx context.Context, p *access.Principal, noteID string) (*NoteView, error) {
	if err := access.RequireRole(p, models.RoleDoctor); err != nil {
		return nil, err
	}
	note, err := s.store.NoteByID(ctx, noteID)
	if err != nil {
		return nil, err
	}

	name := unknownName
	if author, err := s.store.UserByID(ctx, note.AuthorID); err == nil {
		name = author.FullName
	}
	view := noteView(note, name)
	return &view, nil
}

// Update changes the note content. Only the author may update; a nil
// content leaves the stored text untouched but still stamps UpdatedAt.
func (s *NoteService) Update(ctx context.Context, p *access.Principal, noteID string, content *string) (*NoteView, error) {
	if err := access.RequireRole(p, models.RoleDoctor); err != nil {
		return nil, err
	}
	note, err := s.store.NoteByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if err := access.RequireOwnership(note.AuthorID, p); err != nil {
		return nil, err
	}

	if content != nil {
		note.Content = *content
	}
	now := time.Now()
	note.UpdatedAt = &now

	if err := s.store.SaveNote(ctx, note); err != nil {
		return nil, err
	}
	view := noteView(note, p.FullName)
	return &view, nil
}

// Delete removes a note. Only the author may delete.
func (s *NoteService) Delete(ctx context.Context, p *access.Principal, noteID string) error {
	if err := access.RequireRole(p, models.RoleDoctor); err != nil {
		return err
	}
	note, err := s.store.NoteByID(ctx, noteID)
	if err != nil {
		return err
	}
	if err := access.RequireOwnership(note.AuthorID, p); err != nil {
		return err
	}
	return s.store.DeleteNote(ctx, noteID)
}

func (s *NoteService) resolveAuthors(ctx context.Context, notes []models.ClinicalNote) (map[string]models.User, error) {
	seen := make(map[string]bool, len(notes))
	ids := make([]string, 0, len(notes))
	for _, n := range notes {
		if !seen[n.AuthorID] {
			seen[n.AuthorID] = true
			ids = append(ids, n.AuthorID)
		}
	}
	return s.store.UsersByIDs(ctx, ids)
}

func noteView(n *models.ClinicalNote, authorName string) NoteView {
	return NoteView{
		ID:         n.ID,
		Content:    n.Content,
		PatientID:  n.PatientID,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
		AuthorName: authorName,
	}
}
