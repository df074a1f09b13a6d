package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"clinic-practice-server/internal/access"
	"clinic-practice-server/internal/models"
	"clinic-practice-server/internal/services"
	"clinic-practice-server/internal/store"
)

func setupNotes(t *testing.T) (*services.NoteService, *store.Memory) {
	t.Helper()
	m := store.NewMemory()
	return services.NewNoteService(m), m
}

func TestNoteCreate(t *testing.T) {
	svc, m := setupNotes(t)
	doctor := seedUser(t, m, "doc@example.com", models.RoleDoctor)
	patient := seedUser(t, m, "pat@example.com", models.RolePatient)

	view, err := svc.Create(context.Background(), principalOf(doctor), patient.ID, "initial assessment")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.AuthorName != doctor.FullName {
		t.Errorf("author name = %q, want %q", view.AuthorName, doctor.FullName)
	}
	if view.UpdatedAt != nil {
		t.Errorf("updated_at = %v on a fresh note, want nil", view.UpdatedAt)
	}
	if view.CreatedAt.IsZero() {
		t.Error("created_at not set")
	}

	stored, err := m.NoteByID(context.Background(), view.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if stored.AuthorID != doctor.ID {
		t.Errorf("author id = %s, want the creating principal %s", stored.AuthorID, doctor.ID)
	}
}

func TestNoteCreateRejections(t *testing.T) {
	svc, m := setupNotes(t)
	doctor := seedUser(t, m, "doc@example.com", models.RoleDoctor)
	otherDoc := seedUser(t, m, "other@example.com", models.RoleDoctor)
	patient := seedUser(t, m, "pat@example.com", models.RolePatient)

	tests := []struct {
		name      string
		principal *access.Principal
		patientID string
		wantKind  access.Kind
	}{
		{"patient caller", principalOf(patient), patient.ID, access.KindForbidden},
		{"target is a doctor", principalOf(doctor), otherDoc.ID, access.KindInvalidTarget},
		{"target missing", principalOf(doctor), "no-such-user", access.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.principal, tt.patientID, "x")
			if access.KindOf(err) != tt.wantKind {
				t.Errorf("err = %v, want kind %v", err, tt.wantKind)
			}
		})
	}
}

// seedNote inserts a note with a controlled creation time.
func seedNote(t *testing.T, m *store.Memory, authorID, patientID, content string, createdAt time.Time) *models.ClinicalNote {
	t.Helper()
	n := &models.ClinicalNote{
		Content:   content,
		PatientID: patientID,
		AuthorID:  authorID,
		CreatedAt: createdAt,
	}
	if err := m.CreateNote(context.Background(), n); err != nil {
		t.Fatalf("seed note: %v", err)
	}
	return n
}

func TestNoteListSearchSortPagination(t *testing.T) {
	svc, m := setupNotes(t)
	doctor := seedUser(t, m, "doc@example.com", models.RoleDoctor)
	patient := seedUser(t, m, "pat@example.com", models.RolePatient)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	// 25 matching notes (case varied) and 5 decoys.
	for i := 0; i < 25; i++ {
		content := fmt.Sprintf("follow-up ABC session %02d", i)
		if i%2 == 0 {
			content = fmt.Sprintf("follow-up abc session %02d", i)
		}
		seedNote(t, m, doctor.ID, patient.ID, content, base.Add(time.Duration(i)*time.Minute))
	}
	for i := 0; i < 5; i++ {
		seedNote(t, m, doctor.ID, patient.ID, fmt.Sprintf("unrelated entry %d", i), base.Add(time.Duration(100+i)*time.Minute))
	}

	ctx := context.Background()
	p := principalOf(doctor)

	// First page: newest 20 matches.
	page1, err := svc.List(ctx, p, store.NoteFilter{Search: "abc", Limit: 20})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page1) != 20 {
		t.Fatalf("page1 len = %d, want 20", len(page1))
	}
	for i := 1; i < len(page1); i++ {
		if page1[i].CreatedAt.After(page1[i-1].CreatedAt) {
			t.Fatalf("page1 not sorted newest first at index %d", i)
		}
	}
	if !page1[0].CreatedAt.Equal(base.Add(24 * time.Minute)) {
		t.Errorf("newest match created_at = %v, want %v", page1[0].CreatedAt, base.Add(24*time.Minute))
	}

	// Second page: exactly the 5 oldest matches.
	page2, err := svc.List(ctx, p, store.NoteFilter{Search: "abc", Limit: 20, Offset: 20})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page2) != 5 {
		t.Fatalf("page2 len = %d, want 5", len(page2))
	}
	if !page2[4].CreatedAt.Equal(base) {
		t.Errorf("oldest match created_at = %v, want %v", page2[4].CreatedAt, base)
	}

	// Default limit is 20 when none is given.
	defaulted, err := svc.List(ctx, p, store.NoteFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(defaulted) != 20 {
		t.Errorf("default list len = %d, want 20", len(defaulted))
	}
}

func TestNoteListPatientFilter(t *testing.T) {
	svc, m := setupNotes(t)
	doctor := seedUser(t, m, "doc@example.com", models.RoleDoctor)
	patient1 := seedUser(t, m, "p1@example.com", models.RolePatient)
	patient2 := seedUser(t, m, "p2@example.com", models.RolePatient)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seedNote(t, m, doctor.ID, patient1.ID, "note for one", base)
	seedNote(t, m, doctor.ID, patient2.ID, "note for two", base.Add(time.Minute))

	views, err := svc.List(context.Background(), principalOf(doctor), store.NoteFilter{PatientID: patient1.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 1 || views[0].PatientID != patient1.ID {
		t.Errorf("views = %+v, want only patient1's note", views)
	}
}

func TestNoteListVisibleAcrossClinicians(t *testing.T) {
	svc, m := setupNotes(t)
	doctorA := seedUser(t, m, "a@example.com", models.RoleDoctor)
	doctorB := seedUser(t, m, "b@example.com", models.RoleDoctor)
	patient := seedUser(t, m, "pat@example.com", models.RolePatient)

	ctx := context.Background()
	view, err := svc.Create(ctx, principalOf(doctorA), patient.ID, "written by A")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Reading is not restricted to the author.
	got, err := svc.Get(ctx, principalOf(doctorB), view.ID)
	if err != nil {
		t.Fatalf("get as other clinician: %v", err)
	}
	if got.AuthorName != doctorA.FullName {
		t.Errorf("author name = %q, want %q", got.AuthorName, doctorA.FullName)
	}

	views, err := svc.List(ctx, principalOf(doctorB), store.NoteFilter{})
	if err != nil {
		t.Fatalf("list as other clinician: %v", err)
	}
	if len(views) != 1 {
		t.Errorf("list len = %d, want 1", len(views))
	}

	// Mutation is author-only.
	content := "edited by B"
	if _, err := svc.Update(ctx, principalOf(doctorB), view.ID, &content); access.KindOf(err) != access.KindForbidden {
		t.Errorf("non-author update err = %v, want KindForbidden", err)
	}
	if err := svc.Delete(ctx, principalOf(doctorB), view.ID); access.KindOf(err) != access.KindForbidden {
		t.Errorf("non-author delete err = %v, want KindForbidden", err)
	}
}

func TestNoteUpdateStampsTimestamp(t *testing.T) {
	svc, m := setupNotes(t)
	doctor := seedUser(t, m, "doc@example.com", models.RoleDoctor)
	patient := seedUser(t, m, "pat@example.com", models.RolePatient)

	ctx := context.Background()
	created, err := svc.Create(ctx, principalOf(doctor), patient.ID, "first draft")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	content := "second draft"
	updated, err := svc.Update(ctx, principalOf(doctor), created.ID, &content)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Content != content {
		t.Errorf("content = %q, want %q", updated.Content, content)
	}
	if updated.UpdatedAt == nil {
		t.Fatal("updated_at still nil after update")
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("created_at changed from %v to %v", created.CreatedAt, updated.CreatedAt)
	}
}

func TestNoteMissingIDs(t *testing.T) {
	svc, m := setupNotes(t)
	doctor := seedUser(t, m, "doc@example.com", models.RoleDoctor)
	p := principalOf(doctor)
	ctx := context.Background()

	if _, err := svc.Get(ctx, p, "missing"); access.KindOf(err) != access.KindNotFound {
		t.Errorf("get err = %v, want KindNotFound", err)
	}
	content := "x"
	if _, err := svc.Update(ctx, p, "missing", &content); access.KindOf(err) != access.KindNotFound {
		t.Errorf("update err = %v, want KindNotFound", err)
	}
	// NotFound, never Forbidden, for an id that does not exist.
	if err := svc.Delete(ctx, p, "missing"); access.KindOf(err) != access.KindNotFound {
		t.Errorf("delete err = %v, want KindNotFound", err)
	}
}

func TestNoteAuthorNameFallsBackToUnknown(t *testing.T) {
	svc, m := setupNotes(t)
	doctor := seedUser(t, m, "doc@example.com", models.RoleDoctor)
	reader := seedUser(t, m, "reader@example.com", models.RoleDoctor)
	patient := seedUser(t, m, "pat@example.com", models.RolePatient)

	ctx := context.Background()
	view, err := svc.Create(ctx, principalOf(doctor), patient.ID, "orphaned later")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	m.DeleteUser(doctor.ID)

	got, err := svc.Get(ctx, principalOf(reader), view.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AuthorName != "Unknown" {
		t.Errorf("author name = %q, want Unknown sentinel", got.AuthorName)
	}

	views, err := svc.List(ctx, principalOf(reader), store.NoteFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if views[0].AuthorName != "Unknown" {
		t.Errorf("list author name = %q, want Unknown sentinel", views[0].AuthorName)
	}
}
