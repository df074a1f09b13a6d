package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"clinic-practice-server/internal/middleware"
	"clinic-practice-server/internal/services"
	"clinic-practice-server/internal/store"
	"clinic-practice-server/internal/utils"
)

// NoteHandler handles clinical note related requests.
type NoteHandler struct {
	Svc *services.NoteService
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(svc *services.NoteService) *NoteHandler {
	return &NoteHandler{Svc: svc}
}

// CreateNoteRequest represents the request body for creating a note.
type CreateNoteRequest struct {
	PatientID string `json:"patient_id" binding:"required"`
	Content   string `json:"content" binding:"required"`
}

// CreateNote writes a clinical note about a patient.
func (h *NoteHandler) CreateNote(c *gin.Context) {
	var req CreateNoteRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	view, err := h.Svc.Create(c.Request.Context(), principal, req.PatientID, req.Content)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// ListNotes returns notes filtered by the patient_id, search, limit and
// offset query parameters, newest first.
func (h *NoteHandler) ListNotes(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 0 {
		utils.BadRequest(c, "Invalid limit parameter")
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		utils.BadRequest(c, "Invalid offset parameter")
		return
	}

	filter := store.NoteFilter{
		PatientID: c.Query("patient_id"),
		Search:    c.Query("search"),
		Limit:     limit,
		Offset:    offset,
	}

	views, err := h.Svc.List(c.Request.Context(), principal, filter)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, views)
}

// GetNote returns a single note by id. Any clinician may read any note.
func (h *NoteHandler) GetNote(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	view, err := h.Svc.Get(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		utils.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// UpdateNoteRequest represents the request body for updating a note. An
// omitted content leaves the stored text unchanged.
type UpdateNoteRequest struct {
	Content *string `json:"content"`
}

// UpdateNote edits a note's content. Author only.
func (h *NoteHandler) UpdateNote(c *gin.Context) {
	var req UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	view, err := h.Svc.Update(c.Request.Context(), principal, c.Param("id"), req.Content)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// DeleteNote removes a note. Author only.
func (h *NoteHandler) DeleteNote(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.Svc.Delete(c.Request.Context(), principal, c.Param("id")); err != nil {
		utils.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Clinical note deleted successfully"})
}
