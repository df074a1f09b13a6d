package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"clinic-practice-server/internal/middleware"
	"clinic-practice-server/internal/services"
	"clinic-practice-server/internal/utils"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	Svc *services.AppointmentService
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(svc *services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{Svc: svc}
}

// CreateAppointmentRequest represents the request body for creating an appointment.
type CreateAppointmentRequest struct {
	PatientID       string    `json:"patient_id" binding:"required"`
	AppointmentTime time.Time `json:"appointment_time" binding:"required"`
}

// CreateAppointment books an appointment for the authenticated doctor.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appointment, err := h.Svc.Create(c.Request.Context(), principal, req.PatientID, req.AppointmentTime)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointment_id": appointment.ID})
}

// UpdateAppointmentRequest represents the request body for updating an
// appointment. An omitted time leaves the stored value unchanged.
type UpdateAppointmentRequest struct {
	AppointmentTime *time.Time `json:"appointment_time"`
}

// UpdateAppointment changes an appointment's time. Owner-doctor only.
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	var req UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.Svc.Update(c.Request.Context(), principal, c.Param("id"), req.AppointmentTime); err != nil {
		utils.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Appointment updated successfully"})
}

// DeleteAppointment removes an appointment. Owner-doctor only.
func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.Svc.Delete(c.Request.Context(), principal, c.Param("id")); err != nil {
		utils.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Appointment deleted successfully"})
}

// ListForDoctor returns the authenticated doctor's appointments with
// patient names and emails.
func (h *AppointmentHandler) ListForDoctor(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	views, err := h.Svc.ListForDoctor(c.Request.Context(), principal)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, views)
}

// ListForPatient returns the authenticated patient's appointments with
// doctor names.
func (h *AppointmentHandler) ListForPatient(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	views, err := h.Svc.ListForPatient(c.Request.Context(), principal)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, views)
}
