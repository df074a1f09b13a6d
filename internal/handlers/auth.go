package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"clinic-practice-server/internal/access"
	"clinic-practice-server/internal/config"
	"clinic-practice-server/internal/middleware"
	"clinic-practice-server/internal/models"
	"clinic-practice-server/internal/store"
	"clinic-practice-server/internal/utils"
)

// AuthHandler handles registration, login and the authenticated greeting.
type AuthHandler struct {
	Store store.Store
	Cfg   *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(s store.Store, cfg *config.Config) *AuthHandler {
	return &AuthHandler{Store: s, Cfg: cfg}
}

// RegisterRequest represents the request body for user registration.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role" binding:"omitempty,oneof=patient doctor"`
}

// Register handles user registration. Unknown role values are rejected
// before any hashing work.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if req.Role == "" {
		req.Role = string(models.RolePatient)
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	// Check if user already exists
	if _, err := h.Store.UserByEmail(c.Request.Context(), req.Email); err == nil {
		utils.FromError(c, access.Conflict("Email already registered"))
		return
	} else if access.KindOf(err) != access.KindNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	user := models.User{
		Email:    req.Email,
		FullName: req.FullName,
		Role:     role,
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	if err := h.Store.CreateUser(c.Request.Context(), &user); err != nil {
		utils.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User registered successfully",
		"user":    user.Sanitize(),
	})
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles user login. Unknown email and wrong password answer
// identically so the response doesn't leak which one failed.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, err := h.Store.UserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if access.KindOf(err) == access.KindNotFound {
			utils.Unauthorized(c, "Invalid email or password")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if !user.CheckPassword(req.Password) {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	ttl := time.Duration(h.Cfg.JWTExpirationMinutes) * time.Minute
	accessToken, err := access.IssueToken(user, h.Cfg.JWTSecret, ttl)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate token: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": accessToken,
		"token_type":   "bearer",
		"user":         user.Sanitize(),
	})
}

// Hello greets the authenticated principal. Any role may call it.
func (h *AuthHandler) Hello(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Hello, %s!", principal.FullName),
		"user": gin.H{
			"email": principal.Email,
			"role":  principal.Role,
		},
	})
}
