package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-matcher/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the public account routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/user/register", h.register)
	rg.POST("/user/login", h.login)
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", MsgAllFieldsRequired, nil)
		return
	}
	token, err := h.Svc.Register(c.Request.Context(), Registration(req))
	if err != nil {
		respond.WithCause(c, err)
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", MsgAllFieldsRequired, nil)
		case errors.Is(err, ErrPasswordTooLong):
			respond.Error(c, http.StatusBadRequest, "validation_error", MsgPasswordTooLong, nil)
		case errors.Is(err, ErrDuplicate):
			respond.Error(c, http.StatusBadRequest, "user_exists", MsgUserExists, nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Registration failed", nil)
		}
		return
	}
	respond.Created(c, gin.H{"token": token})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusUnauthorized, "invalid_credentials", MsgInvalidCredentials, nil)
		return
	}
	token, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respond.WithCause(c, err)
		if errors.Is(err, ErrInvalidCredentials) {
			respond.Error(c, http.StatusUnauthorized, "invalid_credentials", MsgInvalidCredentials, nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Login failed", nil)
		return
	}
	respond.OK(c, gin.H{"token": token})
}
