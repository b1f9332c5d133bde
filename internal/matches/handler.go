package matches

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-matcher/internal/shared/server/middleware"
	"resume-matcher/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc           *Service
	ExposeDetails bool
}

func NewHandler(svc *Service, exposeDetails bool) *Handler {
	return &Handler{Svc: svc, ExposeDetails: exposeDetails}
}

// RegisterRoutes attaches match routes to an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/match/create", h.create)
	rg.GET("/match", h.list)
	rg.GET("/match/:id", h.get)
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", MsgRequired, nil)
		return
	}
	c.Set("resumeId", req.ResumeID)

	m, err := h.Svc.Create(c.Request.Context(), userID, req.ResumeID, req.JobDescription)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Set("matchId", m.ID)
	respond.Created(c, gin.H{
		"message":  "Resume match analysis completed successfully",
		"match":    toDetail(m, false),
		"metadata": toMetadata(m.Metadata),
	})
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	list, err := h.Svc.List(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	out := make([]SummaryResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toSummary(m))
	}
	respond.OK(c, gin.H{"matches": out})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")
	c.Set("matchId", id)
	m, err := h.Svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"match": toDetail(m, true)})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	respond.WithCause(c, err)

	var validation *ValidationError
	switch {
	case errors.As(err, &validation):
		respond.Error(c, http.StatusBadRequest, "validation_error", validation.Message, nil)
	case errors.Is(err, ErrResumeNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", MsgResumeNotFound, nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", MsgMatchNotFound, nil)
	case errors.Is(err, ErrAnalysis):
		var details any
		if h.ExposeDetails {
			details = gin.H{"error": err.Error()}
		}
		respond.Error(c, http.StatusInternalServerError, "analysis_failed", MsgAnalysisFailed, details)
	default:
		var details any
		if h.ExposeDetails {
			details = gin.H{"error": err.Error()}
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to process match. Please try again.", details)
	}
}
