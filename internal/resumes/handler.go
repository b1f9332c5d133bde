package resumes

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-matcher/internal/shared/server/middleware"
	"resume-matcher/internal/shared/server/respond"
)

// multipart framing allowance on top of the file limit
const maxRequestSize = MaxUploadSize + 1<<20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc           *Service
	ExposeDetails bool
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, exposeDetails bool) *Handler {
	return &Handler{Svc: svc, ExposeDetails: exposeDetails}
}

// RegisterRoutes attaches resume routes to an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resume/upload", h.upload)
	rg.GET("/resume", h.list)
	rg.GET("/resume/:id", h.get)
	rg.GET("/resume/:id/text", h.text)
	rg.GET("/resume/:id/download", h.download)
	rg.DELETE("/resume/:id", h.delete)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestSize)

	fileHeader, err := c.FormFile("resume")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			respond.Error(c, http.StatusBadRequest, "validation_error", MsgFileTooLarge, nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", MsgNoFile, nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", MsgNoFile, nil)
		return
	}
	defer file.Close()

	res, err := h.Svc.Upload(c.Request.Context(), userID, Upload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        file,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Set("resumeId", res.ID)
	respond.Created(c, gin.H{
		"message": "Resume uploaded and processed successfully",
		"resume":  toSummary(res),
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
	for _, r := range list {
		out = append(out, toSummary(r))
	}
	respond.OK(c, gin.H{"resumes": out})
}

func (h *Handler) get(c *gin.Context) {
	res, ok := h.load(c)
	if !ok {
		return
	}
	respond.OK(c, toDetail(res))
}

func (h *Handler) text(c *gin.Context) {
	res, ok := h.load(c)
	if !ok {
		return
	}
	respond.OK(c, TextResponse{
		ID:            res.ID,
		OriginalName:  res.OriginalName,
		ExtractedText: res.ExtractedText,
	})
}

func (h *Handler) download(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")
	c.Set("resumeId", id)

	res, rc, err := h.Svc.Open(c.Request.Context(), userID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer rc.Close()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": res.OriginalName})
	if disposition == "" {
		disposition = "attachment"
	}
	c.DataFromReader(http.StatusOK, -1, res.MimeType, rc, map[string]string{
		"Content-Disposition": disposition,
	})
}

func (h *Handler) delete(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")
	c.Set("resumeId", id)

	if err := h.Svc.Delete(c.Request.Context(), userID, id); err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"message": "Resume deleted successfully"})
}

func (h *Handler) load(c *gin.Context) (Resume, bool) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")
	c.Set("resumeId", id)

	res, err := h.Svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.writeError(c, err)
		return Resume{}, false
	}
	return res, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	respond.WithCause(c, err)

	var validation *ValidationError
	var rejection *RejectionError
	switch {
	case errors.As(err, &validation):
		respond.Error(c, http.StatusBadRequest, "validation_error", validation.Message, nil)
	case errors.As(err, &rejection):
		respond.Error(c, http.StatusBadRequest, "resume_rejected", rejection.Reason, gin.H{"rule": rejection.Rule})
	case errors.Is(err, ErrExtraction):
		respond.Error(c, http.StatusBadRequest, "extraction_failed", MsgExtractionError, nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Resume not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request", nil)
	default:
		var details any
		if h.ExposeDetails {
			details = gin.H{"error": err.Error()}
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to process resume. Please try again.", details)
	}
}
