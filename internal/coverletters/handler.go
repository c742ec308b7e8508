package coverletters

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"cvpilot-backend/internal/shared/server/middleware"
	"cvpilot-backend/internal/shared/server/respond"
)

const maxJobDescriptionLen = 5000

// Handler exposes cover letter endpoints.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches cover letter routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/generate-cover-letter", h.generate)
	rg.GET("/cover-letters/:id", h.get)
}

type generateRequest struct {
	CVAnalysisID   string `json:"cvAnalysisId"`
	JobTitle       string `json:"jobTitle"`
	CompanyName    string `json:"companyName"`
	JobDescription string `json:"jobDescription"`
	Language       string `json:"language"`
}

func (h *Handler) generate(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}

	req.CVAnalysisID = strings.TrimSpace(req.CVAnalysisID)
	req.JobTitle = strings.TrimSpace(req.JobTitle)
	req.Language = strings.TrimSpace(req.Language)

	if req.CVAnalysisID == "" || req.JobTitle == "" || req.JobDescription == "" || req.Language == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "cvAnalysisId, jobTitle, jobDescription and language are required", nil)
		return
	}
	if req.Language != "tr" && req.Language != "en" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "language must be 'tr' or 'en'", nil)
		return
	}
	if utf8.RuneCountInString(req.JobDescription) > maxJobDescriptionLen {
		respond.Error(c, http.StatusBadRequest, "validation_error", "job description too long (max 5000 characters)", nil)
		return
	}

	cl, err := h.Svc.Generate(c.Request.Context(), userID, GenerateInput{
		CVAnalysisID:   req.CVAnalysisID,
		JobTitle:       req.JobTitle,
		CompanyName:    strings.TrimSpace(req.CompanyName),
		JobDescription: req.JobDescription,
		Language:       req.Language,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrSourceNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "cv analysis not found", nil)
		case errors.Is(err, ErrSourceNotCompleted):
			respond.Error(c, http.StatusBadRequest, "precondition_failed", "cv analysis must be completed first", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create cover letter", nil)
		}
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{
		"success":       true,
		"coverLetterId": cl.ID,
	})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")
	if id == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "cover letter id is required", nil)
		return
	}

	cl, err := h.Svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "cover letter not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch cover letter", nil)
		}
		return
	}

	payload := gin.H{
		"id":             cl.ID,
		"cvAnalysisId":   cl.CVAnalysisID,
		"sourceFileName": cl.SourceFileName,
		"jobTitle":       cl.JobTitle,
		"companyName":    cl.CompanyName,
		"jobDescription": cl.JobDescription,
		"language":       cl.Language,
		"status":         cl.Status,
		"createdAt":      cl.CreatedAt,
		"updatedAt":      cl.UpdatedAt,
	}
	if cl.Status == StatusCompleted {
		payload["generatedLetter"] = cl.GeneratedLetter
	}

	respond.JSON(c, http.StatusOK, payload)
}
