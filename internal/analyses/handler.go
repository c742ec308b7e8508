package analyses

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cvpilot-backend/internal/shared/server/middleware"
	"cvpilot-backend/internal/shared/server/respond"
)

// Handler exposes CV analysis endpoints.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze", h.startAnalysis)
	rg.GET("/analyses", h.listAnalyses)
	rg.GET("/analyses/:id", h.getAnalysis)
}

type startAnalysisRequest struct {
	AnalysisID string `json:"analysisId"`
	FileName   string `json:"fileName"`
}

func (h *Handler) startAnalysis(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req startAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid json body", nil)
		return
	}
	if req.AnalysisID == "" || req.FileName == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "analysisId and fileName are required", nil)
		return
	}

	a, err := h.Svc.Start(c.Request.Context(), userID, req.AnalysisID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start analysis", nil)
		}
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{
		"success":    true,
		"analysisId": a.ID,
	})
}

func (h *Handler) getAnalysis(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	analysisID := c.Param("id")
	if analysisID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "analysis id is required", nil)
		return
	}

	a, err := h.Svc.Get(c.Request.Context(), userID, analysisID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
		}
		return
	}

	payload := gin.H{
		"id":        a.ID,
		"fileName":  a.FileName,
		"fileSize":  a.FileSize,
		"status":    a.Status,
		"createdAt": a.CreatedAt,
		"updatedAt": a.UpdatedAt,
	}

	if a.Status == StatusCompleted {
		result, err := h.Svc.GetResult(c.Request.Context(), a.ID)
		if err == nil {
			payload["result"] = gin.H{
				"overallScore":  result.OverallScore,
				"summary":       result.Summary,
				"strengths":     result.Strengths,
				"weaknesses":    result.Weaknesses,
				"improvements":  result.Improvements,
				"sectionScores": result.SectionScores,
				"keywords":      result.Keywords,
				"aiFeedback":    result.AIFeedback,
			}
		}
	}

	respond.JSON(c, http.StatusOK, payload)
}

func (h *Handler) listAnalyses(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	list, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list analyses", nil)
		return
	}

	items := make([]gin.H, 0, len(list))
	for _, a := range list {
		items = append(items, gin.H{
			"id":        a.ID,
			"fileName":  a.FileName,
			"fileSize":  a.FileSize,
			"status":    a.Status,
			"createdAt": a.CreatedAt,
			"updatedAt": a.UpdatedAt,
		})
	}

	respond.JSON(c, http.StatusOK, gin.H{"analyses": items})
}
