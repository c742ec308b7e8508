package uploads

import (
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"

	"cvpilot-backend/internal/analyses"
	"cvpilot-backend/internal/shared/server/middleware"
	"cvpilot-backend/internal/shared/server/respond"
	"cvpilot-backend/internal/shared/storage/object"
	s3store "cvpilot-backend/internal/shared/storage/object/s3"
	"cvpilot-backend/internal/shared/telemetry"
	"cvpilot-backend/internal/shared/util"
)

const (
	maxUploadBytes = 5 << 20
	presignExpires = 15 * time.Minute
	pdfContentType = "application/pdf"
)

// Handler accepts CV uploads and records them as pending analyses.
type Handler struct {
	Store    object.ObjectStore
	Analyses *analyses.Service
}

func NewHandler(store object.ObjectStore, analysesSvc *analyses.Service) *Handler {
	return &Handler{Store: store, Analyses: analysesSvc}
}

// RegisterRoutes attaches upload routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/uploads", h.upload)
	rg.POST("/uploads/presign", h.presign)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required (max 5MB)", nil)
		return
	}
	defer file.Close()

	fileName := strings.TrimSpace(header.Filename)
	if _, err := util.SanitizeFileName(fileName); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid file name", nil)
		return
	}

	contentType := strings.TrimSpace(strings.Split(header.Header.Get("Content-Type"), ";")[0])
	if contentType != pdfContentType && !strings.HasSuffix(strings.ToLower(fileName), ".pdf") {
		respond.Error(c, http.StatusBadRequest, "validation_error", "only PDF files are accepted", nil)
		return
	}
	if header.Size > maxUploadBytes {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file exceeds 5MB limit", nil)
		return
	}

	storageKey, size, err := h.Store.Save(c.Request.Context(), userID, fileName, file)
	if err != nil {
		telemetry.Error("uploads.save_failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"user_id":    userID,
			"file_name":  fileName,
			"error":      err.Error(),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store file", nil)
		return
	}

	a, err := h.Analyses.CreatePending(c.Request.Context(), userID, fileName, storageKey, size)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to record upload", nil)
		return
	}

	respond.JSON(c, http.StatusCreated, gin.H{
		"analysisId": a.ID,
		"fileName":   a.FileName,
		"fileSize":   a.FileSize,
		"status":     a.Status,
	})
}

type presignRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
}

// presign issues a direct-to-S3 upload URL. Only available when the object
// store is S3-backed.
func (h *Handler) presign(c *gin.Context) {
	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	req.FileName = strings.TrimSpace(req.FileName)
	req.ContentType = strings.TrimSpace(req.ContentType)

	if req.FileName == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "fileName is required", nil)
		return
	}
	if req.ContentType != pdfContentType {
		respond.Error(c, http.StatusBadRequest, "validation_error", "contentType is not allowed", nil)
		return
	}
	if req.SizeBytes <= 0 || req.SizeBytes > maxUploadBytes {
		respond.Error(c, http.StatusBadRequest, "validation_error", "sizeBytes exceeds limit", nil)
		return
	}

	store, ok := h.Store.(*s3store.Store)
	if !ok {
		respond.Error(c, http.StatusNotImplemented, "not_supported", "presigned uploads require S3 storage", nil)
		return
	}

	userID := middleware.UserIDFromContext(c)
	sanitized, err := util.SanitizeFileName(req.FileName)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid fileName", nil)
		return
	}

	storageKey := path.Join(util.HashUserKey(userID), sanitized)
	objectKey := store.ObjectKey(storageKey)

	presigner := awss3.NewPresignClient(store.Client())
	out, err := presigner.PresignPutObject(c.Request.Context(), &awss3.PutObjectInput{
		Bucket: aws.String(store.Bucket()),
		Key:    aws.String(objectKey),
	}, func(opts *awss3.PresignOptions) {
		opts.Expires = presignExpires
	})
	if err != nil {
		telemetry.Error("uploads.presign_failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"bucket":     store.Bucket(),
			"key":        objectKey,
			"error":      err.Error(),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to generate upload url", nil)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"uploadUrl":        out.URL,
		"storageKey":       storageKey,
		"expiresInSeconds": int64(presignExpires.Seconds()),
	})
}
