package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"

	"cvpilot-backend/internal/analyses"
	"cvpilot-backend/internal/shared/server/middleware"
	local "cvpilot-backend/internal/shared/storage/object/local"
)

func setupUploadRouter(t *testing.T) (*gin.Engine, *analyses.MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := local.New(t.TempDir())
	repo := analyses.NewMemoryRepo()
	svc := &analyses.Service{Repo: repo, Store: store}
	handler := NewHandler(store, svc)

	r := gin.New()
	r.Use(middleware.Auth())
	api := r.Group("/api/v1")
	handler.RegisterRoutes(api)
	return r, repo
}

func multipartBody(t *testing.T, fieldName, fileName, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return buf, w.FormDataContentType()
}

func TestUploadCreatesPendingAnalysis(t *testing.T) {
	r, repo := setupUploadRouter(t)

	body, contentType := multipartBody(t, "file", "cv.pdf", "application/pdf", []byte("%PDF-1.4 fake"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Guest-Id", "test-guest")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		AnalysisID string `json:"analysisId"`
		FileName   string `json:"fileName"`
		Status     string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.AnalysisID == "" {
		t.Fatalf("expected analysisId in response")
	}
	if created.Status != analyses.StatusPending {
		t.Fatalf("expected status pending, got %q", created.Status)
	}

	a, err := repo.GetByID(context.Background(), created.AnalysisID)
	if err != nil {
		t.Fatalf("get analysis: %v", err)
	}
	if a.UserID != "guest:test-guest" {
		t.Fatalf("expected record owned by guest, got %q", a.UserID)
	}
	if a.FileName != "cv.pdf" {
		t.Fatalf("expected file name preserved, got %q", a.FileName)
	}
}

func TestUploadRejectsNonPDF(t *testing.T) {
	r, _ := setupUploadRouter(t)

	body, contentType := multipartBody(t, "file", "cv.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", []byte("not a pdf"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Guest-Id", "test-guest")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-pdf upload, got %d", resp.Code)
	}
}

func TestUploadRequiresFileField(t *testing.T) {
	r, _ := setupUploadRouter(t)

	body, contentType := multipartBody(t, "attachment", "cv.pdf", "application/pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Guest-Id", "test-guest")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 when file field missing, got %d", resp.Code)
	}
}

func TestPresignUnavailableOnLocalStore(t *testing.T) {
	r, _ := setupUploadRouter(t)

	payload, err := json.Marshal(map[string]any{
		"fileName":    "cv.pdf",
		"contentType": "application/pdf",
		"sizeBytes":   1024,
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/presign", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", "test-guest")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501 on local store, got %d", resp.Code)
	}
}
