package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"cvpilot-backend/internal/llm"
	"cvpilot-backend/internal/shared/telemetry"
)

const (
	baseURL        = "https://api.openai.com/v1"
	assistantsBeta = "assistants=v2"

	extractorName         = "CV Text Extractor"
	extractorInstructions = "Sen bir CV okuma asistanısın. PDF dosyasındaki tüm metni çıkar ve döndür."
	extractorMessage      = "Bu CV dosyasındaki tüm metni çıkar ve bana ver."
)

// Extractor implements llm.Extractor via the OpenAI Assistants API: the PDF is
// uploaded as a file, read by a temporary file_search assistant and the reply
// text is returned. File and assistant are deleted before returning, success
// or not.
type Extractor struct {
	apiKey       string
	model        string
	httpClient   *http.Client
	pollInterval time.Duration
	pollAttempts int
}

// NewExtractor constructs an Assistants-API based extractor. pollInterval and
// pollAttempts bound how long a single extraction may wait on the remote run.
func NewExtractor(apiKey, model string, pollInterval time.Duration, pollAttempts int) (*Extractor, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	if pollAttempts <= 0 {
		pollAttempts = 60
	}
	return &Extractor{
		apiKey:       apiKey,
		model:        model,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		pollInterval: pollInterval,
		pollAttempts: pollAttempts,
	}, nil
}

// Extract uploads the PDF and returns its extracted plain text.
func (e *Extractor) Extract(ctx context.Context, data []byte) (string, error) {
	fileID, err := e.uploadFile(ctx, data)
	if err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}
	defer e.deleteResource(ctx, "/files/"+fileID)

	assistantID, err := e.createAssistant(ctx)
	if err != nil {
		return "", fmt.Errorf("create assistant: %w", err)
	}
	defer e.deleteResource(ctx, "/assistants/"+assistantID)

	threadID, err := e.createThread(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}

	runID, err := e.createRun(ctx, threadID, assistantID)
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}

	if err := e.waitForRun(ctx, threadID, runID); err != nil {
		return "", err
	}

	text, err := e.latestMessageText(ctx, threadID)
	if err != nil {
		return "", fmt.Errorf("read messages: %w", err)
	}
	return text, nil
}

func (e *Extractor) uploadFile(ctx context.Context, data []byte) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("purpose", "assistants"); err != nil {
		return "", err
	}
	part, err := w.CreateFormFile("file", "cv.pdf")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := e.do(ctx, http.MethodPost, "/files", w.FormDataContentType(), &buf, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (e *Extractor) createAssistant(ctx context.Context) (string, error) {
	body := map[string]any{
		"name":         extractorName,
		"instructions": extractorInstructions,
		"model":        e.model,
		"tools":        []map[string]string{{"type": "file_search"}},
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := e.doJSON(ctx, http.MethodPost, "/assistants", body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (e *Extractor) createThread(ctx context.Context, fileID string) (string, error) {
	body := map[string]any{
		"messages": []map[string]any{
			{
				"role":    "user",
				"content": extractorMessage,
				"attachments": []map[string]any{
					{
						"file_id": fileID,
						"tools":   []map[string]string{{"type": "file_search"}},
					},
				},
			},
		},
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := e.doJSON(ctx, http.MethodPost, "/threads", body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (e *Extractor) createRun(ctx context.Context, threadID, assistantID string) (string, error) {
	body := map[string]any{"assistant_id": assistantID}
	var out struct {
		ID string `json:"id"`
	}
	if err := e.doJSON(ctx, http.MethodPost, "/threads/"+threadID+"/runs", body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (e *Extractor) waitForRun(ctx context.Context, threadID, runID string) error {
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	for attempt := 0; attempt < e.pollAttempts; attempt++ {
		var out struct {
			Status    string `json:"status"`
			LastError *struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"last_error"`
		}
		if err := e.do(ctx, http.MethodGet, "/threads/"+threadID+"/runs/"+runID, "", nil, &out); err != nil {
			return fmt.Errorf("poll run: %w", err)
		}

		switch out.Status {
		case "completed":
			return nil
		case "failed", "cancelled", "expired", "incomplete":
			if out.LastError != nil {
				return fmt.Errorf("extraction run %s: %s (%s)", out.Status, out.LastError.Message, out.LastError.Code)
			}
			return fmt.Errorf("extraction run %s", out.Status)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return fmt.Errorf("extraction run did not complete after %d attempts", e.pollAttempts)
}

func (e *Extractor) latestMessageText(ctx context.Context, threadID string) (string, error) {
	var out struct {
		Data []struct {
			Content []struct {
				Type string `json:"type"`
				Text *struct {
					Value string `json:"value"`
				} `json:"text"`
			} `json:"content"`
		} `json:"data"`
	}
	if err := e.do(ctx, http.MethodGet, "/threads/"+threadID+"/messages?limit=1", "", nil, &out); err != nil {
		return "", err
	}
	if len(out.Data) == 0 || len(out.Data[0].Content) == 0 {
		return "", nil
	}
	first := out.Data[0].Content[0]
	if first.Type != "text" || first.Text == nil {
		return "", nil
	}
	return first.Text.Value, nil
}

// deleteResource removes a remote file or assistant. Failures are logged, not
// returned: cleanup must never mask the extraction result.
func (e *Extractor) deleteResource(ctx context.Context, path string) {
	if err := e.do(context.WithoutCancel(ctx), http.MethodDelete, path, "", nil, nil); err != nil {
		telemetry.Warn("extract.cleanup_failed", map[string]any{
			"path":  path,
			"error": err.Error(),
		})
	}
}

func (e *Extractor) doJSON(ctx context.Context, method, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return e.do(ctx, method, path, "application/json", bytes.NewReader(payload), out)
}

func (e *Extractor) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("OpenAI-Beta", assistantsBeta)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Error *struct {
				Message string `json:"message"`
				Type    string `json:"type"`
			} `json:"error"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != nil {
			return fmt.Errorf("openai %s %s: %s (%s)", method, path, apiErr.Error.Message, apiErr.Error.Type)
		}
		return fmt.Errorf("openai %s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

var _ llm.Extractor = (*Extractor)(nil)
