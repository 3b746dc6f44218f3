package imports

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Extractor turns an uploaded supplier bill into candidate inventory lines.
type Extractor interface {
	Extract(ctx context.Context, filename string, contents []byte) ([]StagedLine, error)
}

// ExtractResponse is the wire shape returned by the extraction service.
type ExtractResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    []StagedLine `json:"data"`
}

// HTTPExtractor posts the document to the external extraction service.
type HTTPExtractor struct {
	BaseURL string
	Client  *http.Client
}

// Extract uploads the document as multipart form data and decodes the
// candidate lines from the response.
func (e *HTTPExtractor) Extract(ctx context.Context, filename string, contents []byte) ([]StagedLine, error) {
	if e == nil || strings.TrimSpace(e.BaseURL) == "" {
		return nil, errors.New("extractor not configured")
	}
	client := e.Client
	if client == nil {
		client = &http.Client{Timeout: 90 * time.Second}
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := part.Write(contents); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalise multipart body: %w", err)
	}

	url := strings.TrimRight(e.BaseURL, "/") + "/import-bill"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call extraction service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read extraction response: %w", err)
	}

	var decoded ExtractResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("decode extraction response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !decoded.Success {
		msg := strings.TrimSpace(decoded.Message)
		if msg == "" {
			msg = fmt.Sprintf("extraction failed with status %d", resp.StatusCode)
		}
		return nil, errors.New(msg)
	}
	return decoded.Data, nil
}

// MockExtractor returns canned lines and is useful for testing and development.
type MockExtractor struct {
	Lines []StagedLine
	Err   error
}

// Extract returns the configured lines regardless of the document.
func (m MockExtractor) Extract(ctx context.Context, filename string, contents []byte) ([]StagedLine, error) {
	_ = ctx
	_ = filename
	_ = contents
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]StagedLine(nil), m.Lines...), nil
}

// Reconciler applies a confirmed staged list as a single all-or-nothing
// inventory update.
type Reconciler interface {
	Apply(ctx context.Context, lines []StagedLine) error
}
