// Package upload sends product images to the external object store. The
// store is treated as an opaque HTTP collaborator; failures surface as
// internal errors for the caller to map.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/utafrali/storefront/pkg/httpclient"
)

// Uploader stores image files and returns their public URLs.
type Uploader interface {
	Upload(ctx context.Context, filename string, content io.Reader) (string, error)
}

// HTTPUploader uploads images to an HTTP object-store endpoint through a
// circuit-breaking client.
type HTTPUploader struct {
	client   *httpclient.BreakerClient
	endpoint string
	logger   *slog.Logger
}

// NewHTTPUploader creates an uploader targeting the given endpoint.
func NewHTTPUploader(client *httpclient.BreakerClient, endpoint string, logger *slog.Logger) *HTTPUploader {
	return &HTTPUploader{
		client:   client,
		endpoint: endpoint,
		logger:   logger,
	}
}

type uploadResponse struct {
	URL string `json:"url"`
}

// Upload sends the file as multipart form data and returns the stored URL.
func (u *HTTPUploader) Upload(ctx context.Context, filename string, content io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("copy upload content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("upload %s: object store returned %d", filename, resp.StatusCode)
	}

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}

	u.logger.DebugContext(ctx, "image uploaded",
		slog.String("filename", filename),
		slog.String("url", parsed.URL),
	)
	return parsed.URL, nil
}
