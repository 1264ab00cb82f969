// Package relayclient talks to the storage relay on behalf of the admin workflow.
package relayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"library/internal/config"
	"library/internal/domain"
	libsvc "library/internal/domain/services/library"
)

// Client uploads and deletes files through the relay
type Client struct {
	baseURL  string
	maxBytes int64
	types    config.AllowedTypes
	http     *http.Client
	logger   *slog.Logger
}

// New creates a relay client. Files larger than maxBytes or of a type outside types
// are rejected before anything is sent.
func New(baseURL string, maxBytes int64, types config.AllowedTypes, logger *slog.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		maxBytes: maxBytes,
		types:    types,
		http:     &http.Client{Timeout: 10 * time.Minute},
		logger:   logger,
	}
}

// WithHTTPClient replaces the underlying HTTP client
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

var _ libsvc.FileUploader = (*Client)(nil)

// UploadContent stores a content file under content/<category>
func (c *Client) UploadContent(ctx context.Context, file *libsvc.UploadFile) (*libsvc.UploadResult, error) {
	category, err := c.check(file)
	if err != nil {
		return nil, err
	}
	return c.upload(ctx, file, "content/"+category, "content")
}

// UploadThumbnail stores an image under thumbnails/
func (c *Client) UploadThumbnail(ctx context.Context, file *libsvc.UploadFile) (*libsvc.UploadResult, error) {
	category, err := c.check(file)
	if err != nil {
		return nil, err
	}
	if category != "image" {
		return nil, &domain.ValidationError{Field: "thumbnail", Message: "thumbnail must be an image"}
	}
	return c.upload(ctx, file, "thumbnails", "thumbnail")
}

// Delete removes an object by key
func (c *Client) Delete(ctx context.Context, filename string) error {
	body, err := json.Marshal(map[string]string{"filename": filename})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/delete", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, "delete", nil)
}

// Health checks that the relay is reachable
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	return c.do(req, "health", nil)
}

func (c *Client) check(file *libsvc.UploadFile) (string, error) {
	if file.Size > c.maxBytes {
		return "", &domain.ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("file too large: %d bytes (max %d)", file.Size, c.maxBytes),
		}
	}
	category := c.types.Category(file.ContentType)
	if category == "" {
		return "", &domain.ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("unsupported file type %q", file.ContentType),
		}
	}
	return category, nil
}

func (c *Client) upload(ctx context.Context, file *libsvc.UploadFile, folder, kind string) (*libsvc.UploadResult, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeForm(mw, file, folder, kind))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", pr)
	if err != nil {
		pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out struct {
		Success  bool   `json:"success"`
		URL      string `json:"url"`
		Filename string `json:"filename"`
		Size     int64  `json:"size"`
		Type     string `json:"type"`
	}
	if err := c.do(req, "upload", &out); err != nil {
		return nil, err
	}

	c.logger.Debug("file uploaded", "key", out.Filename, "size", out.Size)
	return &libsvc.UploadResult{URL: out.URL, Filename: out.Filename, Size: out.Size, Type: out.Type}, nil
}

func writeForm(mw *multipart.Writer, file *libsvc.UploadFile, folder, kind string) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(file.Name)))
	h.Set("Content-Type", file.ContentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file.Body); err != nil {
		return err
	}
	if err := mw.WriteField("folder", folder); err != nil {
		return err
	}
	if err := mw.WriteField("type", kind); err != nil {
		return err
	}
	return mw.Close()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// do sends req and decodes a 2xx body into out. Relay errors carry {"error": message}.
func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.StorageError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope struct {
			Error string `json:"error"`
		}
		msg := resp.Status
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error != "" {
			msg = envelope.Error
		}
		return &domain.StorageError{Op: op, Err: errors.New(msg)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.StorageError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
