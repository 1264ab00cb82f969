package pdfview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"library/internal/domain"
	models "library/internal/domain/models/library"
)

// DefaultCacheSize is how many parsed documents a Renderer keeps
const DefaultCacheSize = 16

// Renderer fetches PDFs from their stored URL and serves page overlays. Parsed
// documents are cached by URL; stored files are immutable once uploaded.
type Renderer struct {
	client   *http.Client
	maxBytes int64
	capacity int
	logger   *slog.Logger

	mu    sync.Mutex
	cache map[string]*Document
	order []string // Oldest first
}

// NewRenderer creates a renderer that refuses PDFs larger than maxBytes
func NewRenderer(client *http.Client, maxBytes int64, logger *slog.Logger) *Renderer {
	if client == nil {
		client = &http.Client{Timeout: time.Minute}
	}
	return &Renderer{
		client:   client,
		maxBytes: maxBytes,
		capacity: DefaultCacheSize,
		logger:   logger,
		cache:    make(map[string]*Document),
	}
}

// PageView returns page n of a PDF item at scale with its link overlays
func (r *Renderer) PageView(ctx context.Context, item *models.Content, n int, scale float64) (*View, error) {
	if item.Type != models.ContentTypePDF {
		return nil, &domain.ValidationError{Field: "type", Message: "content is not a PDF"}
	}
	if !item.HasURL() {
		return nil, &domain.ValidationError{Field: "url", Message: "PDF has no stored file"}
	}
	if err := ValidateScale(scale); err != nil {
		return nil, err
	}

	doc, err := r.Load(ctx, *item.URL)
	if err != nil {
		return nil, err
	}
	if _, err := doc.Page(n); err != nil {
		return nil, &domain.ValidationError{Field: "page", Message: err.Error()}
	}

	session, err := NewSession(doc, n, nil)
	if err != nil {
		return nil, err
	}
	view, err := session.SetScale(scale)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Load returns the parsed document at url, fetching it on a cache miss
func (r *Renderer) Load(ctx context.Context, url string) (*Document, error) {
	if doc, ok := r.cached(url); ok {
		return doc, nil
	}

	data, err := r.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := Parse(data)
	if err != nil {
		if errors.Is(err, ErrNotPDF) {
			return nil, &domain.ValidationError{Field: "url", Message: err.Error()}
		}
		return nil, err
	}

	r.store(url, doc)
	r.logger.Debug("pdf parsed", "url", url, "pages", doc.NumPages(), "bytes", len(data))
	return doc, nil
}

func (r *Renderer) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &domain.ValidationError{Field: "url", Message: fmt.Sprintf("invalid PDF url: %v", err)}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &domain.StorageError{Op: "fetch pdf", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.StorageError{Op: "fetch pdf", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	if resp.ContentLength > r.maxBytes {
		return nil, &domain.ValidationError{Field: "url", Message: "PDF exceeds the maximum file size"}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBytes+1))
	if err != nil {
		return nil, &domain.StorageError{Op: "fetch pdf", Err: err}
	}
	if int64(len(data)) > r.maxBytes {
		return nil, &domain.ValidationError{Field: "url", Message: "PDF exceeds the maximum file size"}
	}
	return data, nil
}

func (r *Renderer) cached(url string) (*Document, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.cache[url]
	return doc, ok
}

func (r *Renderer) store(url string, doc *Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cache[url]; ok {
		return
	}
	for len(r.order) >= r.capacity {
		delete(r.cache, r.order[0])
		r.order = r.order[1:]
	}
	r.cache[url] = doc
	r.order = append(r.order, url)
}
