package pdfview

import (
	"context"
	"log/slog"
	"sync"

	"library/internal/domain"
	models "library/internal/domain/models/library"
)

// DefaultSessionCapacity is how many open viewer sessions a Navigator keeps
const DefaultSessionCapacity = 256

// DocumentLoader returns the parsed document stored at url
type DocumentLoader interface {
	Load(ctx context.Context, url string) (*Document, error)
}

// Navigator keeps one Session per viewer and PDF item, so page and zoom state and the
// overlay generation survive between requests. The oldest session is dropped when
// the capacity is reached; the client reopens it.
type Navigator struct {
	loader   DocumentLoader
	capacity int
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[sessionKey]*Session
	order    []sessionKey // Oldest first
}

type sessionKey struct {
	viewer  string
	content string
}

// NewNavigator creates a navigator holding at most capacity sessions
func NewNavigator(loader DocumentLoader, capacity int, logger *slog.Logger) *Navigator {
	if capacity <= 0 {
		capacity = DefaultSessionCapacity
	}
	return &Navigator{
		loader:   loader,
		capacity: capacity,
		logger:   logger,
		sessions: make(map[sessionKey]*Session),
	}
}

// Open starts the viewer's session on item at page, replacing any earlier one
func (n *Navigator) Open(ctx context.Context, viewerID string, item *models.Content, page int, onPageChange PageChangeFunc) (*Session, error) {
	if viewerID == "" {
		return nil, &domain.ValidationError{Field: "session", Message: "viewer session id is required"}
	}
	if item.Type != models.ContentTypePDF {
		return nil, &domain.ValidationError{Field: "type", Message: "content is not a PDF"}
	}
	if !item.HasURL() {
		return nil, &domain.ValidationError{Field: "url", Message: "PDF has no stored file"}
	}

	doc, err := n.loader.Load(ctx, *item.URL)
	if err != nil {
		return nil, err
	}
	session, err := NewSession(doc, page, onPageChange)
	if err != nil {
		return nil, err
	}

	key := sessionKey{viewer: viewerID, content: item.ID}
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.sessions[key]; !ok {
		for len(n.order) >= n.capacity {
			delete(n.sessions, n.order[0])
			n.order = n.order[1:]
		}
		n.order = append(n.order, key)
	}
	n.sessions[key] = session
	n.logger.Debug("pdf session opened", "content_id", item.ID, "page", session.View().Page)
	return session, nil
}

// Session returns the viewer's open session on contentID
func (n *Navigator) Session(viewerID, contentID string) (*Session, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	session, ok := n.sessions[sessionKey{viewer: viewerID, content: contentID}]
	if !ok {
		return nil, &domain.NotFoundError{ResourceType: "pdf session", ID: contentID}
	}
	return session, nil
}

// Close forgets the viewer's session on contentID
func (n *Navigator) Close(viewerID, contentID string) {
	key := sessionKey{viewer: viewerID, content: contentID}
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.sessions[key]; !ok {
		return
	}
	delete(n.sessions, key)
	for i, k := range n.order {
		if k == key {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
}
