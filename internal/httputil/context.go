package httputil

import (
	"context"
	"net/http"
	"strings"
)

// SessionHeader carries the viewer's session id. The viewer has no accounts; the
// session id only keys remembered preferences and playback positions.
const SessionHeader = "X-Viewer-Session"

// Context key type to avoid collisions
type contextKey string

const (
	userIDKey contextKey = "userID"
)

// WithUserID adds the authenticated admin's id to the request context
func WithUserID(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	return r.WithContext(ctx)
}

// GetUserID retrieves userID from context, returns empty string if not found
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}

// ViewerSession returns the viewer session id sent with the request
func ViewerSession(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(SessionHeader))
}
