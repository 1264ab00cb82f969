package library

import (
	"context"

	models "library/internal/domain/models/library"
)

// AnalyticsRecorder accepts best-effort telemetry. Methods never fail from the caller's
// point of view: errors are logged and counted, and never delay the triggering action.
type AnalyticsRecorder interface {
	IncrementViewCount(ctx context.Context, contentID string)
	UpdateLastPage(ctx context.Context, contentID string, page int)
	LogInteraction(ctx context.Context, entry *models.Interaction)
}
