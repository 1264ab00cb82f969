package library

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"library/internal/domain"
	models "library/internal/domain/models/library"
	libraryRepo "library/internal/domain/repositories/library"
	libsvc "library/internal/domain/services/library"
)

// youtubeID captures the video id from watch, short, embed and v/ style YouTube URLs
var youtubeID = regexp.MustCompile(`^.*(youtu\.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*).*`)

const allContentTitle = "All Content"

type viewerService struct {
	folders   libsvc.FolderService
	content   libsvc.ContentService
	analytics libsvc.AnalyticsRecorder
	state     libraryRepo.ViewerStateStore
	logger    *slog.Logger
}

// NewViewerService creates the read-only viewer service
func NewViewerService(
	folders libsvc.FolderService,
	content libsvc.ContentService,
	analytics libsvc.AnalyticsRecorder,
	state libraryRepo.ViewerStateStore,
	logger *slog.Logger,
) libsvc.ViewerService {
	return &viewerService{
		folders:   folders,
		content:   content,
		analytics: analytics,
		state:     state,
		logger:    logger,
	}
}

// ResolveEntry picks the initial view: a content id wins over a folder, and with
// neither every folder's items are shown
func (s *viewerService) ResolveEntry(ctx context.Context, query libsvc.EntryQuery) (*libsvc.Entry, error) {
	contentID := strings.TrimSpace(query.Content)
	folderRef := strings.TrimSpace(query.Folder)

	if contentID != "" {
		item, err := s.content.GetContent(ctx, contentID)
		if err != nil {
			return nil, err
		}
		// Single-content links hide folder navigation
		return &libsvc.Entry{
			Mode:     libsvc.EntrySingleContent,
			Title:    item.Title,
			Folders:  []models.Folder{},
			Items:    []models.Content{*item},
			AutoOpen: item,
		}, nil
	}

	folders, err := s.folders.ListFolders(ctx)
	if err != nil {
		return nil, err
	}

	if folderRef != "" {
		folder, err := s.folders.GetFolder(ctx, folderRef)
		if err != nil {
			return nil, err
		}
		items, err := s.content.ListByFolder(ctx, folder.ID)
		if err != nil {
			return nil, err
		}
		return &libsvc.Entry{
			Mode:    libsvc.EntryFolder,
			Title:   folder.Title,
			Folder:  folder,
			Folders: folders,
			Items:   items,
		}, nil
	}

	items, err := s.content.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return &libsvc.Entry{
		Mode:    libsvc.EntryAll,
		Title:   allContentTitle,
		Folders: folders,
		Items:   items,
	}, nil
}

// Open records the view and decides how the client presents the item. Recording is
// handed to the analytics recorder and never fails or delays the open.
func (s *viewerService) Open(ctx context.Context, req *libsvc.OpenRequest) (*libsvc.OpenResult, error) {
	item, err := s.content.GetContent(ctx, req.ContentID)
	if err != nil {
		return nil, err
	}

	s.analytics.IncrementViewCount(ctx, item.ID)
	s.analytics.LogInteraction(ctx, &models.Interaction{
		ContentID:       item.ID,
		InteractionType: models.InteractionView,
		UserAgent:       req.UserAgent,
	})

	result := &libsvc.OpenResult{Content: item}
	switch item.Type {
	case models.ContentTypeVideo:
		result.Kind = libsvc.PresentEmbed
		result.Player = string(models.ContentTypeVideo)
		result.URL = EmbedURL(location(item))
	case models.ContentTypeAudio, models.ContentTypeImage:
		result.Kind = libsvc.PresentEmbed
		result.Player = string(item.Type)
		result.URL = location(item)
	case models.ContentTypePDF:
		result.Kind = libsvc.PresentPDF
		result.URL = location(item)
		result.InitialPage = s.InitialPage(ctx, req.SessionID, item)
	case models.ContentTypeLink:
		result.Kind = libsvc.PresentNavigate
		result.URL = location(item)
	default:
		return nil, fmt.Errorf("open content %s: unknown type %q", item.ID, item.Type)
	}

	if item.Type != models.ContentTypeLink && item.HasURL() && item.HasExternalURL() {
		result.ReferencePrompt = true
		result.ReferenceURL = *item.ExternalURL
	}

	return result, nil
}

// GetPreferences returns the session's viewer preferences
func (s *viewerService) GetPreferences(ctx context.Context, sessionID string) (*models.ViewerPreferences, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	return s.state.GetPreferences(ctx, sessionID)
}

// SavePreferences stores the session's viewer preferences
func (s *viewerService) SavePreferences(ctx context.Context, sessionID string, prefs *models.ViewerPreferences) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	if prefs == nil {
		return domain.NewValidationError("preferences are required")
	}
	return s.state.SavePreferences(ctx, sessionID, prefs)
}

// SavePlayback remembers where the session stopped in an item. For PDFs the page is
// also written to the item's last_page and logged as a page view, best effort.
func (s *viewerService) SavePlayback(ctx context.Context, sessionID, contentID string, position int) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	if position < 0 {
		return &domain.ValidationError{Field: "position", Message: "position must not be negative"}
	}

	item, err := s.content.GetContent(ctx, contentID)
	if err != nil {
		return err
	}

	err = s.state.SavePlayback(ctx, sessionID, &models.PlaybackPosition{
		ContentID: item.ID,
		Position:  position,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	if item.Type == models.ContentTypePDF && position >= 1 {
		page := position
		s.analytics.UpdateLastPage(ctx, item.ID, page)
		s.analytics.LogInteraction(ctx, &models.Interaction{
			ContentID:       item.ID,
			InteractionType: models.InteractionPageView,
			LastPage:        &page,
		})
	}
	return nil
}

// InitialPage is the session's saved position, else the item's last page, else 1
func (s *viewerService) InitialPage(ctx context.Context, sessionID string, item *models.Content) int {
	if sessionID != "" {
		pos, err := s.state.GetPlayback(ctx, sessionID, item.ID)
		if err != nil {
			s.logger.Warn("failed to load playback position", "content_id", item.ID, "error", err)
		} else if pos != nil && pos.Position >= 1 {
			return pos.Position
		}
	}
	if item.LastPage != nil && *item.LastPage >= 1 {
		return *item.LastPage
	}
	return 1
}

// location is the stored file when there is one, the external reference otherwise
func location(item *models.Content) string {
	if item.HasURL() {
		return *item.URL
	}
	if item.HasExternalURL() {
		return *item.ExternalURL
	}
	return ""
}

// EmbedURL rewrites a YouTube page URL to its embeddable form. Other URLs, and YouTube
// URLs without a well-formed 11 character id, are returned unchanged.
func EmbedURL(url string) string {
	if !strings.Contains(url, "youtube.com") && !strings.Contains(url, "youtu.be") {
		return url
	}
	m := youtubeID.FindStringSubmatch(url)
	if m == nil || len(m[2]) != 11 {
		return url
	}
	return "https://www.youtube.com/embed/" + m[2]
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return &domain.ValidationError{Field: "session", Message: "viewer session id is required"}
	}
	return nil
}
