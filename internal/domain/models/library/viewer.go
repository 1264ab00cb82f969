package library

import "time"

// PlaybackPosition remembers where a viewer stopped in an item: a page number for PDFs,
// seconds for audio and video.
type PlaybackPosition struct {
	ContentID string    `json:"content_id"`
	Position  int       `json:"position"`
	Timestamp time.Time `json:"timestamp"`
}

// ViewerPreferences is the per-session state the viewer keeps between visits.
type ViewerPreferences struct {
	DarkMode bool `json:"dark_mode"`
}
