package library

import "time"

// InteractionType names an append-only viewer event.
type InteractionType string

const (
	InteractionView          InteractionType = "view"
	InteractionPageView      InteractionType = "page_view"
	InteractionOpenReference InteractionType = "open_reference"
	InteractionDownload      InteractionType = "download"
)

// Interaction is one entry of the interaction log.
type Interaction struct {
	ID              string          `json:"id" db:"id"`
	ContentID       string          `json:"content_id" db:"content_id"`
	InteractionType InteractionType `json:"interaction_type" db:"interaction_type"`
	LastPage        *int            `json:"last_page,omitempty" db:"last_page"`
	Duration        *int            `json:"duration,omitempty" db:"duration"` // seconds
	UserAgent       string          `json:"user_agent" db:"user_agent"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}
