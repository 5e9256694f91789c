package model

import "time"

// ReportConfig is the process-wide routing target for report cards.
// At most one config is treated as active: the first one with Enabled set.
type ReportConfig struct {
	ID        int64     `json:"id"`
	ChannelID int64     `json:"channel_id"` // moderation channel receiving report cards
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
