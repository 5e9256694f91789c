package dto

import (
	"time"

	"reportdesk.app/reportdesk/internal/model"
)

type ReportResponse struct {
	ID           int64              `json:"id"`
	ReporterID   int64              `json:"reporter_id"`
	ReporterName string             `json:"reporter_name"`
	Category     string             `json:"category"`
	Content      string             `json:"content"`
	Attachments  []model.Attachment `json:"attachments,omitempty"`
	MessageID    *int64             `json:"message_id,omitempty"`
	Status       string             `json:"status"`
	Replied      bool               `json:"replied"`
	RepliedAt    *time.Time         `json:"replied_at,omitempty"`
	RepliedBy    *string            `json:"replied_by,omitempty"`
	ReplyContent *string            `json:"reply_content,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

func ToReportResponse(r *model.Report) ReportResponse {
	return ReportResponse{
		ID:           r.ID,
		ReporterID:   r.ReporterID,
		ReporterName: r.ReporterName,
		Category:     string(r.Category),
		Content:      r.Content,
		Attachments:  r.Attachments,
		MessageID:    r.MessageID,
		Status:       string(r.Status()),
		Replied:      r.Replied,
		RepliedAt:    r.RepliedAt,
		RepliedBy:    r.RepliedBy,
		ReplyContent: r.ReplyContent,
		CreatedAt:    r.CreatedAt,
	}
}

type ListReportsResponse struct {
	Reports []ReportResponse `json:"reports"`
}

type ConfigResponse struct {
	ID        int64 `json:"id"`
	ChannelID int64 `json:"channel_id"`
	Enabled   bool  `json:"enabled"`
}

type SetConfigRequest struct {
	ChannelID int64 `json:"channel_id" binding:"required"`
	Enabled   *bool `json:"enabled" binding:"required"`
}
