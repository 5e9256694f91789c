package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"reportdesk.app/reportdesk/common/logger"
	"reportdesk.app/reportdesk/internal/http/dto"
	"reportdesk.app/reportdesk/internal/mapper"
	"reportdesk.app/reportdesk/internal/model"
	"reportdesk.app/reportdesk/internal/service"
)

// InteractionHandler is the single entry point for the chat platform's
// interaction webhook: the report command, the reply button, and the reply
// form all arrive here.
type InteractionHandler struct {
	reports service.ReportService
}

func NewInteractionHandler(reports service.ReportService) *InteractionHandler {
	return &InteractionHandler{reports: reports}
}

func (h *InteractionHandler) Handle(c *gin.Context) {
	ctx := c.Request.Context()

	var interaction dto.Interaction
	if err := c.ShouldBindJSON(&interaction); err != nil {
		slog.WarnContext(ctx, "invalid interaction payload", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		InteractionID: logger.Ptr(interaction.ID),
		EventType:     logger.Ptr(eventType(interaction.Type)),
	})
	c.Request = c.Request.WithContext(ctx)

	switch interaction.Type {
	case dto.InteractionTypePing:
		c.JSON(http.StatusOK, dto.InteractionResponse{Type: dto.ResponseTypePong})

	case dto.InteractionTypeCommand:
		if interaction.Data == nil || interaction.Data.Name != "report" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown command"})
			return
		}
		h.handleSubmit(c, &interaction)

	case dto.InteractionTypeMessageComponent:
		if interaction.Data == nil || !strings.HasPrefix(interaction.Data.CustomID, mapper.ReplyButtonPrefix) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown component"})
			return
		}
		h.handleReplyButton(c, &interaction)

	case dto.InteractionTypeModalSubmit:
		if interaction.Data == nil || !strings.HasPrefix(interaction.Data.CustomID, mapper.ReplyModalPrefix) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown modal"})
			return
		}
		h.handleReplySubmit(c, &interaction)

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported interaction type"})
	}
}

func (h *InteractionHandler) handleSubmit(c *gin.Context, interaction *dto.Interaction) {
	ctx := c.Request.Context()

	actor := interaction.Actor()
	if actor == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "interaction has no user"})
		return
	}
	reporterID, err := strconv.ParseInt(actor.ID, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed user id"})
		return
	}

	category, _ := interaction.Data.Option("report_type")
	content, _ := interaction.Data.Option("content")

	params := service.SubmitParams{
		ReporterID:   reporterID,
		ReporterName: actor.Username,
		Category:     category,
		Content:      content,
		Attachment:   resolveAttachment(interaction.Data),
	}

	result, err := h.reports.Submit(ctx, params)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusOK, dto.Ephemeral("❌ "+err.Error()))
			return
		}
		slog.ErrorContext(ctx, "report submission failed", "error", err)
		c.JSON(http.StatusOK, dto.Ephemeral("❌ Report submission failed. Please contact an administrator."))
		return
	}

	if !result.Delivered {
		if errors.Is(result.DeliveryErr, service.ErrConfigMissing) {
			c.JSON(http.StatusOK, dto.Ephemeral("❌ Report system is not configured. Please contact an administrator."))
			return
		}
		c.JSON(http.StatusOK, dto.Ephemeral(fmt.Sprintf(
			"❌ Report %d was recorded, but could not be delivered to the moderation team. Please contact an administrator.",
			result.Report.ID,
		)))
		return
	}

	c.JSON(http.StatusOK, dto.Ephemeral(fmt.Sprintf(
		"✅ Report submitted successfully! Your report ID is %d. You will be notified of any updates via DM.",
		result.Report.ID,
	)))
}

// handleReplyButton opens the reply form. Authorization happens here, before
// any form is shown; the button itself carries only the report ID.
func (h *InteractionHandler) handleReplyButton(c *gin.Context, interaction *dto.Interaction) {
	if !interaction.Member.IsAdministrator() {
		c.JSON(http.StatusOK, dto.Ephemeral("❌ Only administrators can use this feature."))
		return
	}

	reportID, err := parseCustomID(interaction.Data.CustomID, mapper.ReplyButtonPrefix)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed component id"})
		return
	}

	c.JSON(http.StatusOK, dto.InteractionResponse{
		Type: dto.ResponseTypeModal,
		Data: &dto.ResponseData{
			CustomID: fmt.Sprintf("%s%d", mapper.ReplyModalPrefix, reportID),
			Title:    "Reply to Report",
			Components: []dto.ResponseSurfaceRow{{
				Type: 1,
				Components: []dto.ResponseInput{{
					Type:        4,
					Style:       2,
					CustomID:    mapper.ReplyInputID,
					Label:       "Reply Content",
					Placeholder: "Enter your reply...",
					Required:    true,
					MaxLength:   service.MaxReplyLen,
				}},
			}},
		},
	})
}

func (h *InteractionHandler) handleReplySubmit(c *gin.Context, interaction *dto.Interaction) {
	ctx := c.Request.Context()

	if !interaction.Member.IsAdministrator() {
		c.JSON(http.StatusOK, dto.Ephemeral("❌ Only administrators can use this feature."))
		return
	}

	actor := interaction.Actor()
	if actor == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "interaction has no user"})
		return
	}
	adminID, err := strconv.ParseInt(actor.ID, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed user id"})
		return
	}

	reportID, err := parseCustomID(interaction.Data.CustomID, mapper.ReplyModalPrefix)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed modal id"})
		return
	}

	content, _ := interaction.Data.TextValue(mapper.ReplyInputID)

	result, err := h.reports.Reply(ctx, service.ReplyParams{
		ReportID:  reportID,
		AdminID:   adminID,
		AdminName: actor.Username,
		Content:   content,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReportNotFound):
			c.JSON(http.StatusOK, dto.Ephemeral(fmt.Sprintf("❌ Report ID %d not found.", reportID)))
		case errors.Is(err, service.ErrAlreadyReplied):
			c.JSON(http.StatusOK, dto.Ephemeral(fmt.Sprintf("❌ Report ID %d has already been replied to.", reportID)))
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusOK, dto.Ephemeral("❌ "+err.Error()))
		default:
			slog.ErrorContext(ctx, "reply failed", "error", err, "report_id", reportID)
			c.JSON(http.StatusOK, dto.Ephemeral("❌ Reply failed. Please contact an administrator."))
		}
		return
	}

	if result.NotifyErr != nil {
		c.JSON(http.StatusOK, dto.Ephemeral("⚠️ Reply saved, but the notification could not be posted. Please contact an administrator."))
		return
	}

	c.JSON(http.StatusOK, dto.Ephemeral("✅ Reply sent successfully."))
}

func eventType(t dto.InteractionType) string {
	switch t {
	case dto.InteractionTypePing:
		return "ping"
	case dto.InteractionTypeCommand:
		return "command"
	case dto.InteractionTypeMessageComponent:
		return "component"
	case dto.InteractionTypeModalSubmit:
		return "modal_submit"
	}
	return "unknown"
}

func resolveAttachment(data *dto.InteractionData) *model.Attachment {
	attachmentID, ok := data.Option("attachment")
	if !ok || data.Resolved == nil {
		return nil
	}
	resolved, ok := data.Resolved.Attachments[attachmentID]
	if !ok {
		return nil
	}
	return &model.Attachment{
		Filename:    resolved.Filename,
		ContentType: resolved.ContentType,
		Size:        resolved.Size,
		URL:         resolved.URL,
	}
}

func parseCustomID(customID, prefix string) (int64, error) {
	return strconv.ParseInt(strings.TrimPrefix(customID, prefix), 10, 64)
}
