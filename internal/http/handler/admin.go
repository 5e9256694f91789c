package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"reportdesk.app/reportdesk/internal/http/dto"
	"reportdesk.app/reportdesk/internal/model"
	"reportdesk.app/reportdesk/internal/service"
	"reportdesk.app/reportdesk/internal/store"
)

// AdminHandler exposes the read-mostly browsing interface over reports and
// the routing configuration. There is deliberately no way to create a report
// here: reports originate only through the submission command.
type AdminHandler struct {
	reports     service.ReportService
	configs     service.ConfigService
	adminAPIKey string
}

func NewAdminHandler(reports service.ReportService, configs service.ConfigService, adminAPIKey string) *AdminHandler {
	return &AdminHandler{
		reports:     reports,
		configs:     configs,
		adminAPIKey: adminAPIKey,
	}
}

// RequireAdminAPIKey middleware checks for valid admin API key
func (h *AdminHandler) RequireAdminAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.adminAPIKey == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin API not configured"})
			c.Abort()
			return
		}

		apiKey := c.GetHeader("X-Admin-API-Key")
		if apiKey == "" {
			apiKey = c.GetHeader("Authorization")
			if len(apiKey) > 7 && apiKey[:7] == "Bearer " {
				apiKey = apiKey[7:]
			}
		}

		if apiKey != h.adminAPIKey {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing API key"})
			c.Abort()
			return
		}

		c.Next()
	}
}

func (h *AdminHandler) ListReports(c *gin.Context) {
	ctx := c.Request.Context()

	var filter store.ReportFilter

	if raw := c.Query("category"); raw != "" {
		category, err := model.ParseCategory(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
			return
		}
		filter.Category = &category
	}
	if raw := c.Query("replied"); raw != "" {
		replied, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid replied filter"})
			return
		}
		filter.Replied = &replied
	}
	if raw := c.Query("reporter_id"); raw != "" {
		reporterID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reporter_id"})
			return
		}
		filter.ReporterID = &reporterID
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		filter.Limit = int32(limit)
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
			return
		}
		filter.Offset = int32(offset)
	}

	reports, err := h.reports.List(ctx, filter)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list reports", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reports"})
		return
	}

	resp := dto.ListReportsResponse{Reports: make([]dto.ReportResponse, 0, len(reports))}
	for i := range reports {
		resp.Reports = append(resp.Reports, dto.ToReportResponse(&reports[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) GetReport(c *gin.Context) {
	ctx := c.Request.Context()

	reportID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}

	report, err := h.reports.Get(ctx, reportID)
	if err != nil {
		if errors.Is(err, service.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to get report", "error", err, "report_id", reportID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get report"})
		return
	}

	c.JSON(http.StatusOK, dto.ToReportResponse(report))
}

func (h *AdminHandler) GetConfig(c *gin.Context) {
	ctx := c.Request.Context()

	cfg, err := h.configs.GetActive(ctx)
	if err != nil {
		if errors.Is(err, service.ErrConfigMissing) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no enabled configuration"})
			return
		}
		slog.ErrorContext(ctx, "failed to get config", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get config"})
		return
	}

	c.JSON(http.StatusOK, dto.ConfigResponse{ID: cfg.ID, ChannelID: cfg.ChannelID, Enabled: cfg.Enabled})
}

func (h *AdminHandler) SetConfig(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SetConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: channel_id and enabled are required"})
		return
	}

	cfg, err := h.configs.Set(ctx, req.ChannelID, *req.Enabled)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.ErrorContext(ctx, "failed to set config", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set config"})
		return
	}

	slog.InfoContext(ctx, "routing config updated via admin API", "channel_id", cfg.ChannelID, "enabled", cfg.Enabled)
	c.JSON(http.StatusOK, dto.ConfigResponse{ID: cfg.ID, ChannelID: cfg.ChannelID, Enabled: cfg.Enabled})
}
