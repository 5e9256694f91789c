package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"reportdesk.app/reportdesk/internal/http/handler"
	"reportdesk.app/reportdesk/internal/model"
	"reportdesk.app/reportdesk/internal/service"
	"reportdesk.app/reportdesk/internal/store"
)

var _ = Describe("AdminHandler", func() {
	const apiKey = "test-admin-key"

	var (
		router  *gin.Engine
		reports *mockReportService
		configs *mockConfigService
	)

	setup := func(key string) {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		reports = &mockReportService{}
		configs = &mockConfigService{}
		h := handler.NewAdminHandler(reports, configs, key)

		group := router.Group("/admin")
		group.Use(h.RequireAdminAPIKey())
		group.GET("/reports", h.ListReports)
		group.GET("/reports/:id", h.GetReport)
		group.GET("/config", h.GetConfig)
		group.PUT("/config", h.SetConfig)
	}

	BeforeEach(func() {
		setup(apiKey)
	})

	request := func(method, path, key string, body []byte) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBuffer(body))
		if key != "" {
			req.Header.Set("X-Admin-API-Key", key)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	Describe("authentication", func() {
		It("rejects requests without a key", func() {
			w := request(http.MethodGet, "/admin/reports", "", nil)
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("rejects a wrong key", func() {
			w := request(http.MethodGet, "/admin/reports", "wrong", nil)
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("accepts the key as a bearer token", func() {
			req := httptest.NewRequest(http.MethodGet, "/admin/reports", nil)
			req.Header.Set("Authorization", "Bearer "+apiKey)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
		})

		It("refuses service when no key is configured", func() {
			setup("")
			w := request(http.MethodGet, "/admin/reports", apiKey, nil)
			Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
		})
	})

	Describe("GET /admin/reports", func() {
		It("returns reports with derived status", func() {
			reports.listFn = func(_ context.Context, _ store.ReportFilter) ([]model.Report, error) {
				return []model.Report{
					{ID: 1, Category: model.CategoryBug},
					{ID: 2, Category: model.CategoryOther, Replied: true},
				}, nil
			}

			w := request(http.MethodGet, "/admin/reports", apiKey, nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string][]map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["reports"]).To(HaveLen(2))
			Expect(resp["reports"][0]["status"]).To(Equal("Pending"))
			Expect(resp["reports"][1]["status"]).To(Equal("Replied"))
		})

		It("parses the query filters", func() {
			var captured store.ReportFilter
			reports.listFn = func(_ context.Context, filter store.ReportFilter) ([]model.Report, error) {
				captured = filter
				return nil, nil
			}

			w := request(http.MethodGet, "/admin/reports?category=bug&replied=false&reporter_id=42&limit=5&offset=10", apiKey, nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(captured.Category).NotTo(BeNil())
			Expect(*captured.Category).To(Equal(model.CategoryBug))
			Expect(captured.Replied).NotTo(BeNil())
			Expect(*captured.Replied).To(BeFalse())
			Expect(captured.ReporterID).NotTo(BeNil())
			Expect(*captured.ReporterID).To(Equal(int64(42)))
			Expect(captured.Limit).To(Equal(int32(5)))
			Expect(captured.Offset).To(Equal(int32(10)))
		})

		It("rejects an invalid category filter", func() {
			w := request(http.MethodGet, "/admin/reports?category=spam", apiKey, nil)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /admin/reports/:id", func() {
		It("returns the report", func() {
			reports.getFn = func(_ context.Context, reportID int64) (*model.Report, error) {
				return &model.Report{ID: reportID, Category: model.CategoryBug}, nil
			}

			w := request(http.MethodGet, "/admin/reports/100", apiKey, nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["id"]).To(BeEquivalentTo(100))
		})

		It("returns 404 for an unknown report", func() {
			reports.getFn = func(_ context.Context, _ int64) (*model.Report, error) {
				return nil, service.ErrReportNotFound
			}

			w := request(http.MethodGet, "/admin/reports/100", apiKey, nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("rejects a non-numeric id", func() {
			w := request(http.MethodGet, "/admin/reports/abc", apiKey, nil)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /admin/config", func() {
		It("returns the active configuration", func() {
			configs.getActiveFn = func(_ context.Context) (*model.ReportConfig, error) {
				return &model.ReportConfig{ID: 7, ChannelID: 555, Enabled: true}, nil
			}

			w := request(http.MethodGet, "/admin/config", apiKey, nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["channel_id"]).To(BeEquivalentTo(555))
			Expect(resp["enabled"]).To(BeTrue())
		})

		It("returns 404 when nothing is enabled", func() {
			w := request(http.MethodGet, "/admin/config", apiKey, nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("PUT /admin/config", func() {
		It("updates the routing target", func() {
			var gotChannel int64
			var gotEnabled bool
			configs.setFn = func(_ context.Context, channelID int64, enabled bool) (*model.ReportConfig, error) {
				gotChannel = channelID
				gotEnabled = enabled
				return &model.ReportConfig{ID: 7, ChannelID: channelID, Enabled: enabled}, nil
			}

			body, _ := json.Marshal(map[string]any{"channel_id": 555, "enabled": true})
			w := request(http.MethodPut, "/admin/config", apiKey, body)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(gotChannel).To(Equal(int64(555)))
			Expect(gotEnabled).To(BeTrue())
		})

		It("requires both channel_id and enabled", func() {
			body, _ := json.Marshal(map[string]any{"channel_id": 555})
			w := request(http.MethodPut, "/admin/config", apiKey, body)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
