package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"reportdesk.app/reportdesk/internal/http/dto"
	"reportdesk.app/reportdesk/internal/http/handler"
	"reportdesk.app/reportdesk/internal/model"
	"reportdesk.app/reportdesk/internal/service"
)

var _ = Describe("InteractionHandler", func() {
	var (
		router *gin.Engine
		svc    *mockReportService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc = &mockReportService{}
		h := handler.NewInteractionHandler(svc)
		router.POST("/interactions", h.Handle)
	})

	post := func(payload any) *httptest.ResponseRecorder {
		body, err := json.Marshal(payload)
		Expect(err).NotTo(HaveOccurred())

		req := httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	decode := func(w *httptest.ResponseRecorder) map[string]any {
		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		return resp
	}

	content := func(resp map[string]any) string {
		data, _ := resp["data"].(map[string]any)
		c, _ := data["content"].(string)
		return c
	}

	member := func(permissions string) map[string]any {
		return map[string]any{
			"user":        map[string]any{"id": "42", "username": "reporter"},
			"permissions": permissions,
		}
	}

	It("answers a ping with a pong", func() {
		w := post(map[string]any{"id": "i1", "type": 1})

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(decode(w)["type"]).To(BeEquivalentTo(dto.ResponseTypePong))
	})

	It("rejects a malformed payload", func() {
		req := httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewBufferString(`{`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	Describe("report command", func() {
		submission := func() map[string]any {
			return map[string]any{
				"id":     "i1",
				"type":   2,
				"member": member("0"),
				"data": map[string]any{
					"name": "report",
					"options": []map[string]any{
						{"name": "report_type", "value": "bug"},
						{"name": "content", "value": "something is broken"},
					},
				},
			}
		}

		It("submits and confirms ephemerally with the report ID", func() {
			var captured service.SubmitParams
			svc.submitFn = func(_ context.Context, params service.SubmitParams) (*service.SubmitResult, error) {
				captured = params
				return &service.SubmitResult{Report: &model.Report{ID: 100}, Delivered: true}, nil
			}

			w := post(submission())

			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decode(w)
			Expect(resp["type"]).To(BeEquivalentTo(dto.ResponseTypeMessage))
			data := resp["data"].(map[string]any)
			Expect(data["flags"]).To(BeEquivalentTo(dto.FlagEphemeral))
			Expect(content(resp)).To(ContainSubstring("✅ Report submitted successfully! Your report ID is 100"))

			Expect(captured.ReporterID).To(Equal(int64(42)))
			Expect(captured.ReporterName).To(Equal("reporter"))
			Expect(captured.Category).To(Equal("bug"))
			Expect(captured.Content).To(Equal("something is broken"))
		})

		It("resolves an attachment option", func() {
			var captured service.SubmitParams
			svc.submitFn = func(_ context.Context, params service.SubmitParams) (*service.SubmitResult, error) {
				captured = params
				return &service.SubmitResult{Report: &model.Report{ID: 100}, Delivered: true}, nil
			}

			payload := submission()
			data := payload["data"].(map[string]any)
			data["options"] = append(data["options"].([]map[string]any), map[string]any{"name": "attachment", "value": "att1"})
			data["resolved"] = map[string]any{
				"attachments": map[string]any{
					"att1": map[string]any{
						"id":           "att1",
						"filename":     "proof.png",
						"content_type": "image/png",
						"size":         1234,
						"url":          "https://user.example/proof.png",
					},
				},
			}

			post(payload)

			Expect(captured.Attachment).NotTo(BeNil())
			Expect(captured.Attachment.Filename).To(Equal("proof.png"))
			Expect(captured.Attachment.URL).To(Equal("https://user.example/proof.png"))
		})

		It("tells the user when the system is not configured", func() {
			svc.submitFn = func(_ context.Context, _ service.SubmitParams) (*service.SubmitResult, error) {
				return &service.SubmitResult{Report: &model.Report{ID: 100}, DeliveryErr: service.ErrConfigMissing}, nil
			}

			resp := decode(post(submission()))
			Expect(content(resp)).To(ContainSubstring("❌ Report system is not configured"))
		})

		It("tells the user when the card could not be delivered", func() {
			svc.submitFn = func(_ context.Context, _ service.SubmitParams) (*service.SubmitResult, error) {
				return &service.SubmitResult{Report: &model.Report{ID: 100}, DeliveryErr: errors.New("channel gone")}, nil
			}

			resp := decode(post(submission()))
			Expect(content(resp)).To(ContainSubstring("Report 100 was recorded, but could not be delivered"))
		})

		It("surfaces validation failures", func() {
			svc.submitFn = func(_ context.Context, _ service.SubmitParams) (*service.SubmitResult, error) {
				return nil, service.ErrInvalidInput
			}

			resp := decode(post(submission()))
			Expect(content(resp)).To(HavePrefix("❌"))
		})

		It("rejects an unknown command", func() {
			payload := submission()
			payload["data"].(map[string]any)["name"] = "ban"

			w := post(payload)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(svc.submitCalls).To(BeZero())
		})
	})

	Describe("reply button", func() {
		buttonPress := func(permissions string) map[string]any {
			return map[string]any{
				"id":     "i2",
				"type":   3,
				"member": member(permissions),
				"data":   map[string]any{"custom_id": "report_reply:100"},
			}
		}

		It("refuses non-administrators before opening the form", func() {
			resp := decode(post(buttonPress("0")))
			Expect(content(resp)).To(Equal("❌ Only administrators can use this feature."))
		})

		It("opens the reply form for administrators", func() {
			w := post(buttonPress("8"))

			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decode(w)
			Expect(resp["type"]).To(BeEquivalentTo(dto.ResponseTypeModal))
			data := resp["data"].(map[string]any)
			Expect(data["custom_id"]).To(Equal("report_reply_modal:100"))
			Expect(data["title"]).To(Equal("Reply to Report"))
		})

		It("rejects a malformed component id", func() {
			payload := buttonPress("8")
			payload["data"].(map[string]any)["custom_id"] = "report_reply:abc"

			w := post(payload)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("reply form submission", func() {
		modalSubmit := func(permissions string) map[string]any {
			return map[string]any{
				"id":     "i3",
				"type":   5,
				"member": member(permissions),
				"data": map[string]any{
					"custom_id": "report_reply_modal:100",
					"components": []map[string]any{{
						"type": 1,
						"components": []map[string]any{{
							"type":      4,
							"custom_id": "reply_content",
							"value":     "fixed, thanks",
						}},
					}},
				},
			}
		}

		It("refuses non-administrators", func() {
			resp := decode(post(modalSubmit("0")))
			Expect(content(resp)).To(Equal("❌ Only administrators can use this feature."))
			Expect(svc.replyCalls).To(BeZero())
		})

		It("replies and confirms ephemerally", func() {
			var captured service.ReplyParams
			svc.replyFn = func(_ context.Context, params service.ReplyParams) (*service.ReplyResult, error) {
				captured = params
				return &service.ReplyResult{Report: &model.Report{ID: 100, Replied: true}, Notified: true}, nil
			}

			resp := decode(post(modalSubmit("8")))

			Expect(content(resp)).To(Equal("✅ Reply sent successfully."))
			Expect(captured.ReportID).To(Equal(int64(100)))
			Expect(captured.AdminID).To(Equal(int64(42)))
			Expect(captured.Content).To(Equal("fixed, thanks"))
		})

		It("reports an unknown report", func() {
			svc.replyFn = func(_ context.Context, _ service.ReplyParams) (*service.ReplyResult, error) {
				return nil, service.ErrReportNotFound
			}

			resp := decode(post(modalSubmit("8")))
			Expect(content(resp)).To(Equal("❌ Report ID 100 not found."))
		})

		It("reports a duplicate reply", func() {
			svc.replyFn = func(_ context.Context, _ service.ReplyParams) (*service.ReplyResult, error) {
				return nil, service.ErrAlreadyReplied
			}

			resp := decode(post(modalSubmit("8")))
			Expect(content(resp)).To(Equal("❌ Report ID 100 has already been replied to."))
		})

		It("warns when the reply saved but the notification failed", func() {
			svc.replyFn = func(_ context.Context, _ service.ReplyParams) (*service.ReplyResult, error) {
				return &service.ReplyResult{
					Report:    &model.Report{ID: 100, Replied: true},
					NotifyErr: errors.New("channel gone"),
				}, nil
			}

			resp := decode(post(modalSubmit("8")))
			Expect(content(resp)).To(ContainSubstring("⚠️ Reply saved, but the notification could not be posted"))
		})
	})
})
