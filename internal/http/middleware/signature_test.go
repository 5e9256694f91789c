package middleware_test

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"reportdesk.app/reportdesk/internal/http/middleware"
)

var _ = Describe("VerifyInteractionSignature", func() {
	var (
		publicKey  ed25519.PublicKey
		privateKey ed25519.PrivateKey
		router     *gin.Engine
	)

	BeforeEach(func() {
		var err error
		publicKey, privateKey, err = ed25519.GenerateKey(rand.Reader)
		Expect(err).NotTo(HaveOccurred())

		verify, err := middleware.VerifyInteractionSignature(hex.EncodeToString(publicKey))
		Expect(err).NotTo(HaveOccurred())

		gin.SetMode(gin.TestMode)
		router = gin.New()
		router.POST("/interactions", verify, func(c *gin.Context) {
			body, readErr := io.ReadAll(c.Request.Body)
			Expect(readErr).NotTo(HaveOccurred())
			c.String(http.StatusOK, string(body))
		})
	})

	sign := func(timestamp, body string) string {
		return hex.EncodeToString(ed25519.Sign(privateKey, []byte(timestamp+body)))
	}

	post := func(body, signature, timestamp string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewBufferString(body))
		if signature != "" {
			req.Header.Set("X-Signature-Ed25519", signature)
		}
		if timestamp != "" {
			req.Header.Set("X-Signature-Timestamp", timestamp)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("passes a correctly signed request through with its body intact", func() {
		body := `{"type":1}`
		timestamp := "1700000000"

		w := post(body, sign(timestamp, body), timestamp)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(Equal(body))
	})

	It("rejects a request without signature headers", func() {
		w := post(`{"type":1}`, "", "")
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("rejects a signature over a different body", func() {
		timestamp := "1700000000"
		w := post(`{"type":2}`, sign(timestamp, `{"type":1}`), timestamp)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("rejects a signature over a different timestamp", func() {
		body := `{"type":1}`
		w := post(body, sign("1700000000", body), "1700000001")
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("rejects a malformed signature", func() {
		w := post(`{"type":1}`, "zz-not-hex", "1700000000")
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("rejects a public key of the wrong length", func() {
		_, err := middleware.VerifyInteractionSignature("abcd")
		Expect(err).To(HaveOccurred())
	})

	It("rejects a non-hex public key", func() {
		_, err := middleware.VerifyInteractionSignature("not hex at all")
		Expect(err).To(HaveOccurred())
	})
})
