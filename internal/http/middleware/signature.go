package middleware

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// VerifyInteractionSignature authenticates interaction webhooks: the platform
// signs timestamp+body with ed25519 and sends the signature in headers.
// Requests that fail verification are rejected before any handler runs.
func VerifyInteractionSignature(publicKeyHex string) (gin.HandlerFunc, error) {
	keyBytes, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return nil, fmt.Errorf("decoding interaction public key: %w", err)
	}
	if len(keyBytes) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("interaction public key must be %d bytes, got %d", ed25519.PublicKeySize, len(keyBytes))
	}
	publicKey := ed25519.PublicKey(keyBytes)

	return func(c *gin.Context) {
		signature := c.GetHeader("X-Signature-Ed25519")
		timestamp := c.GetHeader("X-Signature-Timestamp")
		if signature == "" || timestamp == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing signature headers"})
			return
		}

		sigBytes, err := hex.DecodeString(signature)
		if err != nil || len(sigBytes) != ed25519.SignatureSize {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "malformed signature"})
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "reading request body"})
			return
		}
		// Handlers still need the body after we consumed it here.
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		signed := make([]byte, 0, len(timestamp)+len(body))
		signed = append(signed, timestamp...)
		signed = append(signed, body...)

		if !ed25519.Verify(publicKey, signed, sigBytes) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid request signature"})
			return
		}

		c.Next()
	}, nil
}
