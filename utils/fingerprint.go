package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Fingerprint hashes "ip:userAgent" into a fixed-length hex digest so visitors
// can be recognized across requests without persisting any PII.
func Fingerprint(ip, userAgent string) string {
	sum := sha256.Sum256([]byte(ip + ":" + userAgent))
	return hex.EncodeToString(sum[:])
}

// VisitorFingerprint derives the anonymous visitor identity for a request.
func VisitorFingerprint(ctx *gin.Context) string {
	ua := ctx.GetHeader("User-Agent")
	if ua == "" {
		ua = "unknown"
	}
	return Fingerprint(visitorAddr(ctx), ua)
}

// visitorAddr resolves the originating address: first forwarded-for hop, then
// the real-ip header, then the raw socket address.
func visitorAddr(ctx *gin.Context) string {
	if fwd := ctx.GetHeader("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	if rip := ctx.GetHeader("X-Real-IP"); rip != "" {
		return rip
	}
	if addr := ctx.Request.RemoteAddr; addr != "" {
		return addr
	}
	return "unknown"
}

// NewSessionID mints a globally unique session identifier for a recorded view.
func NewSessionID() string {
	return uuid.NewString()
}
