package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(headers map[string]string, remoteAddr string) *gin.Context {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest("POST", "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	ctx.Request = req
	return ctx
}

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint("1.2.3.4", "UA-A")
	b := Fingerprint("1.2.3.4", "UA-A")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestFingerprintDiverges(t *testing.T) {
	base := Fingerprint("1.2.3.4", "UA-A")
	assert.NotEqual(t, base, Fingerprint("1.2.3.5", "UA-A"))
	assert.NotEqual(t, base, Fingerprint("1.2.3.4", "UA-B"))
}

func TestVisitorFingerprintHeaderPrecedence(t *testing.T) {
	forwarded := testContext(map[string]string{
		"X-Forwarded-For": "9.9.9.9, 10.0.0.1",
		"X-Real-IP":       "8.8.8.8",
		"User-Agent":      "UA-A",
	}, "7.7.7.7:1234")
	assert.Equal(t, Fingerprint("9.9.9.9", "UA-A"), VisitorFingerprint(forwarded))

	realIP := testContext(map[string]string{
		"X-Real-IP":  "8.8.8.8",
		"User-Agent": "UA-A",
	}, "7.7.7.7:1234")
	assert.Equal(t, Fingerprint("8.8.8.8", "UA-A"), VisitorFingerprint(realIP))

	socketOnly := testContext(map[string]string{"User-Agent": "UA-A"}, "7.7.7.7:1234")
	assert.Equal(t, Fingerprint("7.7.7.7:1234", "UA-A"), VisitorFingerprint(socketOnly))
}

func TestVisitorFingerprintDefaultsMissingUserAgent(t *testing.T) {
	ctx := testContext(map[string]string{"X-Real-IP": "8.8.8.8"}, "7.7.7.7:1234")
	ctx.Request.Header.Del("User-Agent")
	assert.Equal(t, Fingerprint("8.8.8.8", "unknown"), VisitorFingerprint(ctx))
}

func TestNewSessionIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewSessionID()
		require.NotEmpty(t, id)
		require.False(t, seen[id], "session id repeated")
		seen[id] = true
	}
}
