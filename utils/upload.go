package utils

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Upload size caps per asset kind.
const (
	MaxThumbnailSize = 5 * 1024 * 1024
	MaxIconSize      = 1 * 1024 * 1024
)

var allowedImageTypes = map[string]bool{
	"image/jpeg":    true,
	"image/jpg":     true,
	"image/png":     true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
}

// Magic bytes for the binary image formats we accept.
var imageSignatures = map[string][][]byte{
	"image/jpeg": {{0xff, 0xd8, 0xff}},
	"image/jpg":  {{0xff, 0xd8, 0xff}},
	"image/png":  {{0x89, 0x50, 0x4e, 0x47}},
	"image/gif":  {{0x47, 0x49, 0x46, 0x38}},
	"image/webp": {{0x52, 0x49, 0x46, 0x46}}, // RIFF container
}

// ValidateImage checks an uploaded image against the size cap, the MIME
// allow-list, and the file's magic bytes so a renamed payload cannot pass as
// an image. Returns a client-presentable error message on rejection.
func ValidateImage(data []byte, declaredType string, maxSize int64) error {
	if len(data) == 0 {
		return fmt.Errorf("no file provided")
	}
	if int64(len(data)) > maxSize {
		return fmt.Errorf("file size exceeds %.1fMB limit", float64(maxSize)/(1024*1024))
	}
	if !allowedImageTypes[declaredType] {
		return fmt.Errorf("invalid file type %q", declaredType)
	}
	if !matchesSignature(data, declaredType) {
		return fmt.Errorf("file content does not match declared type")
	}
	return nil
}

func matchesSignature(data []byte, declaredType string) bool {
	// SVG is XML text; no binary signature to check.
	if declaredType == "image/svg+xml" {
		head := data
		if len(head) > 1000 {
			head = head[:1000]
		}
		return bytes.Contains(head, []byte("<svg")) || bytes.Contains(head, []byte("<?xml"))
	}
	for _, sig := range imageSignatures[declaredType] {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

var (
	svgScriptRe  = regexp.MustCompile(`(?is)<script\b.*?</script>`)
	svgHandlerRe = regexp.MustCompile(`(?i)on\w+\s*=\s*["'][^"']*["']`)
	svgJSProtoRe = regexp.MustCompile(`(?i)javascript:`)
)

// SanitizeSVG strips script tags, inline event handlers and javascript: URLs
// from SVG markup before it is stored and served back.
func SanitizeSVG(data []byte) []byte {
	out := svgScriptRe.ReplaceAll(data, nil)
	out = svgHandlerRe.ReplaceAll(out, nil)
	out = svgJSProtoRe.ReplaceAll(out, nil)
	return out
}

// SafeFilename generates a collision-free name that keeps only the original
// extension, defeating path traversal via attacker-controlled filenames.
func SafeFilename(userID uint, originalName string) string {
	buf := make([]byte, 6)
	_, _ = rand.Read(buf)

	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if strings.ContainsAny(ext, "/\\") || strings.Contains(ext, "..") {
		ext = ""
	}
	return fmt.Sprintf("%d-%d-%s%s", userID, time.Now().UnixMilli(), hex.EncodeToString(buf), ext)
}
