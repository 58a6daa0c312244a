package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

func TestValidateImageAcceptsMatchingSignature(t *testing.T) {
	assert.NoError(t, ValidateImage(pngHeader, "image/png", MaxThumbnailSize))
	assert.NoError(t, ValidateImage([]byte{0xff, 0xd8, 0xff, 0xe0}, "image/jpeg", MaxThumbnailSize))
	assert.NoError(t, ValidateImage([]byte("<svg xmlns='http://www.w3.org/2000/svg'/>"), "image/svg+xml", MaxIconSize))
}

func TestValidateImageRejectsMismatchedSignature(t *testing.T) {
	// PNG bytes declared as JPEG must not pass
	err := ValidateImage(pngHeader, "image/jpeg", MaxThumbnailSize)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestValidateImageRejectsDisallowedType(t *testing.T) {
	err := ValidateImage([]byte("%PDF-1.4"), "application/pdf", MaxThumbnailSize)
	require.Error(t, err)
}

func TestValidateImageRejectsOversize(t *testing.T) {
	big := make([]byte, 2048)
	copy(big, pngHeader)
	err := ValidateImage(big, "image/png", 1024)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestValidateImageRejectsEmpty(t *testing.T) {
	require.Error(t, ValidateImage(nil, "image/png", MaxThumbnailSize))
}

func TestSanitizeSVGStripsActiveContent(t *testing.T) {
	in := []byte(`<svg onload="evil()"><script>alert(1)</script><a href="javascript:run()">x</a></svg>`)
	out := string(SanitizeSVG(in))
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "onload")
	assert.NotContains(t, out, "javascript:")
}

func TestSafeFilenameShape(t *testing.T) {
	name := SafeFilename(42, "photo.PNG")
	assert.True(t, strings.HasPrefix(name, "42-"))
	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.NotContains(t, name, "/")
	assert.NotContains(t, name, "..")
}

func TestSafeFilenameDropsTraversalExtension(t *testing.T) {
	name := SafeFilename(7, "../../etc/passwd")
	assert.NotContains(t, name, "/")
	assert.NotContains(t, name, "..")
}

func TestSafeFilenameUnique(t *testing.T) {
	a := SafeFilename(1, "a.png")
	b := SafeFilename(1, "a.png")
	assert.NotEqual(t, a, b)
}
