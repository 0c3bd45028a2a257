package services

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"testing"

	"newsdesk/editor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestImageExtIgnoresContentTypeCase(t *testing.T) {
	assert.Equal(t, "png", imageExt("image/png"))
	assert.Equal(t, "png", imageExt("IMAGE/PNG"))
	assert.Equal(t, "jpg", imageExt("Image/Jpeg"))
	assert.Equal(t, "webp", imageExt("image/webp"))
	assert.Equal(t, "", imageExt("image/bmp"))
}

func TestUploadImageRejectsBeforeStorage(t *testing.T) {
	// S3-Client bleibt nil: abgelehnte Bilder erreichen den Speicher nie.
	u := NewUploadService(nil, nil, zap.NewNop())

	_, err := u.UploadImage(context.Background(), "image/bmp", 100, strings.NewReader("x"))
	assert.ErrorIs(t, err, editor.ErrInvalidImageFormat)

	_, err = u.UploadImage(context.Background(), "image/png", editor.MaxImageSize+1, strings.NewReader("x"))
	assert.ErrorIs(t, err, editor.ErrImageTooLarge)
}

func TestImageDimensionsFromHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 3, 2))))

	w, h := imageDimensions(buf.Bytes())
	assert.Equal(t, 3, w)
	assert.Equal(t, 2, h)

	w, h = imageDimensions([]byte("kein bild"))
	assert.Equal(t, 0, w)
	assert.Equal(t, 0, h)
}
