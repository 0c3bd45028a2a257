package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"newsdesk/config"
	"newsdesk/editor"
	"newsdesk/storage"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// extByType ordnet erlaubten MIME-Typen ihre Dateiendung zu.
var extByType = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// imageExt liefert die Dateiendung zum MIME-Typ. Die Positivliste der
// Validierung vergleicht kleingeschrieben; hier gilt dieselbe Normalform.
func imageExt(contentType string) string {
	return extByType[strings.ToLower(contentType)]
}

// UploadService nimmt Artikelbilder entgegen und legt sie im Medienspeicher ab.
type UploadService struct {
	Config   *config.Config
	S3Client *s3.Client
	Logger   *zap.Logger
}

// NewUploadService erstellt einen neuen UploadService.
func NewUploadService(cfg *config.Config, s3Client *s3.Client, logger *zap.Logger) *UploadService {
	return &UploadService{Config: cfg, S3Client: s3Client, Logger: logger}
}

// UploadImage validiert das Bild (Positivliste, Größenlimit) und legt es
// unter einem frischen Schlüssel im Medienspeicher ab. Der Schlüssel kommt
// als opakes public_id zurück; Breite und Höhe werden aus dem Bildkopf
// gelesen, soweit das Format es hergibt.
func (u *UploadService) UploadImage(ctx context.Context, contentType string, size int64, data io.Reader) (editor.UploadedImage, error) {
	if err := editor.ValidateImage(contentType, size); err != nil {
		return editor.UploadedImage{}, err
	}

	buf, err := io.ReadAll(io.LimitReader(data, editor.MaxImageSize+1))
	if err != nil {
		return editor.UploadedImage{}, fmt.Errorf("read image: %w", err)
	}
	if int64(len(buf)) > editor.MaxImageSize {
		return editor.UploadedImage{}, editor.ErrImageTooLarge
	}

	ext := imageExt(contentType)
	width, height := imageDimensions(buf)

	key := fmt.Sprintf("articles/%s.%s", uuid.New().String(), ext)
	url, err := storage.PutImage(ctx, u.S3Client, u.Config, key, contentType, bytes.NewReader(buf))
	if err != nil {
		u.Logger.Error("Bild-Upload in den Medienspeicher fehlgeschlagen", zap.String("key", key), zap.Error(err))
		return editor.UploadedImage{}, fmt.Errorf("failed to store image: %w", err)
	}

	u.Logger.Info("Bild hochgeladen", zap.String("key", key), zap.Int("bytes", len(buf)))
	return editor.UploadedImage{
		URL:      url,
		PublicID: key,
		Width:    width,
		Height:   height,
		Format:   ext,
	}, nil
}

// imageDimensions liest Breite und Höhe aus dem Bildkopf. Schlägt die
// Dekodierung fehl (etwa bei WebP, für das kein Decoder registriert ist),
// bleiben beide null; der Upload scheitert daran nicht.
func imageDimensions(buf []byte) (int, int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(buf))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
