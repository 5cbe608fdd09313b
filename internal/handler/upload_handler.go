package handler

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
)

const maxUploadBytes = 10 << 20

var uploadExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// UploadImage stores an image from the "image" form field under a date and UUID name
// and reports its public URL and pixel size.
func (a *API) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes+1<<20)

	file, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "image file is required")
		return
	}
	if file.Size > maxUploadBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "image is larger than 10 MB")
		return
	}

	src, err := file.Open()
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "failed to read upload")
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "failed to read upload")
		return
	}

	contentType := http.DetectContentType(data)
	ext, ok := uploadExtensions[contentType]
	if !ok {
		respondError(c, http.StatusBadRequest, "only JPEG, PNG, GIF and WebP images are allowed")
		return
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		respondError(c, http.StatusBadRequest, "image could not be decoded")
		return
	}

	if err := os.MkdirAll(a.uploadDir, 0o755); err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "failed to create upload directory")
		return
	}

	name := fmt.Sprintf("%s-%s%s", a.now().Format("20060102"), uuid.New().String(), ext)
	if err := os.WriteFile(filepath.Join(a.uploadDir, name), data, 0o644); err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "failed to save upload")
		return
	}

	url := strings.TrimRight(a.uploadURL, "/") + "/" + name
	a.log.Info("image uploaded", zap.String("url", url), zap.Int("width", cfg.Width), zap.Int("height", cfg.Height))
	c.JSON(http.StatusCreated, gin.H{
		"url":         url,
		"width":       cfg.Width,
		"height":      cfg.Height,
		"contentType": contentType,
	})
}
