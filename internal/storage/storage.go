package storage

import (
	"context"
	"fmt"
	"io"

	"stockroom/internal/models"
)

// Upload is one inbound file: raw bytes plus the declared metadata.
type Upload struct {
	Name string
	MIME string
	Size int64
	Body io.Reader
}

// Storage turns an upload into a durable reference (local path or URL).
type Storage interface {
	Save(ctx context.Context, up Upload) (*models.FileInfo, error)
}

// AllowedImage reports whether the declared MIME type is accepted. Anything
// else is silently dropped by the caller: no file attached, not an error.
func AllowedImage(mime string) bool {
	switch mime {
	case "image/png", "image/jpg", "image/jpeg":
		return true
	}
	return false
}

// FormatSize renders a byte count for humans: "2.35 MB".
func FormatSize(bytes int64, decimals int) string {
	if bytes == 0 {
		return "0 Bytes"
	}
	if decimals < 0 {
		decimals = 0
	}
	units := []string{"Bytes", "KB", "MB", "GB", "TB"}
	size := float64(bytes)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	return fmt.Sprintf("%.*f %s", decimals, size, units[i])
}
