package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stockroom/internal/models"
)

// LocalStorage writes uploads to a directory on the server.
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStorage{dir: dir}, nil
}

func (s *LocalStorage) Save(ctx context.Context, up Upload) (*models.FileInfo, error) {
	// Timestamp prefix keeps names unique without a lookup.
	stamp := time.Now().UTC().Format("2006-01-02T15-04-05.000Z")
	name := stamp + "-" + sanitizeName(up.Name)
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if _, err := io.Copy(f, up.Body); err != nil {
		os.Remove(path)
		return nil, err
	}

	return &models.FileInfo{
		FileName: up.Name,
		FilePath: path,
		FileType: up.MIME,
		FileSize: FormatSize(up.Size, 2),
	}, nil
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '-'
		}
		return r
	}, name)
}
