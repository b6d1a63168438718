package settings

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hrplatform/leave-management/internal"
)

// Repository persists the key/value pairs.
type Repository interface {
	GetAll(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
}

// allowed branding upload extensions mapped to their content types
var allowedExtensions = map[string]string{
	".png": "image/png",
	".jpg": "image/jpeg",
	".ico": "image/x-icon",
	".svg": "image/svg+xml",
}

type Service struct {
	repo    Repository
	uploads internal.UploadsConfig
	logger  *slog.Logger
}

func NewService(repo Repository, uploads internal.UploadsConfig, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		uploads: uploads,
		logger:  logger.With("component", "settings_service"),
	}
}

func (s *Service) GetAll(ctx context.Context) (map[string]string, error) {
	return s.repo.GetAll(ctx)
}

// Update writes the provided pairs. Any unknown key rejects the whole
// request before anything is written.
func (s *Service) Update(ctx context.Context, values map[string]string) error {
	for key := range values {
		if !IsKnownKey(key) {
			return fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
	}

	for key, value := range values {
		if err := s.repo.Set(ctx, key, value); err != nil {
			return fmt.Errorf("save setting %s: %w", key, err)
		}
	}
	return nil
}

// SaveAsset stores an uploaded branding file under the uploads directory
// and records its public path under settingKey. Returns the public path.
func (s *Service) SaveAsset(ctx context.Context, settingKey, filename string, size int64, content io.Reader) (string, error) {
	if settingKey != KeyLogoPath && settingKey != KeyFaviconPath {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, settingKey)
	}
	if size > s.uploads.MaxSizeBytes {
		return "", ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", ErrUnsupportedType
	}

	if err := os.MkdirAll(s.uploads.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}

	// logo_path -> logo-<ts>.png; stale assets are left for manual cleanup
	base := strings.TrimSuffix(settingKey, "_path")
	stored := fmt.Sprintf("%s-%d%s", base, time.Now().Unix(), ext)
	target := filepath.Join(s.uploads.Dir, stored)

	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, io.LimitReader(content, s.uploads.MaxSizeBytes+1)); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}

	publicPath := "/uploads/" + stored
	if err := s.repo.Set(ctx, settingKey, publicPath); err != nil {
		return "", fmt.Errorf("record asset path: %w", err)
	}

	s.logger.Info("branding asset uploaded", "key", settingKey, "path", publicPath)
	return publicPath, nil
}
