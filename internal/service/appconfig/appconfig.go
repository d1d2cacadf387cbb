package appconfig

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jgivc/cfgpanel/internal/common"
	"github.com/jgivc/cfgpanel/internal/entity"
)

const (
	serviceName = "appconfig"
)

type CopyPathRepository interface {
	Get() *entity.AppConfig
	Set(filename, path string) error
}

type appConfigService struct {
	repo CopyPathRepository
	log  *slog.Logger
}

func NewAppConfigService(repo CopyPathRepository, log *slog.Logger) *appConfigService {
	return &appConfigService{
		repo: repo,
		log:  log.With(slog.String("service", serviceName)),
	}
}

func (s *appConfigService) Get(ctx context.Context) *entity.AppConfig {
	return s.repo.Get()
}

func (s *appConfigService) SetCopyPath(ctx context.Context, filename, copyPath string) error {
	if strings.TrimSpace(filename) == "" || strings.TrimSpace(copyPath) == "" {
		return fmt.Errorf("filename and copy path are required: %w", common.ErrEmptyField)
	}

	if err := s.repo.Set(filename, copyPath); err != nil {
		s.log.ErrorContext(ctx, "Cannot save copy path", slog.String("filename", filename), slog.Any("error", err))

		return fmt.Errorf("cannot save copy path for %s: %w", filename, err)
	}

	return nil
}
