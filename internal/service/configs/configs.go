package configs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jgivc/cfgpanel/internal/common"
	"github.com/jgivc/cfgpanel/internal/entity"
)

const (
	serviceName = "configs"
)

type ConfigStore interface {
	List() ([]string, error)
	Exists(filename string) bool
	Read(filename string) (*entity.ConfigFile, error)
	Update(filename string, links []entity.Link) error
	Create(filename string, links []entity.Link) (string, error)
	Delete(filename string) error
	Copy(filename, targetPath string) (string, error)
}

type CopyPathRepository interface {
	Lookup(filename string) (string, bool)
}

type configService struct {
	store ConfigStore
	paths CopyPathRepository
	log   *slog.Logger
}

func NewConfigService(store ConfigStore, paths CopyPathRepository, log *slog.Logger) *configService {
	return &configService{
		store: store,
		paths: paths,
		log:   log.With(slog.String("service", serviceName)),
	}
}

func (s *configService) List(ctx context.Context) ([]string, error) {
	files, err := s.store.List()
	if err != nil {
		s.log.ErrorContext(ctx, "Cannot list config files", slog.Any("error", err))

		return nil, fmt.Errorf("cannot list config files: %w", err)
	}

	return files, nil
}

func (s *configService) Get(ctx context.Context, filename string) (*entity.ConfigFile, error) {
	file, err := s.store.Read(filename)
	if err != nil {
		s.log.ErrorContext(ctx, "Cannot read config file", slog.String("filename", filename), slog.Any("error", err))

		return nil, fmt.Errorf("cannot read config file %s: %w", filename, err)
	}

	return file, nil
}

func (s *configService) Update(ctx context.Context, filename string, links []entity.Link) error {
	if err := s.store.Update(filename, links); err != nil {
		s.log.ErrorContext(ctx, "Cannot update links", slog.String("filename", filename), slog.Any("error", err))

		return fmt.Errorf("cannot update config file %s: %w", filename, err)
	}

	return nil
}

func (s *configService) Create(ctx context.Context, filename string, links []entity.Link) (string, error) {
	name, err := s.store.Create(filename, links)
	if err != nil {
		s.log.ErrorContext(ctx, "Cannot create config file", slog.String("filename", filename), slog.Any("error", err))

		return "", fmt.Errorf("cannot create config file %s: %w", filename, err)
	}

	return name, nil
}

func (s *configService) Delete(ctx context.Context, filename string) error {
	if err := s.store.Delete(filename); err != nil {
		s.log.ErrorContext(ctx, "Cannot delete config file", slog.String("filename", filename), slog.Any("error", err))

		return fmt.Errorf("cannot delete config file %s: %w", filename, err)
	}

	return nil
}

// Copy uses copyPath when it is not blank, the registered copy path otherwise.
func (s *configService) Copy(ctx context.Context, filename, copyPath string) (string, error) {
	log := s.log.With(slog.String("filename", filename))

	if !s.store.Exists(filename) {
		log.ErrorContext(ctx, "Cannot find source file")

		return "", fmt.Errorf("cannot copy config file %s: %w", filename, common.ErrConfigNotFound)
	}

	target := copyPath
	if strings.TrimSpace(target) == "" {
		path, ok := s.paths.Lookup(filename)
		if !ok {
			log.ErrorContext(ctx, "Copy path is not set")

			return "", fmt.Errorf("cannot copy config file %s: %w", filename, common.ErrCopyPathNotSet)
		}

		target = path
	}

	targetPath, err := s.store.Copy(filename, target)
	if err != nil {
		log.ErrorContext(ctx, "Cannot copy config file", slog.String("target", target), slog.Any("error", err))

		return "", fmt.Errorf("cannot copy config file %s: %w", filename, err)
	}

	return targetPath, nil
}
