package yamlstore

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	_ "embed"

	"github.com/jgivc/cfgpanel/internal/adapter/yamladapter"
	"github.com/jgivc/cfgpanel/internal/common"
	"github.com/jgivc/cfgpanel/internal/config"
	"github.com/jgivc/cfgpanel/internal/entity"
	"github.com/spf13/afero"
)

const (
	ExtYML  = ".yml"
	ExtYAML = ".yaml"

	filePerm os.FileMode = 0644
	dirPerm  os.FileMode = 0755
)

var (
	//go:embed templates/config.yml.tmpl
	configTemplateContent string

	configTemplate = template.Must(template.New("config").Parse(configTemplateContent))
)

type templateData struct {
	Links        string
	DownloadPath string
}

type yamlStore struct {
	fs  afero.Fs
	dir string
	cfg *config.TemplateConfig
	log *slog.Logger
}

func NewYAMLStore(dir string, cfg *config.TemplateConfig, log *slog.Logger) *yamlStore {
	return NewYAMLStoreWithFS(afero.NewOsFs(), dir, cfg, log)
}

func NewYAMLStoreWithFS(fs afero.Fs, dir string, cfg *config.TemplateConfig, log *slog.Logger) *yamlStore {
	return &yamlStore{
		fs:  fs,
		dir: dir,
		cfg: cfg,
		log: log.With(slog.String("item", "YAMLStore")),
	}
}

func IsConfigFile(filename string) bool {
	ext := filepath.Ext(filename)

	return ext == ExtYML || ext == ExtYAML
}

// NormalizeFilename adds the .yml extension to a name without a yaml one.
func NormalizeFilename(filename string) string {
	if strings.HasSuffix(filename, ExtYML) || strings.HasSuffix(filename, ExtYAML) {
		return filename
	}

	return filename + ExtYML
}

func (s *yamlStore) List() ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read config dir %s: %w", s.dir, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsConfigFile(entry.Name()) {
			continue
		}

		files = append(files, entry.Name())
	}

	return files, nil
}

func (s *yamlStore) Exists(filename string) bool {
	path, err := s.path(filename)
	if err != nil {
		return false
	}

	return s.fileExists(path)
}

func (s *yamlStore) Read(filename string) (*entity.ConfigFile, error) {
	path, err := s.path(filename)
	if err != nil {
		return nil, err
	}

	content, err := s.readFile(path)
	if err != nil {
		return nil, err
	}

	hasLinks, err := yamladapter.HasLinkList(content)
	if err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", filename, err)
	}

	links := []entity.Link{}
	if hasLinks {
		links = yamladapter.ExtractLinks(content)
	}

	return &entity.ConfigFile{
		Filename:   filename,
		Links:      links,
		RawContent: content,
	}, nil
}

func (s *yamlStore) Update(filename string, links []entity.Link) error {
	path, err := s.path(filename)
	if err != nil {
		return err
	}

	if err := yamladapter.CheckLinks(links); err != nil {
		return err
	}

	content, err := s.readFile(path)
	if err != nil {
		return err
	}

	if err := afero.WriteFile(s.fs, path, []byte(yamladapter.PatchLinks(content, links)), filePerm); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}

	s.log.Info("Update links", slog.String("path", path), slog.Int("count", len(links)))

	return nil
}

func (s *yamlStore) Create(filename string, links []entity.Link) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", common.ErrInvalidFilename
	}

	filename = NormalizeFilename(filename)

	path, err := s.path(filename)
	if err != nil {
		return "", err
	}

	if s.fileExists(path) {
		return "", common.ErrConfigAlreadyExists
	}

	if err := yamladapter.CheckLinks(links); err != nil {
		return "", err
	}

	buf := bytes.Buffer{}
	if err := configTemplate.Execute(&buf, &templateData{
		Links:        yamladapter.FormatLinks(links),
		DownloadPath: s.cfg.DownloadPath,
	}); err != nil {
		return "", fmt.Errorf("cannot execute config template: %w", err)
	}

	if err := afero.WriteFile(s.fs, path, buf.Bytes(), filePerm); err != nil {
		return "", fmt.Errorf("cannot write %s: %w", path, err)
	}

	s.log.Info("Create config", slog.String("path", path), slog.Int("count", len(links)))

	return filename, nil
}

func (s *yamlStore) Delete(filename string) error {
	path, err := s.path(filename)
	if err != nil {
		return err
	}

	if entity.IsProtected(filename) {
		return common.ErrProtectedConfig
	}

	if !s.fileExists(path) {
		return common.ErrConfigNotFound
	}

	if err := s.fs.Remove(path); err != nil {
		return fmt.Errorf("cannot remove %s: %w", path, err)
	}

	s.log.Info("Delete config", slog.String("path", path))

	return nil
}

// Copy writes the config file to targetPath, creating missing parent dirs and overwriting an existing file.
func (s *yamlStore) Copy(filename, targetPath string) (string, error) {
	path, err := s.path(filename)
	if err != nil {
		return "", err
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", common.ErrConfigNotFound
		}

		return "", fmt.Errorf("cannot read %s: %w", path, err)
	}

	if err := s.fs.MkdirAll(filepath.Dir(targetPath), dirPerm); err != nil {
		return "", fmt.Errorf("cannot create target dir: %w", err)
	}

	if err := afero.WriteFile(s.fs, targetPath, data, filePerm); err != nil {
		return "", fmt.Errorf("cannot copy %s to %s: %w", path, targetPath, err)
	}

	s.log.Info("Copy config", slog.String("path", path), slog.String("target", targetPath))

	return targetPath, nil
}

func (s *yamlStore) path(filename string) (string, error) {
	if strings.TrimSpace(filename) == "" || filename == "." || filename == ".." || strings.ContainsAny(filename, `/\`) {
		return "", common.ErrInvalidFilename
	}

	return filepath.Join(s.dir, filename), nil
}

func (s *yamlStore) readFile(path string) (string, error) {
	content, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", common.ErrConfigNotFound
		}

		return "", fmt.Errorf("cannot read %s: %w", path, err)
	}

	return string(content), nil
}

func (s *yamlStore) fileExists(path string) bool {
	_, err := s.fs.Stat(path)

	return err == nil
}
