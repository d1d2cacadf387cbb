package copypath

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	_ "embed"

	"github.com/jgivc/cfgpanel/internal/entity"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spf13/afero"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	schemaName = "app-config.schema.json"
	filePerm   = 0644
	jsonIndent = "  "

	copyPathsKey = "copyPaths"
)

var (
	//go:embed schema/app-config.schema.json
	schemaContent []byte

	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
	printer        = message.NewPrinter(language.English)
)

type copyPathRepository struct {
	fs   afero.Fs
	path string
	log  *slog.Logger
}

func NewCopyPathRepository(path string, log *slog.Logger) *copyPathRepository {
	return NewCopyPathRepositoryWithFS(afero.NewOsFs(), path, log)
}

func NewCopyPathRepositoryWithFS(fs afero.Fs, path string, log *slog.Logger) *copyPathRepository {
	return &copyPathRepository{
		fs:   fs,
		path: path,
		log:  log.With(slog.String("item", "CopyPathRepository")),
	}
}

// Get never fails: a missing, unreadable, broken or invalid side-file reads as an empty registry.
func (r *copyPathRepository) Get() *entity.AppConfig {
	data, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			r.log.Warn("Cannot read side-file, use empty registry", slog.String("path", r.path), slog.Any("error", err))
		}

		return entity.NewAppConfig()
	}

	if err := validate(data); err != nil {
		r.log.Warn("Invalid side-file, use empty registry", slog.String("path", r.path), slog.Any("error", err))

		return entity.NewAppConfig()
	}

	cfg := entity.NewAppConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		r.log.Warn("Cannot unmarshal side-file, use empty registry", slog.String("path", r.path), slog.Any("error", err))

		return entity.NewAppConfig()
	}

	if cfg.CopyPaths == nil {
		cfg.CopyPaths = make(map[string]string)
	}

	return cfg
}

func (r *copyPathRepository) Lookup(filename string) (string, bool) {
	path, ok := r.Get().CopyPaths[filename]

	return path, ok && path != ""
}

// Set merges one entry and writes the whole registry back. Other top-level keys of the side-file are kept.
func (r *copyPathRepository) Set(filename, path string) error {
	cfg := r.Get()
	cfg.CopyPaths[filename] = path

	paths, err := json.Marshal(cfg.CopyPaths)
	if err != nil {
		return fmt.Errorf("cannot marshal copy paths: %w", err)
	}

	doc := r.readDocument()
	doc[copyPathsKey] = paths

	data, err := json.MarshalIndent(doc, "", jsonIndent)
	if err != nil {
		return fmt.Errorf("cannot marshal side-file: %w", err)
	}

	if err := afero.WriteFile(r.fs, r.path, data, filePerm); err != nil {
		return fmt.Errorf("cannot write side-file %s: %w", r.path, err)
	}

	r.log.Info("Set copy path", slog.String("filename", filename), slog.String("copy_path", path))

	return nil
}

// readDocument returns the side-file as raw top-level keys, empty when it is missing or not a JSON object.
func (r *copyPathRepository) readDocument() map[string]json.RawMessage {
	doc := make(map[string]json.RawMessage)

	data, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		return doc
	}

	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		return make(map[string]json.RawMessage)
	}

	return doc
}

func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaContent))
		if err != nil {
			compileErr = fmt.Errorf("cannot unmarshal schema: %w", err)

			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaName, doc); err != nil {
			compileErr = fmt.Errorf("cannot add schema resource: %w", err)

			return
		}

		compiledSchema, compileErr = c.Compile(schemaName)
		if compileErr != nil {
			compileErr = fmt.Errorf("cannot compile schema: %w", compileErr)
		}
	})

	return compiledSchema, compileErr
}

func validate(data []byte) error {
	schema, err := getSchema()
	if err != nil {
		return err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("cannot unmarshal json: %w", err)
	}

	err = schema.Validate(inst)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}

	var issues []string
	collectIssues(ve, &issues)
	if len(issues) == 0 {
		return err
	}

	return fmt.Errorf("schema violation: %s", strings.Join(issues, "; "))
}

func collectIssues(ve *jsonschema.ValidationError, issues *[]string) {
	if len(ve.Causes) == 0 {
		if ve.ErrorKind == nil {
			return
		}

		*issues = append(*issues, fmt.Sprintf("/%s: %s", strings.Join(ve.InstanceLocation, "/"), ve.ErrorKind.LocalizedString(printer)))

		return
	}

	for _, cause := range ve.Causes {
		collectIssues(cause, issues)
	}
}
