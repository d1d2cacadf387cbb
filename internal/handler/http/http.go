package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/jgivc/cfgpanel/internal/adapter/pageadapter"
	"github.com/jgivc/cfgpanel/internal/common"
	"github.com/jgivc/cfgpanel/internal/entity"
	"github.com/jgivc/cfgpanel/internal/panel"
)

type ConfigService interface {
	List(ctx context.Context) ([]string, error)
	Get(ctx context.Context, filename string) (*entity.ConfigFile, error)
	Update(ctx context.Context, filename string, links []entity.Link) error
	Create(ctx context.Context, filename string, links []entity.Link) (string, error)
	Delete(ctx context.Context, filename string) error
	Copy(ctx context.Context, filename, copyPath string) (string, error)
}

type AppConfigService interface {
	Get(ctx context.Context) *entity.AppConfig
	SetCopyPath(ctx context.Context, filename, copyPath string) error
}

type PageRenderer interface {
	Render(state *panel.State) (*pageadapter.Page, error)
}

type successResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Filename   string `json:"filename,omitempty"`
	TargetPath string `json:"targetPath,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type updateRequest struct {
	Links *[]entity.Link `json:"links"`
}

type createRequest struct {
	Filename string        `json:"filename"`
	Links    []entity.Link `json:"links"`
}

type copyPathRequest struct {
	Filename string `json:"filename"`
	CopyPath string `json:"copyPath"`
}

type copyRequest struct {
	CopyPath string `json:"copyPath"`
}

// NewPageHandler renders the panel. With ?file=NAME the page opens with that file selected.
func NewPageHandler(renderer PageRenderer, srv ConfigService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "PageHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		state := &panel.State{}
		if filename := r.URL.Query().Get("file"); filename != "" {
			file, err := srv.Get(context.Background(), filename)
			if err != nil {
				log.Warn("Cannot preselect config file", slog.String("filename", filename), slog.Any("error", err))
			} else {
				state.Load(file)
			}
		}

		page, err := renderer.Render(state)
		if err != nil {
			log.Error("Cannot render page", slog.Any("error", err))
			http.Error(w, "Cannot render page", http.StatusInternalServerError)

			return
		}

		etag := fmt.Sprintf(`"%s"`, page.Hash)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)

			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("ETag", etag)
		w.Write([]byte(page.Content))
	}
}

func NewStaticHandler(static fs.FS) http.Handler {
	return http.StripPrefix("/static/", http.FileServerFS(static))
}

func NewListHandler(srv ConfigService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "ListHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		files, err := srv.List(context.Background())
		if err != nil {
			writeError(w, log, err, "Cannot list config files")

			return
		}

		writeJSON(w, log, http.StatusOK, files)
	}
}

func NewGetHandler(srv ConfigService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "GetHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		file, err := srv.Get(context.Background(), r.PathValue("filename"))
		if err != nil {
			writeError(w, log, err, "Cannot read config file")

			return
		}

		writeJSON(w, log, http.StatusOK, file)
	}
}

func NewUpdateHandler(srv ConfigService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "UpdateHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var req updateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Links == nil {
			writeJSON(w, log, http.StatusBadRequest, &errorResponse{Error: "Links are required"})

			return
		}

		filename := r.PathValue("filename")
		if err := srv.Update(context.Background(), filename, *req.Links); err != nil {
			writeError(w, log, err, "Cannot update config file")

			return
		}

		writeJSON(w, log, http.StatusOK, &successResponse{
			Success: true,
			Message: "Config file updated",
		})
	}
}

func NewCreateHandler(srv ConfigService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "CreateHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, log, http.StatusBadRequest, &errorResponse{Error: "Invalid request body", Details: err.Error()})

			return
		}

		filename, err := srv.Create(context.Background(), req.Filename, req.Links)
		if err != nil {
			writeError(w, log, err, "Cannot create config file")

			return
		}

		writeJSON(w, log, http.StatusOK, &successResponse{
			Success:  true,
			Message:  "Config file created",
			Filename: filename,
		})
	}
}

func NewDeleteHandler(srv ConfigService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "DeleteHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		if err := srv.Delete(context.Background(), r.PathValue("filename")); err != nil {
			writeError(w, log, err, "Cannot delete config file")

			return
		}

		writeJSON(w, log, http.StatusOK, &successResponse{
			Success: true,
			Message: "Config file deleted",
		})
	}
}

func NewAppConfigHandler(srv AppConfigService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "AppConfigHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, log, http.StatusOK, srv.Get(context.Background()))
	}
}

func NewSetCopyPathHandler(srv AppConfigService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "SetCopyPathHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var req copyPathRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, log, http.StatusBadRequest, &errorResponse{Error: "Invalid request body", Details: err.Error()})

			return
		}

		if err := srv.SetCopyPath(context.Background(), req.Filename, req.CopyPath); err != nil {
			writeError(w, log, err, "Cannot save copy path")

			return
		}

		writeJSON(w, log, http.StatusOK, &successResponse{
			Success: true,
			Message: "Copy path saved",
		})
	}
}

// NewCopyHandler accepts an empty body, the registered copy path is used then.
func NewCopyHandler(srv ConfigService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "CopyHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var req copyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, log, http.StatusBadRequest, &errorResponse{Error: "Invalid request body", Details: err.Error()})

			return
		}

		targetPath, err := srv.Copy(context.Background(), r.PathValue("filename"), req.CopyPath)
		if err != nil {
			writeError(w, log, err, "Cannot copy config file")

			return
		}

		writeJSON(w, log, http.StatusOK, &successResponse{
			Success:    true,
			Message:    "Config file copied",
			TargetPath: targetPath,
		})
	}
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrConfigNotFound):
		return http.StatusNotFound, "Config file not found"
	case errors.Is(err, common.ErrProtectedConfig):
		return http.StatusForbidden, "Config file is protected"
	case errors.Is(err, common.ErrConfigAlreadyExists):
		return http.StatusBadRequest, "Config file already exists"
	case errors.Is(err, common.ErrInvalidFilename):
		return http.StatusBadRequest, "Invalid file name"
	case errors.Is(err, common.ErrCopyPathNotSet):
		return http.StatusBadRequest, "Copy path is not set"
	case errors.Is(err, common.ErrInvalidLink):
		return http.StatusBadRequest, "Invalid link"
	case errors.Is(err, common.ErrEmptyField):
		return http.StatusBadRequest, "Filename and copy path are required"
	default:
		return http.StatusInternalServerError, ""
	}
}

func writeError(w http.ResponseWriter, log *slog.Logger, err error, fallback string) {
	status, message := statusFor(err)
	if message == "" {
		message = fallback
	}

	writeJSON(w, log, status, &errorResponse{Error: message, Details: err.Error()})
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Cannot encode response", slog.Any("error", err))
	}
}
