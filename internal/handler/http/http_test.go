package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/jgivc/cfgpanel/internal/adapter/pageadapter"
	"github.com/jgivc/cfgpanel/internal/common"
	"github.com/jgivc/cfgpanel/internal/entity"
	"github.com/jgivc/cfgpanel/internal/panel"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockConfigService struct {
	mock.Mock
}

func (m *MockConfigService) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)

	var files []string
	if ff, ok := args.Get(0).([]string); ok {
		files = ff
	}

	return files, args.Error(1)
}

func (m *MockConfigService) Get(ctx context.Context, filename string) (*entity.ConfigFile, error) {
	args := m.Called(ctx, filename)

	var f *entity.ConfigFile
	if ff, ok := args.Get(0).(*entity.ConfigFile); ok {
		f = ff
	}

	return f, args.Error(1)
}

func (m *MockConfigService) Update(ctx context.Context, filename string, links []entity.Link) error {
	return m.Called(ctx, filename, links).Error(0)
}

func (m *MockConfigService) Create(ctx context.Context, filename string, links []entity.Link) (string, error) {
	args := m.Called(ctx, filename, links)

	return args.String(0), args.Error(1)
}

func (m *MockConfigService) Delete(ctx context.Context, filename string) error {
	return m.Called(ctx, filename).Error(0)
}

func (m *MockConfigService) Copy(ctx context.Context, filename, copyPath string) (string, error) {
	args := m.Called(ctx, filename, copyPath)

	return args.String(0), args.Error(1)
}

type MockAppConfigService struct {
	mock.Mock
}

func (m *MockAppConfigService) Get(ctx context.Context) *entity.AppConfig {
	return m.Called(ctx).Get(0).(*entity.AppConfig)
}

func (m *MockAppConfigService) SetCopyPath(ctx context.Context, filename, copyPath string) error {
	return m.Called(ctx, filename, copyPath).Error(0)
}

type fakeRenderer struct {
	page  *pageadapter.Page
	err   error
	state *panel.State
}

func (r *fakeRenderer) Render(state *panel.State) (*pageadapter.Page, error) {
	r.state = state

	return r.page, r.err
}

func newTestMux(cfgSrv ConfigService, appSrv AppConfigService) *http.ServeMux {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	mux := http.NewServeMux()
	mux.Handle("GET /api/configs", NewListHandler(cfgSrv, log))
	mux.Handle("POST /api/configs/create", NewCreateHandler(cfgSrv, log))
	mux.Handle("GET /api/configs/{filename}", NewGetHandler(cfgSrv, log))
	mux.Handle("POST /api/configs/{filename}/update", NewUpdateHandler(cfgSrv, log))
	mux.Handle("POST /api/configs/{filename}/copy", NewCopyHandler(cfgSrv, log))
	mux.Handle("DELETE /api/configs/{filename}", NewDeleteHandler(cfgSrv, log))
	mux.Handle("GET /api/app-config", NewAppConfigHandler(appSrv, log))
	mux.Handle("POST /api/app-config/update-copy-path", NewSetCopyPathHandler(appSrv, log))

	return mux
}

func serve(mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Error)

	return resp
}

func TestListHandler(t *testing.T) {
	srv := &MockConfigService{}
	srv.On("List", mock.Anything).Return([]string{"a.yml", "b.yaml"}, nil)

	rec := serve(newTestMux(srv, nil), http.MethodGet, "/api/configs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var files []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &files))
	require.Equal(t, []string{"a.yml", "b.yaml"}, files)
}

func TestGetHandler(t *testing.T) {
	file := &entity.ConfigFile{
		Filename:   "a.yml",
		Links:      []entity.Link{{Link: "https://a.example/x", Name: "Alice"}},
		RawContent: "link:\n  - https://a.example/x  # Alice\n",
	}

	testCases := []struct {
		name   string
		file   *entity.ConfigFile
		err    error
		status int
	}{
		{
			name:   "Found",
			file:   file,
			status: http.StatusOK,
		},
		{
			name:   "Not found",
			err:    fmt.Errorf("cannot read config file a.yml: %w", common.ErrConfigNotFound),
			status: http.StatusNotFound,
		},
		{
			name:   "Invalid name",
			err:    fmt.Errorf("cannot read config file a.yml: %w", common.ErrInvalidFilename),
			status: http.StatusBadRequest,
		},
		{
			name:   "IO failure",
			err:    errors.New("permission denied"),
			status: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := &MockConfigService{}
			srv.On("Get", mock.Anything, "a.yml").Return(tc.file, tc.err)

			rec := serve(newTestMux(srv, nil), http.MethodGet, "/api/configs/a.yml", "")
			require.Equal(t, tc.status, rec.Code)

			if tc.err != nil {
				resp := decodeError(t, rec)
				require.Equal(t, tc.err.Error(), resp.Details)

				return
			}

			var got entity.ConfigFile
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			require.Equal(t, *file, got)
		})
	}
}

func TestUpdateHandler(t *testing.T) {
	t.Run("Links are required", func(t *testing.T) {
		for _, body := range []string{"", "{}", "not json"} {
			srv := &MockConfigService{}

			rec := serve(newTestMux(srv, nil), http.MethodPost, "/api/configs/a.yml/update", body)
			require.Equal(t, http.StatusBadRequest, rec.Code, body)
			srv.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		}
	})

	t.Run("Saved", func(t *testing.T) {
		links := []entity.Link{{Link: "https://a.example/x", Name: "Alice"}}

		srv := &MockConfigService{}
		srv.On("Update", mock.Anything, "a.yml", links).Return(nil)

		rec := serve(newTestMux(srv, nil), http.MethodPost, "/api/configs/a.yml/update",
			`{"links":[{"link":"https://a.example/x","name":"Alice"}]}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp successResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.True(t, resp.Success)
		srv.AssertExpectations(t)
	})

	t.Run("Empty list", func(t *testing.T) {
		srv := &MockConfigService{}
		srv.On("Update", mock.Anything, "a.yml", []entity.Link{}).Return(nil)

		rec := serve(newTestMux(srv, nil), http.MethodPost, "/api/configs/a.yml/update", `{"links":[]}`)
		require.Equal(t, http.StatusOK, rec.Code)
		srv.AssertExpectations(t)
	})

	t.Run("Line break in a link", func(t *testing.T) {
		srv := &MockConfigService{}
		srv.On("Update", mock.Anything, "a.yml", mock.Anything).
			Return(fmt.Errorf("cannot update config file a.yml: %w", common.ErrInvalidLink))

		rec := serve(newTestMux(srv, nil), http.MethodPost, "/api/configs/a.yml/update",
			`{"links":[{"link":"https://a.example/x","name":"Bob\npath: /evil/"}]}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Invalid link", decodeError(t, rec).Error)
	})

	t.Run("Not found", func(t *testing.T) {
		srv := &MockConfigService{}
		srv.On("Update", mock.Anything, "x.yml", mock.Anything).Return(common.ErrConfigNotFound)

		rec := serve(newTestMux(srv, nil), http.MethodPost, "/api/configs/x.yml/update", `{"links":[]}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCreateHandler(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		created  string
		err      error
		status   int
		filename string
	}{
		{
			name:     "Created",
			body:     `{"filename":"job","links":[]}`,
			created:  "job.yml",
			status:   http.StatusOK,
			filename: "job.yml",
		},
		{
			name:   "Already exists",
			body:   `{"filename":"a.yml"}`,
			err:    fmt.Errorf("cannot create config file a.yml: %w", common.ErrConfigAlreadyExists),
			status: http.StatusBadRequest,
		},
		{
			name:   "Blank name",
			body:   `{"filename":"  "}`,
			err:    common.ErrInvalidFilename,
			status: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := &MockConfigService{}
			srv.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(tc.created, tc.err)

			rec := serve(newTestMux(srv, nil), http.MethodPost, "/api/configs/create", tc.body)
			require.Equal(t, tc.status, rec.Code)

			if tc.err != nil {
				decodeError(t, rec)

				return
			}

			var resp successResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.True(t, resp.Success)
			require.Equal(t, tc.filename, resp.Filename)
		})
	}
}

func TestDeleteHandler(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status int
	}{
		{name: "Deleted", status: http.StatusOK},
		{name: "Protected", err: common.ErrProtectedConfig, status: http.StatusForbidden},
		{name: "Not found", err: common.ErrConfigNotFound, status: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := &MockConfigService{}
			srv.On("Delete", mock.Anything, "example.yml").Return(tc.err)

			rec := serve(newTestMux(srv, nil), http.MethodDelete, "/api/configs/example.yml", "")
			require.Equal(t, tc.status, rec.Code)
			srv.AssertExpectations(t)
		})
	}
}

func TestCopyHandler(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		copyPath string
		target   string
		err      error
		status   int
	}{
		{
			name:   "No body uses registry",
			target: "/mnt/a.yml",
			status: http.StatusOK,
		},
		{
			name:     "Explicit path",
			body:     `{"copyPath":"/tmp/a.yml"}`,
			copyPath: "/tmp/a.yml",
			target:   "/tmp/a.yml",
			status:   http.StatusOK,
		},
		{
			name:   "Path not set",
			body:   `{}`,
			err:    fmt.Errorf("cannot copy config file a.yml: %w", common.ErrCopyPathNotSet),
			status: http.StatusBadRequest,
		},
		{
			name:   "Source not found",
			err:    common.ErrConfigNotFound,
			status: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := &MockConfigService{}
			srv.On("Copy", mock.Anything, "a.yml", tc.copyPath).Return(tc.target, tc.err)

			rec := serve(newTestMux(srv, nil), http.MethodPost, "/api/configs/a.yml/copy", tc.body)
			require.Equal(t, tc.status, rec.Code)
			srv.AssertExpectations(t)

			if tc.err != nil {
				decodeError(t, rec)

				return
			}

			var resp successResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.Equal(t, tc.target, resp.TargetPath)
		})
	}
}

func TestAppConfigHandlers(t *testing.T) {
	app := &MockAppConfigService{}
	app.On("Get", mock.Anything).Return(&entity.AppConfig{CopyPaths: map[string]string{"a.yml": "/mnt/a.yml"}})
	app.On("SetCopyPath", mock.Anything, "a.yml", "/mnt/b.yml").Return(nil)
	app.On("SetCopyPath", mock.Anything, "a.yml", "").Return(common.ErrEmptyField)

	mux := newTestMux(nil, app)

	rec := serve(mux, http.MethodGet, "/api/app-config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"copyPaths":{"a.yml":"/mnt/a.yml"}}`, rec.Body.String())

	rec = serve(mux, http.MethodPost, "/api/app-config/update-copy-path", `{"filename":"a.yml","copyPath":"/mnt/b.yml"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(mux, http.MethodPost, "/api/app-config/update-copy-path", `{"filename":"a.yml"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	decodeError(t, rec)
}

func TestPageHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	h := NewPageHandler(&fakeRenderer{page: &pageadapter.Page{Content: "<html></html>", Hash: "abc"}}, &MockConfigService{}, log)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, `"abc"`, rec.Header().Get("ETag"))
	require.Equal(t, "<html></html>", rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("If-None-Match", `"abc"`)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotModified, rec.Code)

	h = NewPageHandler(&fakeRenderer{err: errors.New("broken")}, &MockConfigService{}, log)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPageHandlerPreselect(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	links := []entity.Link{{Link: "https://a.example/x", Name: "Alice"}}

	srv := &MockConfigService{}
	srv.On("Get", mock.Anything, "job.yml").Return(&entity.ConfigFile{Filename: "job.yml", Links: links}, nil)
	srv.On("Get", mock.Anything, "missing.yml").Return(nil, common.ErrConfigNotFound)

	renderer := &fakeRenderer{page: &pageadapter.Page{Content: "<html></html>", Hash: "abc"}}
	h := NewPageHandler(renderer, srv, log)

	testCases := []struct {
		name     string
		target   string
		expected panel.State
	}{
		{
			name:     "Existing file",
			target:   "/?file=job.yml",
			expected: panel.State{Selected: "job.yml", Links: links},
		},
		{
			name:   "Missing file",
			target: "/?file=missing.yml",
		},
		{
			name:   "No file",
			target: "/",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.target, nil))
			require.Equal(t, http.StatusOK, rec.Code)
			require.Equal(t, tc.expected, *renderer.state)
		})
	}

	srv.AssertNumberOfCalls(t, "Get", 2)
}

func TestStaticHandler(t *testing.T) {
	h := NewStaticHandler(fstest.MapFS{"app.js": {Data: []byte("init();")}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "init();", rec.Body.String())
}

func TestLogMiddleware(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	h := NewLogMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}), log)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)
	require.Len(t, rec.Header().Get(RequestIDHeader), 36)
}
