package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jgivc/cfgpanel/internal/adapter/mdadapter"
	"github.com/jgivc/cfgpanel/internal/adapter/pageadapter"
	"github.com/jgivc/cfgpanel/internal/config"
	"github.com/jgivc/cfgpanel/internal/entity"
	httphandler "github.com/jgivc/cfgpanel/internal/handler/http"
	"github.com/jgivc/cfgpanel/internal/repository/copypath"
	"github.com/jgivc/cfgpanel/internal/service/appconfig"
	"github.com/jgivc/cfgpanel/internal/service/configs"
	"github.com/jgivc/cfgpanel/internal/storage/yamlstore"
)

const (
	shutdownTimeout = 5 * time.Second
	commandTimeout  = 5 * time.Second
)

type App struct {
	cfgPath string
	cfg     *config.Config
	srv     *http.Server
	log     *slog.Logger

	configs   httphandler.ConfigService
	appConfig httphandler.AppConfigService
}

func New(cfgPath string) *App {
	return &App{
		cfgPath: cfgPath,
	}
}

// Init loads the config and builds the services. Every other method calls it.
func (a *App) Init() {
	if a.cfg != nil {
		return
	}

	a.cfg = config.MustLoad(a.cfgPath)

	lo := &slog.HandlerOptions{}
	switch a.cfg.LogLevel {
	case config.LogLevelInfo:
		lo.Level = slog.LevelInfo
	case config.LogLevelWarn:
		lo.Level = slog.LevelWarn
	case config.LogLevelError:
		lo.Level = slog.LevelError
	case config.LogLevelDebug:
		lo.Level = slog.LevelDebug
	default:
		panic("unknown log level")
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, lo))
	a.log = log

	store := yamlstore.NewYAMLStore(a.cfg.ConfigDir, &a.cfg.TemplateConfig, log)
	paths := copypath.NewCopyPathRepository(a.cfg.AppConfigPath(), log)

	a.configs = configs.NewConfigService(store, paths, log)
	a.appConfig = appconfig.NewAppConfigService(paths, log)
}

func (a *App) Start() {
	a.Init()
	log := a.log

	settings := mdadapter.Settings{
		"config_dir":     a.cfg.ConfigDir,
		"app_config":     a.cfg.AppConfigPath(),
		"download_path":  a.cfg.TemplateConfig.DownloadPath,
		"protected_file": entity.ProtectedFileName,
	}

	page, err := pageadapter.NewPageAdapter(a.cfg.HelpFile, settings, log)
	if err != nil {
		panic(err)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /{$}", httphandler.NewPageHandler(page, a.configs, log))
	mux.Handle("GET /static/", httphandler.NewStaticHandler(page.Static()))

	mux.Handle("GET /api/configs", httphandler.NewListHandler(a.configs, log))
	mux.Handle("POST /api/configs/create", httphandler.NewCreateHandler(a.configs, log))
	mux.Handle("GET /api/configs/{filename}", httphandler.NewGetHandler(a.configs, log))
	mux.Handle("POST /api/configs/{filename}/update", httphandler.NewUpdateHandler(a.configs, log))
	mux.Handle("POST /api/configs/{filename}/copy", httphandler.NewCopyHandler(a.configs, log))
	mux.Handle("DELETE /api/configs/{filename}", httphandler.NewDeleteHandler(a.configs, log))

	mux.Handle("GET /api/app-config", httphandler.NewAppConfigHandler(a.appConfig, log))
	mux.Handle("POST /api/app-config/update-copy-path", httphandler.NewSetCopyPathHandler(a.appConfig, log))

	a.srv = &http.Server{
		Addr:    a.cfg.Listen,
		Handler: httphandler.NewLogMiddleware(mux, log),
	}

	go func() {
		log.Info("Start listen", slog.String("addr", a.cfg.Listen), slog.String("config_dir", a.cfg.ConfigDir))

		if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Could not serve", slog.String("listen_addr", a.cfg.Listen), slog.Any("error", err))
			os.Exit(2)
		}
	}()
}

func (a *App) Stop() {
	if a.srv == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.srv.Shutdown(ctx); err != nil {
		a.log.Error("Cannot shutdown server", slog.Any("error", err))
	}
}

func (a *App) List(w io.Writer) error {
	a.Init()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	files, err := a.configs.List(ctx)
	if err != nil {
		return err
	}

	paths := a.appConfig.Get(ctx).CopyPaths
	for i, file := range files {
		if path, ok := paths[file]; ok && path != "" {
			fmt.Fprintf(w, "%d. %s -> %s\n", i+1, file, path)

			continue
		}

		fmt.Fprintf(w, "%d. %s\n", i+1, file)
	}

	return nil
}

func (a *App) Show(w io.Writer, filename string) error {
	a.Init()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	file, err := a.configs.Get(ctx, filename)
	if err != nil {
		return err
	}

	if len(file.Links) == 0 {
		fmt.Fprintln(w, "No links.")

		return nil
	}

	for i, link := range file.Links {
		fmt.Fprintf(w, "%d. %s %s\n", i+1, link.Name, link.Link)
	}

	return nil
}

func (a *App) Copy(w io.Writer, filename, copyPath string) error {
	a.Init()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	target, err := a.configs.Copy(ctx, filename, copyPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s -> %s\n", filename, target)

	return nil
}

func (a *App) SetCopyPath(w io.Writer, filename, copyPath string) error {
	a.Init()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := a.appConfig.SetCopyPath(ctx, filename, copyPath); err != nil {
		return err
	}

	fmt.Fprintf(w, "Copy path for %s: %s\n", filename, copyPath)

	return nil
}
