package pageadapter

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"

	"github.com/jgivc/cfgpanel/internal/adapter/mdadapter"
	"github.com/jgivc/cfgpanel/internal/entity"
	"github.com/jgivc/cfgpanel/internal/panel"
	"github.com/jgivc/cfgpanel/internal/util"
	"github.com/spf13/afero"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"go.abhg.dev/goldmark/frontmatter"
)

const (
	defaultTitle = "Config panel"
	staticDir    = "static"
)

var (
	//go:embed templates/index.html
	defaultIndexContent string

	//go:embed templates/help.md
	defaultHelpContent []byte

	//go:embed static
	staticFS embed.FS
)

type Page struct {
	Content string
	Hash    string // ETag
}

type PageContext struct {
	Title         string
	HelpHTML      template.HTML
	ProtectedFile string
	State         *panel.State
	Buttons       panel.Buttons
}

type Frontmatter struct {
	Title string `yaml:"title"`
}

type pageAdapter struct {
	fs       afero.Fs
	helpPath string
	md       goldmark.Markdown
	tmpl     *template.Template

	log *slog.Logger
}

func NewPageAdapter(helpPath string, settings mdadapter.SettingResolver, log *slog.Logger) (*pageAdapter, error) {
	return NewPageAdapterWithFS(afero.NewOsFs(), helpPath, settings, log)
}

// NewPageAdapterWithFS uses the markdown file at helpPath as help text if it exists, the built-in one otherwise.
// [[name]] in the help text is replaced with the value settings gives for name.
func NewPageAdapterWithFS(fs afero.Fs, helpPath string, settings mdadapter.SettingResolver, log *slog.Logger) (*pageAdapter, error) {
	tmpl, err := template.New("index").Parse(defaultIndexContent)
	if err != nil {
		return nil, fmt.Errorf("cannot parse index template: %w", err)
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			&frontmatter.Extender{},
			mdadapter.NewSettingsExtension(settings),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)

	return &pageAdapter{
		fs:       fs,
		helpPath: helpPath,
		md:       md,
		tmpl:     tmpl,
		log:      log.With(slog.String("item", "PageAdapter")),
	}, nil
}

// Render builds the panel page. Button states come from the given view state.
func (a *pageAdapter) Render(state *panel.State) (*Page, error) {
	help, fm, err := a.renderHelp()
	if err != nil {
		return nil, fmt.Errorf("cannot render help: %w", err)
	}

	title := defaultTitle
	if fm != nil && fm.Title != "" {
		title = fm.Title
	}

	buf := bytes.Buffer{}
	if err := a.tmpl.Execute(&buf, &PageContext{
		Title:         title,
		HelpHTML:      template.HTML(help),
		ProtectedFile: entity.ProtectedFileName,
		State:         state,
		Buttons:       state.Buttons(),
	}); err != nil {
		return nil, fmt.Errorf("cannot execute index template: %w", err)
	}

	content := buf.String()

	return &Page{
		Content: content,
		Hash:    util.ContentHash(content),
	}, nil
}

// Static returns the embedded script and stylesheet.
func (a *pageAdapter) Static() fs.FS {
	sub, err := fs.Sub(staticFS, staticDir)
	if err != nil {
		panic(err)
	}

	return sub
}

func (a *pageAdapter) renderHelp() (string, *Frontmatter, error) {
	source, err := a.helpSource()
	if err != nil {
		return "", nil, err
	}

	pc := parser.NewContext()

	var buf bytes.Buffer
	if err := a.md.Convert(source, &buf, parser.WithContext(pc)); err != nil {
		return "", nil, fmt.Errorf("cannot convert markdown: %w", err)
	}

	var fm *Frontmatter
	if data := frontmatter.Get(pc); data != nil {
		fm = &Frontmatter{}
		if err := data.Decode(fm); err != nil {
			return "", nil, fmt.Errorf("cannot decode frontmatter: %w", err)
		}
	}

	return buf.String(), fm, nil
}

func (a *pageAdapter) helpSource() ([]byte, error) {
	if a.helpPath == "" || !a.fileExists(a.helpPath) {
		return defaultHelpContent, nil
	}

	content, err := afero.ReadFile(a.fs, a.helpPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read help file: %s: %w", a.helpPath, err)
	}

	a.log.Debug("Use custom help file", slog.String("path", a.helpPath))

	return content, nil
}

func (a *pageAdapter) fileExists(path string) bool {
	_, err := a.fs.Stat(path)

	return err == nil
}
