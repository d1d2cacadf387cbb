package mdadapter

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

type SettingResolver interface {
	Setting(name string) (string, bool)
}

// Settings is a fixed set of values known at startup.
type Settings map[string]string

func (s Settings) Setting(name string) (string, bool) {
	value, ok := s[name]

	return value, ok
}

type SettingsExtension struct {
	r SettingResolver
}

func NewSettingsExtension(r SettingResolver) goldmark.Extender {
	return &SettingsExtension{r: r}
}

func (e *SettingsExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithInlineParsers(
			util.Prioritized(NewSettingDirectiveParser(), 199),
		),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(
			util.Prioritized(NewSettingDirectiveRenderer(e.r), 199),
		),
	)
}
