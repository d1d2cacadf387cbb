package mdadapter

import (
	"fmt"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

type SettingDirectiveRenderer struct {
	r SettingResolver
}

func NewSettingDirectiveRenderer(r SettingResolver) renderer.NodeRenderer {
	return &SettingDirectiveRenderer{r: r}
}

func (r *SettingDirectiveRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindSettingDirective, r.renderSettingDirective)
}

// Unknown names are written back as typed.
func (r *SettingDirectiveRenderer) renderSettingDirective(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	directive, ok := n.(*SettingDirective)
	if !ok {
		return ast.WalkStop, fmt.Errorf("unexpected node %T, expected *SettingDirective", n)
	}

	value, ok := r.r.Setting(directive.Name)
	if !ok {
		w.WriteString("[[")
		w.Write(util.EscapeHTML([]byte(directive.Name)))
		w.WriteString("]]")

		return ast.WalkContinue, nil
	}

	w.WriteString(`<code class="setting">`)
	w.Write(util.EscapeHTML([]byte(value)))
	w.WriteString("</code>")

	return ast.WalkContinue, nil
}
