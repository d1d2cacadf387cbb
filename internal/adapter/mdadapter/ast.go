package mdadapter

import (
	"github.com/yuin/goldmark/ast"
)

var KindSettingDirective = ast.NewNodeKind("SettingDirective")

// SettingDirective is a [[name]] reference to a running setting.
type SettingDirective struct {
	ast.BaseInline
	Name string
}

func (n *SettingDirective) Kind() ast.NodeKind {
	return KindSettingDirective
}

func (n *SettingDirective) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Name": n.Name,
	}, nil)
}
