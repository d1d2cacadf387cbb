package mdadapter

import (
	"bytes"
	"regexp"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var (
	startSeq = []byte{'[', '['}
	endSeq   = []byte{']', ']'}

	nameRegexp = regexp.MustCompile(`^[a-z][a-z_]*$`)
)

/*
 * [[config_dir]]
 * [[download_path]]
 */
type SettingDirectiveParser struct{}

func NewSettingDirectiveParser() parser.InlineParser {
	return &SettingDirectiveParser{}
}

func (s *SettingDirectiveParser) Trigger() []byte {
	return startSeq
}

func (s *SettingDirectiveParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	b, _ := block.PeekLine()
	if !bytes.HasPrefix(b, startSeq) {
		return nil
	}

	end := bytes.Index(b, endSeq)
	if end < 0 {
		return nil
	}

	name := bytes.TrimSpace(b[len(startSeq):end])
	if !nameRegexp.Match(name) {
		return nil
	}

	block.Advance(end + len(endSeq))

	return &SettingDirective{
		Name: string(name),
	}
}
