package yamladapter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jgivc/cfgpanel/internal/common"
	"github.com/jgivc/cfgpanel/internal/entity"
	"gopkg.in/yaml.v2"
)

const (
	LinkKey = "link"

	linkBlockStart    = LinkKey + ":"
	defaultNameFormat = "Link %d"
	itemPrefix        = "- "
	commentPrefix     = "#"
	lineSeparator     = "\n"
	carriageReturn    = "\r"
	lineBreaks        = "\r\n"
)

var (
	// <indent>- <https url><rest>. Other schemes are not link entries.
	linkLineRegexp = regexp.MustCompile(`^(\s*-\s+)(https://[^\s]+)(.*)$`)
	digitsRegexp   = regexp.MustCompile(`^\d*$`)
)

// DefaultName is the name synthesized for the link at zero-based position i.
func DefaultName(i int) string {
	return fmt.Sprintf(defaultNameFormat, i+1)
}

// HasLinkList reports whether the top level `link` key of the document is a sequence.
func HasLinkList(content string) (bool, error) {
	var doc any
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return false, fmt.Errorf("cannot unmarshal yaml: %w", err)
	}

	m, ok := doc.(map[any]any)
	if !ok {
		return false, nil
	}

	_, ok = m[LinkKey].([]any)

	return ok, nil
}

// ExtractLinks scans raw lines for link entries and takes their names from trailing comments.
// An empty or numeric comment gives the default name for the entry position.
func ExtractLinks(content string) []entity.Link {
	links := make([]entity.Link, 0)

	for _, line := range strings.Split(content, lineSeparator) {
		match := linkLineRegexp.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		name := strings.TrimSpace(strings.Replace(match[3], commentPrefix, "", 1))
		if digitsRegexp.MatchString(name) {
			name = DefaultName(len(links))
		}

		links = append(links, entity.Link{
			Link: strings.TrimSpace(match[2]),
			Name: name,
		})
	}

	return links
}

// CheckLinks rejects values that would break out of their line.
func CheckLinks(links []entity.Link) error {
	for i, link := range links {
		if strings.ContainsAny(link.Link, lineBreaks) || strings.ContainsAny(link.Name, lineBreaks) {
			return fmt.Errorf("link %d contains a line break: %w", i+1, common.ErrInvalidLink)
		}
	}

	return nil
}

// FormatLink renders the entry at zero-based position i. A default name is not written.
func FormatLink(i int, link entity.Link) string {
	line := "  - " + link.Link
	if link.Name != "" && link.Name != DefaultName(i) {
		line += "  # " + link.Name
	}

	return line
}

// FormatLinks renders entries one per line, each line terminated.
func FormatLinks(links []entity.Link) string {
	var sb strings.Builder
	for i, link := range links {
		sb.WriteString(FormatLink(i, link))
		sb.WriteString(lineSeparator)
	}

	return sb.String()
}

/*
PatchLinks replaces the entries of every `link:` block and copies all other lines as is.

Inside a block dash lines are dropped, blank and comment lines are held. The first other
line ends the block: it is copied together with the held lines that follow the last dash
entry. Held lines in front of a dash entry are dropped with it.
New entries take the line ending of their `link:` line.
*/
func PatchLinks(content string, links []entity.Link) string {
	lines := strings.Split(content, lineSeparator)
	out := make([]string, 0, len(lines)+len(links))

	var (
		inBlock bool
		held    []string
	)

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == linkBlockStart:
			out = append(out, held...)
			held = nil

			out = append(out, line)

			eol := ""
			if strings.HasSuffix(line, carriageReturn) {
				eol = carriageReturn
			}

			for i, link := range links {
				out = append(out, FormatLink(i, link)+eol)
			}

			inBlock = true
		case !inBlock:
			out = append(out, line)
		case strings.HasPrefix(trimmed, itemPrefix):
			held = nil
		case trimmed == "" || strings.HasPrefix(trimmed, commentPrefix):
			held = append(held, line)
		default:
			inBlock = false

			out = append(out, held...)
			held = nil

			out = append(out, line)
		}
	}

	out = append(out, held...)

	return strings.Join(out, lineSeparator)
}
