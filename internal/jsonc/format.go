package jsonc

import (
	"strings"

	"github.com/tailscale/hujson"
)

// Format re-indents the whole document according to opts. Comments are kept;
// a comment that shared a line with the preceding token stays on that line.
// Text that does not parse is returned unchanged.
func Format(text string, opts FormattingOptions) string {
	root, err := hujson.Parse([]byte(text))
	if err != nil {
		return text
	}
	p := newPrinter(opts, text, "")
	for _, c := range comments(root.BeforeExtra) {
		p.b.WriteString(c)
		p.b.WriteString(p.eol)
	}
	p.value(root.Value, 0)
	p.trailing(root.AfterExtra, 0)
	if strings.HasSuffix(text, "\n") {
		p.b.WriteString(p.eol)
	}
	return p.b.String()
}

// render prints a single value whose first line continues an existing line
// indented by base.
func render(v *hujson.Value, opts FormattingOptions, text, base string) string {
	p := newPrinter(opts, text, base)
	p.value(v.Value, 0)
	return p.b.String()
}

type printer struct {
	b      strings.Builder
	base   string
	indent string
	eol    string
}

func newPrinter(opts FormattingOptions, text, base string) *printer {
	return &printer{base: base, indent: opts.indentUnit(), eol: opts.eol(text)}
}

func (p *printer) newline(level int) {
	p.b.WriteString(p.eol)
	p.b.WriteString(p.base)
	p.b.WriteString(strings.Repeat(p.indent, level))
}

func (p *printer) value(v hujson.ValueTrimmed, level int) {
	switch v := v.(type) {
	case hujson.Literal:
		p.b.Write(v)
	case *hujson.Object:
		p.object(v, level)
	case *hujson.Array:
		p.array(v, level)
	}
}

func (p *printer) array(a *hujson.Array, level int) {
	p.b.WriteByte('[')
	for i := range a.Elements {
		e := &a.Elements[i]
		p.leading(e.BeforeExtra, level+1)
		p.value(e.Value, level+1)
		if i < len(a.Elements)-1 {
			p.b.WriteByte(',')
		}
		p.trailing(e.AfterExtra, level+1)
	}
	p.close(a.AfterExtra, level, len(a.Elements) > 0, ']')
}

func (p *printer) object(o *hujson.Object, level int) {
	p.b.WriteByte('{')
	for i := range o.Members {
		m := &o.Members[i]
		p.leading(m.Name.BeforeExtra, level+1)
		p.value(m.Name.Value, level+1)
		p.b.WriteByte(':')
		between := append(comments(m.Name.AfterExtra), comments(m.Value.BeforeExtra)...)
		p.inline(between, level+1)
		p.value(m.Value.Value, level+1)
		if i < len(o.Members)-1 {
			p.b.WriteByte(',')
		}
		p.trailing(m.Value.AfterExtra, level+1)
	}
	p.close(o.AfterExtra, level, len(o.Members) > 0, '}')
}

// leading writes the extra before an element or member name, then moves to a
// fresh line for it.
func (p *printer) leading(extra hujson.Extra, level int) {
	same, rest := splitComments(extra)
	for _, c := range same {
		p.b.WriteByte(' ')
		p.b.WriteString(c)
	}
	for _, c := range rest {
		p.newline(level)
		p.b.WriteString(c)
	}
	p.newline(level)
}

// trailing writes comments that follow a value on its own line or below it.
func (p *printer) trailing(extra hujson.Extra, level int) {
	same, rest := splitComments(extra)
	for _, c := range same {
		p.b.WriteByte(' ')
		p.b.WriteString(c)
	}
	for _, c := range rest {
		p.newline(level)
		p.b.WriteString(c)
	}
}

// inline writes comments between a member's colon and its value.
func (p *printer) inline(cs []string, level int) {
	p.b.WriteByte(' ')
	for _, c := range cs {
		p.b.WriteString(c)
		if strings.HasPrefix(c, "//") {
			p.newline(level)
		} else {
			p.b.WriteByte(' ')
		}
	}
}

func (p *printer) close(extra hujson.Extra, level int, nonEmpty bool, bracket byte) {
	same, rest := splitComments(extra)
	if !nonEmpty && len(same) == 0 && len(rest) == 0 {
		p.b.WriteByte(bracket)
		return
	}
	p.trailing(extra, level+1)
	p.newline(level)
	p.b.WriteByte(bracket)
}

func comments(extra hujson.Extra) []string {
	same, rest := splitComments(extra)
	return append(same, rest...)
}

// splitComments extracts comments from whitespace. Comments that appear before
// the first line break are returned in same.
func splitComments(extra hujson.Extra) (same, rest []string) {
	s := string(extra)
	brokeLine := false
	for i := 0; i < len(s); {
		switch {
		case s[i] == '\n':
			brokeLine = true
			i++
		case strings.HasPrefix(s[i:], "//"):
			end := strings.IndexByte(s[i:], '\n')
			if end < 0 {
				end = len(s) - i
			}
			c := strings.TrimRight(s[i:i+end], "\r")
			if brokeLine {
				rest = append(rest, c)
			} else {
				same = append(same, c)
			}
			i += end
		case strings.HasPrefix(s[i:], "/*"):
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				end = len(s) - i - 2
			} else {
				end += 2
			}
			c := s[i : i+2+end]
			if brokeLine {
				rest = append(rest, c)
			} else {
				same = append(same, c)
			}
			i += 2 + end
		default:
			i++
		}
	}
	return same, rest
}
