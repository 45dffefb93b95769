package registry

import "strings"

// Filter tokens.
const (
	FilterInstalled = "@installed"
	FilterType      = "@type:"
)

// Query is a parsed filter string such as "@installed @type:che_editor yaml".
type Query struct {
	Installed bool
	Types     []string
	Words     []string
}

// ParseQuery splits filter on whitespace. Unknown "@" tokens are ignored.
func ParseQuery(filter string) Query {
	var q Query
	for _, tok := range strings.Fields(filter) {
		switch {
		case tok == FilterInstalled:
			q.Installed = true
		case strings.HasPrefix(tok, FilterType):
			if t := strings.TrimPrefix(tok, FilterType); t != "" {
				q.Types = append(q.Types, strings.ToLower(t))
			}
		case strings.HasPrefix(tok, "@"):
		default:
			q.Words = append(q.Words, strings.ToLower(tok))
		}
	}
	return q
}

// TypeToken returns the filter token value for a plugin type,
// e.g. "Che Editor" → "che_editor".
func TypeToken(pluginType string) string {
	return strings.ReplaceAll(strings.ToLower(pluginType), " ", "_")
}

// Match reports whether p passes every condition of q.
func (q Query) Match(p Plugin, installed bool) bool {
	if q.Installed && !installed {
		return false
	}
	if len(q.Types) > 0 {
		typ := TypeToken(p.Type)
		ok := false
		for _, t := range q.Types {
			if t == typ {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if len(q.Words) > 0 {
		text := strings.ToLower(strings.Join([]string{p.Name, p.DisplayName, p.Description, p.Publisher}, "\n"))
		for _, w := range q.Words {
			if !strings.Contains(text, w) {
				return false
			}
		}
	}
	return true
}

// Apply returns the plugins matching q, keeping their order.
func (q Query) Apply(plugins []Plugin, installed func(Plugin) bool) []Plugin {
	out := make([]Plugin, 0, len(plugins))
	for _, p := range plugins {
		if q.Match(p, installed != nil && installed(p)) {
			out = append(out, p)
		}
	}
	return out
}
