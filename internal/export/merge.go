// Package export writes launch and task configuration fragments into a
// workspace's .theia directory. Incoming entries are merged with the ones
// already on disk by name, and the file is patched as text so that comments
// and layout survive.
package export

import (
	"fmt"
	"reflect"

	"github.com/che-incubator/che-plugins/internal/jsonc"
)

// Outcome reports what an export did.
type Outcome int

const (
	// Unchanged means the file already holds the result.
	Unchanged Outcome = iota
	// Skipped means the incoming content had nothing to export.
	Skipped
	// Replaced means there was no usable prior configuration.
	Replaced
	// Merged means incoming and prior entries were merged.
	Merged
)

func (o Outcome) String() string {
	switch o {
	case Unchanged:
		return "unchanged"
	case Skipped:
		return "skipped"
	case Replaced:
		return "replaced"
	case Merged:
		return "merged"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Written reports whether the outcome requires writing the file.
func (o Outcome) Written() bool { return o == Replaced || o == Merged }

// Merge computes the text to persist given the existing file content and the
// incoming configuration. key names the top-level array holding the entries.
//
// Incoming content that does not parse, or has no key array, exports nothing.
// When the existing content has no usable key array the incoming content is
// formatted and replaces it. Otherwise the merged array is patched into the
// incoming text: incoming entries first, then existing entries whose name is
// not among them.
func Merge(existing, incoming, key string, opts jsonc.FormattingOptions) (string, Outcome, error) {
	if incoming == existing {
		return existing, Unchanged, nil
	}

	incomingArr, ok := entryArray(incoming, key)
	if !ok {
		return existing, Skipped, nil
	}

	// A file written by replacing with this same content is already up to date.
	formatted := jsonc.Format(incoming, opts)
	if formatted == existing {
		return existing, Unchanged, nil
	}

	existingArr, ok := entryArray(existing, key)
	if !ok {
		return formatted, Replaced, nil
	}

	merged := MergeEntries(existingArr.Elements(), incomingArr.Elements())
	out, err := jsonc.Modify(incoming, []string{key}, jsonc.NewArray(merged), opts)
	if err != nil {
		return existing, Skipped, fmt.Errorf("patch %s: %w", key, err)
	}
	if out == existing {
		return existing, Unchanged, nil
	}
	return out, Merged, nil
}

// MergeEntries merges two entry lists by their "name" field. Incoming entries
// come first in their original order, followed by existing entries whose name
// does not occur in incoming. Names are unique in the result; the first
// occurrence wins. Entries without a string name never collide by name: an
// existing one is dropped only if incoming holds an identical entry.
func MergeEntries(existing, incoming []jsonc.Node) []jsonc.Node {
	merged := make([]jsonc.Node, 0, len(incoming)+len(existing))
	seen := make(map[string]bool, len(incoming)+len(existing))
	var unnamed []any

	add := func(n jsonc.Node) {
		if name, ok := entryName(n); ok {
			if seen[name] {
				return
			}
			seen[name] = true
		}
		merged = append(merged, n)
	}

	for _, n := range incoming {
		if _, ok := entryName(n); !ok {
			unnamed = append(unnamed, n.Value())
		}
		add(n)
	}
	for _, n := range existing {
		if _, ok := entryName(n); !ok && containsValue(unnamed, n) {
			continue
		}
		add(n)
	}
	return merged
}

func entryArray(text, key string) (jsonc.Node, bool) {
	if text == "" {
		return jsonc.Node{}, false
	}
	doc, err := jsonc.Parse(text)
	if err != nil {
		return jsonc.Node{}, false
	}
	arr, ok := doc.Member(key)
	if !ok || !arr.IsArray() {
		return jsonc.Node{}, false
	}
	return arr, true
}

func entryName(n jsonc.Node) (string, bool) {
	name, ok := n.Member("name")
	if !ok {
		return "", false
	}
	return name.AsString()
}

func containsValue(values []any, n jsonc.Node) bool {
	v := n.Value()
	for _, u := range values {
		if reflect.DeepEqual(u, v) {
			return true
		}
	}
	return false
}
