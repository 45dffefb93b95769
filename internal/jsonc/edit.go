package jsonc

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/tailscale/hujson"
)

// ErrInvalidPath is returned when a member path cannot be resolved in a document.
var ErrInvalidPath = errors.New("invalid member path")

// Edit replaces Length bytes at Offset with Content.
type Edit struct {
	Offset  int
	Length  int
	Content string
}

// ComputeEdits returns the edits that set the member at path to value.
// An existing member has only its value span replaced; a missing last path
// segment is inserted after the last member of its parent object. Only the
// replaced text is formatted, indented relative to the line it starts on.
func ComputeEdits(text string, path []string, value Node, opts FormattingOptions) ([]Edit, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	root, err := hujson.Parse([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("parse jsonc: %w", err)
	}

	cur := &root
	for i, key := range path {
		obj, ok := cur.Value.(*hujson.Object)
		if !ok {
			return nil, fmt.Errorf("%w: parent of %q is not an object", ErrInvalidPath, strings.Join(path[:i+1], "."))
		}
		idx := lastMember(obj, key)
		if idx >= 0 {
			cur = &obj.Members[idx].Value
			continue
		}
		if i < len(path)-1 {
			return nil, fmt.Errorf("%w: %q not found", ErrInvalidPath, strings.Join(path[:i+1], "."))
		}
		return []Edit{insertMember(text, cur, obj, key, value, opts)}, nil
	}

	base := lineIndent(text, cur.StartOffset)
	return []Edit{{
		Offset:  cur.StartOffset,
		Length:  cur.EndOffset - cur.StartOffset,
		Content: render(value.v, opts, text, base),
	}}, nil
}

// ApplyEdits applies non-overlapping edits to text.
func ApplyEdits(text string, edits []Edit) string {
	sorted := slices.Clone(edits)
	slices.SortStableFunc(sorted, func(a, b Edit) int { return cmp.Compare(b.Offset, a.Offset) })
	for _, e := range sorted {
		text = text[:e.Offset] + e.Content + text[e.Offset+e.Length:]
	}
	return text
}

// Modify is ComputeEdits followed by ApplyEdits.
func Modify(text string, path []string, value Node, opts FormattingOptions) (string, error) {
	edits, err := ComputeEdits(text, path, value, opts)
	if err != nil {
		return "", err
	}
	return ApplyEdits(text, edits), nil
}

func insertMember(text string, parent *hujson.Value, obj *hujson.Object, key string, value Node, opts FormattingOptions) Edit {
	name, _ := json.Marshal(key)
	v := *value.v
	v.BeforeExtra, v.AfterExtra = nil, nil

	if len(obj.Members) == 0 {
		o := &hujson.Object{
			Members:    []hujson.ObjectMember{{Name: hujson.Value{Value: hujson.Literal(name)}, Value: v}},
			AfterExtra: obj.AfterExtra,
		}
		return Edit{
			Offset:  parent.StartOffset,
			Length:  parent.EndOffset - parent.StartOffset,
			Content: render(&hujson.Value{Value: o}, opts, text, lineIndent(text, parent.StartOffset)),
		}
	}

	last := &obj.Members[len(obj.Members)-1]
	indent := lineIndent(text, last.Name.StartOffset)
	if !strings.Contains(text[parent.StartOffset:last.Name.StartOffset], "\n") {
		indent = lineIndent(text, parent.StartOffset) + opts.indentUnit()
	}
	return Edit{
		Offset:  last.Value.EndOffset,
		Content: "," + opts.eol(text) + indent + string(name) + ": " + render(&v, opts, text, indent),
	}
}

func lastMember(obj *hujson.Object, key string) int {
	for i := len(obj.Members) - 1; i >= 0; i-- {
		if memberName(&obj.Members[i]) == key {
			return i
		}
	}
	return -1
}

// lineIndent returns the leading whitespace of the line containing offset.
func lineIndent(text string, offset int) string {
	start := strings.LastIndexByte(text[:offset], '\n') + 1
	end := start
	for end < offset && (text[end] == ' ' || text[end] == '\t') {
		end++
	}
	return text[start:end]
}
