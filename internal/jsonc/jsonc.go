// Package jsonc provides the relaxed-JSON primitives used when exporting
// workspace configuration: parsing JSON with comments and trailing commas,
// formatting a whole document, and computing text edits that replace a single
// member without re-serializing the rest of the document.
package jsonc

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/tailscale/hujson"
)

// FormattingOptions mirrors the formatting settings of editor JSON tooling.
type FormattingOptions struct {
	// TabSize is the number of spaces per indentation level when InsertSpaces is set.
	TabSize int
	// InsertSpaces selects spaces over tabs.
	InsertSpaces bool
	// EOL is the line terminator. Empty means: reuse the one found in the
	// document, falling back to "\n".
	EOL string
}

// DefaultFormatting is 4-space indentation with the document's own newline style.
var DefaultFormatting = FormattingOptions{TabSize: 4, InsertSpaces: true}

func (o FormattingOptions) indentUnit() string {
	if !o.InsertSpaces {
		return "\t"
	}
	size := o.TabSize
	if size <= 0 {
		size = 4
	}
	return strings.Repeat(" ", size)
}

func (o FormattingOptions) eol(text string) string {
	if o.EOL != "" {
		return o.EOL
	}
	if strings.Contains(text, "\r\n") {
		return "\r\n"
	}
	return "\n"
}

// Document is a parsed relaxed-JSON document. It keeps the syntax tree with
// source offsets so callers can locate members in the original text.
type Document struct {
	src  string
	root hujson.Value
}

// Parse parses text as JSON with comments and trailing commas.
func Parse(text string) (*Document, error) {
	root, err := hujson.Parse([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("parse jsonc: %w", err)
	}
	return &Document{src: text, root: root}, nil
}

// Text returns the source the document was parsed from.
func (d *Document) Text() string { return d.src }

// Root returns the top-level value.
func (d *Document) Root() Node { return Node{v: &d.root, src: d.src} }

// Member returns the value of a top-level object member.
// It reports false if the document is not an object or has no such member.
func (d *Document) Member(key string) (Node, bool) {
	return d.Root().Member(key)
}

// Node is a value inside a parsed document.
type Node struct {
	v    *hujson.Value
	src  string
	tail hujson.Extra // comments before the closing bracket, for the last element
}

// IsArray reports whether the node is an array.
func (n Node) IsArray() bool {
	_, ok := n.v.Value.(*hujson.Array)
	return ok
}

// IsObject reports whether the node is an object.
func (n Node) IsObject() bool {
	_, ok := n.v.Value.(*hujson.Object)
	return ok
}

// Elements returns the elements of an array node, or nil for any other kind.
func (n Node) Elements() []Node {
	arr, ok := n.v.Value.(*hujson.Array)
	if !ok {
		return nil
	}
	out := make([]Node, len(arr.Elements))
	for i := range arr.Elements {
		out[i] = Node{v: &arr.Elements[i], src: n.src}
	}
	if len(out) > 0 && len(comments(arr.AfterExtra)) > 0 {
		out[len(out)-1].tail = arr.AfterExtra
	}
	return out
}

// Member returns the value of the named member of an object node.
// When a key repeats, the last occurrence wins, as in JSON.parse.
func (n Node) Member(key string) (Node, bool) {
	obj, ok := n.v.Value.(*hujson.Object)
	if !ok {
		return Node{}, false
	}
	for i := len(obj.Members) - 1; i >= 0; i-- {
		if memberName(&obj.Members[i]) == key {
			return Node{v: &obj.Members[i].Value, src: n.src}, true
		}
	}
	return Node{}, false
}

// AsString returns the decoded value of a string node.
func (n Node) AsString() (string, bool) {
	lit, ok := n.v.Value.(hujson.Literal)
	if !ok || len(lit) == 0 || lit[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(lit, &s); err != nil {
		return "", false
	}
	return s, true
}

// Raw returns the node's source text without surrounding whitespace or comments.
func (n Node) Raw() string {
	if n.v.EndOffset <= n.v.StartOffset || n.v.EndOffset > len(n.src) {
		return ""
	}
	return n.src[n.v.StartOffset:n.v.EndOffset]
}

// Decode decodes the node into a plain Go value.
func (n Node) Decode() (any, error) {
	std, err := hujson.Standardize([]byte(render(n.v, DefaultFormatting, "", "")))
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(std, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Value is Decode for nodes taken from a parsed document, which always
// decode. It returns nil otherwise.
func (n Node) Value() any {
	v, err := n.Decode()
	if err != nil {
		return nil
	}
	return v
}

// NewArray builds an array node from existing nodes, which may come from
// different documents. Element comments travel with the elements, and so do
// the comments that closed the array each element was last in.
func NewArray(elems []Node) Node {
	arr := &hujson.Array{Elements: make([]hujson.ArrayElement, len(elems))}
	for i, e := range elems {
		arr.Elements[i] = *e.v
		if len(e.tail) > 0 {
			extra := slices.Clone(arr.Elements[i].AfterExtra)
			arr.Elements[i].AfterExtra = append(extra, e.tail...)
		}
	}
	return Node{v: &hujson.Value{Value: arr}}
}

func memberName(m *hujson.ObjectMember) string {
	lit, ok := m.Name.Value.(hujson.Literal)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(lit, &s); err != nil {
		return ""
	}
	return s
}
