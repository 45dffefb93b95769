package jsonc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func elementsOf(t *testing.T, text, key string) []Node {
	t.Helper()
	doc, err := Parse(text)
	require.NoError(t, err)
	arr, ok := doc.Member(key)
	require.True(t, ok, "member %q missing", key)
	require.True(t, arr.IsArray())
	return arr.Elements()
}

func TestParseRelaxedSyntax(t *testing.T) {
	text := `// header
{
    /* block */ "configurations": [
        {"name": "a",}, // trailing
    ],
}`
	doc, err := Parse(text)
	require.NoError(t, err)

	arr, ok := doc.Member("configurations")
	require.True(t, ok)
	elems := arr.Elements()
	require.Len(t, elems, 1)

	name, ok := elems[0].Member("name")
	require.True(t, ok)
	s, ok := name.AsString()
	assert.True(t, ok)
	assert.Equal(t, "a", s)
}

func TestParseRejectsInvalid(t *testing.T) {
	for _, text := range []string{"", "not json", `{"a": }`, `{"a": 1`} {
		_, err := Parse(text)
		assert.Error(t, err, "Parse(%q)", text)
	}
}

func TestMemberMissingOrNotObject(t *testing.T) {
	doc, err := Parse(`[1, 2]`)
	require.NoError(t, err)
	_, ok := doc.Member("configurations")
	assert.False(t, ok)

	doc, err = Parse(`{"tasks": []}`)
	require.NoError(t, err)
	_, ok = doc.Member("configurations")
	assert.False(t, ok)
}

func TestMemberLastDuplicateWins(t *testing.T) {
	doc, err := Parse(`{"k": "first", "k": "second"}`)
	require.NoError(t, err)
	n, ok := doc.Member("k")
	require.True(t, ok)
	s, _ := n.AsString()
	assert.Equal(t, "second", s)
}

func TestAsStringOnNonString(t *testing.T) {
	doc, err := Parse(`{"name": 42}`)
	require.NoError(t, err)
	n, _ := doc.Member("name")
	_, ok := n.AsString()
	assert.False(t, ok)
}

func TestNodeDecode(t *testing.T) {
	elems := elementsOf(t, `{"c": [{"name": "a", /* x */ "port": 9229,}]}`, "c")
	v, err := elems[0].Decode()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "a", "port": float64(9229)}, v)
}

func TestNodeRaw(t *testing.T) {
	elems := elementsOf(t, `{"c": [ {"name":"a"} ]}`, "c")
	assert.Equal(t, `{"name":"a"}`, elems[0].Raw())
}

func TestFormatIndentsWithFourSpaces(t *testing.T) {
	got := Format(`{"configurations":[{"name":"a","type":"node"}]}`, DefaultFormatting)
	want := `{
    "configurations": [
        {
            "name": "a",
            "type": "node"
        }
    ]
}`
	assert.Equal(t, want, got)
}

func TestFormatTabsAndEOL(t *testing.T) {
	got := Format(`{"a":[1,2]}`, FormattingOptions{InsertSpaces: false, EOL: "\r\n"})
	assert.Equal(t, "{\r\n\t\"a\": [\r\n\t\t1,\r\n\t\t2\r\n\t]\r\n}", got)
}

func TestFormatDetectsCRLF(t *testing.T) {
	got := Format("{\r\n\"a\": 1}\r\n", DefaultFormatting)
	assert.Equal(t, "{\r\n    \"a\": 1\r\n}\r\n", got)
}

func TestFormatKeepsComments(t *testing.T) {
	text := `// launch config
{
  // the list
  "configurations": [
    {"name": "a"}, // first
  ],
}
`
	got := Format(text, DefaultFormatting)
	assert.Contains(t, got, "// launch config\n{")
	assert.Contains(t, got, "\n    // the list\n    \"configurations\": [")
	assert.Contains(t, got, "// first")
	assert.Contains(t, got, "\"name\": \"a\"")

	_, err := Parse(got)
	assert.NoError(t, err, "formatted output must parse")
}

func TestFormatEmptyContainers(t *testing.T) {
	assert.Equal(t, `{
    "a": [],
    "b": {}
}`, Format(`{"a":[ ],"b":{ }}`, DefaultFormatting))
}

func TestFormatIsIdempotent(t *testing.T) {
	text := `{ /* c */ "x": [1, {"y": true}], // tail
"z": null }`
	once := Format(text, DefaultFormatting)
	assert.Equal(t, once, Format(once, DefaultFormatting))
}

func TestFormatInvalidReturnsInput(t *testing.T) {
	assert.Equal(t, "not json", Format("not json", DefaultFormatting))
}

func TestModifyReplacesOnlyTargetSpan(t *testing.T) {
	text := `{
    // keep me
    "version":   "0.2.0",
    "configurations": []
}
`
	value := NewArray(elementsOf(t, `{"c":[{"name":"x"}]}`, "c"))
	got, err := Modify(text, []string{"configurations"}, value, DefaultFormatting)
	require.NoError(t, err)

	want := `{
    // keep me
    "version":   "0.2.0",
    "configurations": [
        {
            "name": "x"
        }
    ]
}
`
	assert.Equal(t, want, got)
}

func TestNewArrayKeepsClosingComments(t *testing.T) {
	elems := elementsOf(t, "{\"c\":[1, 2 /* two */\n]}", "c")
	require.Len(t, elems, 2)

	got, err := Modify(`{"c":[]}`, []string{"c"}, NewArray(elems), DefaultFormatting)
	require.NoError(t, err)
	assert.Equal(t, "{\"c\":[\n    1,\n    2 /* two */\n]}", got)

	got, err = Modify(`{"c":[]}`, []string{"c"}, NewArray([]Node{elems[1], elems[0]}), DefaultFormatting)
	require.NoError(t, err)
	assert.Equal(t, "{\"c\":[\n    2, /* two */\n    1\n]}", got)
}

func TestComputeEditsSingleReplacement(t *testing.T) {
	text := `{"configurations":[{"name":"a"}],"other":1}`
	value := NewArray(elementsOf(t, `{"c":[{"name":"b"}]}`, "c"))
	edits, err := ComputeEdits(text, []string{"configurations"}, value, DefaultFormatting)
	require.NoError(t, err)
	require.Len(t, edits, 1)
	assert.Equal(t, len(`{"configurations":`), edits[0].Offset)
	assert.Equal(t, len(`[{"name":"a"}]`), edits[0].Length)
}

func TestModifyInsertsMissingMember(t *testing.T) {
	value := NewArray(elementsOf(t, `{"c":[{"name":"x"}]}`, "c"))
	got, err := Modify(`{"version": "0.2.0"}`, []string{"configurations"}, value, DefaultFormatting)
	require.NoError(t, err)
	assert.Equal(t, `{"version": "0.2.0",
    "configurations": [
        {
            "name": "x"
        }
    ]}`, got)
}

func TestModifyInsertsIntoEmptyObject(t *testing.T) {
	value := NewArray(elementsOf(t, `{"c":[{"name":"x"}]}`, "c"))
	got, err := Modify(`{}`, []string{"configurations"}, value, DefaultFormatting)
	require.NoError(t, err)
	assert.Equal(t, `{
    "configurations": [
        {
            "name": "x"
        }
    ]
}`, got)
}

func TestModifyNestedPath(t *testing.T) {
	text := `{"launch": {"configurations": [1]}}`
	value := NewArray(elementsOf(t, `{"c":[2, 3]}`, "c"))
	got, err := Modify(text, []string{"launch", "configurations"}, value, DefaultFormatting)
	require.NoError(t, err)

	doc, err := Parse(got)
	require.NoError(t, err)
	launch, ok := doc.Member("launch")
	require.True(t, ok)
	arr, ok := launch.Member("configurations")
	require.True(t, ok)
	assert.Len(t, arr.Elements(), 2)
}

func TestComputeEditsInvalidPath(t *testing.T) {
	value := NewArray(nil)
	_, err := ComputeEdits(`{"a": 1}`, []string{"a", "b"}, value, DefaultFormatting)
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = ComputeEdits(`{"a": 1}`, []string{"x", "y"}, value, DefaultFormatting)
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = ComputeEdits(`{"a": 1}`, nil, value, DefaultFormatting)
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestApplyEditsBackToFront(t *testing.T) {
	got := ApplyEdits("abcdef", []Edit{
		{Offset: 0, Length: 1, Content: "A"},
		{Offset: 4, Length: 2, Content: "EF!"},
		{Offset: 2, Length: 0, Content: "-"},
	})
	assert.Equal(t, "Ab-cdEF!", got)
}

func TestApplyEditsNone(t *testing.T) {
	assert.Equal(t, "same", ApplyEdits("same", nil))
}
