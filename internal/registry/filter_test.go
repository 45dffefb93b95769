package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var catalog = []Plugin{
	{Publisher: "redhat", Name: "java", DisplayName: "Language Support for Java", Type: "VS Code extension", Key: "redhat/java/0.1"},
	{Publisher: "eclipse", Name: "che-theia", Description: "Eclipse Theia", Type: "Che Editor", Key: "eclipse/che-theia/next"},
	{Publisher: "redhat", Name: "vscode-yaml", Description: "YAML support", Type: "VS Code extension", Key: "redhat/vscode-yaml/0.4"},
}

func installedKeys(keys ...string) func(Plugin) bool {
	return func(p Plugin) bool {
		for _, k := range keys {
			if k == p.Key {
				return true
			}
		}
		return false
	}
}

func names(plugins []Plugin) []string {
	out := make([]string, len(plugins))
	for i, p := range plugins {
		out[i] = p.Name
	}
	return out
}

func TestParseQuery(t *testing.T) {
	q := ParseQuery("  @installed @type:Che_Editor @builtin Yaml ")
	assert.Equal(t, Query{Installed: true, Types: []string{"che_editor"}, Words: []string{"yaml"}}, q)
	assert.Equal(t, Query{}, ParseQuery(""))
}

func TestTypeToken(t *testing.T) {
	assert.Equal(t, "che_editor", TypeToken("Che Editor"))
	assert.Equal(t, "vs_code_extension", TypeToken("VS Code extension"))
}

func TestQueryApply(t *testing.T) {
	installed := installedKeys("redhat/java/0.1", "eclipse/che-theia/next")

	tests := []struct {
		filter string
		want   []string
	}{
		{"", []string{"java", "che-theia", "vscode-yaml"}},
		{"@installed", []string{"java", "che-theia"}},
		{"@type:che_editor", []string{"che-theia"}},
		{"@type:vs_code_extension @installed", []string{"java"}},
		{"YAML", []string{"vscode-yaml"}},
		{"redhat", []string{"java", "vscode-yaml"}},
		{"language java", []string{"java"}},
		{"@unknown", []string{"java", "che-theia", "vscode-yaml"}},
		{"nothing-matches", []string{}},
	}
	for _, tt := range tests {
		got := ParseQuery(tt.filter).Apply(catalog, installed)
		assert.Equal(t, tt.want, names(got), "filter %q", tt.filter)
	}
}

func TestQueryApplyNilInstalled(t *testing.T) {
	assert.Empty(t, ParseQuery("@installed").Apply(catalog, nil))
}
