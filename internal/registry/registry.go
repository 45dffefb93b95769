// Package registry talks to a Che plugin registry: it resolves the default
// registry from the workspace setting, fetches the plugin index and each
// plugin's meta.yaml, derives plugin keys and filters plugin lists.
package registry

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultURI is used when the workspace does not name a registry.
	DefaultURI  = "https://che-plugin-registry.openshift.io/plugins/"
	DefaultName = "Eclipse Che plugin registry"

	workspaceRegistryName = "Eclipse Che plugins"
	editorType            = "Che Editor"
)

// Registry is a plugin registry endpoint.
type Registry struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// Resolve returns the default registry for a workspace registry setting.
// The setting is normalized to end in "/plugins/"; an empty setting yields the
// public registry.
func Resolve(setting string) Registry {
	uri := strings.TrimSpace(setting)
	if uri == "" {
		return Registry{Name: DefaultName, URI: DefaultURI}
	}
	uri = strings.TrimSuffix(uri, "/")
	if !strings.HasSuffix(uri, "/plugins") {
		uri += "/plugins"
	}
	return Registry{Name: workspaceRegistryName, URI: uri + "/"}
}

// Source holds the default registry, which is unknown until the workspace
// settings have been read.
type Source struct {
	reg      Registry
	resolved bool
}

// Unresolved returns a Source with no registry yet.
func Unresolved() Source { return Source{} }

// Resolved returns a Source holding reg.
func Resolved(reg Registry) Source { return Source{reg: reg, resolved: true} }

// Registry returns the registry and whether it has been resolved.
func (s Source) Registry() (Registry, bool) { return s.reg, s.resolved }

// Entry is one item of a registry index.
type Entry struct {
	ID          string            `json:"id"`
	DisplayName string            `json:"displayName"`
	Version     string            `json:"version"`
	Type        string            `json:"type"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Publisher   string            `json:"publisher"`
	Links       map[string]string `json:"links"`
}

// Plugin is the metadata of one plugin as described by its meta.yaml.
type Plugin struct {
	Publisher            string `yaml:"publisher" json:"publisher"`
	Name                 string `yaml:"name" json:"name"`
	Version              string `yaml:"version" json:"version"`
	Type                 string `yaml:"type" json:"type"`
	DisplayName          string `yaml:"displayName" json:"displayName"`
	Title                string `yaml:"title" json:"title"`
	Description          string `yaml:"description" json:"description"`
	Icon                 string `yaml:"icon" json:"icon"`
	URL                  string `yaml:"url" json:"url"`
	Repository           string `yaml:"repository" json:"repository"`
	FirstPublicationDate string `yaml:"firstPublicationDate" json:"firstPublicationDate"`
	Category             string `yaml:"category" json:"category"`
	LatestUpdateDate     string `yaml:"latestUpdateDate" json:"latestUpdateDate"`

	// Disabled plugins cannot be installed or removed from the list.
	Disabled bool `yaml:"-" json:"disabled"`
	// Key identifies the plugin in the workspace plugin list.
	Key string `yaml:"-" json:"key"`
}

// Label returns the name shown in plugin lists.
func (p Plugin) Label() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Name
}

// MetaURI returns the location of the meta.yaml describing e.
//
//	links.self "/a/b"  → scheme://host/a/b
//	links.self "a/b"   → <registry base>a/b
//	no links           → <registry base><id>/meta.yaml
func MetaURI(reg Registry, e Entry) (string, error) {
	self := e.Links["self"]
	if strings.HasPrefix(self, "/") {
		u, err := url.Parse(reg.URI)
		if err != nil {
			return "", fmt.Errorf("parse registry uri %q: %w", reg.URI, err)
		}
		return u.Scheme + "://" + u.Host + self, nil
	}
	if self != "" {
		return baseDir(reg) + self, nil
	}
	return baseDir(reg) + e.ID + "/meta.yaml", nil
}

// baseDir returns the directory the registry index lives in, with a trailing slash.
func baseDir(reg Registry) string {
	uri := reg.URI
	if strings.HasSuffix(uri, ".json") {
		return uri[:strings.LastIndex(uri, "/")+1]
	}
	if !strings.HasSuffix(uri, "/") {
		uri += "/"
	}
	return uri
}

// Key returns publisher/name/version. With long set, the key is prefixed by
// the registry location the metadata came from, so plugins from other
// registries stay distinguishable.
func Key(p Plugin, metaURI string, long bool) string {
	key := p.Publisher + "/" + p.Name + "/" + p.Version
	if !long {
		return key
	}
	if strings.HasSuffix(metaURI, key) {
		return metaURI
	}
	if prefix, ok := strings.CutSuffix(metaURI, key+"/meta.yaml"); ok {
		return prefix + key
	}
	return key
}
