package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"
)

const javaMeta = `publisher: redhat
name: java
version: 0.1
type: VS Code extension
displayName: Language Support for Java
description: Java support
firstPublicationDate: 2019-02-05
`

const theiaMeta = `publisher: eclipse
name: che-theia
version: next
type: Che Editor
displayName: Eclipse Theia
`

// fakeRegistry serves an index at /plugins/ and meta files below it.
type fakeRegistry struct {
	mu       sync.Mutex
	requests []string
	noCache  bool
}

func (f *fakeRegistry) handler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/plugins/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.URL.Path)
		f.mu.Unlock()

		switch r.URL.Path {
		case "/plugins/":
			f.mu.Lock()
			f.noCache = r.Header.Get("Cache-Control") == "no-cache"
			f.mu.Unlock()
			entries := []Entry{
				{ID: "redhat/java/0.1", Links: map[string]string{"self": "/plugins/redhat/java/0.1/meta.yaml"}},
				{ID: "eclipse/che-theia/next", Links: map[string]string{"self": "eclipse/che-theia/next"}},
			}
			json.NewEncoder(w).Encode(entries)
		case "/plugins/redhat/java/0.1/meta.yaml":
			w.Write([]byte(javaMeta))
		case "/plugins/eclipse/che-theia/next/meta.yaml":
			w.Write([]byte(theiaMeta))
		default:
			http.NotFound(w, r)
		}
	})
	return mux
}

func newTestClient() *Client {
	return NewClient(2*time.Second, nil)
}

// TestListSendsNoCache verifies the index request bypasses caches.
func TestListSendsNoCache(t *testing.T) {
	f := &fakeRegistry{}
	srv := httptest.NewServer(f.handler(t))
	defer srv.Close()

	entries, err := newTestClient().List(context.Background(), Registry{URI: srv.URL + "/plugins/"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("List() len = %d, want 2", len(entries))
	}
	if !f.noCache {
		t.Error("index request missing Cache-Control: no-cache")
	}
}

// TestListFallsBackToLocalIndex verifies a failed fetch reads LocalIndex.
func TestListFallsBackToLocalIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "index.json")
	if err := os.WriteFile(path, []byte(`[{"id": "local/plugin/1"}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	c := newTestClient()
	c.LocalIndex = path
	entries, err := c.List(context.Background(), Registry{URI: srv.URL})
	if err != nil {
		t.Fatalf("List() should fall back to local index, got error = %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "local/plugin/1" {
		t.Errorf("List() = %+v, want the local entry", entries)
	}
}

// TestListLocalIndexMissing verifies the remote error is kept when LocalIndex is absent.
func TestListLocalIndexMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient()
	c.LocalIndex = filepath.Join(t.TempDir(), "missing.json")
	_, err := c.List(context.Background(), Registry{URI: srv.URL})
	if err == nil || !strings.Contains(err.Error(), "status 500") {
		t.Errorf("List() error = %v, want the remote status error", err)
	}
}

// TestListInvalidLocalIndex verifies a corrupt local index is an error.
func TestListInvalidLocalIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte("{not valid json"), 0o644)

	c := newTestClient()
	c.LocalIndex = path
	if _, err := c.List(context.Background(), Registry{URI: "http://127.0.0.1:0/plugins/"}); err == nil {
		t.Error("expected error for invalid local index, got nil")
	}
}

// TestMetadataAppendsMetaYAML verifies the meta.yaml retry.
func TestMetadataAppendsMetaYAML(t *testing.T) {
	srv := httptest.NewServer((&fakeRegistry{}).handler(t))
	defer srv.Close()

	p, err := newTestClient().Metadata(context.Background(), srv.URL+"/plugins/eclipse/che-theia/next")
	if err != nil {
		t.Fatalf("Metadata() error = %v", err)
	}
	if p.Name != "che-theia" {
		t.Errorf("Name = %q, want %q", p.Name, "che-theia")
	}
}

// TestMetadataNotFound verifies both attempts failing is an error.
func TestMetadataNotFound(t *testing.T) {
	srv := httptest.NewServer((&fakeRegistry{}).handler(t))
	defer srv.Close()

	if _, err := newTestClient().Metadata(context.Background(), srv.URL+"/plugins/nope"); err == nil {
		t.Error("expected error for missing metadata, got nil")
	}
}

// TestPlugins verifies metadata loading, keys and disabled editors.
func TestPlugins(t *testing.T) {
	srv := httptest.NewServer((&fakeRegistry{}).handler(t))
	defer srv.Close()
	reg := Registry{URI: srv.URL + "/plugins/"}

	plugins, err := newTestClient().Plugins(context.Background(), reg, reg)
	if err != nil {
		t.Fatalf("Plugins() error = %v", err)
	}
	if len(plugins) != 2 {
		t.Fatalf("Plugins() len = %d, want 2", len(plugins))
	}

	java, theia := plugins[0], plugins[1]
	if java.Key != "redhat/java/0.1" {
		t.Errorf("java.Key = %q, want %q", java.Key, "redhat/java/0.1")
	}
	if java.Disabled {
		t.Error("java.Disabled = true, want false")
	}
	if java.FirstPublicationDate != "2019-02-05" {
		t.Errorf("java.FirstPublicationDate = %q", java.FirstPublicationDate)
	}
	if !theia.Disabled {
		t.Error("editor plugin should be disabled")
	}
}

// TestPluginsLongKeys verifies keys of a non-default registry carry its location.
func TestPluginsLongKeys(t *testing.T) {
	srv := httptest.NewServer((&fakeRegistry{}).handler(t))
	defer srv.Close()
	reg := Registry{URI: srv.URL + "/plugins/"}

	plugins, err := newTestClient().Plugins(context.Background(), reg, Resolve(""))
	if err != nil {
		t.Fatalf("Plugins() error = %v", err)
	}
	keys := []string{plugins[0].Key, plugins[1].Key}
	sort.Strings(keys)
	want := []string{
		srv.URL + "/plugins/eclipse/che-theia/next",
		srv.URL + "/plugins/redhat/java/0.1",
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

// TestPluginsFailure verifies a single failed metadata fetch fails the listing.
func TestPluginsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/plugins/" {
			w.Write([]byte(`[{"id": "a/b/1"}, {"id": "c/d/2"}]`))
			return
		}
		if strings.HasPrefix(r.URL.Path, "/plugins/a/b/1") {
			w.Write([]byte("publisher: a\nname: b\nversion: 1\n"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()
	reg := Registry{URI: srv.URL + "/plugins/"}

	if _, err := newTestClient().Plugins(context.Background(), reg, reg); err == nil {
		t.Error("expected error when one plugin's metadata is missing, got nil")
	}
}
