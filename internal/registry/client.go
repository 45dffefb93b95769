package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/che-incubator/che-plugins/internal/logger"
)

// DefaultConcurrency bounds parallel meta.yaml fetches.
const DefaultConcurrency = 8

// Client fetches plugin indexes and metadata from registries.
type Client struct {
	HTTP *http.Client
	Log  *logger.Logger

	// LocalIndex, if set, is read when the registry index cannot be fetched.
	LocalIndex string
	// Concurrency limits parallel metadata fetches. Zero means DefaultConcurrency.
	Concurrency int
}

// NewClient returns a client whose requests time out after timeout.
func NewClient(timeout time.Duration, log *logger.Logger) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = logger.NewDiscard()
	}
	return &Client{HTTP: &http.Client{Timeout: timeout}, Log: log}
}

// List returns the index of reg using the fallback chain:
//
//	Registry URI → LocalIndex file
//
// A LocalIndex that exists but does not parse is an error.
func (c *Client) List(ctx context.Context, reg Registry) ([]Entry, error) {
	entries, err := c.listRemote(ctx, reg.URI)
	if err == nil {
		return entries, nil
	}
	if c.LocalIndex == "" {
		return nil, err
	}

	data, readErr := os.ReadFile(c.LocalIndex)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return nil, err
		}
		return nil, fmt.Errorf("read local index %s: %w", c.LocalIndex, readErr)
	}
	c.Log.Warnf("registry %s unavailable (%v), using %s", reg.URI, err, c.LocalIndex)
	return parseIndex(data)
}

func (c *Client) listRemote(ctx context.Context, uri string) ([]Entry, error) {
	data, err := c.get(ctx, uri, true)
	if err != nil {
		return nil, err
	}
	return parseIndex(data)
}

func parseIndex(data []byte) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse registry index: %w", err)
	}
	return entries, nil
}

// Metadata loads the meta.yaml at uri. If uri does not hold plugin metadata,
// uri + "/meta.yaml" is tried.
func (c *Client) Metadata(ctx context.Context, uri string) (Plugin, error) {
	p, err := c.loadYAML(ctx, uri)
	if err == nil {
		return p, nil
	}
	alt := uri
	if alt != "" && alt[len(alt)-1] != '/' {
		alt += "/"
	}
	alt += "meta.yaml"
	p, altErr := c.loadYAML(ctx, alt)
	if altErr != nil {
		return Plugin{}, fmt.Errorf("load plugin metadata %s: %w", uri, err)
	}
	return p, nil
}

func (c *Client) loadYAML(ctx context.Context, uri string) (Plugin, error) {
	data, err := c.get(ctx, uri, false)
	if err != nil {
		return Plugin{}, err
	}
	var p Plugin
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Plugin{}, fmt.Errorf("parse %s: %w", uri, err)
	}
	if p.Name == "" && p.Publisher == "" {
		return Plugin{}, fmt.Errorf("parse %s: no plugin metadata", uri)
	}
	return p, nil
}

// Plugins lists reg and loads the metadata of every entry. Plugins from a
// registry other than def get long keys. A single failed fetch fails the
// whole listing.
func (c *Client) Plugins(ctx context.Context, reg, def Registry) ([]Plugin, error) {
	entries, err := c.List(ctx, reg)
	if err != nil {
		return nil, err
	}
	long := reg.URI != def.URI

	limit := c.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	plugins := make([]Plugin, len(entries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, e := range entries {
		g.Go(func() error {
			uri, err := MetaURI(reg, e)
			if err != nil {
				return err
			}
			p, err := c.Metadata(ctx, uri)
			if err != nil {
				return err
			}
			p.Key = Key(p, uri, long)
			p.Disabled = p.Type == editorType
			plugins[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	c.Log.Debugf("loaded %d plugins from %s", len(plugins), reg.URI)
	return plugins, nil
}

func (c *Client) get(ctx context.Context, uri string, noCache bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", uri, err)
	}
	if noCache {
		req.Header.Set("Cache-Control", "no-cache")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", uri, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", uri, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", uri, err)
	}
	return data, nil
}
