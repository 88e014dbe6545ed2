// Package registry fetches the remote binary manifest and acquires
// precompiled package builds, resolving unavailable variants through a
// deterministic fallback chain.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/launchpad-sh/launchpad/pkg/platform"
)

const (
	manifestPath    = "/manifest.json"
	manifestBodyMax = 8 << 20 // 8MB
	artifactBodyMax = 1 << 30 // 1GB
	defaultTimeout  = 60 * time.Second
	defaultAttempts = 3
)

// ClientOptions configures the registry client. Zero values receive defaults.
type ClientOptions struct {
	Timeout     time.Duration // HTTP client timeout (default 60s)
	MaxAttempts int           // retry attempts (default 3)
	Logger      *zap.Logger
}

// Client talks to one binary registry.
type Client struct {
	base        *url.URL
	httpClient  *http.Client
	maxAttempts int
	log         *zap.Logger
}

// NewClient creates a registry client for a base URL.
func NewClient(baseURL string, opts ClientOptions) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("registry URL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse registry URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("registry URL must include scheme and host")
	}
	u.Path = strings.TrimRight(u.Path, "/")

	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultAttempts
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		base:        u,
		httpClient:  &http.Client{Timeout: opts.Timeout},
		maxAttempts: opts.MaxAttempts,
		log:         log,
	}, nil
}

// BaseURL returns the normalized registry base URL.
func (c *Client) BaseURL() string { return c.base.String() }

func (c *Client) manifestURL() string {
	u := *c.base
	u.Path += manifestPath
	return u.String()
}

// FetchManifest retrieves and decodes the remote manifest. Any transport
// failure, non-200 status, or undecodable body resolves to a
// *ManifestUnavailableError wrapping the cause.
func (c *Client) FetchManifest(ctx context.Context) (*Manifest, error) {
	murl := c.manifestURL()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, murl, nil)
	if err != nil {
		return nil, &ManifestUnavailableError{URL: murl, Err: err}
	}
	resp, err := retryDo(c.httpClient, req, c.maxAttempts)
	if err != nil {
		return nil, &ManifestUnavailableError{URL: murl, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, manifestBodyMax))
	if err != nil {
		return nil, &ManifestUnavailableError{URL: murl, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ManifestUnavailableError{
			URL: murl,
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var m Manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, &ManifestUnavailableError{URL: murl, Err: fmt.Errorf("decode manifest: %w", err)}
	}
	if m.Packages == nil {
		m.Packages = map[string]map[platform.Platform]map[platform.Arch][]Artifact{}
	}
	c.log.Debug("fetched binary manifest", zap.String("url", murl), zap.Int("packages", len(m.Packages)))
	return &m, nil
}

// ListAvailable returns the package names with at least one artifact for the
// host tuple. Emptiness is not an error for this call.
func (c *Client) ListAvailable(ctx context.Context, p platform.Platform, a platform.Arch) ([]string, error) {
	m, err := c.FetchManifest(ctx)
	if err != nil {
		return nil, err
	}
	return m.PackageNames(p, a), nil
}

// Support is the result of a support probe: OK with no cause, not-OK with the
// underlying reason preserved for diagnostics.
type Support struct {
	OK    bool
	Cause error
}

// IsSupported reports whether the registry is reachable and publishes at
// least one binary for the host tuple. It never fails: an unreachable
// manifest resolves to a not-supported result carrying the cause.
func (c *Client) IsSupported(ctx context.Context, p platform.Platform, a platform.Arch) Support {
	m, err := c.FetchManifest(ctx)
	if err != nil {
		return Support{OK: false, Cause: err}
	}
	if len(m.PackageNames(p, a)) == 0 {
		return Support{OK: false, Cause: fmt.Errorf("registry has no binaries for %s/%s", p, a)}
	}
	return Support{OK: true}
}

// download opens a streaming reader for an artifact URL, which may be
// relative to the registry base.
func (c *Client) download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	ref, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse artifact URL %q: %w", rawURL, err)
	}
	full := c.base.ResolveReference(ref).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return nil, err
	}
	resp, err := retryDo(c.httpClient, req, c.maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", full, err)
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("download %s: status %d", full, resp.StatusCode)
	}
	return newLimitedReadCloser(resp.Body, artifactBodyMax), nil
}

type limitedReadCloser struct {
	io.Reader
	closer io.Closer
}

func newLimitedReadCloser(rc io.ReadCloser, n int64) io.ReadCloser {
	return &limitedReadCloser{Reader: io.LimitReader(rc, n), closer: rc}
}

func (l *limitedReadCloser) Close() error { return l.closer.Close() }
