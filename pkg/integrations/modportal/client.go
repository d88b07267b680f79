package modportal

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/matzehuels/famtools/pkg/cache"
	"github.com/matzehuels/famtools/pkg/errors"
	"github.com/matzehuels/famtools/pkg/integrations"
	"github.com/matzehuels/famtools/pkg/mods"
)

// DefaultBaseURL is the public Factorio mod portal.
const DefaultBaseURL = "https://mods.factorio.com"

// ModInfo holds portal metadata for one mod.
//
// Releases are kept in the order the portal returned them; use
// [ModInfo.Versions] for numeric order. Safe for concurrent reads.
type ModInfo struct {
	Name     string    `json:"name"`
	Title    string    `json:"title,omitempty"`
	Summary  string    `json:"summary,omitempty"`
	Owner    string    `json:"owner,omitempty"`
	Releases []Release `json:"releases"`
}

// Release is one published version of a mod.
type Release struct {
	Version         string    `json:"version"`
	DownloadURL     string    `json:"download_url"` // path relative to the portal, e.g. "/download/flib/5f1a..."
	FileName        string    `json:"file_name"`
	SHA1            string    `json:"sha1"`
	ReleasedAt      time.Time `json:"released_at,omitzero"`
	FactorioVersion string    `json:"factorio_version,omitempty"` // e.g. "2.0"
}

// Versions returns every released version, lowest first.
func (m *ModInfo) Versions() []string {
	versions := make([]string, len(m.Releases))
	for i, r := range m.Releases {
		versions[i] = r.Version
	}
	mods.SortVersions(versions)
	return versions
}

// Latest returns the highest released version, or "" if there are no
// releases.
func (m *ModInfo) Latest() string {
	return mods.LatestVersion(m.Versions())
}

// HasVersion reports whether version was released.
func (m *ModInfo) HasVersion(version string) bool {
	_, ok := m.Release(version)
	return ok
}

// Release returns the release with exactly the given version.
func (m *ModInfo) Release(version string) (Release, bool) {
	for _, r := range m.Releases {
		if r.Version == version {
			return r, true
		}
	}
	return Release{}, false
}

// ResolveVersion returns the release for version, or for the latest version
// when version is empty.
//
// Returns an *errors.Error with code REGISTRY_ERROR if the mod has no
// releases or the version was never released.
func (m *ModInfo) ResolveVersion(version string) (Release, error) {
	if version == "" {
		version = m.Latest()
		if version == "" {
			return Release{}, errors.New(errors.ErrCodeRegistry, "%s has no releases", m.Name)
		}
	}
	r, ok := m.Release(version)
	if !ok {
		return Release{}, errors.New(errors.ErrCodeRegistry, "Version %s of %s not found", version, m.Name)
	}
	return r, nil
}

// Client provides access to the Factorio mod portal API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a client for the public mod portal.
//
// Parameters:
//   - backend: cache for portal responses (nil disables caching)
//   - cacheTTL: how long responses are cached
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return NewClientWithURL(backend, cacheTTL, DefaultBaseURL)
}

// NewClientWithURL creates a client for a portal at baseURL, such as a
// mirror configured in the tool's config file.
func NewClientWithURL(backend cache.Cache, cacheTTL time.Duration, baseURL string) *Client {
	headers := map[string]string{
		"User-Agent": integrations.UserAgent(),
		"Accept":     "application/json",
	}
	return &Client{
		Client:  integrations.NewClient(backend, "modportal:", cacheTTL, headers),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// BaseURL returns the portal root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchMod retrieves the full metadata for a mod, including all releases.
//
// If refresh is true, the cache is bypassed and a fresh API call is made.
//
// Returns:
//   - ModInfo on success (never nil if err is nil)
//   - *errors.Error with code INVALID_MOD_NAME for a malformed name
//   - *errors.Error with code REGISTRY_ERROR wrapping [integrations.ErrNotFound]
//     if the portal does not know the mod
//   - *errors.Error with code NETWORK_ERROR wrapping [integrations.ErrNetwork]
//     for HTTP failures
func (c *Client) FetchMod(ctx context.Context, name string, refresh bool) (*ModInfo, error) {
	if err := errors.ValidateModName(name); err != nil {
		return nil, err
	}

	var info ModInfo
	err := c.Cached(ctx, name, refresh, &info, func() error {
		return c.fetch(ctx, name, &info)
	})
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case stderrors.Is(err, integrations.ErrNotFound):
			return nil, errors.Wrap(errors.ErrCodeRegistry, err, "mod %s", name)
		case stderrors.Is(err, integrations.ErrNetwork):
			return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch mod %s", name)
		}
		return nil, errors.Wrap(errors.ErrCodeRegistry, err, "fetch mod %s", name)
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, name string, info *ModInfo) error {
	var data modResponse
	url := fmt.Sprintf("%s/api/mods/%s/full", c.baseURL, integrations.PathEscape(name))
	if err := c.Get(ctx, url, &data); err != nil {
		return err
	}

	*info = ModInfo{
		Name:     data.Name,
		Title:    data.Title,
		Summary:  data.Summary,
		Owner:    data.Owner,
		Releases: make([]Release, 0, len(data.Releases)),
	}
	for _, r := range data.Releases {
		info.Releases = append(info.Releases, Release{
			Version:         r.Version,
			DownloadURL:     r.DownloadURL,
			FileName:        r.FileName,
			SHA1:            r.SHA1,
			ReleasedAt:      r.ReleasedAt,
			FactorioVersion: r.InfoJSON.FactorioVersion,
		})
	}
	return nil
}

// DownloadURL returns the authenticated URL for a release archive.
// The portal only serves archives to requests carrying a valid username and
// service token.
func (c *Client) DownloadURL(r Release, username, token string) string {
	return c.baseURL + r.DownloadURL +
		"?username=" + integrations.URLEncode(username) +
		"&token=" + integrations.URLEncode(token)
}

// Download opens the archive for release r. The caller must close the
// returned body. size is -1 when the portal does not announce a length.
//
// Failures are returned as *errors.Error with code DOWNLOAD_ERROR; the
// request is not retried. The error never contains the token.
func (c *Client) Download(ctx context.Context, r Release, username, token string) (body io.ReadCloser, size int64, err error) {
	body, size, err = c.Stream(ctx, c.DownloadURL(r, username, token))
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, errors.Wrap(errors.ErrCodeDownload, redact(err, token), "download %s", r.FileName)
	}
	return body, size, nil
}

// redact strips the token from err's message. url.Error embeds the full
// request URL, query string included.
func redact(err error, token string) error {
	if token == "" || !strings.Contains(err.Error(), token) {
		return err
	}
	return stderrors.New(strings.ReplaceAll(err.Error(), token, "REDACTED"))
}

type modResponse struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Owner    string `json:"owner"`
	Releases []struct {
		Version     string    `json:"version"`
		DownloadURL string    `json:"download_url"`
		FileName    string    `json:"file_name"`
		SHA1        string    `json:"sha1"`
		ReleasedAt  time.Time `json:"released_at"`
		InfoJSON    struct {
			FactorioVersion string `json:"factorio_version"`
		} `json:"info_json"`
	} `json:"releases"`
}
