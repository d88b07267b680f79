// Package moddir manages mod archives inside a Factorio mods directory.
//
// # Layout
//
// The game accepts a mod in any of three forms, and [Dir.Exists] recognizes
// all of them:
//
//   - <name>_<version>.zip, the archive as downloaded from the portal
//   - <name>_<version>/, an unpacked archive
//   - <name>/info.json whose "version" field equals the version, the layout
//     mod authors use during development
//
// # Downloads
//
// [Dir.Fetch] resolves the release on the mod portal, streams the archive
// into a hidden temporary file next to its destination, verifies its SHA-1
// against the portal's, and renames it to <name>_<version>.zip. A failed or
// interrupted download never leaves a file under the final name.
//
// Dir implements the archive store used by the reconcile package.
package moddir

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/famtools/pkg/errors"
	"github.com/matzehuels/famtools/pkg/factorio"
	"github.com/matzehuels/famtools/pkg/integrations/modportal"
)

// Portal is the subset of the mod portal client a Dir needs.
type Portal interface {
	FetchMod(ctx context.Context, name string, refresh bool) (*modportal.ModInfo, error)
	Download(ctx context.Context, r modportal.Release, username, token string) (io.ReadCloser, int64, error)
}

// Progress observes a single download. Start is called once the archive
// size is known (-1 if the portal does not announce it), Advance for every
// chunk written, and Finish exactly once.
type Progress interface {
	Start(file string, total int64)
	Advance(n int64)
	Finish(err error)
}

// Config configures a Dir.
type Config struct {
	// Portal resolves releases and serves archives. Required for Fetch.
	Portal Portal

	// Credentials returns the portal login. It is called lazily, so
	// directories that never download do not need player-data.json.
	Credentials func() (factorio.Credentials, error)

	// SkipVerify disables the SHA-1 check after download.
	SkipVerify bool

	// Progress, if set, observes every download.
	Progress Progress
}

// Dir is a mods directory.
type Dir struct {
	path string
	cfg  Config
}

// New returns a Dir rooted at path. The directory must already exist
// before Fetch is called.
func New(path string, cfg Config) *Dir {
	if cfg.Progress == nil {
		cfg.Progress = nopProgress{}
	}
	return &Dir{path: path, cfg: cfg}
}

// Path returns the directory path.
func (d *Dir) Path() string { return d.path }

// ArchiveName returns the file name the portal and the game use for an
// archive.
func ArchiveName(name, version string) string {
	return name + "_" + version + ".zip"
}

// Exists reports whether name at version is installed in any of the three
// recognized forms. An info.json that cannot be parsed counts as not
// installed.
func (d *Dir) Exists(ctx context.Context, name, version string) (bool, error) {
	if err := errors.ValidateModName(name); err != nil {
		return false, err
	}

	if ok, err := isFile(filepath.Join(d.path, ArchiveName(name, version))); ok || err != nil {
		return ok, err
	}
	if ok, err := isDir(filepath.Join(d.path, name+"_"+version)); ok || err != nil {
		return ok, err
	}

	data, err := os.ReadFile(filepath.Join(d.path, name, "info.json"))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	var info struct {
		Version string `json:"version"`
	}
	if json.Unmarshal(data, &info) != nil {
		return false, nil
	}
	return info.Version == version, nil
}

// Fetch downloads name at version into the directory and returns the path
// of the archive. An empty version selects the latest release.
//
// Errors carry codes: INVALID_MOD_NAME, REGISTRY_ERROR (unknown mod or
// version), CREDENTIALS_ERROR, DOWNLOAD_ERROR and CHECKSUM_MISMATCH.
func (d *Dir) Fetch(ctx context.Context, name, version string) (string, error) {
	if err := errors.ValidateModName(name); err != nil {
		return "", err
	}
	if d.cfg.Portal == nil {
		return "", errors.New(errors.ErrCodeDownload, "no mod portal configured")
	}

	info, err := d.cfg.Portal.FetchMod(ctx, name, false)
	if err != nil {
		return "", err
	}
	rel, err := info.ResolveVersion(version)
	if err != nil {
		return "", err
	}

	creds, err := d.credentials()
	if err != nil {
		return "", err
	}

	dest := filepath.Join(d.path, ArchiveName(name, rel.Version))
	if err := d.download(ctx, rel, creds, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func (d *Dir) credentials() (factorio.Credentials, error) {
	if d.cfg.Credentials == nil {
		return factorio.Credentials{}, errors.New(errors.ErrCodeCredentials, "no portal credentials configured")
	}
	return d.cfg.Credentials()
}

func (d *Dir) download(ctx context.Context, rel modportal.Release, creds factorio.Credentials, dest string) (err error) {
	file := filepath.Base(dest)
	body, size, err := d.cfg.Portal.Download(ctx, rel, creds.Username, creds.Token)
	if err != nil {
		return err
	}
	defer body.Close()

	d.cfg.Progress.Start(file, size)
	defer func() { d.cfg.Progress.Finish(err) }()

	tmp := filepath.Join(d.path, fmt.Sprintf(".%s.%s.part", file, uuid.NewString()))
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(errors.ErrCodeDownload, err, "create %s", tmp)
	}
	defer os.Remove(tmp)

	h := sha1.New()
	w := io.MultiWriter(f, h, progressWriter{d.cfg.Progress})
	if _, err := io.Copy(w, contextReader{ctx: ctx, r: body}); err != nil {
		f.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrap(errors.ErrCodeDownload, err, "download %s", file)
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeDownload, err, "write %s", tmp)
	}

	if !d.cfg.SkipVerify && rel.SHA1 != "" {
		if got := hex.EncodeToString(h.Sum(nil)); !strings.EqualFold(got, rel.SHA1) {
			return errors.New(errors.ErrCodeChecksumMismatch, "%s: sha1 %s, portal says %s", file, got, rel.SHA1)
		}
	}

	if err := os.Rename(tmp, dest); err != nil {
		return errors.Wrap(errors.ErrCodeDownload, err, "move %s into place", file)
	}
	return nil
}

func isFile(path string) (bool, error) {
	fi, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return fi.Mode().IsRegular(), nil
}

func isDir(path string) (bool, error) {
	fi, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return fi.IsDir(), nil
}

type progressWriter struct{ p Progress }

func (w progressWriter) Write(b []byte) (int, error) {
	w.p.Advance(int64(len(b)))
	return len(b), nil
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (r contextReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

type nopProgress struct{}

func (nopProgress) Start(string, int64) {}
func (nopProgress) Advance(int64)       {}
func (nopProgress) Finish(error)        {}
