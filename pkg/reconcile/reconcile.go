// Package reconcile brings a mod list in line with the mods a game log says
// were loaded.
//
// # Overview
//
// A [Driver] runs one synchronization:
//
//  1. Parse the log into mentions and build an inventory. Any error aborts
//     the run before anything is written.
//  2. Walk the inventory in load order. Official mods become enabled,
//     unpinned entries and must all report the same version, which is the
//     engine version. Third-party mods become enabled entries pinned to the
//     logged version; their archives are fetched when not already present.
//  3. Load the current mod list, reset it, upsert every entry from step 2,
//     and normalize the order.
//  4. Save the document.
//
// Any failure is fatal and nothing is saved. Archives fetched before a
// later failure stay on disk.
//
// # Collaborators
//
// The driver owns no I/O. Archive lookup and download go through an
// [ArchiveStore]; loading and saving the mod list goes through a
// [DocumentStore]. Both are called sequentially from the calling goroutine.
//
// # Observability
//
// Every state change is reported to observability.Sync().OnTransition, and
// each archive check and fetch to OnArchive and OnFetchComplete.
package reconcile

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/matzehuels/famtools/pkg/errors"
	"github.com/matzehuels/famtools/pkg/inventory"
	"github.com/matzehuels/famtools/pkg/modlist"
	"github.com/matzehuels/famtools/pkg/modlog"
	"github.com/matzehuels/famtools/pkg/mods"
	"github.com/matzehuels/famtools/pkg/observability"
)

// ArchiveStore locates and downloads mod archives.
type ArchiveStore interface {
	// Exists reports whether the archive for name at version is installed.
	Exists(ctx context.Context, name, version string) (bool, error)

	// Fetch downloads the archive and returns where it was written.
	Fetch(ctx context.Context, name, version string) (string, error)
}

// DocumentStore loads and saves the mod list being reconciled.
type DocumentStore interface {
	Load(ctx context.Context) (*modlist.Document, error)
	Save(ctx context.Context, doc *modlist.Document) error
}

// Options configures a run.
type Options struct {
	// DryRun checks archives but neither fetches them nor saves the
	// document. The would-be document is still returned.
	DryRun bool
}

// Archive names one third-party mod archive.
type Archive struct {
	Name    string
	Version string
}

func (a Archive) String() string { return a.Name + " " + a.Version }

// Result describes a run.
type Result struct {
	// State is the terminal state the run ended in.
	State State

	// Inventory holds the mods found in the log. Nil if parsing failed.
	Inventory *inventory.Inventory

	// EngineVersion is the version shared by all official mods, or empty
	// if the log loaded none.
	EngineVersion string

	// Present lists third-party archives that were already installed.
	Present []Archive

	// Missing lists third-party archives that were not installed. They have
	// been fetched unless the run was a dry run.
	Missing []Archive

	// Document is the reconciled mod list. Nil unless the run reached
	// Reconciled.
	Document *modlist.Document

	// DryRun records whether fetching and saving were skipped.
	DryRun bool
}

// Driver performs reconciliation runs. It holds no per-run state, so one
// Driver can serve consecutive runs.
type Driver struct {
	archives  ArchiveStore
	documents DocumentStore
}

// New creates a driver backed by the given stores.
func New(archives ArchiveStore, documents DocumentStore) *Driver {
	return &Driver{archives: archives, documents: documents}
}

// run tracks one execution and reports its transitions.
type run struct {
	ctx    context.Context
	result *Result
}

func (r *run) enter(s State) {
	from := r.result.State
	r.result.State = s
	observability.Sync().OnTransition(r.ctx, from.String(), s.String())
}

func (r *run) fail(s State, err error) (*Result, error) {
	r.enter(s)
	return r.result, err
}

// Run reconciles the mod list against the log read from log.
//
// The returned Result is never nil; on error its State names the failure.
// Errors keep their codes:
//   - PARSE_ERROR and VERSION_CONFLICT from the log
//   - VERSION_CONFLICT when official mods disagree on the engine version
//   - store errors as returned, or wrapped as DOWNLOAD_ERROR / DOCUMENT_ERROR
//     when the store did not attach a code
func (d *Driver) Run(ctx context.Context, log io.Reader, opts Options) (*Result, error) {
	r := &run{ctx: ctx, result: &Result{State: Idle, DryRun: opts.DryRun}}

	r.enter(Parsing)
	inv, err := inventory.Build(modlog.Mentions(log))
	if err != nil {
		if errors.Is(err, errors.ErrCodeVersionConflict) {
			return r.fail(ConflictFailed, err)
		}
		return r.fail(ParseFailed, err)
	}
	r.result.Inventory = inv
	r.enter(Inventoried)

	r.enter(Reconciling)
	entries, err := d.collect(r, inv, opts)
	if err != nil {
		if errors.Is(err, errors.ErrCodeVersionConflict) {
			return r.fail(ConflictFailed, err)
		}
		return r.fail(DownloadFailed, err)
	}

	doc, err := d.documents.Load(ctx)
	if err != nil {
		return r.fail(DocumentFailed, documentError(err, "load mod list"))
	}
	doc.Reset()
	for _, e := range entries {
		doc.Upsert(e)
	}
	doc.NormalizeOrder()
	r.result.Document = doc
	r.enter(Reconciled)

	if opts.DryRun {
		r.enter(Done)
		return r.result, nil
	}

	r.enter(Persisting)
	if err := d.documents.Save(ctx, doc); err != nil {
		return r.fail(DocumentFailed, documentError(err, "save mod list"))
	}
	r.enter(Done)
	return r.result, nil
}

// collect walks the inventory in load order, derives the engine version,
// ensures third-party archives are present, and returns the entries to
// upsert.
func (d *Driver) collect(r *run, inv *inventory.Inventory, opts Options) ([]modlist.Entry, error) {
	entries := make([]modlist.Entry, 0, inv.Len())
	for name, version := range inv.All() {
		if err := r.ctx.Err(); err != nil {
			return nil, err
		}

		if mods.IsOfficial(name) {
			if engine := r.result.EngineVersion; engine == "" {
				r.result.EngineVersion = version
			} else if engine != version {
				return nil, &errors.VersionConflictError{Mod: name, Existing: engine, Found: version}
			}
			entries = append(entries, modlist.Entry{Name: name, Enabled: true})
			continue
		}

		entries = append(entries, modlist.Entry{Name: name, Enabled: true, Version: version})
		if err := d.ensure(r, Archive{Name: name, Version: version}, opts); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (d *Driver) ensure(r *run, a Archive, opts Options) error {
	ok, err := d.archives.Exists(r.ctx, a.Name, a.Version)
	if err != nil {
		return downloadError(err, "check %s", a)
	}
	observability.Sync().OnArchive(r.ctx, a.Name, a.Version, ok)
	if ok {
		r.result.Present = append(r.result.Present, a)
		return nil
	}

	r.result.Missing = append(r.result.Missing, a)
	if opts.DryRun {
		return nil
	}

	start := time.Now()
	_, err = d.archives.Fetch(r.ctx, a.Name, a.Version)
	observability.Sync().OnFetchComplete(r.ctx, a.Name, a.Version, time.Since(start), err)
	if err != nil {
		return downloadError(err, "fetch %s", a)
	}
	return nil
}

// downloadError keeps coded and context errors intact and tags anything
// else as a download failure.
func downloadError(err error, format string, args ...any) error {
	return tag(errors.ErrCodeDownload, err, format, args...)
}

func documentError(err error, format string, args ...any) error {
	return tag(errors.ErrCodeDocument, err, format, args...)
}

func tag(code errors.Code, err error, format string, args ...any) error {
	if errors.GetCode(err) != "" || stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
	}
	return errors.Wrap(code, err, format, args...)
}
