package modlist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/famtools/pkg/errors"
)

// FileName is the name the game uses for the mod list inside the mods
// directory.
const FileName = "mod-list.json"

// Decode reads a document from r.
//
// Returns an *errors.Error with code DOCUMENT_ERROR if the JSON is
// malformed or followed by more data, the "mods" key is missing, an entry has no name, or a name
// appears twice.
func Decode(r io.Reader) (*Document, error) {
	var raw struct {
		Mods *[]Entry `json:"mods"`
	}
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDocument, err, "decode mod list")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, errors.New(errors.ErrCodeDocument, "mod list has trailing data after the JSON document")
	}
	if raw.Mods == nil {
		return nil, errors.New(errors.ErrCodeDocument, "mod list has no \"mods\" array")
	}

	doc := &Document{Mods: *raw.Mods}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

func (d *Document) validate() error {
	seen := make(map[string]bool, len(d.Mods))
	for i, e := range d.Mods {
		if e.Name == "" {
			return errors.New(errors.ErrCodeDocument, "mod list entry %d has no name", i)
		}
		if seen[e.Name] {
			return errors.New(errors.ErrCodeDocument, "mod %q listed more than once", e.Name)
		}
		seen[e.Name] = true
	}
	return nil
}

// Encode writes doc to w as indented JSON followed by a newline.
func Encode(w io.Writer, doc *Document) error {
	out := doc
	if doc.Mods == nil {
		out = &Document{Mods: []Entry{}}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// Load reads the document at path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDocument, err, "open %s", path)
	}
	defer f.Close()

	doc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Save writes doc to path, replacing any existing file atomically.
func Save(path string, doc *Document) error {
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return errors.Wrap(errors.ErrCodeDocument, err, "encode mod list")
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".mod-list-*.json")
	if err != nil {
		return errors.Wrap(errors.ErrCodeDocument, err, "create temp file in %s", dir)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeDocument, err, "write %s", tmpPath)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeDocument, err, "close %s", tmpPath)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Wrap(errors.ErrCodeDocument, err, "replace %s", path)
	}
	return nil
}

// FileStore loads and saves a single mod-list file.
// A missing file loads as an empty document so a fresh mods directory can
// be synced.
type FileStore struct {
	Path string
}

// NewFileStore creates a store for the mod list inside modsDir.
func NewFileStore(modsDir string) *FileStore {
	return &FileStore{Path: filepath.Join(modsDir, FileName)}
}

// Load reads the document, or returns an empty one if the file does not
// exist.
func (s *FileStore) Load(ctx context.Context) (*Document, error) {
	if _, err := os.Stat(s.Path); os.IsNotExist(err) {
		return New(), nil
	}
	return Load(s.Path)
}

// Save writes the document.
func (s *FileStore) Save(ctx context.Context, doc *Document) error {
	return Save(s.Path, doc)
}
