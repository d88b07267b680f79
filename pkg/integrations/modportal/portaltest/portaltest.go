// Package portaltest runs an in-process fake of the Factorio mod portal for
// tests.
//
//	srv := portaltest.New(t)
//	srv.Publish("flib", "0.15.0", []byte("archive bytes"))
//	client := modportal.NewClientWithURL(nil, time.Hour, srv.URL)
//
// The fake serves the metadata endpoint and authenticated archive downloads.
// Downloads require the username and token in [Username] and [Token].
package portaltest

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
)

// Credentials accepted for downloads.
const (
	Username = "engineer"
	Token    = "s3cr3t-token"
)

// Server is a fake mod portal.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	mods     map[string]*mod
	archives map[string][]byte

	// MetadataRequests counts calls to the metadata endpoint.
	MetadataRequests atomic.Int32
	// DownloadRequests counts calls to the download endpoint.
	DownloadRequests atomic.Int32
}

type mod struct {
	Name     string    `json:"name"`
	Title    string    `json:"title"`
	Summary  string    `json:"summary"`
	Owner    string    `json:"owner"`
	Releases []release `json:"releases"`
}

type release struct {
	Version     string `json:"version"`
	DownloadURL string `json:"download_url"`
	FileName    string `json:"file_name"`
	SHA1        string `json:"sha1"`
	ReleasedAt  string `json:"released_at"`
	InfoJSON    struct {
		FactorioVersion string `json:"factorio_version"`
	} `json:"info_json"`
}

// New starts a fake portal and stops it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{mods: make(map[string]*mod), archives: make(map[string][]byte)}

	r := chi.NewRouter()
	r.Get("/api/mods/{name}/full", s.handleMod)
	r.Get("/download/{name}/{version}", s.handleDownload)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Publish adds a release of name with the given archive contents and
// returns the SHA-1 the portal advertises for it.
func (s *Server) Publish(name, version string, archive []byte) string {
	sum := sha1.Sum(archive)
	return s.PublishWithSHA1(name, version, archive, hex.EncodeToString(sum[:]))
}

// PublishWithSHA1 adds a release whose advertised checksum is sha, which
// need not match the archive.
func (s *Server) PublishWithSHA1(name, version string, archive []byte, sha string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.mods[name]
	if !ok {
		m = &mod{Name: name, Title: name, Owner: "factorio-modder", Summary: "A mod called " + name}
		s.mods[name] = m
	}
	rel := release{
		Version:     version,
		DownloadURL: fmt.Sprintf("/download/%s/%s", name, version),
		FileName:    fmt.Sprintf("%s_%s.zip", name, version),
		SHA1:        sha,
		ReleasedAt:  "2024-10-21T12:00:00.000000Z",
	}
	rel.InfoJSON.FactorioVersion = "2.0"
	m.Releases = append(m.Releases, rel)
	s.archives[rel.DownloadURL] = archive
	return sha
}

func (s *Server) handleMod(w http.ResponseWriter, r *http.Request) {
	s.MetadataRequests.Add(1)
	s.mu.Lock()
	m, ok := s.mods[chi.URLParam(r, "name")]
	var body []byte
	if ok {
		body, _ = json.Marshal(m)
	}
	s.mu.Unlock()

	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message": "Mod not found"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	s.DownloadRequests.Add(1)
	q := r.URL.Query()
	if q.Get("username") != Username || q.Get("token") != Token {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	s.mu.Lock()
	data, ok := s.archives[r.URL.Path]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.Write(data)
}
