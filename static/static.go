// Package static implements the static-asset collaborator for the
// dispatch core: an existence check consulted before the FILE
// classification, and file streaming with a content type derived from
// the file extension. It serves from any fs.FS, so it works with
// os.DirFS and embed.FS alike.
package static

import (
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"
)

// ErrNoFS is returned when the file system is nil.
var ErrNoFS = errors.New("static: file system must not be nil")

// fallbackContentType is used when the extension is unknown.
const fallbackContentType = "application/octet-stream"

// Store serves static assets from a file system. It satisfies
// dispatch.AssetStore.
type Store struct {
	fsys fs.FS
}

// New creates a Store serving from the given file system.
func New(fsys fs.FS) (*Store, error) {
	if fsys == nil {
		return nil, ErrNoFS
	}
	return &Store{fsys: fsys}, nil
}

// NewDir creates a Store serving from a directory on disk, the
// configured public directory of the application.
func NewDir(dir string) *Store {
	return &Store{fsys: os.DirFS(dir)}
}

// Exists reports whether a regular file exists at the resolved public
// path. Directories do not count.
func (s *Store) Exists(reqPath string) bool {
	name, ok := s.resolve(reqPath)
	if !ok {
		return false
	}
	info, err := fs.Stat(s.fsys, name)
	return err == nil && info.Mode().IsRegular()
}

// ServeFile streams the file's bytes to the response with a
// content type derived from the file extension. Returns an error when
// the file cannot be opened, e.g. it disappeared after the existence
// check.
func (s *Store) ServeFile(w http.ResponseWriter, reqPath string) error {
	name, ok := s.resolve(reqPath)
	if !ok {
		return fs.ErrNotExist
	}

	f, err := s.fsys.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	w.Header().Set("Content-Type", contentType(name))
	_, err = io.Copy(w, f)
	return err
}

// resolve converts a request path into an fs.FS name: the leading
// slash is stripped and dot segments are rejected via path cleaning
// (RFC 3986 Section 5.2.4), so a request can never escape the root.
func (s *Store) resolve(reqPath string) (string, bool) {
	name := path.Clean(strings.TrimPrefix(reqPath, "/"))
	if name == "" || name == "." || strings.HasPrefix(name, "..") {
		return "", false
	}
	return name, true
}

// contentType derives the Content-Type header value from the file
// extension, falling back to application/octet-stream for unknown
// extensions.
func contentType(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return fallbackContentType
}
