package testutil

import (
	"archive/tar"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// Entry describes one tar member. A Name ending in "/" is a directory;
// a non-empty Link makes a symlink and a non-empty HardLink a hard link.
type Entry struct {
	Name     string
	Body     string
	Link     string
	HardLink string
	Mode     int64
}

// TarGz builds an in-memory .tar.gz archive.
func TarGz(t *testing.T, entries []Entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.Name, Mode: e.Mode}
		switch {
		case e.HardLink != "":
			hdr.Typeflag = tar.TypeLink
			hdr.Linkname = e.HardLink
			if hdr.Mode == 0 {
				hdr.Mode = 0o644
			}
		case e.Link != "":
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.Link
			if hdr.Mode == 0 {
				hdr.Mode = 0o777
			}
		case len(e.Name) > 0 && e.Name[len(e.Name)-1] == '/':
			hdr.Typeflag = tar.TypeDir
			if hdr.Mode == 0 {
				hdr.Mode = 0o755
			}
		default:
			hdr.Typeflag = tar.TypeReg
			hdr.Size = int64(len(e.Body))
			if hdr.Mode == 0 {
				hdr.Mode = 0o644
			}
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("tar header %s: %v", e.Name, err)
		}
		if hdr.Typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte(e.Body)); err != nil {
				t.Fatalf("tar body %s: %v", e.Name, err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("tar close: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

// FileServer serves fixed bodies by URL path and counts every request.
type FileServer struct {
	*httptest.Server
	hits  atomic.Int64
	files map[string][]byte
}

// ServeFiles starts a FileServer closed at test cleanup. Unknown paths answer 404.
func ServeFiles(t *testing.T, files map[string][]byte) *FileServer {
	t.Helper()
	fs := &FileServer{files: files}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.hits.Add(1)
		body, ok := fs.files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(fs.Close)
	return fs
}

// Hits returns the number of requests served so far.
func (fs *FileServer) Hits() int64 {
	return fs.hits.Load()
}

// FakeRunner records commands and answers with canned output.
type FakeRunner struct {
	Calls  [][]string
	Output string
	// Outputs overrides Output per command, keyed by the command's base name.
	Outputs map[string]string
	Err     error
	// OnRun, when set, runs before the canned answer is returned.
	OnRun func(name string, args ...string) error
}

func (r *FakeRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	r.Calls = append(r.Calls, append([]string{name}, args...))
	if r.OnRun != nil {
		if err := r.OnRun(name, args...); err != nil {
			return "", err
		}
	}
	if out, ok := r.Outputs[filepath.Base(name)]; ok {
		return out, r.Err
	}
	return r.Output, r.Err
}
