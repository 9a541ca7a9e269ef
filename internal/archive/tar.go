package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

// ErrUnsafePath is returned for archive members resolving outside the destination.
var ErrUnsafePath = errors.New("archive member escapes destination")

// ExtractTar extracts a compressed tar stream into dest.
func ExtractTar(r io.Reader, kind Kind, dest string) error {
	var src io.Reader
	switch kind {
	case TarGz:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return fmt.Errorf("open gzip stream: %w", err)
		}
		defer gz.Close()
		src = gz
	case TarXz:
		xr, err := xz.NewReader(r)
		if err != nil {
			return fmt.Errorf("open xz stream: %w", err)
		}
		src = xr
	default:
		return fmt.Errorf("extract %s: not a tar archive", kind)
	}

	dest, err := filepath.Abs(dest)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	root, err := os.OpenRoot(dest)
	if err != nil {
		return err
	}
	defer root.Close()

	tr := tar.NewReader(src)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar: %w", err)
		}
		name, err := memberPath(root, hdr.Name)
		if err != nil {
			return err
		}
		if name == "." {
			continue
		}
		if err := writeMember(root, tr, hdr, name); err != nil {
			return fmt.Errorf("extract %s: %w", hdr.Name, err)
		}
	}
}

// writeMember creates one member under root. name is relative to root and
// already checked by memberPath.
func writeMember(root *os.Root, tr *tar.Reader, hdr *tar.Header, name string) error {
	mode := hdr.FileInfo().Mode().Perm()
	switch hdr.Typeflag {
	case tar.TypeDir:
		if mode == 0 {
			mode = 0o755
		}
		return root.MkdirAll(name, mode|0o700)
	case tar.TypeReg:
		if err := prepare(root, name); err != nil {
			return err
		}
		f, err := root.OpenFile(name, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
		if err != nil {
			return err
		}
		if _, err := io.Copy(f, tr); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	case tar.TypeSymlink:
		link := filepath.FromSlash(hdr.Linkname)
		if filepath.IsAbs(link) || !isWithin(filepath.Join(filepath.Dir(name), link), ".") {
			return fmt.Errorf("%w: symlink %s -> %s", ErrUnsafePath, hdr.Name, hdr.Linkname)
		}
		if err := prepare(root, name); err != nil {
			return err
		}
		return root.Symlink(hdr.Linkname, name)
	case tar.TypeLink:
		src, err := memberPath(root, hdr.Linkname)
		if err != nil {
			return err
		}
		if info, err := root.Lstat(src); err == nil && info.Mode()&fs.ModeSymlink != 0 {
			return fmt.Errorf("%w: hard link %s to symlink %s", ErrUnsafePath, hdr.Name, hdr.Linkname)
		}
		if err := prepare(root, name); err != nil {
			return err
		}
		return root.Link(src, name)
	default:
		// pax headers, devices and fifos carry nothing a toolchain needs
		return nil
	}
}

// prepare creates the parent of name and removes whatever name points at,
// so a later member never writes through an earlier symlink.
func prepare(root *os.Root, name string) error {
	if dir := filepath.Dir(name); dir != "." {
		if err := root.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := root.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// memberPath cleans an archive name into a path relative to root. Names that
// leave root textually, or whose parent directories pass through a symlink
// already on disk, fail with ErrUnsafePath.
func memberPath(root *os.Root, name string) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(rel) || filepath.VolumeName(rel) != "" || !isWithin(rel, ".") {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	parts := strings.Split(rel, string(filepath.Separator))
	for i := 1; i < len(parts); i++ {
		parent := filepath.Join(parts[:i]...)
		info, err := root.Lstat(parent)
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		if err != nil {
			return "", err
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			return "", fmt.Errorf("%w: %s passes through symlink %s", ErrUnsafePath, name, parent)
		}
	}
	return rel, nil
}

func isWithin(path string, root string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
