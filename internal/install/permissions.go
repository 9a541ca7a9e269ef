package install

import (
	"io/fs"
	"os"
	"path/filepath"
)

// FixPermissions chowns (uid, gid; -1 keeps a value) and chmods every entry
// under root, root included. Symlinks are chowned but never chmodded, since
// chmod would follow them. The first failure stops the walk; entries
// already visited keep their new bits.
func FixPermissions(root string, uid, gid int, mode fs.FileMode) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := os.Lchown(path, uid, gid); err != nil {
			return err
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		return os.Chmod(path, mode)
	})
}
