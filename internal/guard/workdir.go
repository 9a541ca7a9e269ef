package guard

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var ErrWrongWorkingDirectory = errors.New("wrong working directory")

// CheckWorkdir accepts dir when its base name ends with name (the project
// checkout) or starts with deployPrefix (a deployment folder).
func CheckWorkdir(dir, name, deployPrefix string) error {
	base := filepath.Base(filepath.Clean(dir))
	if name != "" && strings.HasSuffix(base, name) {
		return nil
	}
	if deployPrefix != "" && strings.HasPrefix(base, deployPrefix) {
		return nil
	}
	return fmt.Errorf("%w: WARNING   This script should be run from the %s/ root folder (in %s)",
		ErrWrongWorkingDirectory, name, dir)
}
