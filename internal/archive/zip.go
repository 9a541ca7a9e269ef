package archive

import (
	"context"
	"fmt"
	"strings"

	"devsetup/internal/system"
)

// ExpandZip unpacks a zip file into dest through PowerShell's Expand-Archive.
func ExpandZip(ctx context.Context, runner system.Runner, file, dest string) error {
	out, err := runner.Run(ctx, "powershell.exe", "-c", "expand-archive", file, "-DestinationPath", dest)
	if err != nil {
		return fmt.Errorf("expand-archive %s: %w: %s", file, err, strings.TrimSpace(out))
	}
	return nil
}
