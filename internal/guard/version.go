package guard

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"devsetup/internal/platform"
	"devsetup/internal/system"
	"devsetup/internal/tools"
)

var ErrWrongVersion = errors.New("wrong interpreter version")

// VersionError reports an interpreter that does not match the required
// major.minor version. Hint holds markdown remediation text, empty when
// there is nothing platform specific to say.
type VersionError struct {
	Command  string
	Running  string
	Required string
	Hint     string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("Please use %s %s (found %s). Exiting...", e.Command, e.Required, e.Running)
}

func (e *VersionError) Is(target error) bool {
	return target == ErrWrongVersion
}

const windowsPathHint = `It looks like you are using Windows. If you have Python installed,
make sure it is in your **PATH** and that **PYTHONPATH** is set.

If you have two versions of Python (ie, Python 2.7 and 3), specify %[1]s before
other versions of Python when setting the PATH.

Here are some helpful articles:

- http://docs.python-guide.org/en/latest/starting/install/win/
- https://stackoverflow.com/questions/3701646/how-to-add-to-the-pythonpath-in-windows-7
`

// CheckVersion compares the major.minor part of running against required.
// An empty required disables the check.
func CheckVersion(command, running, required string, os platform.OS) error {
	required = strings.TrimSpace(required)
	if required == "" {
		return nil
	}
	if tools.MajorMinor(running) == tools.MajorMinor(required) && tools.MajorMinor(required) != "" {
		return nil
	}
	e := &VersionError{Command: command, Running: running, Required: required}
	if os != platform.Linux && os != platform.Mac {
		e.Hint = fmt.Sprintf(windowsPathHint, required)
	}
	return e
}

// InterpreterVersion runs "<command> --version" and returns major.minor.
// Python 2 prints its version on stderr, so combined output is parsed.
func InterpreterVersion(ctx context.Context, runner system.Runner, command string) (string, error) {
	out, err := runner.Run(ctx, command, "--version")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%s not found on PATH: %w", command, err)
		}
		return "", fmt.Errorf("%s --version: %w", command, err)
	}
	v := tools.MajorMinor(out)
	if v == "" {
		return "", fmt.Errorf("%s --version: unrecognised output %q", command, strings.TrimSpace(out))
	}
	return v, nil
}

// Interpreter probes command and checks it against required.
func Interpreter(ctx context.Context, runner system.Runner, command, required string, os platform.OS) error {
	if strings.TrimSpace(required) == "" {
		return nil
	}
	running, err := InterpreterVersion(ctx, runner, command)
	if err != nil {
		system.Logger.Debug("interpreter probe failed", "command", command, "err", err)
		running = "none"
	}
	return CheckVersion(command, running, required, os)
}
