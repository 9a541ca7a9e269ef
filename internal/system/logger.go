package system

import (
	"fmt"
	"os"
	"strings"

	clog "github.com/charmbracelet/log"
)

// EnvLogLevel overrides the log level when no flag is given.
const EnvLogLevel = "DEVSETUP_LOG_LEVEL"

// Logger is the shared application logger for CLI output.
// It prints to stderr with timestamps enabled for better UX.
var Logger = clog.NewWithOptions(os.Stderr, clog.Options{
	ReportTimestamp: true,
	Prefix:          "devsetup",
})

// ConfigureLogger applies level, falling back to $DEVSETUP_LOG_LEVEL and then info.
func ConfigureLogger(level string) error {
	level = strings.TrimSpace(level)
	if level == "" {
		level = strings.TrimSpace(os.Getenv(EnvLogLevel))
	}
	if level == "" {
		Logger.SetLevel(clog.InfoLevel)
		return nil
	}
	lvl, err := clog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	Logger.SetLevel(lvl)
	return nil
}
