package util

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

/*
   references:
   - https://no-color.org/
   - https://force-color.org/
*/

const ForceColorsEnvVar = "REDIS_WATCHER_FORCE_COLORS"

func IsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// ShouldUseColors honours NO_COLOR first, then FORCE_COLOR, then our own
// override, and finally falls back to whether stdout is a terminal
func ShouldUseColors() bool {
	if noColor := os.Getenv("NO_COLOR"); noColor != "" {
		return false
	}

	if forceColor := os.Getenv("FORCE_COLOR"); forceColor != "" {
		return forceColor != "0"
	}

	if watcherColors := os.Getenv(ForceColorsEnvVar); watcherColors != "" {
		return strings.EqualFold(watcherColors, "true")
	}

	return IsTerminal()
}
