package version

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/thushan/redis-watcher/theme"
)

var (
	Name        = "redis-watcher"
	Authors     = "Thushan Fernando"
	Description = "Watches Redis and restarts what depends on it"
	Version     = "v0.0.1"
	Commit      = "none"
	Date        = "nowish"
	User        = "local"
	Runtime     = runtime.Version()
)

const (
	GithubHomeText  = "github.com/thushan/redis-watcher"
	GithubHomeUri   = "https://github.com/thushan/redis-watcher"
	GithubLatestUri = "https://github.com/thushan/redis-watcher/releases/latest"
)

type Info struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Commit      string `json:"commit"`
	Date        string `json:"date"`
	GoVersion   string `json:"go_version"`
	Platform    string `json:"platform"`
}

func Current() Info {
	return Info{
		Name:        Name,
		Version:     Version,
		Description: Description,
		Commit:      Commit,
		Date:        Date,
		GoVersion:   Runtime,
		Platform:    runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func PrintVersionInfo(extendedInfo bool, w io.Writer) {
	githubUri := theme.Hyperlink(GithubHomeUri, GithubHomeText)
	latestUri := theme.Hyperlink(GithubLatestUri, Version)

	var b strings.Builder

	b.WriteString(theme.ColourSplash(`
╔──────────────────────────────────────────────╗
│  ┏━┓┏━╸╺┳┓╻┏━┓   ╻ ╻┏━┓╺┳╸┏━╸╻ ╻┏━╸┏━┓       │
│  ┣┳┛┣╸  ┃┃┃┗━┓╺━╸┃╻┃┣━┫ ┃ ┃  ┣━┫┣╸ ┣┳┛       │
│  ╹┗╸┗━╸╺┻┛╹┗━┛   ┗┻┛╹ ╹ ╹ ┗━╸╹ ╹┗━╸╹┗╸       │` + "\n"))

	b.WriteString(theme.ColourSplash("│ "))
	b.WriteString(theme.StyleUrl(githubUri))
	b.WriteString(" ")
	b.WriteString(theme.ColourVersion(latestUri))
	b.WriteString("\n")
	b.WriteString(theme.ColourSplash("╚──────────────────────────────────────────────╝"))

	if extendedInfo {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf(" Commit: %s\n", Commit))
		b.WriteString(fmt.Sprintf("  Built: %s\n", Date))
		b.WriteString(fmt.Sprintf("  Using: %s\n", User))
		b.WriteString(fmt.Sprintf("     Go: %s\n", Runtime))
	}

	fmt.Fprintln(w, b.String())
}
