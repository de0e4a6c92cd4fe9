package theme

import (
	"github.com/pterm/pterm"
)

// Theme holds the styles the watcher's terminal output uses
type Theme struct {
	Info  *pterm.Style
	Muted *pterm.Style

	Success  *pterm.Style
	Target   *pterm.Style
	Workload *pterm.Style
	Counts   *pterm.Style

	StateHealthy  *pterm.Style
	StateInOutage *pterm.Style
}

const DefaultName = "default"

// outage styles are shared, the red block has to stand out on any background
var (
	outageBlock = []pterm.Color{pterm.FgWhite, pterm.BgRed, pterm.Bold}
	outageText  = []pterm.Color{pterm.FgLightRed, pterm.Bold}
)

var palettes = map[string]func() *Theme{
	DefaultName: func() *Theme {
		return &Theme{
			Info:          pterm.NewStyle(pterm.FgGreen),
			Muted:         pterm.NewStyle(pterm.FgGray),
			Success:       pterm.NewStyle(pterm.FgGreen, pterm.Bold),
			Target:        pterm.NewStyle(pterm.FgLightCyan),
			Workload:      pterm.NewStyle(pterm.FgLightMagenta),
			Counts:        pterm.NewStyle(pterm.FgLightYellow),
			StateHealthy:  pterm.NewStyle(pterm.FgGreen, pterm.Bold),
			StateInOutage: pterm.NewStyle(outageBlock...),
		}
	},
	"dark": func() *Theme {
		return &Theme{
			Info:          pterm.NewStyle(pterm.FgLightGreen),
			Muted:         pterm.NewStyle(pterm.FgGray),
			Success:       pterm.NewStyle(pterm.FgLightGreen, pterm.Bold),
			Target:        pterm.NewStyle(pterm.FgLightCyan, pterm.Bold),
			Workload:      pterm.NewStyle(pterm.FgLightMagenta, pterm.Bold),
			Counts:        pterm.NewStyle(pterm.FgLightYellow),
			StateHealthy:  pterm.NewStyle(pterm.FgLightGreen, pterm.Bold),
			StateInOutage: pterm.NewStyle(outageText...),
		}
	},
	"light": func() *Theme {
		return &Theme{
			Info:          pterm.NewStyle(pterm.FgBlack),
			Muted:         pterm.NewStyle(pterm.FgGray),
			Success:       pterm.NewStyle(pterm.FgGreen, pterm.Bold),
			Target:        pterm.NewStyle(pterm.FgBlue),
			Workload:      pterm.NewStyle(pterm.FgMagenta),
			Counts:        pterm.NewStyle(pterm.FgBlack, pterm.Bold),
			StateHealthy:  pterm.NewStyle(pterm.FgGreen, pterm.Bold),
			StateInOutage: pterm.NewStyle(pterm.FgRed, pterm.Bold),
		}
	},
}

// GetTheme returns the named palette, unknown names get the default one
func GetTheme(name string) *Theme {
	if build, ok := palettes[name]; ok {
		return build()
	}
	return palettes[DefaultName]()
}

// ColourSplash colours the banner
func ColourSplash(message ...any) string {
	return pterm.LightGreen(message...)
}

// ColourVersion colours version numbers in the banner
func ColourVersion(message ...any) string {
	return pterm.LightYellow(message...)
}

func StyleUrl(message ...any) string {
	return pterm.LightBlue(message...)
}

// Hyperlink wraps text in an OSC 8 link
func Hyperlink(uri string, text string) string {
	return "\x1b]8;;" + uri + "\x07" + text + "\x1b]8;;\x07" + "\u001b[0m"
}
