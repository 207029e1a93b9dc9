package banner

import (
	"github.com/charmbracelet/lipgloss"

	"mt103perf/internal/tui/styles"
)

const ascii = `
 __  __ _____ _  ___ _____                  __
|  \/  |_   _/ |/ _ \___ /   _ __   ___ _ __ / _|
| |\/| | | | | | | | ||_ \  | '_ \ / _ \ '__| |_
| |  | | | | | | |_| |__) | | |_) |  __/ |  |  _|
|_|  |_| |_| |_|\___/____/  | .__/ \___|_|  |_|
                            |_|                 `

// GetString returns the styled banner followed by a one-line tagline.
func GetString() string {
	renderer := lipgloss.DefaultRenderer()

	style := renderer.NewStyle().
		Foreground(styles.ColorBanner).
		Bold(true)
	tagline := renderer.NewStyle().Foreground(styles.ColorSubtle).
		Render("  performance harness for the MT103 transfer service")

	return "\n" + style.Render(ascii) + "\n" + tagline + "\n"
}
