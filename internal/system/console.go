package system

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

var (
	accent      = lipgloss.Color("#03BF87")
	warnColor   = lipgloss.Color("#E5C07B")
	errColor    = lipgloss.Color("#E06C75")
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	noticeStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(warnColor).
			Padding(0, 1)
	errStyle   = lipgloss.NewStyle().Bold(true).Foreground(errColor)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

// Muted renders s in a dim colour.
func Muted(s string) string { return mutedStyle.Render(s) }

// Good and Bad render short status words.
func Good(s string) string { return titleStyle.Render(s) }
func Bad(s string) string  { return errStyle.Render(s) }

// FormTheme is the huh theme used by interactive prompts.
func FormTheme() *huh.Theme {
	theme := huh.ThemeCharm()
	theme.FieldSeparator = lipgloss.NewStyle()
	theme.Focused.Title = theme.Focused.Title.Foreground(accent).Bold(true)
	theme.Blurred.Title = theme.Blurred.Title.Foreground(lipgloss.Color("7"))
	theme.Focused.Base = theme.Focused.Base.BorderForeground(accent)
	return theme
}

// Notice prints lines inside a bordered block, one blank line between each,
// the way the yarn warning is meant to stand out.
func Notice(w io.Writer, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintln(w, noticeStyle.Render(strings.Join(lines, "\n\n")))
}

// Success prints a highlighted single line.
func Success(w io.Writer, msg string) {
	fmt.Fprintln(w, titleStyle.Render(msg))
}

// Failure prints a highlighted error line.
func Failure(w io.Writer, msg string) {
	fmt.Fprintln(w, errStyle.Render(msg))
}

// RenderMarkdown renders md for the terminal. Rendering problems fall back to the raw text.
func RenderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
