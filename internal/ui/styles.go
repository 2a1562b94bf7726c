// Package ui provides terminal styling and rendering for CLI output.
package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
// - Default (white/black): primary text
// - Accent (soft purple #A78BFA by default, configurable): highlights, names
// - Muted (gray): secondary info, hints
// - No colored success/error/warning - use unicode symbols only

const defaultAccent = "#A78BFA"

var (
	// Accent style for dashboard/card names and highlights
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(defaultAccent))

	// Muted style for secondary info and hints
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	// Bold style for emphasis
	Bold = lipgloss.NewStyle().Bold(true)

	// AccentBold combines accent color with bold
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color(defaultAccent)).Bold(true)

	accentColor = defaultAccent
	codeTheme   string
)

// ConfigureTheme applies the configured accent color to the shared styles.
// Values like "none", "off", or "default" disable the accent entirely.
func ConfigureTheme(accent string) {
	color, ok := normalizeAccentColor(accent)
	if !ok {
		if isDisabled(accent) {
			accentColor = ""
			Accent = lipgloss.NewStyle()
			AccentBold = lipgloss.NewStyle().Bold(true)
		}
		return
	}
	accentColor = color
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}

// AccentColor returns the active accent color, if any.
func AccentColor() (string, bool) {
	if accentColor == "" {
		return "", false
	}
	return accentColor, true
}

// ConfigureMarkdownCodeTheme sets the Chroma theme used for code blocks in
// rendered markdown.
func ConfigureMarkdownCodeTheme(theme string) {
	codeTheme = strings.TrimSpace(theme)
}

func isDisabled(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "none", "off", "default":
		return true
	}
	return false
}

// normalizeAccentColor validates an accent value: an ANSI color code (0-255)
// or a hex color (#RGB or #RRGGBB, expanded to the long form).
func normalizeAccentColor(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" || isDisabled(value) {
		return "", false
	}

	if strings.HasPrefix(value, "#") {
		hex := value[1:]
		switch len(hex) {
		case 3:
			if !isHex(hex) {
				return "", false
			}
			expanded := fmt.Sprintf("#%c%c%c%c%c%c", hex[0], hex[0], hex[1], hex[1], hex[2], hex[2])
			return strings.ToLower(expanded), true
		case 6:
			if !isHex(hex) {
				return "", false
			}
			return strings.ToLower(value), true
		default:
			return "", false
		}
	}

	if n, err := strconv.Atoi(value); err == nil && n >= 0 && n <= 255 {
		return strconv.Itoa(n), true
	}
	return "", false
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
