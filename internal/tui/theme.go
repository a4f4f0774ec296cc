package tui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the full set of styles the screens render with. Every screen
// takes its colors from here, so a new look is a new Theme value.
type Theme struct {
	Name string

	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Accent    lipgloss.Style
	Muted     lipgloss.Style
	Help      lipgloss.Style
	Banner    lipgloss.Style
	Panel     lipgloss.Style
	DropZone  lipgloss.Style
	DropHover lipgloss.Style
	Selected  lipgloss.Style

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	UserLabel       lipgloss.Style
	AssistantLabel  lipgloss.Style

	StatusIdle      lipgloss.Style
	StatusUploading lipgloss.Style
	StatusSuccess   lipgloss.Style
	StatusError     lipgloss.Style
}

type palette struct {
	fg, muted, accent, accent2 lipgloss.Color
	userBg, userFg             lipgloss.Color
	botBorder                  lipgloss.Color
	info, ok, bad              lipgloss.Color
}

func newTheme(name string, p palette) Theme {
	bubble := lipgloss.NewStyle().Padding(0, 1).MaxWidth(80)
	return Theme{
		Name:      name,
		Title:     lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		Subtitle:  lipgloss.NewStyle().Foreground(p.fg),
		Accent:    lipgloss.NewStyle().Foreground(p.accent2).Bold(true),
		Muted:     lipgloss.NewStyle().Foreground(p.muted),
		Help:      lipgloss.NewStyle().Foreground(p.muted),
		Banner:    lipgloss.NewStyle().Foreground(p.bad).Border(lipgloss.RoundedBorder()).BorderForeground(p.bad).Padding(0, 1),
		Panel:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.muted).Padding(1, 3),
		DropZone:  lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(p.muted).Padding(1, 4).Align(lipgloss.Center),
		DropHover: lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(p.accent).Padding(1, 4).Align(lipgloss.Center),
		Selected:  lipgloss.NewStyle().Bold(true).Foreground(p.accent),

		UserBubble:      bubble.Background(p.userBg).Foreground(p.userFg),
		AssistantBubble: bubble.Border(lipgloss.RoundedBorder()).BorderForeground(p.botBorder).Foreground(p.fg),
		UserLabel:       lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		AssistantLabel:  lipgloss.NewStyle().Bold(true).Foreground(p.accent2),

		StatusIdle:      lipgloss.NewStyle().Foreground(p.muted),
		StatusUploading: lipgloss.NewStyle().Foreground(p.info),
		StatusSuccess:   lipgloss.NewStyle().Foreground(p.ok),
		StatusError:     lipgloss.NewStyle().Foreground(p.bad),
	}
}

// Built-in themes
var (
	Midnight = newTheme("midnight", palette{
		fg: "252", muted: "244", accent: "141", accent2: "45",
		userBg: "97", userFg: "231", botBorder: "61",
		info: "39", ok: "42", bad: "203",
	})
	Meadow = newTheme("meadow", palette{
		fg: "235", muted: "245", accent: "28", accent2: "30",
		userBg: "35", userFg: "231", botBorder: "108",
		info: "33", ok: "28", bad: "160",
	})
)

var themes = map[string]Theme{
	Midnight.Name: Midnight,
	Meadow.Name:   Meadow,
}

// ThemeByName looks a theme up case-insensitively
func ThemeByName(name string) (Theme, bool) {
	t, ok := themes[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// ThemeNames lists the built-in themes
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for n := range themes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
