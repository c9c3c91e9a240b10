package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"wyboard/internal/tui/theme"
)

// helpBind is a single keybind entry
type helpBind struct {
	Key  string
	Desc string
}

// helpSection groups related keybinds
type helpSection struct {
	Title string
	Binds []helpBind
}

var (
	helpSectionStyle = lipgloss.NewStyle().Bold(true).Foreground(theme.Primary)
	helpKeyStyle     = lipgloss.NewStyle().Bold(true).Foreground(theme.Secondary)
	helpDescStyle    = lipgloss.NewStyle().Foreground(theme.Text)
	helpBoxStyle     = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(theme.Primary).
				Padding(1, 2)
	helpDismissStyle = lipgloss.NewStyle().Foreground(theme.TextMuted)
)

var boardHelp = []helpSection{
	{
		Title: "Navigation",
		Binds: []helpBind{
			{"h/l ←/→", "previous / next column"},
			{"j/k ↓/↑", "next / previous task"},
			{"r", "reload the board"},
			{"?", "this help"},
			{"q ctrl+c", "quit"},
		},
	},
	{
		Title: "Tasks",
		Binds: []helpBind{
			{"m space", "pick up task"},
			{"h/j/k/l", "move drop marker while dragging"},
			{"enter", "drop task"},
			{"esc", "cancel drag"},
			{"n", "new task in column"},
			{"e", "edit title"},
			{"D", "delete task"},
		},
	},
	{
		Title: "Columns",
		Binds: []helpBind{
			{"H/L", "move column left / right"},
			{"c", "column editor"},
		},
	},
}

// renderHelpPopup renders a centered help popup with the given sections
func renderHelpPopup(sections []helpSection, width, height int) string {
	line := func(key, desc string) string {
		return "  " + helpKeyStyle.Width(14).Render(key) + helpDescStyle.Render(desc)
	}

	var b strings.Builder
	for i, section := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(helpSectionStyle.Render(section.Title) + "\n")
		for _, bind := range section.Binds {
			b.WriteString(line(bind.Key, bind.Desc) + "\n")
		}
	}
	b.WriteString("\n" + helpDismissStyle.Render("Press any key to close"))

	box := helpBoxStyle.Render(strings.TrimRight(b.String(), "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
