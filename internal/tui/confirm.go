package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"wyboard/internal/tui/theme"
)

var (
	confirmModalBoxStyle = theme.ModalBox
	confirmTitleStyle    = theme.Title
	confirmYesStyle      = theme.Ok
	confirmNoStyle       = theme.Error
)

// confirmationModal is a yes/no dialog
type confirmationModal struct {
	Message string // primary question
	Details string // optional context
	Width   int
}

// confirmationResultMsg is sent when the user answers the modal
type confirmationResultMsg struct {
	Confirmed bool
}

func newConfirmationModal(message, details string, width int) *confirmationModal {
	return &confirmationModal{Message: message, Details: details, Width: width}
}

// Update handles key events for the modal
func (m *confirmationModal) Update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "enter":
		return func() tea.Msg { return confirmationResultMsg{Confirmed: true} }
	case "n", "esc":
		return func() tea.Msg { return confirmationResultMsg{Confirmed: false} }
	}
	return nil
}

func (m *confirmationModal) View() string {
	content := confirmTitleStyle.Render(m.Message) + "\n"
	if m.Details != "" {
		content += "\n" + m.Details + "\n"
	}
	content += "\n"
	content += confirmYesStyle.Render("[y]") + " Yes  "
	content += confirmNoStyle.Render("[n/esc]") + " No"

	return confirmModalBoxStyle.Width(m.Width).Render(content)
}
