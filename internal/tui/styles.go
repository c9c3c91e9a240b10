package tui

import (
	"github.com/charmbracelet/lipgloss"

	"wyboard/internal/tui/theme"
)

const (
	// Layout constants
	columnWidth             = 40
	columnPaddingHorizontal = 2
	cardPaddingHorizontal   = 1
	cardBorderWidth         = 1

	// columnTotalWidth is a rendered column including border and gap
	columnTotalWidth = 46
	indicatorWidth   = 5

	headerLines = 3
	statusLines = 3
	marginLines = 2

	minColumnHeight = 10
	// columnOverhead is title, blank line, scroll indicators and padding
	columnOverhead = 8

	previewLines = 2
)

var (
	titleStyle = theme.Title.Padding(0, 1)

	// Column styles
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(1, columnPaddingHorizontal).
			Width(columnWidth)

	selectedColumnStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(theme.BorderFocused).
				Padding(1, columnPaddingHorizontal).
				Width(columnWidth)

	dropColumnStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(theme.Warning).
			Padding(1, columnPaddingHorizontal).
			Width(columnWidth)

	columnTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Align(lipgloss.Center)

	selectedColumnTitleStyle = lipgloss.NewStyle().
					Bold(true).
					Background(theme.Surface).
					Underline(true).
					Align(lipgloss.Center)

	wipStyle     = theme.Muted
	wipFullStyle = theme.Error

	// Card styles
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), false, false, false, true).
			BorderForeground(theme.Border).
			Padding(0, cardPaddingHorizontal).
			MarginBottom(1)

	selectedCardStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder(), false, false, false, true).
				BorderForeground(theme.BorderFocused).
				Background(theme.Surface).
				Padding(0, cardPaddingHorizontal).
				MarginBottom(1).
				Bold(true)

	draggedCardStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder(), false, false, false, true).
				BorderForeground(theme.Warning).
				Background(theme.DragSurface).
				Padding(0, cardPaddingHorizontal).
				MarginBottom(1).
				Bold(true)

	cardTitleStyle = lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true)

	cardPreviewStyle = lipgloss.NewStyle().
				Foreground(theme.TextMuted)

	dropMarkerStyle = lipgloss.NewStyle().
			Foreground(theme.Warning).
			Bold(true)

	helpStyle = theme.Muted.Padding(1, 2)

	// Message styles
	errorStyle   = theme.Error
	warningStyle = theme.Warn
	successStyle = theme.Ok

	scrollIndicatorStyle = lipgloss.NewStyle().
				Foreground(theme.Primary).
				Italic(true).
				Align(lipgloss.Center)

	loadingStyle = lipgloss.NewStyle().Foreground(theme.Secondary).Italic(true)

	// Column editor styles
	columnEditorBoxStyle = theme.ModalBox.Width(60)

	columnEditorTitleStyle = theme.ModalTitle.Align(lipgloss.Center)

	columnEditorPromptStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(theme.Primary)

	columnEditorItemStyle = lipgloss.NewStyle().
				Foreground(theme.Text)

	columnEditorItemHighlightStyle = lipgloss.NewStyle().
					Background(theme.Surface).
					Foreground(theme.Warning).
					Bold(true)

	pickerMatchStyle = lipgloss.NewStyle().
				Foreground(theme.Secondary).
				Underline(true)

	// Text input modal styles
	inputBoxStyle   = theme.ModalBox.Width(60)
	inputTitleStyle = theme.ModalTitle.Align(lipgloss.Center)
)
