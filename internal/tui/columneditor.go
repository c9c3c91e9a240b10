package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"wyboard/internal/kanban/board"
	"wyboard/internal/kanban/models"
	"wyboard/internal/kanban/operations"
)

type columnEditorMode int

const (
	columnEditorModeNormal columnEditorMode = iota
	columnEditorModeRename
	columnEditorModeAdd
	columnEditorModeWIP
	columnEditorModePickTarget
)

// saveIntentMsg carries a column form out of the editor
type saveIntentMsg struct {
	intent operations.SaveIntent
	done   string
}

// deleteIntentMsg carries a column deletion out of the editor
type deleteIntentMsg struct {
	intent operations.DeleteIntent
	done   string
}

// columnEditorModel lists the board's columns and turns edits into intents.
// It reads the live board, so optimistic edits show up immediately.
type columnEditorModel struct {
	view       board.View
	candidates func(columnID int64) ([]models.Column, error)
	cursorPos  int
	mode       columnEditorMode
	textInput  textinput.Model
	err        error

	// migration target picker
	deleting     models.Column
	targets      []models.Column
	filterInput  textinput.Model
	matches      []fuzzy.Match
	targetCursor int
}

func newColumnEditorModel(view board.View, candidates func(int64) ([]models.Column, error), cursor int) columnEditorModel {
	ti := newTextInput(operations.MaxColumnNameLength, 50)
	fi := newTextInput(operations.MaxColumnNameLength, 40)
	fi.Placeholder = "filter..."

	m := columnEditorModel{
		view:        view,
		candidates:  candidates,
		textInput:   ti,
		filterInput: fi,
	}
	m.cursorPos = max(0, min(cursor, len(view.Columns())-1))
	return m
}

func (m columnEditorModel) current() (models.Column, bool) {
	cols := m.view.Columns()
	if m.cursorPos < 0 || m.cursorPos >= len(cols) {
		return models.Column{}, false
	}
	return cols[m.cursorPos], true
}

// Update handles a key. The bool is true when the editor should close.
func (m columnEditorModel) Update(msg tea.KeyMsg) (columnEditorModel, tea.Cmd, bool) {
	m.err = nil

	switch m.mode {
	case columnEditorModeNormal:
		return m.updateNormal(msg)
	case columnEditorModeRename, columnEditorModeAdd, columnEditorModeWIP:
		return m.updateInput(msg)
	case columnEditorModePickTarget:
		return m.updatePickTarget(msg)
	}
	return m, nil, false
}

func (m columnEditorModel) updateNormal(msg tea.KeyMsg) (columnEditorModel, tea.Cmd, bool) {
	switch msg.String() {
	case "esc", "q", "c":
		return m, nil, true

	case "j", "down":
		if m.cursorPos < len(m.view.Columns())-1 {
			m.cursorPos++
		}

	case "k", "up":
		if m.cursorPos > 0 {
			m.cursorPos--
		}

	case "a", "o":
		return m.startInput(columnEditorModeAdd, "")

	case "r":
		if col, ok := m.current(); ok {
			return m.startInput(columnEditorModeRename, col.Name)
		}

	case "w":
		if col, ok := m.current(); ok {
			value := ""
			if col.HasWIPLimit() {
				value = strconv.Itoa(*col.WIPLimit)
			}
			return m.startInput(columnEditorModeWIP, value)
		}

	case "d":
		col, ok := m.current()
		if !ok {
			break
		}
		targets, err := m.candidates(col.ID)
		if err != nil {
			m.err = err
			break
		}
		m.deleting = col
		m.targets = targets
		m.filterInput.SetValue("")
		m.filterInput.Focus()
		m.refilter()
		m.mode = columnEditorModePickTarget
	}

	return m, nil, false
}

func (m columnEditorModel) startInput(mode columnEditorMode, value string) (columnEditorModel, tea.Cmd, bool) {
	m.textInput.SetValue(value)
	m.textInput.CursorEnd()
	m.textInput.Focus()
	m.mode = mode
	return m, nil, false
}

func (m columnEditorModel) updateInput(msg tea.KeyMsg) (columnEditorModel, tea.Cmd, bool) {
	switch msg.String() {
	case "esc":
		m.textInput.Blur()
		m.mode = columnEditorModeNormal
		return m, nil, false

	case "enter":
		value := m.textInput.Value()
		mode := m.mode
		m.textInput.Blur()
		m.mode = columnEditorModeNormal

		intent, done, err := m.buildIntent(mode, value)
		if err != nil {
			m.err = err
			return m, nil, false
		}
		return m, func() tea.Msg { return saveIntentMsg{intent: intent, done: done} }, false
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd, false
}

func (m columnEditorModel) buildIntent(mode columnEditorMode, value string) (operations.SaveIntent, string, error) {
	if mode == columnEditorModeAdd {
		name, err := operations.ValidateColumnName(value)
		if err != nil {
			return operations.SaveIntent{}, "", err
		}
		return operations.SaveIntent{
			Type:   operations.IntentColumn,
			Action: operations.ActionCreate,
			Column: &operations.ColumnForm{Name: name},
		}, fmt.Sprintf("Column %q added", name), nil
	}

	col, ok := m.current()
	if !ok {
		return operations.SaveIntent{}, "", operations.ErrUnknownColumn
	}
	form := operations.ColumnForm{ID: col.ID, Name: col.Name}
	done := "Column updated"

	switch mode {
	case columnEditorModeRename:
		form.Name = value
		done = "Column renamed"
	case columnEditorModeWIP:
		value = strings.TrimSpace(value)
		if value == "" {
			return operations.SaveIntent{}, "", operations.ErrInvalidWIPLimit
		}
		limit, err := strconv.Atoi(value)
		if err != nil {
			return operations.SaveIntent{}, "", operations.ErrInvalidWIPLimit
		}
		form.WIPLimit = models.IntPtr(limit)
		done = fmt.Sprintf("WIP limit of %q set to %d", col.Name, limit)
	}

	return operations.SaveIntent{
		Type:   operations.IntentColumn,
		Action: operations.ActionUpdate,
		Column: &form,
	}, done, nil
}

func (m columnEditorModel) updatePickTarget(msg tea.KeyMsg) (columnEditorModel, tea.Cmd, bool) {
	switch msg.String() {
	case "esc":
		m.filterInput.Blur()
		m.mode = columnEditorModeNormal
		return m, nil, false

	case "down", "ctrl+n", "ctrl+j":
		if m.targetCursor < len(m.matches)-1 {
			m.targetCursor++
		}
		return m, nil, false

	case "up", "ctrl+p", "ctrl+k":
		if m.targetCursor > 0 {
			m.targetCursor--
		}
		return m, nil, false

	case "enter":
		if len(m.matches) == 0 {
			return m, nil, false
		}
		target := m.targets[m.matches[m.targetCursor].Index]
		deleting := m.deleting
		m.filterInput.Blur()
		m.mode = columnEditorModeNormal
		if m.cursorPos > 0 && m.cursorPos >= len(m.view.Columns())-1 {
			m.cursorPos--
		}
		intent := operations.DeleteIntent{
			Type:           operations.IntentColumn,
			ID:             deleting.ID,
			TargetColumnID: target.ID,
		}
		done := fmt.Sprintf("Column %q deleted, tasks moved to %q", deleting.Name, target.Name)
		return m, func() tea.Msg { return deleteIntentMsg{intent: intent, done: done} }, false
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.refilter()
	return m, cmd, false
}

// refilter fuzzy-matches the target names against the filter. An empty
// filter keeps every target in board order.
func (m *columnEditorModel) refilter() {
	query := strings.TrimSpace(m.filterInput.Value())
	if query == "" {
		m.matches = make([]fuzzy.Match, len(m.targets))
		for i, t := range m.targets {
			m.matches[i] = fuzzy.Match{Str: t.Name, Index: i}
		}
	} else {
		names := make([]string, len(m.targets))
		for i, t := range m.targets {
			names[i] = t.Name
		}
		m.matches = fuzzy.Find(query, names)
	}
	if m.targetCursor >= len(m.matches) {
		m.targetCursor = max(0, len(m.matches)-1)
	}
}

// highlight underlines the matched runes of a picker entry
func highlight(match fuzzy.Match, style func(string) string) string {
	if len(match.MatchedIndexes) == 0 {
		return style(match.Str)
	}
	hit := make(map[int]bool, len(match.MatchedIndexes))
	for _, i := range match.MatchedIndexes {
		hit[i] = true
	}
	var b strings.Builder
	for i, r := range match.Str {
		if hit[i] {
			b.WriteString(pickerMatchStyle.Render(string(r)))
		} else {
			b.WriteString(style(string(r)))
		}
	}
	return b.String()
}

func (m columnEditorModel) View() string {
	var s strings.Builder

	s.WriteString(columnEditorTitleStyle.Render("Column Editor"))
	s.WriteString("\n\n")

	switch m.mode {
	case columnEditorModeRename:
		s.WriteString(columnEditorPromptStyle.Render("Rename: "))
		s.WriteString(m.textInput.View())
		s.WriteString("\n\n")
	case columnEditorModeAdd:
		s.WriteString(columnEditorPromptStyle.Render("New column: "))
		s.WriteString(m.textInput.View())
		s.WriteString("\n\n")
	case columnEditorModeWIP:
		s.WriteString(columnEditorPromptStyle.Render("WIP limit: "))
		s.WriteString(m.textInput.View())
		s.WriteString("\n\n")
	case columnEditorModePickTarget:
		return columnEditorBoxStyle.Render(m.pickerView())
	}

	for i, col := range m.view.Columns() {
		line := fmt.Sprintf("%d. %s (%d tasks)", i+1, col.Name, m.view.WIPCount(col.ID))
		if col.HasWIPLimit() {
			line += fmt.Sprintf(" [WIP %d]", *col.WIPLimit)
		}
		if col.IsDefault {
			line += " [default]"
		}

		style := columnEditorItemStyle
		if i == m.cursorPos {
			style = columnEditorItemHighlightStyle
		}
		s.WriteString(style.Render(line))
		s.WriteString("\n")
	}
	s.WriteString("\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		s.WriteString("\n")
	}

	switch m.mode {
	case columnEditorModeRename, columnEditorModeAdd, columnEditorModeWIP:
		s.WriteString(helpStyle.Render("enter: confirm • esc: cancel"))
	default:
		s.WriteString(helpStyle.Render("jk: navigate • a: add • r: rename • w: WIP limit • d: delete • esc: close"))
	}

	return columnEditorBoxStyle.Render(s.String())
}

func (m columnEditorModel) pickerView() string {
	var s strings.Builder

	n := m.view.WIPCount(m.deleting.ID)
	s.WriteString(warningStyle.Render(fmt.Sprintf("Delete %q and move its %d task(s) to:", m.deleting.Name, n)))
	s.WriteString("\n\n")
	s.WriteString("  / " + m.filterInput.View())
	s.WriteString("\n\n")

	if len(m.matches) == 0 {
		s.WriteString(cardPreviewStyle.Render("  no matching column"))
		s.WriteString("\n")
	}
	for i, match := range m.matches {
		style := columnEditorItemStyle
		prefix := "  "
		if i == m.targetCursor {
			style = columnEditorItemHighlightStyle
			prefix = "> "
		}
		s.WriteString(style.Render(prefix))
		s.WriteString(highlight(match, func(str string) string { return style.Render(str) }))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("type to filter • ↑/↓: select • enter: delete • esc: cancel"))
	return s.String()
}
