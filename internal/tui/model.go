// Package tui is the interactive kanban board. The model owns the engine:
// every local mutation happens in Update, and only the remote phase of an
// operation runs inside a tea.Cmd.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wyboard/internal/kanban/models"
	"wyboard/internal/kanban/operations"
	"wyboard/internal/logs"
)

// Options configures the board UI
type Options struct {
	APIURL string // shown in the header
}

type boardMode int

const (
	boardModeNormal boardMode = iota
	boardModeDrag
	boardModeNewTask
	boardModeEditTitle
	boardModeConfirmDelete
	boardModeColumnEdit
)

// confirmedMsg carries the outcome of a pending operation back to Update
type confirmedMsg struct {
	result operations.Result
	done   string
}

// loadedMsg carries a fetched board back to Update
type loadedMsg struct {
	loaded operations.Loaded
	manual bool
}

// dropMarker tracks a task drag. The source is fixed when the task is
// picked up; the destination follows the keys.
type dropMarker struct {
	sourceColumnID int64
	sourceIndex    int
	destCol        int // column index
	destIndex      int
}

// Model is the root bubbletea model
type Model struct {
	ctx  context.Context
	eng  *operations.Engine
	opts Options

	mode   boardMode
	width  int
	height int

	selectedCol      int
	selectedCard     int
	cursorPos        map[int64]int // remembered card cursor per column
	scrollOffsets    map[int64]int // first visible card per column
	horizontalOffset int           // first visible column

	drag         dropMarker
	titleInput   textinput.Model
	editing      models.Task
	confirm      *confirmationModal
	deleting     models.Task
	columnEditor *columnEditorModel

	showHelp bool
	inFlight int // confirmations not yet settled
	err      error
	message  string
}

// New creates the board model around a loaded engine
func New(ctx context.Context, eng *operations.Engine, opts Options) Model {
	return Model{
		ctx:           ctx,
		eng:           eng,
		opts:          opts,
		cursorPos:     make(map[int64]int),
		scrollOffsets: make(map[int64]int),
		titleInput:    newTextInput(200, 50),
	}
}

// Run shows the board until the user quits or ctx is cancelled
func Run(ctx context.Context, eng *operations.Engine, opts Options) error {
	p := tea.NewProgram(New(ctx, eng, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running board: %w", err)
	}
	return nil
}

// newTextInput builds an input with a steady cursor
func newTextInput(limit, width int) textinput.Model {
	ti := textinput.New()
	ti.CharLimit = limit
	ti.Width = width
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height - 3 // status bar
		m.adjustScrollPosition()
		m.adjustHorizontalScrollPosition()
		return m, nil

	case confirmedMsg:
		return m.settle(msg)

	case loadedMsg:
		return m.finishReload(msg)

	case confirmationResultMsg:
		m.confirm = nil
		m.mode = boardModeNormal
		if !msg.Confirmed {
			return m, nil
		}
		task := m.deleting
		p, err := m.eng.HandleDelete(operations.DeleteIntent{
			Type:     operations.IntentTask,
			ID:       task.ID,
			ColumnID: task.ColumnID,
		})
		return m.apply(p, err, fmt.Sprintf("Task %q deleted", task.Title))

	case saveIntentMsg:
		p, err := m.eng.HandleSave(msg.intent)
		return m.apply(p, err, msg.done)

	case deleteIntentMsg:
		p, err := m.eng.HandleDelete(msg.intent)
		return m.apply(p, err, msg.done)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		m.message = ""
		m.err = nil

		switch m.mode {
		case boardModeDrag:
			return m.updateDrag(msg)
		case boardModeNewTask, boardModeEditTitle:
			return m.updateTitleInput(msg)
		case boardModeConfirmDelete:
			if m.confirm != nil {
				return m, m.confirm.Update(msg)
			}
			m.mode = boardModeNormal
			return m, nil
		case boardModeColumnEdit:
			return m.updateColumnEdit(msg)
		}
		return m.updateNormal(msg)
	}

	return m, nil
}

// apply hands a pending operation to a command. Validation errors stay on
// the notification line and nothing is sent.
func (m Model) apply(p *operations.Pending, err error, done string) (Model, tea.Cmd) {
	m.clampCursor()
	if err != nil {
		m.err = err
		return m, nil
	}
	if p == nil {
		return m, nil
	}

	m.inFlight++
	ctx := m.ctx
	return m, func() tea.Msg {
		return confirmedMsg{result: p.Confirm(ctx), done: done}
	}
}

func (m Model) settle(msg confirmedMsg) (Model, tea.Cmd) {
	m.inFlight = max(0, m.inFlight-1)
	res := msg.result
	reload := m.eng.Settle(res)

	switch {
	case res.Failed() && res.Policy == operations.PolicyReload:
		m.err = res.Err
	case res.Failed():
		logs.Logger.WithField("op", res.Op).Debug("best-effort update failed, not notifying")
	case msg.done != "":
		m.message = msg.done
	}
	m.clampCursor()

	if reload {
		return m.reload(false)
	}
	return m, nil
}

// reload starts a background fetch. A reload already in flight wins.
func (m Model) reload(manual bool) (Model, tea.Cmd) {
	if err := m.eng.BeginReload(); err != nil {
		return m, nil
	}
	if m.mode == boardModeDrag {
		m.mode = boardModeNormal
	}
	ctx, eng := m.ctx, m.eng
	return m, func() tea.Msg {
		return loadedMsg{loaded: eng.Fetch(ctx), manual: manual}
	}
}

func (m Model) finishReload(msg loadedMsg) (Model, tea.Cmd) {
	if err := m.eng.FinishReload(msg.loaded); err != nil {
		m.err = fmt.Errorf("reload failed, showing the last loaded board: %w", err)
	} else if msg.manual {
		m.message = "Board reloaded"
	}
	m.clampCursor()
	m.adjustScrollPosition()
	m.adjustHorizontalScrollPosition()
	return m, nil
}

func (m Model) View() string {
	if m.showHelp {
		return renderHelpPopup(boardHelp, m.width, m.height+3)
	}

	switch {
	case m.mode == boardModeColumnEdit && m.columnEditor != nil:
		return m.overlay(m.columnEditor.View())
	case m.mode == boardModeConfirmDelete && m.confirm != nil:
		return m.overlay(m.confirm.View())
	case m.mode == boardModeNewTask || m.mode == boardModeEditTitle:
		return m.overlay(m.titleInputView())
	}
	return m.boardView()
}

// overlay centers a modal above the notification line
func (m Model) overlay(box string) string {
	content := box
	if note := m.notification(); note != "" {
		content = lipgloss.JoinVertical(lipgloss.Center, box, note)
	}
	return lipgloss.Place(m.width, m.height+3, lipgloss.Center, lipgloss.Center, content)
}

// notification renders the success or error line
func (m Model) notification() string {
	switch {
	case m.err != nil:
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	case m.message != "":
		return successStyle.Render(m.message)
	}
	return ""
}
