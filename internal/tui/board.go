package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wyboard/internal/kanban/models"
	"wyboard/internal/kanban/operations"
	"wyboard/internal/kanban/render"
	"wyboard/internal/tui/theme"
)

func (m Model) columns() []models.Column {
	return m.eng.View().Columns()
}

// currentColumn returns the selected column
func (m Model) currentColumn() (models.Column, bool) {
	cols := m.columns()
	if m.selectedCol < 0 || m.selectedCol >= len(cols) {
		return models.Column{}, false
	}
	return cols[m.selectedCol], true
}

// currentTask returns the task under the cursor
func (m Model) currentTask() (models.Task, bool) {
	col, ok := m.currentColumn()
	if !ok {
		return models.Task{}, false
	}
	return m.eng.View().TaskAt(col.ID, m.selectedCard)
}

func (m Model) taskCount(colIndex int) int {
	cols := m.columns()
	if colIndex < 0 || colIndex >= len(cols) {
		return 0
	}
	return m.eng.View().WIPCount(cols[colIndex].ID)
}

func (m Model) updateNormal(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "?":
		m.showHelp = true

	case "r":
		return m.reload(true)

	case "h", "left":
		if m.selectedCol > 0 {
			m.selectColumn(m.selectedCol - 1)
		}

	case "l", "right":
		if m.selectedCol < len(m.columns())-1 {
			m.selectColumn(m.selectedCol + 1)
		}

	case "j", "down":
		if m.selectedCard < m.taskCount(m.selectedCol)-1 {
			m.selectCard(m.selectedCard + 1)
		}

	case "k", "up":
		if m.selectedCard > 0 {
			m.selectCard(m.selectedCard - 1)
		}

	case "m", " ":
		col, ok := m.currentColumn()
		if !ok || m.taskCount(m.selectedCol) == 0 {
			break
		}
		if err := m.eng.StartDrag(operations.DragTask); err != nil {
			m.err = err
			break
		}
		m.drag = dropMarker{
			sourceColumnID: col.ID,
			sourceIndex:    m.selectedCard,
			destCol:        m.selectedCol,
			destIndex:      m.selectedCard,
		}
		m.mode = boardModeDrag

	case "H":
		return m.moveColumn(-1)

	case "L":
		return m.moveColumn(1)

	case "n":
		col, ok := m.currentColumn()
		if !ok {
			break
		}
		m.titleInput.Placeholder = "title of the new task in " + col.Name
		m.titleInput.SetValue("")
		m.titleInput.Focus()
		m.mode = boardModeNewTask

	case "e", "enter":
		task, ok := m.currentTask()
		if !ok {
			break
		}
		m.editing = task
		m.titleInput.Placeholder = ""
		m.titleInput.SetValue(task.Title)
		m.titleInput.CursorEnd()
		m.titleInput.Focus()
		m.mode = boardModeEditTitle

	case "D":
		task, ok := m.currentTask()
		if !ok {
			break
		}
		m.deleting = task
		m.confirm = newConfirmationModal(
			"Delete this task?",
			fmt.Sprintf("%q (#%d) will be removed from %s.", task.Title, task.ID, m.eng.View().ColumnName(task)),
			50,
		)
		m.mode = boardModeConfirmDelete

	case "c":
		editor := newColumnEditorModel(m.eng.View(), m.eng.DeleteCandidates, m.selectedCol)
		m.columnEditor = &editor
		m.mode = boardModeColumnEdit
	}

	return m, nil
}

// moveColumn drags the selected column one slot left or right
func (m Model) moveColumn(delta int) (Model, tea.Cmd) {
	to := m.selectedCol + delta
	if to < 0 || to >= len(m.columns()) {
		return m, nil
	}
	if err := m.eng.StartDrag(operations.DragColumn); err != nil {
		m.err = err
		return m, nil
	}
	p, err := m.eng.DropColumn(m.selectedCol, to)
	if err == nil {
		m.selectedCol = to
		m.adjustHorizontalScrollPosition()
	}
	return m.apply(p, err, "Column moved")
}

// maxDropIndex is the last index the marker may reach in a column. A task
// dropped into another column may also go after its last task.
func (m Model) maxDropIndex(colIndex int) int {
	n := m.taskCount(colIndex)
	if m.columns()[colIndex].ID == m.drag.sourceColumnID {
		return n - 1
	}
	return n
}

func (m Model) updateDrag(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.eng.CancelDrag()
		m.mode = boardModeNormal
		return m, nil

	case "h", "left":
		if m.drag.destCol > 0 {
			m.drag.destCol--
			m.drag.destIndex = min(m.drag.destIndex, m.maxDropIndex(m.drag.destCol))
		}

	case "l", "right":
		if m.drag.destCol < len(m.columns())-1 {
			m.drag.destCol++
			m.drag.destIndex = min(m.drag.destIndex, m.maxDropIndex(m.drag.destCol))
		}

	case "j", "down":
		if m.drag.destIndex < m.maxDropIndex(m.drag.destCol) {
			m.drag.destIndex++
		}

	case "k", "up":
		if m.drag.destIndex > 0 {
			m.drag.destIndex--
		}

	case "enter", "m", " ":
		dest := m.columns()[m.drag.destCol]
		p, err := m.eng.DropTask(operations.DropEvent{
			SourceColumnID: m.drag.sourceColumnID,
			DestColumnID:   dest.ID,
			SourceIndex:    m.drag.sourceIndex,
			DestIndex:      m.drag.destIndex,
		})
		m.mode = boardModeNormal
		if err == nil {
			m.selectColumn(m.drag.destCol)
			m.selectCard(min(m.drag.destIndex, m.taskCount(m.drag.destCol)-1))
		}
		done := "Task reordered"
		if dest.ID != m.drag.sourceColumnID {
			done = "Task moved to " + dest.Name
		}
		return m.apply(p, err, done)
	}

	m.adjustHorizontalScrollPosition()
	return m, nil
}

func (m Model) updateTitleInput(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.titleInput.Blur()
		m.mode = boardModeNormal
		return m, nil

	case "enter":
		title := m.titleInput.Value()
		mode := m.mode
		m.titleInput.Blur()
		m.mode = boardModeNormal

		if mode == boardModeEditTitle {
			form := operations.FormFromTask(m.editing)
			form.Title = title
			p, err := m.eng.HandleSave(operations.SaveIntent{
				Type:   operations.IntentTask,
				Action: operations.ActionUpdate,
				Task:   &form,
			})
			return m.apply(p, err, "Task updated")
		}

		col, ok := m.currentColumn()
		if !ok {
			return m, nil
		}
		form := operations.TaskForm{Title: title, ColumnID: col.ID}
		if members := m.eng.View().Members(); len(members) > 0 {
			form.AssigneeID = members[0].UserID
		}
		p, err := m.eng.HandleSave(operations.SaveIntent{
			Type:   operations.IntentTask,
			Action: operations.ActionCreate,
			Task:   &form,
		})
		return m.apply(p, err, fmt.Sprintf("Task %q created in %s", strings.TrimSpace(title), col.Name))
	}

	var cmd tea.Cmd
	m.titleInput, cmd = m.titleInput.Update(msg)
	return m, cmd
}

func (m Model) updateColumnEdit(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.columnEditor == nil {
		m.mode = boardModeNormal
		return m, nil
	}
	editor, cmd, done := m.columnEditor.Update(msg)
	if done {
		m.columnEditor = nil
		m.mode = boardModeNormal
		m.clampCursor()
		return m, cmd
	}
	m.columnEditor = &editor
	return m, cmd
}

// selectColumn moves to a column and restores its remembered card cursor
func (m *Model) selectColumn(index int) {
	m.selectedCol = index
	cols := m.columns()
	if index < 0 || index >= len(cols) {
		m.selectedCard = 0
		return
	}
	m.selectedCard = m.cursorPos[cols[index].ID]
	if n := m.taskCount(index); m.selectedCard >= n {
		m.selectedCard = max(0, n-1)
	}
	m.cursorPos[cols[index].ID] = m.selectedCard
	m.adjustScrollPosition()
	m.adjustHorizontalScrollPosition()
}

func (m *Model) selectCard(index int) {
	m.selectedCard = max(0, index)
	if col, ok := m.currentColumn(); ok {
		m.cursorPos[col.ID] = m.selectedCard
	}
	m.adjustScrollPosition()
}

// clampCursor keeps the cursor on the board after columns or tasks vanish
func (m *Model) clampCursor() {
	n := len(m.columns())
	if m.selectedCol >= n {
		m.selectedCol = max(0, n-1)
	}
	if count := m.taskCount(m.selectedCol); m.selectedCard >= count {
		m.selectedCard = max(0, count-1)
	}
	if col, ok := m.currentColumn(); ok {
		m.cursorPos[col.ID] = m.selectedCard
	}
	if m.horizontalOffset >= n {
		m.horizontalOffset = max(0, n-1)
	}
}

// projectName is the name the backend attaches to tasks
func (m Model) projectName() string {
	v := m.eng.View()
	for _, col := range v.Columns() {
		for _, t := range v.Tasks(col.ID) {
			if t.ProjectName != "" {
				return t.ProjectName
			}
		}
	}
	return fmt.Sprintf("Project %d", v.ProjectID())
}

func (m Model) titleInputView() string {
	title := "New task"
	if m.mode == boardModeEditTitle {
		title = fmt.Sprintf("Edit task #%d", m.editing.ID)
	} else if col, ok := m.currentColumn(); ok {
		title = "New task in " + col.Name
	}

	var s strings.Builder
	s.WriteString(inputTitleStyle.Render(title))
	s.WriteString("\n\n")
	s.WriteString(m.titleInput.View())
	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("enter: save • esc: cancel"))
	return inputBoxStyle.Render(s.String())
}

func (m Model) columnHeight() int {
	return max(minColumnHeight, m.height-headerLines-statusLines-marginLines)
}

func (m Model) boardView() string {
	var s strings.Builder

	header := titleStyle.Render(m.projectName())
	if m.opts.APIURL != "" {
		header += theme.Muted.Render(" " + m.opts.APIURL)
	}
	switch {
	case m.eng.Loading():
		header += "  " + loadingStyle.Render("⟳ loading board…")
	case m.inFlight > 0:
		header += "  " + loadingStyle.Render(fmt.Sprintf("⟳ syncing %d change(s)…", m.inFlight))
	}
	s.WriteString(header)
	s.WriteString("\n\n")

	cols := m.columns()
	if len(cols) == 0 {
		s.WriteString(cardPreviewStyle.Render("  This project has no columns yet. Press c to add one."))
		s.WriteString("\n")
	} else {
		height := m.columnHeight()
		startCol, endCol := m.calculateVisibleColumns()

		views := []string{}
		if startCol > 0 {
			views = append(views, m.renderScrollIndicator("◀", height))
		} else {
			views = append(views, m.renderScrollIndicator(" ", height))
		}
		for i := startCol; i < endCol; i++ {
			views = append(views, m.renderColumn(i, cols[i], height))
		}
		if endCol < len(cols) {
			views = append(views, m.renderScrollIndicator("▶", height))
		} else {
			views = append(views, m.renderScrollIndicator(" ", height))
		}

		row := lipgloss.JoinHorizontal(lipgloss.Top, views...)
		s.WriteString(lipgloss.Place(m.width, 0, lipgloss.Center, lipgloss.Top, row))
		s.WriteString("\n")
	}

	if note := m.notification(); note != "" {
		s.WriteString(note)
		s.WriteString("\n")
	}

	hints := "hjkl: navigate • m/space: drag • H/L: move column • n: new • e: edit • D: delete • c: columns • r: reload • ?: help • q: quit"
	if m.mode == boardModeDrag {
		hints = "hjkl: move drop marker • enter: drop • esc: cancel"
	}
	s.WriteString(theme.StatusBar.Width(max(0, m.width)).Render(hints))

	return s.String()
}

// wipLabel renders "(n)" or "(n/limit)", red once the limit is reached
func (m Model) wipLabel(col models.Column) string {
	v := m.eng.View()
	if !col.HasWIPLimit() {
		return wipStyle.Render(fmt.Sprintf("(%d)", v.WIPCount(col.ID)))
	}
	label := fmt.Sprintf("(%d/%d)", v.WIPCount(col.ID), *col.WIPLimit)
	if v.IsWIPLimitReached(col) {
		return wipFullStyle.Render(label)
	}
	return wipStyle.Render(label)
}

func (m Model) renderColumn(index int, col models.Column, fixedHeight int) string {
	v := m.eng.View()
	var s strings.Builder

	colTitle := columnTitleStyle
	if index == m.selectedCol {
		colTitle = selectedColumnTitleStyle
	}
	s.WriteString(colTitle.Foreground(theme.ColumnColor(col.Color)).Render(col.Name))
	s.WriteString(" " + m.wipLabel(col))
	s.WriteString("\n\n")

	style := columnStyle
	switch {
	case m.mode == boardModeDrag && index == m.drag.destCol:
		style = dropColumnStyle
	case index == m.selectedCol:
		style = selectedColumnStyle
	}

	tasks := v.Tasks(col.ID)
	dropping := m.mode == boardModeDrag && index == m.drag.destCol
	if len(tasks) == 0 {
		if !v.TasksLoaded(col.ID) {
			s.WriteString(errorStyle.Render("(tasks unavailable)"))
		} else if dropping {
			s.WriteString(m.renderDropMarker())
		} else {
			s.WriteString(cardPreviewStyle.Render("(empty)"))
		}
		s.WriteString("\n")
		return style.Height(fixedHeight).Render(s.String())
	}

	scrollOffset := min(m.scrollOffsets[col.ID], len(tasks)-1)
	if scrollOffset > 0 {
		s.WriteString(scrollIndicatorStyle.Render(fmt.Sprintf("▲ +%d tasks above", scrollOffset)))
	}
	s.WriteString("\n\n")

	// the marker sits before the card at markerAt
	markerAt := -1
	if dropping {
		markerAt = m.drag.destIndex
		if col.ID == m.drag.sourceColumnID && m.drag.destIndex > m.drag.sourceIndex {
			markerAt++
		}
	}

	available := fixedHeight - columnOverhead
	used, rendered := 0, 0
	for i := scrollOffset; i < len(tasks); i++ {
		card := m.renderCard(index, i, col.ID, tasks[i])
		if i == markerAt {
			card = m.renderDropMarker() + "\n" + card
		}
		h := lipgloss.Height(card)
		if rendered > 0 && used+h > available {
			break
		}
		s.WriteString(card)
		s.WriteString("\n")
		used += h
		rendered++
	}
	if markerAt >= len(tasks) && scrollOffset+rendered == len(tasks) {
		s.WriteString(m.renderDropMarker())
		s.WriteString("\n")
	}

	if below := len(tasks) - scrollOffset - rendered; below > 0 {
		s.WriteString(scrollIndicatorStyle.Render(fmt.Sprintf("▼ +%d tasks below", below)))
	}

	return style.Height(fixedHeight).Render(s.String())
}

func (m Model) renderDropMarker() string {
	width := columnWidth - 2*columnPaddingHorizontal
	return dropMarkerStyle.Render(strings.Repeat("─", 3) + " drop here " + strings.Repeat("─", max(0, width-14)))
}

func (m Model) renderCard(colIndex, cardIndex int, columnID int64, task models.Task) string {
	maxWidth := columnWidth - (2 * columnPaddingHorizontal) - cardBorderWidth - (2 * cardPaddingHorizontal)
	isSelected := colIndex == m.selectedCol && cardIndex == m.selectedCard
	isDragged := m.mode == boardModeDrag && columnID == m.drag.sourceColumnID && cardIndex == m.drag.sourceIndex

	var lines []string

	// Line 1: priority badge and title
	badge := string(task.Priority)
	if badge != "" {
		badge = badge[:1] + " "
	}
	pStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.PriorityColor(task.Priority))
	tStyle := cardTitleStyle
	if isSelected || isDragged {
		bg := theme.Surface
		if isDragged {
			bg = theme.DragSurface
		}
		pStyle = pStyle.Background(bg)
		tStyle = tStyle.Background(bg)
	}
	title := render.Truncate(task.Title, maxWidth-len(badge))
	lines = append(lines, pStyle.Render(badge)+tStyle.Render(title))

	// Description preview
	for _, line := range render.Preview(task.Description, previewLines, maxWidth) {
		lines = append(lines, cardPreviewStyle.Render(line))
	}

	// Due date
	if due, ok := task.Due(); ok {
		dateStr, color := formatDateWithDaysUntil(due, "d")
		lines = append(lines, lipgloss.NewStyle().Foreground(color).Bold(true).Render(dateStr))
	}

	// Assignee and progress
	meta := "@" + m.eng.View().AssigneeName(task)
	if task.ProgressPercentage > 0 {
		meta += fmt.Sprintf(" • %d%%", task.ProgressPercentage)
	}
	lines = append(lines, theme.Assignee.Render(render.Truncate(meta, maxWidth)))

	style := cardStyle
	switch {
	case isDragged:
		style = draggedCardStyle
	case isSelected && m.mode != boardModeDrag:
		style = selectedCardStyle
	}
	return style.Render(strings.Join(lines, "\n"))
}

// formatDateWithDaysUntil formats a date with days until/overdue and appropriate color
func formatDateWithDaysUntil(date time.Time, prefix string) (string, lipgloss.Color) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	target := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.Local)

	daysUntil := int(target.Sub(today).Hours() / 24)

	dayOfWeek := strings.ToLower(date.Weekday().String()[:3])
	dateStr := fmt.Sprintf("%s:%02d-%02d %s %+d", prefix, date.Month(), date.Day(), dayOfWeek, -daysUntil)

	if daysUntil > 7 {
		return dateStr, theme.Success
	} else if daysUntil > 0 {
		return dateStr, theme.Warning
	}
	return dateStr, theme.Danger
}

// adjustScrollPosition ensures the selected card is visible by adjusting scroll offset
func (m *Model) adjustScrollPosition() {
	col, ok := m.currentColumn()
	if !ok {
		return
	}
	tasks := m.eng.View().Tasks(col.ID)
	if len(tasks) == 0 {
		m.scrollOffsets[col.ID] = 0
		return
	}

	available := m.columnHeight() - columnOverhead
	offset := m.scrollOffsets[col.ID]

	if m.selectedCard < offset {
		offset = m.selectedCard
	} else {
		visible, used := 0, 0
		for i := offset; i < len(tasks); i++ {
			h := lipgloss.Height(m.renderCard(m.selectedCol, i, col.ID, tasks[i]))
			if visible > 0 && used+h > available {
				break
			}
			used += h
			visible++
		}
		visible = max(1, visible)
		if m.selectedCard >= offset+visible {
			offset = m.selectedCard - visible + 1
		}
	}

	m.scrollOffsets[col.ID] = max(0, min(offset, len(tasks)-1))
}

// calculateVisibleColumns determines which columns fit in terminal width
func (m *Model) calculateVisibleColumns() (startCol, endCol int) {
	n := len(m.columns())
	startCol = min(m.horizontalOffset, max(0, n-1))

	visibleCount := max(1, (m.width-2*indicatorWidth)/columnTotalWidth)
	endCol = min(startCol+visibleCount, n)
	if endCol <= startCol && n > 0 {
		endCol = startCol + 1
	}
	return startCol, endCol
}

// renderScrollIndicator renders ◀ and ▶ indicators for horizontal scrolling
func (m *Model) renderScrollIndicator(symbol string, height int) string {
	indicator := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11")).
		Bold(true).
		Render(symbol)
	return lipgloss.NewStyle().
		Width(3).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(indicator)
}

// adjustHorizontalScrollPosition keeps the focused column on screen. While
// dragging that is the drop column.
func (m *Model) adjustHorizontalScrollPosition() {
	if len(m.columns()) == 0 {
		return
	}
	focus := m.selectedCol
	if m.mode == boardModeDrag {
		focus = m.drag.destCol
	}

	startCol, endCol := m.calculateVisibleColumns()
	if focus < startCol {
		m.horizontalOffset = focus
		return
	}
	if focus >= endCol {
		m.horizontalOffset = max(0, focus-(endCol-startCol)+1)
	}
}
