package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"wyboard/internal/kanban/board"
	"wyboard/internal/kanban/models"
	"wyboard/internal/kanban/operations"
	"wyboard/internal/testutil"
)

// seedBoard builds To Do{1,2}, Doing{3}, Done{} for project 1
func seedBoard() *testutil.FakeRemote {
	f := testutil.NewFakeBoard("To Do", "Doing", "Done")
	f.AddTask(models.Task{Title: "Write docs", ColumnID: 1, DisplayOrder: 0, AssigneeID: 1, Priority: models.PriorityLow, DueDate: "2026-03-20"})
	f.AddTask(models.Task{Title: "Fix bug", ColumnID: 1, DisplayOrder: 1, AssigneeID: 2, Priority: models.PriorityHigh, Description: "Crash on **save**"})
	f.AddTask(models.Task{Title: "Review PR", ColumnID: 2, DisplayOrder: 0, AssigneeID: 1, Priority: models.PriorityMedium})
	return f
}

func newTestModel(t *testing.T, f *testutil.FakeRemote) Model {
	t.Helper()
	eng := operations.NewEngine(f, 1, operations.Options{})
	if err := eng.Reload(context.Background()); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	f.ResetCalls()
	return send(t, New(context.Background(), eng, Options{APIURL: "http://test/pms"}),
		tea.WindowSizeMsg{Width: 160, Height: 50})
}

// send feeds messages to the model, running the commands they produce
// until the board settles
func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		queue := []tea.Msg{msg}
		for len(queue) > 0 {
			next := queue[0]
			queue = queue[1:]
			updated, cmd := m.Update(next)
			m = updated.(Model)
			queue = append(queue, collect(cmd)...)
		}
	}
	return m
}

// collect runs a command and keeps the messages the board reacts to
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
		return out
	case confirmedMsg, loadedMsg, confirmationResultMsg, saveIntentMsg, deleteIntentMsg:
		return []tea.Msg{msg}
	}
	return nil
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m = send(t, m, key(k))
	}
	return m
}

func key(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func viewTaskIDs(v board.View, columnID int64) []int64 {
	ids := []int64{}
	for _, task := range v.Tasks(columnID) {
		ids = append(ids, task.ID)
	}
	return ids
}

func remoteTaskIDs(t *testing.T, f *testutil.FakeRemote, columnID int64) []int64 {
	t.Helper()
	tasks, err := f.Memory.ListTasks(context.Background(), columnID)
	if err != nil {
		t.Fatalf("ListTasks(%d): %v", columnID, err)
	}
	ids := []int64{}
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	return ids
}

func remoteColumnNames(t *testing.T, f *testutil.FakeRemote) []string {
	t.Helper()
	cols, err := f.Memory.ListColumns(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListColumns: %v", err)
	}
	var names []string
	for _, c := range cols {
		names = append(names, c.Name)
	}
	return names
}

func TestBoard_View(t *testing.T) {
	m := newTestModel(t, seedBoard())

	out := m.View()
	for _, want := range []string{"Test Project", "To Do", "(2)", "Write docs", "Crash on save", "@Ada Lovelace", "(empty)"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestBoard_Navigation(t *testing.T) {
	m := newTestModel(t, seedBoard())

	m = press(t, m, "j")
	if m.selectedCol != 0 || m.selectedCard != 1 {
		t.Fatalf("after j: col %d card %d", m.selectedCol, m.selectedCard)
	}
	m = press(t, m, "j")
	if m.selectedCard != 1 {
		t.Errorf("j past the last task moved to %d", m.selectedCard)
	}

	m = press(t, m, "l", "l", "l")
	if m.selectedCol != 2 || m.selectedCard != 0 {
		t.Errorf("after lll: col %d card %d", m.selectedCol, m.selectedCard)
	}

	// the first column remembers its cursor
	m = press(t, m, "h", "h")
	if m.selectedCol != 0 || m.selectedCard != 1 {
		t.Errorf("after hh: col %d card %d, want 0 1", m.selectedCol, m.selectedCard)
	}
}

func TestBoard_DragAcrossColumns(t *testing.T) {
	f := seedBoard()
	m := newTestModel(t, f)

	m = press(t, m, "m", "l", "j")
	if m.mode != boardModeDrag || m.drag.destCol != 1 || m.drag.destIndex != 1 {
		t.Fatalf("unexpected drag state %+v (mode %d)", m.drag, m.mode)
	}
	if !strings.Contains(m.View(), "drop here") {
		t.Error("drop marker not rendered")
	}

	m = press(t, m, "enter")
	if m.mode != boardModeNormal {
		t.Errorf("still in mode %d after drop", m.mode)
	}
	if _, dragging := m.eng.Dragging(); dragging {
		t.Error("engine still dragging")
	}
	if m.err != nil {
		t.Fatalf("unexpected error %v", m.err)
	}
	if m.message != "Task moved to Doing" {
		t.Errorf("message = %q", m.message)
	}
	if m.selectedCol != 1 || m.selectedCard != 1 {
		t.Errorf("selection col %d card %d, want 1 1", m.selectedCol, m.selectedCard)
	}

	v := m.eng.View()
	if diff := cmp.Diff([]int64{3, 1}, viewTaskIDs(v, 2)); diff != "" {
		t.Errorf("local Doing mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{3, 1}, remoteTaskIDs(t, f, 2)); diff != "" {
		t.Errorf("remote Doing mismatch (-want +got):\n%s", diff)
	}
	want := []testutil.Call{{Method: "MoveTask", Args: []int64{1, 2, 1}}}
	if diff := cmp.Diff(want, f.MutatingCalls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestBoard_DragWithinColumn(t *testing.T) {
	f := seedBoard()
	m := newTestModel(t, f)

	m = press(t, m, "m", "j", "j", "enter")
	if m.message != "Task reordered" {
		t.Errorf("message = %q", m.message)
	}
	if diff := cmp.Diff([]int64{2, 1}, viewTaskIDs(m.eng.View(), 1)); diff != "" {
		t.Errorf("local To Do mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{2, 1}, remoteTaskIDs(t, f, 1)); diff != "" {
		t.Errorf("remote To Do mismatch (-want +got):\n%s", diff)
	}
	if n := len(f.CallsTo("ReorderTask")); n != 2 {
		t.Errorf("got %d ReorderTask calls, want 2", n)
	}
}

func TestBoard_DropInPlace(t *testing.T) {
	f := seedBoard()
	m := newTestModel(t, f)

	m = press(t, m, "m", "l", "h", "enter")
	if calls := f.MutatingCalls(); len(calls) != 0 {
		t.Errorf("drop in place sent %v", calls)
	}
	if m.message != "" || m.err != nil {
		t.Errorf("unexpected notification %q / %v", m.message, m.err)
	}
}

func TestBoard_DragCancel(t *testing.T) {
	f := seedBoard()
	m := newTestModel(t, f)

	m = press(t, m, "m", "l", "esc")
	if m.mode != boardModeNormal {
		t.Errorf("mode %d after esc", m.mode)
	}
	if _, dragging := m.eng.Dragging(); dragging {
		t.Error("engine still dragging")
	}
	if calls := f.MutatingCalls(); len(calls) != 0 {
		t.Errorf("cancelled drag sent %v", calls)
	}
	if diff := cmp.Diff([]int64{1, 2}, viewTaskIDs(m.eng.View(), 1)); diff != "" {
		t.Errorf("To Do mismatch (-want +got):\n%s", diff)
	}
}

func TestBoard_FailedMoveReloads(t *testing.T) {
	f := seedBoard()
	f.MoveTaskErr = testutil.ErrInjected
	m := newTestModel(t, f)

	m = press(t, m, "m", "l", "enter")
	if !errors.Is(m.err, testutil.ErrInjected) {
		t.Fatalf("expected injected error, got %v", m.err)
	}
	if m.eng.Loading() {
		t.Error("reload did not finish")
	}
	if diff := cmp.Diff([]int64{1, 2}, viewTaskIDs(m.eng.View(), 1)); diff != "" {
		t.Errorf("board not restored (-want +got):\n%s", diff)
	}
	if !strings.Contains(m.View(), "Error: ") {
		t.Error("error not shown")
	}

	// the notification is cleared by the next key
	m = press(t, m, "j")
	if m.err != nil {
		t.Errorf("error survived a key press: %v", m.err)
	}
}

func TestBoard_ColumnMove(t *testing.T) {
	f := seedBoard()
	m := newTestModel(t, f)

	m = press(t, m, "L")
	if m.selectedCol != 1 {
		t.Errorf("selected column %d, want 1", m.selectedCol)
	}
	want := []string{"Doing", "To Do", "Done"}
	if diff := cmp.Diff(want, remoteColumnNames(t, f)); diff != "" {
		t.Errorf("remote columns mismatch (-want +got):\n%s", diff)
	}

	m = press(t, m, "L", "L")
	if m.selectedCol != 2 {
		t.Errorf("selected column %d, want 2", m.selectedCol)
	}
	if n := len(f.CallsTo("ReorderColumns")); n != 2 {
		t.Errorf("got %d ReorderColumns calls, want 2", n)
	}
}

func TestBoard_NewTask(t *testing.T) {
	f := seedBoard()
	m := newTestModel(t, f)

	m = press(t, m, "l", "n")
	if m.mode != boardModeNewTask {
		t.Fatalf("mode %d after n", m.mode)
	}
	m = press(t, m, "Ship it", "enter")
	if m.err != nil {
		t.Fatalf("create failed: %v", m.err)
	}

	tasks, _ := f.Memory.ListTasks(context.Background(), 2)
	if len(tasks) != 2 {
		t.Fatalf("Doing has %d tasks, want 2", len(tasks))
	}
	got := tasks[1]
	if got.Title != "Ship it" || got.AssigneeID != 1 || got.Priority != models.PriorityMedium {
		t.Errorf("unexpected task %+v", got)
	}
	if diff := cmp.Diff([]int64{3, got.ID}, viewTaskIDs(m.eng.View(), 2)); diff != "" {
		t.Errorf("local Doing mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(m.message, "created in Doing") {
		t.Errorf("message = %q", m.message)
	}
}

func TestBoard_NewTask_Validation(t *testing.T) {
	f := seedBoard()
	m := newTestModel(t, f)

	m = press(t, m, "n", "   ", "enter")
	if !errors.Is(m.err, operations.ErrTitleRequired) {
		t.Errorf("expected ErrTitleRequired, got %v", m.err)
	}
	if calls := f.MutatingCalls(); len(calls) != 0 {
		t.Errorf("invalid task sent %v", calls)
	}

	m = press(t, m, "n", "Never mind", "esc")
	if m.mode != boardModeNormal || len(f.MutatingCalls()) != 0 {
		t.Error("esc did not cancel the new task")
	}
}

func TestBoard_EditTitle(t *testing.T) {
	f := seedBoard()
	m := newTestModel(t, f)

	m = press(t, m, "e", " today", "enter")
	if m.err != nil {
		t.Fatalf("edit failed: %v", m.err)
	}
	task, _ := m.eng.View().Task(1)
	if task.Title != "Write docs today" {
		t.Errorf("local title %q", task.Title)
	}
	remote, _ := f.Memory.ListTasks(context.Background(), 1)
	if remote[0].Title != "Write docs today" || remote[0].Priority != models.PriorityLow || remote[0].DueDate != "2026-03-20" {
		t.Errorf("unexpected remote task %+v", remote[0])
	}

	m = press(t, m, "e", "ctrl+u", "enter")
	if !errors.Is(m.err, operations.ErrTitleRequired) {
		t.Errorf("expected ErrTitleRequired, got %v", m.err)
	}
}

func TestBoard_DeleteTask(t *testing.T) {
	f := seedBoard()
	m := newTestModel(t, f)

	m = press(t, m, "D")
	if m.mode != boardModeConfirmDelete || !strings.Contains(m.View(), "Delete this task?") {
		t.Fatal("confirmation not shown")
	}
	m = press(t, m, "n")
	if len(f.MutatingCalls()) != 0 {
		t.Fatal("declined delete sent a call")
	}

	m = press(t, m, "j", "D", "y")
	if diff := cmp.Diff([]int64{1}, remoteTaskIDs(t, f, 1)); diff != "" {
		t.Errorf("remote To Do mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{1}, viewTaskIDs(m.eng.View(), 1)); diff != "" {
		t.Errorf("local To Do mismatch (-want +got):\n%s", diff)
	}
	if m.selectedCard != 0 {
		t.Errorf("cursor left on removed task: %d", m.selectedCard)
	}
}

func TestBoard_WIPLabel(t *testing.T) {
	f := testutil.NewFakeRemote()
	f.AddProject(1, "Limits", models.Member{UserID: 1, FirstName: "Ada"})
	f.AddColumn(models.Column{ProjectID: 1, Name: "Doing", WIPLimit: models.IntPtr(1)})
	f.AddTask(models.Task{Title: "Busy", ColumnID: 1, AssigneeID: 1, Priority: models.PriorityLow})
	m := newTestModel(t, f)

	if out := m.View(); !strings.Contains(out, "(1/1)") {
		t.Errorf("WIP label missing:\n%s", out)
	}
}

func TestBoard_HelpAndReload(t *testing.T) {
	f := seedBoard()
	m := newTestModel(t, f)

	m = press(t, m, "?")
	if !strings.Contains(m.View(), "Press any key to close") {
		t.Fatal("help not shown")
	}
	m = press(t, m, "j")
	if m.showHelp || m.selectedCard != 0 {
		t.Error("closing help should swallow the key")
	}

	f.AddTask(models.Task{Title: "Added elsewhere", ColumnID: 3, AssigneeID: 2, Priority: models.PriorityLow})
	m = press(t, m, "r")
	if m.message != "Board reloaded" {
		t.Errorf("message = %q", m.message)
	}
	if n := len(m.eng.View().Tasks(3)); n != 1 {
		t.Errorf("Done has %d tasks after reload, want 1", n)
	}
}

func TestBoard_ReloadFailureKeepsBoard(t *testing.T) {
	f := seedBoard()
	m := newTestModel(t, f)

	f.ListColumnsErr = testutil.ErrInjected
	m = press(t, m, "r")
	if !errors.Is(m.err, testutil.ErrInjected) {
		t.Errorf("expected injected error, got %v", m.err)
	}
	if n := len(m.eng.View().Columns()); n != 3 {
		t.Errorf("got %d columns, want the previous 3", n)
	}
}

func TestColumnEditor_AddRenameWIP(t *testing.T) {
	f := seedBoard()
	m := newTestModel(t, f)

	m = press(t, m, "c")
	if m.mode != boardModeColumnEdit || !strings.Contains(m.View(), "Column Editor") {
		t.Fatal("column editor not open")
	}

	m = press(t, m, "a", "Blocked", "enter")
	if m.err != nil {
		t.Fatalf("add failed: %v", m.err)
	}
	m = press(t, m, "r", "ctrl+u", "Backlog", "enter")
	if m.err != nil {
		t.Fatalf("rename failed: %v", m.err)
	}
	m = press(t, m, "w", "3", "enter")
	if m.err != nil {
		t.Fatalf("wip failed: %v", m.err)
	}

	want := []string{"Backlog", "Doing", "Done", "Blocked"}
	if diff := cmp.Diff(want, remoteColumnNames(t, f)); diff != "" {
		t.Errorf("remote columns mismatch (-want +got):\n%s", diff)
	}
	col, _ := m.eng.View().Column(1)
	if !col.HasWIPLimit() || *col.WIPLimit != 3 {
		t.Errorf("WIP limit not set: %+v", col.WIPLimit)
	}

	m = press(t, m, "a", "doing", "enter")
	if !errors.Is(m.err, operations.ErrDuplicateColumnName) {
		t.Errorf("expected ErrDuplicateColumnName, got %v", m.err)
	}

	m = press(t, m, "esc")
	if m.mode != boardModeNormal || m.columnEditor != nil {
		t.Error("esc did not close the editor")
	}
}

func TestColumnEditor_DeleteWithPicker(t *testing.T) {
	f := seedBoard()
	m := newTestModel(t, f)

	m = press(t, m, "c", "j", "d")
	if !strings.Contains(m.View(), `Delete "Doing"`) {
		t.Fatalf("picker not shown:\n%s", m.View())
	}
	if n := len(m.columnEditor.matches); n != 2 {
		t.Errorf("got %d targets, want 2", n)
	}

	m = press(t, m, "don")
	if n := len(m.columnEditor.matches); n != 1 {
		t.Fatalf("got %d matches for %q, want 1", n, "don")
	}
	m = press(t, m, "enter")
	if m.err != nil {
		t.Fatalf("delete failed: %v", m.err)
	}

	if diff := cmp.Diff([]string{"To Do", "Done"}, remoteColumnNames(t, f)); diff != "" {
		t.Errorf("remote columns mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{3}, viewTaskIDs(m.eng.View(), 3)); diff != "" {
		t.Errorf("migrated tasks mismatch (-want +got):\n%s", diff)
	}
	if n := len(m.eng.View().Columns()); n != 2 {
		t.Errorf("board has %d columns after reload, want 2", n)
	}
}

func TestColumnEditor_PickerCancel(t *testing.T) {
	f := seedBoard()
	m := newTestModel(t, f)

	m = press(t, m, "c", "d", "esc")
	if m.columnEditor == nil || m.columnEditor.mode != columnEditorModeNormal {
		t.Fatal("esc should return to the column list")
	}
	if len(f.MutatingCalls()) != 0 {
		t.Error("cancelled delete sent a call")
	}
}

func TestColumnEditor_LastColumn(t *testing.T) {
	f := testutil.NewFakeBoard("Only")
	m := newTestModel(t, f)

	m = press(t, m, "c", "d")
	if !errors.Is(m.columnEditor.err, operations.ErrLastColumn) {
		t.Errorf("expected ErrLastColumn, got %v", m.columnEditor.err)
	}
	if !strings.Contains(m.View(), "Error: ") {
		t.Error("error not shown in the editor")
	}
}
