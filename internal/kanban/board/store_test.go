package board

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"wyboard/internal/kanban/models"
)

func newTestStore() *Store {
	s := New(7)
	s.Replace(models.Board{
		ProjectID: 7,
		Columns: []models.Column{
			{ID: 2, Name: "Doing", DisplayOrder: 1},
			{ID: 1, Name: "Todo", DisplayOrder: 0, WIPLimit: models.IntPtr(2)},
		},
		Tasks: map[int64][]models.Task{
			1: {
				{ID: 11, Title: "T1", ColumnID: 1, DisplayOrder: 0},
				{ID: 13, Title: "T3", ColumnID: 1, DisplayOrder: 2},
				{ID: 12, Title: "T2", ColumnID: 1, DisplayOrder: 1},
			},
			2: {},
		},
	})
	return s
}

func taskIDs(s *Store, columnID int64) []int64 {
	var ids []int64
	for _, t := range s.Tasks(columnID) {
		ids = append(ids, t.ID)
	}
	return ids
}

// assertInvariants checks that every task lives in exactly one column and
// that each column is ordered by DisplayOrder.
func assertInvariants(t *testing.T, s *Store) {
	t.Helper()
	seen := make(map[int64]int64)
	for _, col := range s.Columns() {
		prev := -1 << 31
		for _, task := range s.Tasks(col.ID) {
			if other, dup := seen[task.ID]; dup {
				t.Fatalf("task %d appears in columns %d and %d", task.ID, other, col.ID)
			}
			seen[task.ID] = col.ID
			if task.ColumnID != col.ID {
				t.Fatalf("task %d listed under column %d but has ColumnID %d", task.ID, col.ID, task.ColumnID)
			}
			if task.DisplayOrder < prev {
				t.Fatalf("column %d not ordered by DisplayOrder: %v", col.ID, s.Tasks(col.ID))
			}
			prev = task.DisplayOrder
		}
	}
	if len(seen) != len(s.tasks) {
		t.Fatalf("arena holds %d tasks but %d are listed", len(s.tasks), len(seen))
	}
}

func TestReplace_SortsColumnsAndTasks(t *testing.T) {
	s := newTestStore()

	cols := s.Columns()
	if cols[0].ID != 1 || cols[1].ID != 2 {
		t.Fatalf("expected columns sorted by DisplayOrder, got %+v", cols)
	}
	if diff := cmp.Diff([]int64{11, 12, 13}, taskIDs(s, 1)); diff != "" {
		t.Errorf("unexpected task order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"column-1", "column-2"}, s.ConnectedContainers()); diff != "" {
		t.Errorf("unexpected containers (-want +got):\n%s", diff)
	}
	assertInvariants(t, s)
}

func TestUpsertTask_NeverDuplicates(t *testing.T) {
	s := newTestStore()

	moved := models.Task{ID: 12, Title: "T2", ColumnID: 2, DisplayOrder: 0}
	if !s.UpsertTask(moved) {
		t.Fatal("expected upsert into known column to succeed")
	}

	if diff := cmp.Diff([]int64{11, 13}, taskIDs(s, 1)); diff != "" {
		t.Errorf("source column (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{12}, taskIDs(s, 2)); diff != "" {
		t.Errorf("destination column (-want +got):\n%s", diff)
	}
	assertInvariants(t, s)
}

func TestUpsertTask_UnknownColumnDropsTask(t *testing.T) {
	s := newTestStore()

	if s.UpsertTask(models.Task{ID: 11, ColumnID: 99}) {
		t.Fatal("expected upsert into unknown column to fail")
	}
	if _, ok := s.Task(11); ok {
		t.Error("expected task to be dropped from the board")
	}
	assertInvariants(t, s)
}

func TestSetColumnTasks_RepeatedIDListedOnce(t *testing.T) {
	s := newTestStore()

	ok := s.SetColumnTasks(2, []models.Task{
		{ID: 21, Title: "A", DisplayOrder: 0},
		{ID: 21, Title: "A again", DisplayOrder: 1},
		{ID: 22, Title: "B", DisplayOrder: 2},
	})
	if !ok {
		t.Fatal("expected known column")
	}
	if diff := cmp.Diff([]int64{21, 22}, taskIDs(s, 2)); diff != "" {
		t.Errorf("column mismatch (-want +got):\n%s", diff)
	}
	assertInvariants(t, s)

	if !s.RemoveTask(21, 2) {
		t.Fatal("expected removal to succeed")
	}
	if diff := cmp.Diff([]int64{22}, taskIDs(s, 2)); diff != "" {
		t.Errorf("column mismatch after removal (-want +got):\n%s", diff)
	}
	assertInvariants(t, s)
}

func TestRemoveTask(t *testing.T) {
	s := newTestStore()

	if s.RemoveTask(11, 99) {
		t.Error("expected no-op for unknown column")
	}
	if s.RemoveTask(11, 2) {
		t.Error("expected no-op when the column does not hold the task")
	}
	if !s.RemoveTask(11, 1) {
		t.Fatal("expected removal to succeed")
	}
	if s.WIPCount(1) != 2 {
		t.Errorf("expected 2 tasks left, got %d", s.WIPCount(1))
	}
	assertInvariants(t, s)
}

func TestUpsertColumn_KeepsTasks(t *testing.T) {
	s := newTestStore()

	col, _ := s.Column(1)
	col.Name = "Backlog"
	col.DisplayOrder = 5
	s.UpsertColumn(col)

	cols := s.Columns()
	if cols[1].ID != 1 || cols[1].Name != "Backlog" {
		t.Fatalf("expected renamed column re-sorted to the end, got %+v", cols)
	}
	if s.WIPCount(1) != 3 {
		t.Errorf("expected task list untouched, got %d tasks", s.WIPCount(1))
	}

	s.UpsertColumn(models.Column{ID: 3, Name: "Done", DisplayOrder: 9})
	if !s.TasksLoaded(3) || s.WIPCount(3) != 0 {
		t.Error("expected new column to start with an empty list")
	}
	if len(s.ConnectedContainers()) != 3 {
		t.Errorf("expected containers recomputed, got %v", s.ConnectedContainers())
	}
}

func TestRemoveColumn_DropsItsTasks(t *testing.T) {
	s := newTestStore()

	if !s.RemoveColumn(1) {
		t.Fatal("expected column removal")
	}
	if _, ok := s.Task(11); ok {
		t.Error("expected tasks of the removed column to be gone")
	}
	if diff := cmp.Diff([]string{"column-2"}, s.ConnectedContainers()); diff != "" {
		t.Errorf("containers (-want +got):\n%s", diff)
	}
	assertInvariants(t, s)
}

func TestMoveTask_AcrossColumns(t *testing.T) {
	s := newTestStore()

	task, err := s.MoveTask(1, 1, 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ID != 12 || task.ColumnID != 2 || task.ColumnName != "Doing" {
		t.Errorf("unexpected moved task: %+v", task)
	}
	if diff := cmp.Diff([]int64{11, 13}, taskIDs(s, 1)); diff != "" {
		t.Errorf("source (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{12}, taskIDs(s, 2)); diff != "" {
		t.Errorf("destination (-want +got):\n%s", diff)
	}
	if got, _ := s.Task(13); got.DisplayOrder != 1 {
		t.Errorf("expected source renumbered, T3 order %d", got.DisplayOrder)
	}
	assertInvariants(t, s)
}

func TestMoveTask_ClampsDestinationIndex(t *testing.T) {
	s := newTestStore()

	if _, err := s.MoveTask(1, 0, 2, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := s.MoveTask(1, 0, 2, 50); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int64{11, 12}, taskIDs(s, 2)); diff != "" {
		t.Errorf("destination (-want +got):\n%s", diff)
	}
	assertInvariants(t, s)
}

func TestMoveTask_Errors(t *testing.T) {
	s := newTestStore()

	if _, err := s.MoveTask(1, 3, 2, 0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
	if _, err := s.MoveTask(1, 0, 42, 0); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn, got %v", err)
	}
	assertInvariants(t, s)
}

func TestReorderTask(t *testing.T) {
	s := newTestStore()

	if _, err := s.ReorderTask(1, 2, 0); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int64{13, 11, 12}, taskIDs(s, 1)); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
	for i, task := range s.Tasks(1) {
		if task.DisplayOrder != i {
			t.Errorf("task %d: expected DisplayOrder %d, got %d", task.ID, i, task.DisplayOrder)
		}
	}
}

func TestReorderColumns(t *testing.T) {
	s := newTestStore()
	s.UpsertColumn(models.Column{ID: 3, Name: "Done", DisplayOrder: 2})

	if err := s.ReorderColumns(2, 0); err != nil {
		t.Fatal(err)
	}
	var ids []int64
	for i, col := range s.Columns() {
		ids = append(ids, col.ID)
		if col.DisplayOrder != i {
			t.Errorf("column %d: expected DisplayOrder %d, got %d", col.ID, i, col.DisplayOrder)
		}
	}
	if diff := cmp.Diff([]int64{3, 1, 2}, ids); diff != "" {
		t.Errorf("column order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"column-3", "column-1", "column-2"}, s.ConnectedContainers()); diff != "" {
		t.Errorf("containers (-want +got):\n%s", diff)
	}
}

func TestWIPLimit(t *testing.T) {
	s := newTestStore()

	todo, _ := s.Column(1)
	if !s.IsWIPLimitReached(todo) {
		t.Error("expected WIP limit reached with 3 tasks and limit 2")
	}
	doing, _ := s.Column(2)
	if s.IsWIPLimitReached(doing) {
		t.Error("expected no WIP limit on Doing")
	}
}

func TestNameResolution(t *testing.T) {
	s := newTestStore()
	s.SetMembers([]models.Member{{UserID: 5, FirstName: "Ada", LastName: "Lovelace"}})

	if got := s.AssigneeName(models.Task{AssigneeID: 5}); got != "Ada Lovelace" {
		t.Errorf("expected member name, got %q", got)
	}
	if got := s.AssigneeName(models.Task{AssigneeID: 5, AssigneeName: "Server Name"}); got != "Server Name" {
		t.Errorf("expected server name, got %q", got)
	}
	if got := s.AssigneeName(models.Task{AssigneeID: 6}); got != "Unknown User" {
		t.Errorf("expected fallback, got %q", got)
	}
	if got := s.ColumnName(models.Task{ColumnID: 2}); got != "Doing" {
		t.Errorf("expected local column name, got %q", got)
	}
	if got := s.ColumnName(models.Task{ColumnID: 9}); got != "Unknown Column" {
		t.Errorf("expected fallback, got %q", got)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := newTestStore()

	snap := s.Snapshot()
	snap.Tasks[1][0].Title = "mutated"
	snap.Columns[0].Name = "mutated"

	if task, _ := s.Task(11); task.Title != "T1" {
		t.Error("snapshot shares task memory with the store")
	}
	if col, _ := s.Column(1); col.Name != "Todo" {
		t.Error("snapshot shares column memory with the store")
	}

	again := New(7)
	again.Replace(s.Snapshot())
	if diff := cmp.Diff(s.Snapshot(), again.Snapshot()); diff != "" {
		t.Errorf("replace(snapshot) is not stable (-want +got):\n%s", diff)
	}
}
