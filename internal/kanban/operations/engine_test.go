package operations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"wyboard/internal/kanban/board"
	"wyboard/internal/kanban/models"
	"wyboard/internal/testutil"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// newTestEngine loads project 1 of the fake and forgets the load calls
func newTestEngine(t *testing.T, f *testutil.FakeRemote) *Engine {
	t.Helper()
	e := NewEngine(f, 1, Options{Now: func() time.Time { return testNow }})
	if err := e.Reload(context.Background()); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	f.ResetCalls()
	return e
}

// seedAB builds A(0){T1(0),T2(1)}, B(1){} with column ids 1, 2 and task ids 1, 2
func seedAB() *testutil.FakeRemote {
	f := testutil.NewFakeBoard("A", "B")
	f.AddTask(models.Task{Title: "T1", ColumnID: 1, DisplayOrder: 0, AssigneeID: 1, Priority: models.PriorityLow})
	f.AddTask(models.Task{Title: "T2", ColumnID: 1, DisplayOrder: 1, AssigneeID: 2, Priority: models.PriorityHigh})
	return f
}

func columnTaskIDs(v board.View, columnID int64) []int64 {
	ids := []int64{}
	for _, t := range v.Tasks(columnID) {
		ids = append(ids, t.ID)
	}
	return ids
}

func columnIDs(v board.View) []int64 {
	var ids []int64
	for _, c := range v.Columns() {
		ids = append(ids, c.ID)
	}
	return ids
}

// assertSingleOwner checks every task is listed exactly once, under its own column
func assertSingleOwner(t *testing.T, v board.View) {
	t.Helper()
	seen := make(map[int64]bool)
	for _, col := range v.Columns() {
		for _, task := range v.Tasks(col.ID) {
			if seen[task.ID] {
				t.Fatalf("task %d listed twice", task.ID)
			}
			seen[task.ID] = true
			if task.ColumnID != col.ID {
				t.Fatalf("task %d listed under %d but owned by %d", task.ID, col.ID, task.ColumnID)
			}
		}
	}
}

func TestReload_LoadsBoardAndMembers(t *testing.T) {
	f := seedAB()
	e := newTestEngine(t, f)
	v := e.View()

	if diff := cmp.Diff([]int64{1, 2}, columnIDs(v)); diff != "" {
		t.Errorf("columns (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{1, 2}, columnTaskIDs(v, 1)); diff != "" {
		t.Errorf("tasks of A (-want +got):\n%s", diff)
	}
	if !v.TasksLoaded(2) || v.WIPCount(2) != 0 {
		t.Error("expected empty list for B")
	}
	if len(v.Members()) != 2 {
		t.Errorf("expected 2 members, got %d", len(v.Members()))
	}
	if e.Loading() {
		t.Error("loading flag left set")
	}
}

func TestReload_IsIdempotent(t *testing.T) {
	f := seedAB()
	e := newTestEngine(t, f)
	first := e.View().Snapshot()

	if err := e.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, e.View().Snapshot()); diff != "" {
		t.Errorf("second reload changed the board (-first +second):\n%s", diff)
	}
	if len(f.MutatingCalls()) != 0 {
		t.Errorf("reload made mutating calls: %v", f.MutatingCalls())
	}
}

func TestReload_ColumnTaskFailureIsIsolated(t *testing.T) {
	f := seedAB()
	f.AddTask(models.Task{Title: "T3", ColumnID: 2, AssigneeID: 1})
	f.ListTasksErr[1] = testutil.ErrInjected
	f.ListMembersErr = testutil.ErrInjected

	e := NewEngine(f, 1, Options{})
	if err := e.Reload(context.Background()); err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}
	v := e.View()
	if v.WIPCount(1) != 0 {
		t.Errorf("expected failed column to be empty, got %d tasks", v.WIPCount(1))
	}
	if diff := cmp.Diff([]int64{3}, columnTaskIDs(v, 2)); diff != "" {
		t.Errorf("B (-want +got):\n%s", diff)
	}
	if len(v.Members()) != 0 {
		t.Errorf("expected no members, got %v", v.Members())
	}
}

func TestReload_ColumnFailureKeepsBoard(t *testing.T) {
	f := seedAB()
	e := newTestEngine(t, f)
	before := e.View().Snapshot()

	f.ListColumnsErr = testutil.ErrInjected
	if err := e.Reload(context.Background()); !errors.Is(err, testutil.ErrInjected) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if e.Loading() {
		t.Error("loading flag left set after failure")
	}
	if diff := cmp.Diff(before, e.View().Snapshot()); diff != "" {
		t.Errorf("failed reload changed the board (-want +got):\n%s", diff)
	}
}

func TestMutationsRejectedWhileLoading(t *testing.T) {
	e := newTestEngine(t, seedAB())
	if err := e.BeginReload(); err != nil {
		t.Fatal(err)
	}

	if err := e.StartDrag(DragTask); !errors.Is(err, ErrBusy) {
		t.Errorf("StartDrag: expected ErrBusy, got %v", err)
	}
	if _, err := e.CreateColumn(ColumnForm{Name: "C"}); !errors.Is(err, ErrBusy) {
		t.Errorf("CreateColumn: expected ErrBusy, got %v", err)
	}
	if _, err := e.DeleteTask(1, 1); !errors.Is(err, ErrBusy) {
		t.Errorf("DeleteTask: expected ErrBusy, got %v", err)
	}
	if err := e.BeginReload(); !errors.Is(err, ErrBusy) {
		t.Errorf("second BeginReload: expected ErrBusy, got %v", err)
	}

	if err := e.FinishReload(e.Fetch(context.Background())); err != nil {
		t.Fatal(err)
	}
	if err := e.StartDrag(DragTask); err != nil {
		t.Errorf("expected drag to start after reload, got %v", err)
	}
}

func TestSettle_NilPendingIsNoop(t *testing.T) {
	e := newTestEngine(t, seedAB())
	var p *Pending
	if e.Settle(p.Confirm(context.Background())) {
		t.Error("expected no reload for a nil pending")
	}
	if err := e.Do(context.Background(), nil); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestEveryTaskHasOneColumnAcrossOperations(t *testing.T) {
	ctx := context.Background()
	f := seedAB()
	f.AddColumn(models.Column{ProjectID: 1, Name: "C", DisplayOrder: 2})
	e := newTestEngine(t, f)

	steps := []func() (*Pending, error){
		func() (*Pending, error) {
			return e.CreateTask(TaskForm{Title: "T3", ColumnID: 3, AssigneeID: 1})
		},
		func() (*Pending, error) {
			e.StartDrag(DragTask)
			return e.DropTask(DropEvent{SourceColumnID: 1, DestColumnID: 3, SourceIndex: 0, DestIndex: 0})
		},
		func() (*Pending, error) {
			e.StartDrag(DragTask)
			return e.DropTask(DropEvent{SourceColumnID: 3, DestColumnID: 2, SourceIndex: 1, DestIndex: 5})
		},
		func() (*Pending, error) {
			e.StartDrag(DragTask)
			return e.DropTask(DropEvent{SourceColumnID: 3, DestColumnID: 3, SourceIndex: 0, DestIndex: 0})
		},
		func() (*Pending, error) { return e.DeleteTask(2, 0) },
		func() (*Pending, error) { return e.DeleteColumn(3, 2) },
		func() (*Pending, error) {
			return e.CreateTask(TaskForm{Title: "T4", ColumnID: 2, AssigneeID: 2})
		},
	}
	for i, step := range steps {
		p, err := step()
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		assertSingleOwner(t, e.View())
		if err := e.Do(ctx, p); err != nil {
			t.Fatalf("step %d confirm: %v", i, err)
		}
		assertSingleOwner(t, e.View())
	}

	total := 0
	for _, col := range e.View().Columns() {
		total += e.View().WIPCount(col.ID)
	}
	if total != 3 {
		t.Errorf("expected 3 tasks on the board, got %d", total)
	}
}
