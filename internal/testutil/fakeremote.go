// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"slices"
	"sync"

	"wyboard/internal/devserver"
	"wyboard/internal/kanban/models"
	"wyboard/internal/kanban/remote"
)

// ErrInjected is a convenient error for failure injection.
var ErrInjected = errors.New("injected failure")

// Call is one recorded invocation of the fake.
type Call struct {
	Method string
	Args   []int64
}

// FakeRemote is an in-memory remote.Service that records every call and can
// be told to fail. Stored data lives in a devserver.Memory.
type FakeRemote struct {
	*devserver.Memory

	mu    sync.Mutex
	calls []Call

	// Error injection for testing
	ListColumnsErr    error
	ListTasksErr      map[int64]error // columnID -> error
	CreateColumnErr   error
	UpdateColumnErr   error
	DeleteColumnErr   error
	ReorderColumnsErr error
	CreateTaskErr     error
	UpdateTaskErr     error
	DeleteTaskErr     error
	MoveTaskErr       error
	ReorderTaskErr    map[int64]error // taskID -> error
	ListMembersErr    error
}

var _ remote.Service = (*FakeRemote)(nil)

// NewFakeRemote creates an empty fake.
func NewFakeRemote() *FakeRemote {
	return &FakeRemote{
		Memory:         devserver.NewMemory(),
		ListTasksErr:   make(map[int64]error),
		ReorderTaskErr: make(map[int64]error),
	}
}

// NewFakeBoard creates a fake holding project 1 with members Ada (1) and
// Linus (2) and the given columns, numbered in order.
func NewFakeBoard(columns ...string) *FakeRemote {
	f := NewFakeRemote()
	f.AddProject(1, "Test Project",
		models.Member{UserID: 1, FirstName: "Ada", LastName: "Lovelace"},
		models.Member{UserID: 2, FirstName: "Linus", LastName: "Torvalds"},
	)
	for i, name := range columns {
		f.AddColumn(models.Column{ProjectID: 1, Name: name, DisplayOrder: i, Color: models.DefaultColumnColor})
	}
	return f
}

// Calls returns every recorded call in order.
func (f *FakeRemote) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// CallsTo returns the recorded calls of one method.
func (f *FakeRemote) CallsTo(method string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// MutatingCalls returns the calls that would change backend state.
func (f *FakeRemote) MutatingCalls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.calls {
		switch c.Method {
		case "ListColumns", "ListTasks", "ListMembers":
		default:
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls forgets the recorded calls.
func (f *FakeRemote) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *FakeRemote) record(method string, args ...int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: method, Args: args})
}

// ListColumns implements remote.Service.
func (f *FakeRemote) ListColumns(ctx context.Context, projectID int64) ([]models.Column, error) {
	f.record("ListColumns", projectID)
	if f.ListColumnsErr != nil {
		return nil, f.ListColumnsErr
	}
	return f.Memory.ListColumns(ctx, projectID)
}

// ListTasks implements remote.Service.
func (f *FakeRemote) ListTasks(ctx context.Context, columnID int64) ([]models.Task, error) {
	f.record("ListTasks", columnID)
	if err := f.ListTasksErr[columnID]; err != nil {
		return nil, err
	}
	return f.Memory.ListTasks(ctx, columnID)
}

// CreateColumn implements remote.Service.
func (f *FakeRemote) CreateColumn(ctx context.Context, projectID int64, req models.ColumnRequest) (models.Column, error) {
	f.record("CreateColumn", projectID)
	if f.CreateColumnErr != nil {
		return models.Column{}, f.CreateColumnErr
	}
	return f.Memory.CreateColumn(ctx, projectID, req)
}

// UpdateColumn implements remote.Service.
func (f *FakeRemote) UpdateColumn(ctx context.Context, projectID, columnID int64, upd models.ColumnUpdate) (models.Column, error) {
	f.record("UpdateColumn", projectID, columnID)
	if f.UpdateColumnErr != nil {
		return models.Column{}, f.UpdateColumnErr
	}
	return f.Memory.UpdateColumn(ctx, projectID, columnID, upd)
}

// DeleteColumn implements remote.Service.
func (f *FakeRemote) DeleteColumn(ctx context.Context, projectID, columnID, targetColumnID int64) error {
	f.record("DeleteColumn", projectID, columnID, targetColumnID)
	if f.DeleteColumnErr != nil {
		return f.DeleteColumnErr
	}
	return f.Memory.DeleteColumn(ctx, projectID, columnID, targetColumnID)
}

// ReorderColumns implements remote.Service.
func (f *FakeRemote) ReorderColumns(ctx context.Context, projectID int64, columnIDs []int64) error {
	f.record("ReorderColumns", append([]int64{projectID}, columnIDs...)...)
	if f.ReorderColumnsErr != nil {
		return f.ReorderColumnsErr
	}
	return f.Memory.ReorderColumns(ctx, projectID, columnIDs)
}

// CreateTask implements remote.Service.
func (f *FakeRemote) CreateTask(ctx context.Context, req models.TaskRequest) (models.Task, error) {
	f.record("CreateTask", req.ColumnID)
	if f.CreateTaskErr != nil {
		return models.Task{}, f.CreateTaskErr
	}
	return f.Memory.CreateTask(ctx, req)
}

// UpdateTask implements remote.Service.
func (f *FakeRemote) UpdateTask(ctx context.Context, taskID int64, req models.TaskRequest) (models.Task, error) {
	f.record("UpdateTask", taskID)
	if f.UpdateTaskErr != nil {
		return models.Task{}, f.UpdateTaskErr
	}
	return f.Memory.UpdateTask(ctx, taskID, req)
}

// DeleteTask implements remote.Service.
func (f *FakeRemote) DeleteTask(ctx context.Context, taskID int64) error {
	f.record("DeleteTask", taskID)
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	return f.Memory.DeleteTask(ctx, taskID)
}

// MoveTask implements remote.Service.
func (f *FakeRemote) MoveTask(ctx context.Context, taskID, columnID int64, position int) (models.Task, error) {
	f.record("MoveTask", taskID, columnID, int64(position))
	if f.MoveTaskErr != nil {
		return models.Task{}, f.MoveTaskErr
	}
	return f.Memory.MoveTask(ctx, taskID, columnID, position)
}

// ReorderTask implements remote.Service.
func (f *FakeRemote) ReorderTask(ctx context.Context, taskID int64, newPosition int) (models.Task, error) {
	f.record("ReorderTask", taskID, int64(newPosition))
	if err := f.ReorderTaskErr[taskID]; err != nil {
		return models.Task{}, err
	}
	return f.Memory.ReorderTask(ctx, taskID, newPosition)
}

// ListMembers implements remote.Service.
func (f *FakeRemote) ListMembers(ctx context.Context, projectID int64) ([]models.Member, error) {
	f.record("ListMembers", projectID)
	if f.ListMembersErr != nil {
		return nil, f.ListMembersErr
	}
	return f.Memory.ListMembers(ctx, projectID)
}
