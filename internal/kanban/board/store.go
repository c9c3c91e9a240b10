// Package board holds the in-memory projection of one project's kanban board.
//
// Task data lives once in an arena keyed by task id; every column keeps only
// an ordered list of ids. The store never talks to the network.
package board

import (
	"cmp"
	"errors"
	"slices"

	"wyboard/internal/kanban/models"
)

var (
	// ErrUnknownColumn is returned when a column id is not on the board
	ErrUnknownColumn = errors.New("unknown column")

	// ErrIndexOutOfRange is returned when a list position does not exist
	ErrIndexOutOfRange = errors.New("index out of range")
)

// View is the read-only side of the board. Presentational code only ever
// receives a View.
type View interface {
	ProjectID() int64
	Columns() []models.Column
	Column(id int64) (models.Column, bool)
	ColumnIndex(id int64) int
	Tasks(columnID int64) []models.Task
	TaskAt(columnID int64, index int) (models.Task, bool)
	Task(id int64) (models.Task, bool)
	TasksLoaded(columnID int64) bool
	WIPCount(columnID int64) int
	IsWIPLimitReached(col models.Column) bool
	ConnectedContainers() []string
	Members() []models.Member
	AssigneeName(task models.Task) string
	ColumnName(task models.Task) string
	Snapshot() models.Board
}

// Mutator is the write handle held by the controllers that own the board
type Mutator interface {
	View
	LoadColumns(cols []models.Column)
	SetColumnTasks(columnID int64, tasks []models.Task) bool
	Replace(b models.Board)
	SetMembers(members []models.Member)
	UpsertTask(task models.Task) bool
	RemoveTask(taskID, columnID int64) bool
	UpsertColumn(col models.Column)
	RemoveColumn(id int64) bool
	MoveTask(fromColumnID int64, fromIndex int, toColumnID int64, toIndex int) (models.Task, error)
	ReorderTask(columnID int64, from, to int) (models.Task, error)
	ReorderColumns(from, to int) error
}

// Store is the board projection for one project
type Store struct {
	projectID int64
	columns   []models.Column
	tasks     map[int64]*models.Task // arena
	order     map[int64][]int64      // columnID -> task ids
	connected []string
	members   []models.Member
}

var _ Mutator = (*Store)(nil)

// New creates an empty store for a project
func New(projectID int64) *Store {
	return &Store{
		projectID: projectID,
		tasks:     make(map[int64]*models.Task),
		order:     make(map[int64][]int64),
	}
}

// ProjectID returns the project the board belongs to
func (s *Store) ProjectID() int64 {
	return s.projectID
}

// Columns returns a copy of the columns in display order
func (s *Store) Columns() []models.Column {
	return slices.Clone(s.columns)
}

// Column returns the column with the given id
func (s *Store) Column(id int64) (models.Column, bool) {
	i := s.ColumnIndex(id)
	if i < 0 {
		return models.Column{}, false
	}
	return s.columns[i], true
}

// ColumnIndex returns the position of a column, or -1
func (s *Store) ColumnIndex(id int64) int {
	return slices.IndexFunc(s.columns, func(c models.Column) bool { return c.ID == id })
}

// Tasks returns copies of a column's tasks in display order
func (s *Store) Tasks(columnID int64) []models.Task {
	ids := s.order[columnID]
	out := make([]models.Task, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.tasks[id])
	}
	return out
}

// TaskAt returns the task at a position within a column
func (s *Store) TaskAt(columnID int64, index int) (models.Task, bool) {
	ids := s.order[columnID]
	if index < 0 || index >= len(ids) {
		return models.Task{}, false
	}
	return *s.tasks[ids[index]], true
}

// Task returns a task by id
func (s *Store) Task(id int64) (models.Task, bool) {
	t, ok := s.tasks[id]
	if !ok {
		return models.Task{}, false
	}
	return *t, true
}

// TasksLoaded reports whether a task list has been installed for the column
func (s *Store) TasksLoaded(columnID int64) bool {
	_, ok := s.order[columnID]
	return ok
}

// WIPCount returns the number of tasks in a column
func (s *Store) WIPCount(columnID int64) int {
	return len(s.order[columnID])
}

// IsWIPLimitReached is advisory only; nothing blocks a write on it.
func (s *Store) IsWIPLimitReached(col models.Column) bool {
	return col.HasWIPLimit() && s.WIPCount(col.ID) >= *col.WIPLimit
}

// ConnectedContainers returns the drop-target ids, one per column
func (s *Store) ConnectedContainers() []string {
	return slices.Clone(s.connected)
}

// Members returns the project members
func (s *Store) Members() []models.Member {
	return slices.Clone(s.members)
}

// AssigneeName prefers the server-resolved name, then the member list
func (s *Store) AssigneeName(task models.Task) string {
	if task.AssigneeName != "" {
		return task.AssigneeName
	}
	for _, m := range s.members {
		if m.UserID == task.AssigneeID {
			return m.FullName()
		}
	}
	return "Unknown User"
}

// ColumnName prefers the server-resolved name, then the local column
func (s *Store) ColumnName(task models.Task) string {
	if task.ColumnName != "" {
		return task.ColumnName
	}
	if col, ok := s.Column(task.ColumnID); ok {
		return col.Name
	}
	return "Unknown Column"
}

// Snapshot returns a deep copy of the projection
func (s *Store) Snapshot() models.Board {
	b := models.Board{
		ProjectID: s.projectID,
		Columns:   s.Columns(),
		Tasks:     make(map[int64][]models.Task, len(s.order)),
	}
	for _, col := range s.columns {
		if s.TasksLoaded(col.ID) {
			b.Tasks[col.ID] = s.Tasks(col.ID)
		}
	}
	return b
}

// LoadColumns replaces the column list. Task lists of columns that are no
// longer present are dropped; the others are kept until SetColumnTasks.
func (s *Store) LoadColumns(cols []models.Column) {
	s.columns = slices.Clone(cols)
	for columnID := range s.order {
		if s.ColumnIndex(columnID) < 0 {
			s.dropColumnTasks(columnID)
		}
	}
	s.sortColumns()
}

// SetColumnTasks installs the fetched task list of a column, sorted by
// DisplayOrder. Returns false if the column is unknown.
func (s *Store) SetColumnTasks(columnID int64, tasks []models.Task) bool {
	if s.ColumnIndex(columnID) < 0 {
		return false
	}
	s.dropColumnTasks(columnID)

	ids := make([]int64, 0, len(tasks))
	seen := make(map[int64]bool, len(tasks))
	for _, t := range tasks {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		s.detach(t.ID)
		t.ColumnID = columnID
		task := t
		s.tasks[t.ID] = &task
		ids = append(ids, t.ID)
	}
	s.order[columnID] = ids
	s.sortColumnTasks(columnID)
	return true
}

// Replace rebuilds the whole projection from a snapshot
func (s *Store) Replace(b models.Board) {
	s.projectID = b.ProjectID
	s.tasks = make(map[int64]*models.Task)
	s.order = make(map[int64][]int64)
	s.LoadColumns(b.Columns)
	for _, col := range s.columns {
		if tasks, ok := b.Tasks[col.ID]; ok {
			s.SetColumnTasks(col.ID, tasks)
		}
	}
}

// SetMembers replaces the project member list
func (s *Store) SetMembers(members []models.Member) {
	s.members = slices.Clone(members)
}

// UpsertTask removes any existing copy of the task from every column, then
// inserts it into the list of task.ColumnID re-sorted by DisplayOrder.
// A task whose column is not on the board is dropped and false is returned.
func (s *Store) UpsertTask(task models.Task) bool {
	s.detach(task.ID)
	delete(s.tasks, task.ID)

	if s.ColumnIndex(task.ColumnID) < 0 {
		return false
	}

	s.tasks[task.ID] = &task
	s.order[task.ColumnID] = append(s.order[task.ColumnID], task.ID)
	s.sortColumnTasks(task.ColumnID)
	return true
}

// RemoveTask removes a task from the named column. No-op if the column is
// unknown or does not hold the task.
func (s *Store) RemoveTask(taskID, columnID int64) bool {
	ids, ok := s.order[columnID]
	if !ok {
		return false
	}
	i := slices.Index(ids, taskID)
	if i < 0 {
		return false
	}
	s.order[columnID] = slices.Delete(ids, i, i+1)
	delete(s.tasks, taskID)
	return true
}

// UpsertColumn inserts or replaces a column. An existing column keeps its
// task list; a new one starts with an empty list.
func (s *Store) UpsertColumn(col models.Column) {
	if i := s.ColumnIndex(col.ID); i >= 0 {
		s.columns[i] = col
	} else {
		s.columns = append(s.columns, col)
		if _, ok := s.order[col.ID]; !ok {
			s.order[col.ID] = []int64{}
		}
	}
	s.sortColumns()
}

// RemoveColumn removes a column together with its tasks
func (s *Store) RemoveColumn(id int64) bool {
	i := s.ColumnIndex(id)
	if i < 0 {
		return false
	}
	s.columns = slices.Delete(s.columns, i, i+1)
	s.dropColumnTasks(id)
	s.sortColumns()
	return true
}

// MoveTask transfers the task at fromIndex of one column to toIndex of
// another. toIndex is clamped to the destination length. Both columns are
// renumbered so DisplayOrder matches list position.
func (s *Store) MoveTask(fromColumnID int64, fromIndex int, toColumnID int64, toIndex int) (models.Task, error) {
	if s.ColumnIndex(fromColumnID) < 0 || s.ColumnIndex(toColumnID) < 0 {
		return models.Task{}, ErrUnknownColumn
	}
	src := s.order[fromColumnID]
	if fromIndex < 0 || fromIndex >= len(src) {
		return models.Task{}, ErrIndexOutOfRange
	}
	if fromColumnID == toColumnID {
		return s.ReorderTask(fromColumnID, fromIndex, toIndex)
	}

	id := src[fromIndex]
	s.order[fromColumnID] = slices.Delete(src, fromIndex, fromIndex+1)

	dst := s.order[toColumnID]
	toIndex = max(0, min(toIndex, len(dst)))
	s.order[toColumnID] = slices.Insert(dst, toIndex, id)

	task := s.tasks[id]
	task.ColumnID = toColumnID
	if col, ok := s.Column(toColumnID); ok {
		task.ColumnName = col.Name
	}

	s.renumber(fromColumnID)
	s.renumber(toColumnID)
	return *task, nil
}

// ReorderTask moves a task within its column
func (s *Store) ReorderTask(columnID int64, from, to int) (models.Task, error) {
	ids, ok := s.order[columnID]
	if !ok {
		return models.Task{}, ErrUnknownColumn
	}
	if from < 0 || from >= len(ids) {
		return models.Task{}, ErrIndexOutOfRange
	}
	to = max(0, min(to, len(ids)-1))

	id := ids[from]
	ids = slices.Delete(ids, from, from+1)
	s.order[columnID] = slices.Insert(ids, to, id)
	s.renumber(columnID)
	return *s.tasks[id], nil
}

// ReorderColumns moves a column from one position to another and
// renumbers every column's DisplayOrder to its new position
func (s *Store) ReorderColumns(from, to int) error {
	if from < 0 || from >= len(s.columns) {
		return ErrIndexOutOfRange
	}
	to = max(0, min(to, len(s.columns)-1))

	col := s.columns[from]
	s.columns = slices.Delete(s.columns, from, from+1)
	s.columns = slices.Insert(s.columns, to, col)
	for i := range s.columns {
		s.columns[i].DisplayOrder = i
	}
	s.recomputeConnected()
	return nil
}

// detach removes a task id from whichever column list holds it
func (s *Store) detach(taskID int64) {
	for columnID, ids := range s.order {
		if i := slices.Index(ids, taskID); i >= 0 {
			s.order[columnID] = slices.Delete(ids, i, i+1)
		}
	}
}

func (s *Store) dropColumnTasks(columnID int64) {
	for _, id := range s.order[columnID] {
		delete(s.tasks, id)
	}
	delete(s.order, columnID)
}

func (s *Store) renumber(columnID int64) {
	for i, id := range s.order[columnID] {
		s.tasks[id].DisplayOrder = i
	}
}

func (s *Store) sortColumns() {
	slices.SortStableFunc(s.columns, func(a, b models.Column) int {
		return cmp.Compare(a.DisplayOrder, b.DisplayOrder)
	})
	s.recomputeConnected()
}

func (s *Store) sortColumnTasks(columnID int64) {
	slices.SortStableFunc(s.order[columnID], func(a, b int64) int {
		return cmp.Compare(s.tasks[a].DisplayOrder, s.tasks[b].DisplayOrder)
	})
}

func (s *Store) recomputeConnected() {
	s.connected = make([]string, len(s.columns))
	for i, col := range s.columns {
		s.connected[i] = col.ContainerID()
	}
}
