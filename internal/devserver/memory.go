// Package devserver is an in-memory stand-in for the project-management
// backend, used for local development and end-to-end tests.
package devserver

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"wyboard/internal/kanban/models"
	"wyboard/internal/kanban/remote"
)

var (
	// ErrNotFound maps to 404
	ErrNotFound = errors.New("not found")

	// ErrInvalid maps to 400
	ErrInvalid = errors.New("invalid request")
)

type project struct {
	id      int64
	name    string
	members []models.Member
}

// Memory implements remote.Service on plain maps. Safe for concurrent use.
type Memory struct {
	mu         sync.Mutex
	projects   map[int64]*project
	columns    map[int64]*models.Column
	tasks      map[int64]*models.Task
	nextColumn int64
	nextTask   int64
	now        func() time.Time
}

var _ remote.Service = (*Memory)(nil)

// NewMemory creates an empty backend
func NewMemory() *Memory {
	return &Memory{
		projects:   make(map[int64]*project),
		columns:    make(map[int64]*models.Column),
		tasks:      make(map[int64]*models.Task),
		nextColumn: 1,
		nextTask:   1,
		now:        time.Now,
	}
}

// AddProject registers a project
func (m *Memory) AddProject(id int64, name string, members ...models.Member) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[id] = &project{id: id, name: name, members: slices.Clone(members)}
}

// AddColumn stores a column as given, assigning an id when it has none
func (m *Memory) AddColumn(col models.Column) models.Column {
	m.mu.Lock()
	defer m.mu.Unlock()
	if col.ID == 0 {
		col.ID = m.nextColumn
	}
	m.nextColumn = max(m.nextColumn, col.ID+1)
	stored := col
	m.columns[col.ID] = &stored
	return stored
}

// AddTask stores a task as given, assigning an id when it has none
func (m *Memory) AddTask(task models.Task) models.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	if task.ID == 0 {
		task.ID = m.nextTask
	}
	m.nextTask = max(m.nextTask, task.ID+1)
	if col, ok := m.columns[task.ColumnID]; ok && task.ProjectID == 0 {
		task.ProjectID = col.ProjectID
	}
	stored := task
	m.tasks[task.ID] = &stored
	return m.enrich(stored)
}

// ListColumns implements remote.Service.
func (m *Memory) ListColumns(_ context.Context, projectID int64) ([]models.Column, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[projectID]; !ok {
		return nil, fmt.Errorf("%w: project %d", ErrNotFound, projectID)
	}
	return m.projectColumns(projectID), nil
}

// ListTasks implements remote.Service.
func (m *Memory) ListTasks(_ context.Context, columnID int64) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.columns[columnID]; !ok {
		return nil, fmt.Errorf("%w: column %d", ErrNotFound, columnID)
	}
	tasks := m.columnTasks(columnID)
	out := make([]models.Task, len(tasks))
	for i, t := range tasks {
		out[i] = m.enrich(*t)
	}
	return out, nil
}

// CreateColumn implements remote.Service. New columns are appended on the right.
func (m *Memory) CreateColumn(_ context.Context, projectID int64, req models.ColumnRequest) (models.Column, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[projectID]; !ok {
		return models.Column{}, fmt.Errorf("%w: project %d", ErrNotFound, projectID)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.Column{}, fmt.Errorf("%w: column name is required", ErrInvalid)
	}
	if m.nameTaken(projectID, name, 0) {
		return models.Column{}, fmt.Errorf("%w: column %q already exists", ErrInvalid, name)
	}

	color := req.Color
	if color == "" {
		color = models.DefaultColumnColor
	}
	col := models.Column{
		ID:           m.nextColumn,
		ProjectID:    projectID,
		Name:         name,
		Color:        color,
		WIPLimit:     req.WIPLimit,
		DisplayOrder: len(m.projectColumns(projectID)),
		IsDefault:    req.IsDefault,
	}
	m.nextColumn++
	m.columns[col.ID] = &col
	return col, nil
}

// UpdateColumn implements remote.Service.
func (m *Memory) UpdateColumn(_ context.Context, projectID, columnID int64, upd models.ColumnUpdate) (models.Column, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	col, err := m.projectColumn(projectID, columnID)
	if err != nil {
		return models.Column{}, err
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return models.Column{}, fmt.Errorf("%w: column name is required", ErrInvalid)
		}
		if m.nameTaken(projectID, name, columnID) {
			return models.Column{}, fmt.Errorf("%w: column %q already exists", ErrInvalid, name)
		}
		upd.Name = &name
	}
	*col = upd.Apply(*col)
	if col.WIPLimit != nil && *col.WIPLimit <= 0 {
		col.WIPLimit = nil
	}
	return *col, nil
}

// DeleteColumn implements remote.Service. Tasks of the deleted column are
// appended to the target column in their current order.
func (m *Memory) DeleteColumn(_ context.Context, projectID, columnID, targetColumnID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.projectColumn(projectID, columnID); err != nil {
		return err
	}
	if columnID == targetColumnID {
		return fmt.Errorf("%w: target column must differ from the deleted column", ErrInvalid)
	}
	target, err := m.projectColumn(projectID, targetColumnID)
	if err != nil {
		return fmt.Errorf("%w: target column %d", ErrInvalid, targetColumnID)
	}

	next := len(m.columnTasks(target.ID))
	for _, t := range m.columnTasks(columnID) {
		t.ColumnID = target.ID
		t.DisplayOrder = next
		t.UpdatedAt = m.timestamp()
		next++
	}
	delete(m.columns, columnID)
	m.renumberColumns(projectID)
	return nil
}

// ReorderColumns implements remote.Service.
func (m *Memory) ReorderColumns(_ context.Context, projectID int64, columnIDs []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current := m.projectColumns(projectID)
	if len(current) != len(columnIDs) {
		return fmt.Errorf("%w: expected %d column ids, got %d", ErrInvalid, len(current), len(columnIDs))
	}
	for i, id := range columnIDs {
		col, err := m.projectColumn(projectID, id)
		if err != nil {
			return fmt.Errorf("%w: column %d", ErrInvalid, id)
		}
		col.DisplayOrder = i
	}
	return nil
}

// CreateTask implements remote.Service. The task is appended to its column.
func (m *Memory) CreateTask(_ context.Context, req models.TaskRequest) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkTaskRequest(req); err != nil {
		return models.Task{}, err
	}
	now := m.timestamp()
	task := req.Merge(models.Task{})
	task.ID = m.nextTask
	task.ProjectID = m.columns[req.ColumnID].ProjectID
	task.DisplayOrder = len(m.columnTasks(req.ColumnID))
	task.CreatedAt = now
	task.UpdatedAt = now
	m.nextTask++
	m.tasks[task.ID] = &task
	return m.enrich(task), nil
}

// UpdateTask implements remote.Service.
func (m *Memory) UpdateTask(_ context.Context, taskID int64, req models.TaskRequest) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[taskID]
	if !ok {
		return models.Task{}, fmt.Errorf("%w: task %d", ErrNotFound, taskID)
	}
	if err := m.checkTaskRequest(req); err != nil {
		return models.Task{}, err
	}

	prevColumn, prevOrder := task.ColumnID, task.DisplayOrder
	*task = req.Merge(*task)
	task.DisplayOrder = prevOrder
	if task.ColumnID != prevColumn {
		task.DisplayOrder = len(m.columnTasks(task.ColumnID)) - 1
		m.renumberTasks(prevColumn)
	}
	task.UpdatedAt = m.timestamp()
	return m.enrich(*task), nil
}

// DeleteTask implements remote.Service.
func (m *Memory) DeleteTask(_ context.Context, taskID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[taskID]
	if !ok {
		return fmt.Errorf("%w: task %d", ErrNotFound, taskID)
	}
	delete(m.tasks, taskID)
	m.renumberTasks(task.ColumnID)
	return nil
}

// MoveTask implements remote.Service.
func (m *Memory) MoveTask(_ context.Context, taskID, columnID int64, position int) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[taskID]
	if !ok {
		return models.Task{}, fmt.Errorf("%w: task %d", ErrNotFound, taskID)
	}
	dest, ok := m.columns[columnID]
	if !ok || dest.ProjectID != m.columns[task.ColumnID].ProjectID {
		return models.Task{}, fmt.Errorf("%w: column %d", ErrNotFound, columnID)
	}

	source := task.ColumnID
	m.place(task, columnID, position)
	if source != columnID {
		m.renumberTasks(source)
	}
	task.UpdatedAt = m.timestamp()
	return m.enrich(*task), nil
}

// ReorderTask implements remote.Service.
func (m *Memory) ReorderTask(_ context.Context, taskID int64, newPosition int) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[taskID]
	if !ok {
		return models.Task{}, fmt.Errorf("%w: task %d", ErrNotFound, taskID)
	}
	m.place(task, task.ColumnID, newPosition)
	task.UpdatedAt = m.timestamp()
	return m.enrich(*task), nil
}

// ListMembers implements remote.Service.
func (m *Memory) ListMembers(_ context.Context, projectID int64) ([]models.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[projectID]
	if !ok {
		return nil, fmt.Errorf("%w: project %d", ErrNotFound, projectID)
	}
	return slices.Clone(p.members), nil
}

// place puts task at a clamped position of a column and renumbers it
func (m *Memory) place(task *models.Task, columnID int64, position int) {
	siblings := slices.DeleteFunc(m.columnTasks(columnID), func(t *models.Task) bool { return t.ID == task.ID })
	position = max(0, min(position, len(siblings)))
	siblings = slices.Insert(siblings, position, task)
	task.ColumnID = columnID
	for i, t := range siblings {
		t.DisplayOrder = i
	}
}

func (m *Memory) checkTaskRequest(req models.TaskRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if _, ok := m.columns[req.ColumnID]; !ok {
		return fmt.Errorf("%w: column %d", ErrInvalid, req.ColumnID)
	}
	if req.AssigneeID == 0 {
		return fmt.Errorf("%w: assignee is required", ErrInvalid)
	}
	if req.Priority != "" && !req.Priority.Valid() {
		return fmt.Errorf("%w: priority %q", ErrInvalid, req.Priority)
	}
	return nil
}

func (m *Memory) projectColumn(projectID, columnID int64) (*models.Column, error) {
	col, ok := m.columns[columnID]
	if !ok || col.ProjectID != projectID {
		return nil, fmt.Errorf("%w: column %d", ErrNotFound, columnID)
	}
	return col, nil
}

func (m *Memory) projectColumns(projectID int64) []models.Column {
	var cols []models.Column
	for _, col := range m.columns {
		if col.ProjectID == projectID {
			cols = append(cols, *col)
		}
	}
	slices.SortFunc(cols, func(a, b models.Column) int {
		return cmp.Or(cmp.Compare(a.DisplayOrder, b.DisplayOrder), cmp.Compare(a.ID, b.ID))
	})
	return cols
}

func (m *Memory) columnTasks(columnID int64) []*models.Task {
	var tasks []*models.Task
	for _, t := range m.tasks {
		if t.ColumnID == columnID {
			tasks = append(tasks, t)
		}
	}
	slices.SortFunc(tasks, func(a, b *models.Task) int {
		return cmp.Or(cmp.Compare(a.DisplayOrder, b.DisplayOrder), cmp.Compare(a.ID, b.ID))
	})
	return tasks
}

func (m *Memory) renumberTasks(columnID int64) {
	for i, t := range m.columnTasks(columnID) {
		t.DisplayOrder = i
	}
}

func (m *Memory) renumberColumns(projectID int64) {
	for i, col := range m.projectColumns(projectID) {
		m.columns[col.ID].DisplayOrder = i
	}
}

func (m *Memory) nameTaken(projectID int64, name string, except int64) bool {
	board := models.Board{Columns: m.projectColumns(projectID)}
	return board.HasColumnName(name, except)
}

// enrich fills in the display names the real backend resolves
func (m *Memory) enrich(t models.Task) models.Task {
	if col, ok := m.columns[t.ColumnID]; ok {
		t.ColumnName = col.Name
		if p, ok := m.projects[col.ProjectID]; ok {
			t.ProjectName = p.name
			for _, member := range p.members {
				if member.UserID == t.AssigneeID {
					t.AssigneeName = member.FullName()
				}
			}
		}
	}
	return t
}

func (m *Memory) timestamp() string {
	return m.now().UTC().Format("2006-01-02T15:04:05")
}
