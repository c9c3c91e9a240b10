package models

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format for due dates
const DateLayout = "2006-01-02"

// Priority of a task
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// Priorities lists every priority, lowest first
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// Valid returns true if p is one of the known priorities
func (p Priority) Valid() bool {
	return slices.Contains(Priorities, p)
}

// ParsePriority parses a priority case-insensitively
func ParsePriority(s string) (Priority, bool) {
	p := Priority(strings.ToUpper(strings.TrimSpace(s)))
	return p, p.Valid()
}

// Task is a unit of work owned by exactly one column
type Task struct {
	ID                 int64    `json:"taskId" yaml:"taskId"`
	Title              string   `json:"title" yaml:"title"`
	Description        string   `json:"description,omitempty" yaml:"description,omitempty"`
	Priority           Priority `json:"priority" yaml:"priority"`
	DueDate            string   `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	EstimatedHours     float64  `json:"estimatedHours,omitempty" yaml:"estimatedHours,omitempty"`
	ActualHours        float64  `json:"actualHours,omitempty" yaml:"actualHours,omitempty"`
	ProgressPercentage int      `json:"progressPercentage,omitempty" yaml:"progressPercentage,omitempty"`
	Dependencies       string   `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	AssigneeID         int64    `json:"assigneeId" yaml:"assigneeId"`
	AssigneeName       string   `json:"assigneeName,omitempty" yaml:"assigneeName,omitempty"`
	ProjectID          int64    `json:"projectId" yaml:"projectId"`
	ProjectName        string   `json:"projectName,omitempty" yaml:"projectName,omitempty"`
	ParentTaskID       *int64   `json:"parentTaskId,omitempty" yaml:"parentTaskId,omitempty"`
	ColumnID           int64    `json:"columnId" yaml:"columnId"`
	ColumnName         string   `json:"columnName,omitempty" yaml:"columnName,omitempty"`
	DisplayOrder       int      `json:"displayOrder" yaml:"displayOrder"`
	CreatedAt          string   `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt          string   `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// Due parses DueDate. ok is false when the date is unset or malformed.
func (t Task) Due() (due time.Time, ok bool) {
	if t.DueDate == "" {
		return time.Time{}, false
	}
	// the backend sometimes sends a full timestamp
	s := t.DueDate
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	due, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return due, true
}

// DependencyIDs parses the comma-separated dependency list, skipping junk
func (t Task) DependencyIDs() []int64 {
	var ids []int64
	for _, part := range strings.Split(t.Dependencies, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// TaskRequest is the body sent when creating or updating a task
type TaskRequest struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Priority           Priority `json:"priority"`
	DueDate            string   `json:"dueDate"`
	EstimatedHours     float64  `json:"estimatedHours"`
	ActualHours        float64  `json:"actualHours"`
	ProgressPercentage int      `json:"progressPercentage"`
	Dependencies       string   `json:"dependencies"`
	AssigneeID         int64    `json:"assigneeId"`
	ProjectID          int64    `json:"projectId"`
	ParentTaskID       *int64   `json:"parentTaskId,omitempty"`
	ColumnID           int64    `json:"columnId"`
	DisplayOrder       int      `json:"displayOrder"`
}

// Merge returns t with the request's editable fields applied
func (r TaskRequest) Merge(t Task) Task {
	t.Title = r.Title
	t.Description = r.Description
	t.Priority = r.Priority
	t.DueDate = r.DueDate
	t.EstimatedHours = r.EstimatedHours
	t.ActualHours = r.ActualHours
	t.ProgressPercentage = r.ProgressPercentage
	t.Dependencies = r.Dependencies
	if r.AssigneeID != t.AssigneeID {
		t.AssigneeID = r.AssigneeID
		t.AssigneeName = ""
	}
	t.ParentTaskID = r.ParentTaskID
	if r.ColumnID != t.ColumnID {
		t.ColumnID = r.ColumnID
		t.ColumnName = ""
	}
	t.DisplayOrder = r.DisplayOrder
	return t
}
