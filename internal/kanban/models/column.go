package models

import "fmt"

// DefaultColumnColor is used when a column is created without a color
const DefaultColumnColor = "#3b82f6"

// Column is a named, ordered bucket of tasks within a project
type Column struct {
	ID           int64  `json:"columnId" yaml:"columnId"`
	ProjectID    int64  `json:"projectId" yaml:"projectId"`
	Name         string `json:"name" yaml:"name"`
	Color        string `json:"color,omitempty" yaml:"color,omitempty"`
	WIPLimit     *int   `json:"wipLimit,omitempty" yaml:"wipLimit,omitempty"`
	DisplayOrder int    `json:"displayOrder" yaml:"displayOrder"`
	IsDefault    bool   `json:"isDefault" yaml:"isDefault"`
}

// ContainerID returns the drop-target identifier for the column
func (c Column) ContainerID() string {
	return fmt.Sprintf("column-%d", c.ID)
}

// HasWIPLimit returns true if the column carries a WIP limit
func (c Column) HasWIPLimit() bool {
	return c.WIPLimit != nil && *c.WIPLimit > 0
}

// ColumnRequest is the body sent when creating a column
type ColumnRequest struct {
	Name         string `json:"name"`
	Color        string `json:"color"`
	DisplayOrder int    `json:"displayOrder"`
	IsDefault    bool   `json:"isDefault"`
	WIPLimit     *int   `json:"wipLimit,omitempty"`
}

// ColumnUpdate is a partial column update; nil fields are left unchanged
type ColumnUpdate struct {
	Name     *string
	Color    *string
	WIPLimit *int
}

// Apply returns c with the non-nil fields of u applied
func (u ColumnUpdate) Apply(c Column) Column {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Color != nil {
		c.Color = *u.Color
	}
	if u.WIPLimit != nil {
		limit := *u.WIPLimit
		c.WIPLimit = &limit
	}
	return c
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}

// StringPtr returns a pointer to v
func StringPtr(v string) *string {
	return &v
}
