package fs

import (
	"bytes"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"wyboard/internal/kanban/models"
)

// cardFrontmatter is the YAML header of an exported task file
type cardFrontmatter struct {
	TaskID         int64           `yaml:"taskId"`
	ColumnID       int64           `yaml:"columnId"`
	Column         string          `yaml:"column,omitempty"`
	Priority       models.Priority `yaml:"priority,omitempty"`
	Due            string          `yaml:"due,omitempty"`
	AssigneeID     int64           `yaml:"assigneeId,omitempty"`
	Assignee       string          `yaml:"assignee,omitempty"`
	Progress       int             `yaml:"progress,omitempty"`
	EstimatedHours float64         `yaml:"estimatedHours,omitempty"`
	ActualHours    float64         `yaml:"actualHours,omitempty"`
	Dependencies   string          `yaml:"dependencies,omitempty"`
	ParentTaskID   *int64          `yaml:"parentTaskId,omitempty"`
	DisplayOrder   int             `yaml:"displayOrder"`
}

// WriteCard writes a task to a markdown file: YAML frontmatter, then the
// title as a heading, then the description
func WriteCard(task models.Task, assignee, column, path string) error {
	var buf bytes.Buffer

	fm := cardFrontmatter{
		TaskID:         task.ID,
		ColumnID:       task.ColumnID,
		Column:         column,
		Priority:       task.Priority,
		Due:            task.DueDate,
		AssigneeID:     task.AssigneeID,
		Assignee:       assignee,
		Progress:       task.ProgressPercentage,
		EstimatedHours: task.EstimatedHours,
		ActualHours:    task.ActualHours,
		Dependencies:   task.Dependencies,
		ParentTaskID:   task.ParentTaskID,
		DisplayOrder:   task.DisplayOrder,
	}
	if due, ok := task.Due(); ok {
		fm.Due = due.Format(models.DateLayout)
	}

	yamlBytes, err := yaml.Marshal(fm)
	if err != nil {
		return err
	}
	buf.WriteString("---\n")
	buf.Write(yamlBytes)
	buf.WriteString("---\n\n")

	buf.WriteString("# ")
	buf.WriteString(task.Title)
	buf.WriteString("\n")
	if desc := strings.TrimSpace(task.Description); desc != "" {
		buf.WriteString("\n")
		buf.WriteString(desc)
		buf.WriteString("\n")
	}

	return os.WriteFile(path, buf.Bytes(), 0644)
}
