package fs

import (
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"wyboard/internal/kanban/board"
	"wyboard/internal/kanban/models"
)

type yamlBoard struct {
	ProjectID  int64           `yaml:"projectId"`
	Project    string          `yaml:"project,omitempty"`
	ExportedAt string          `yaml:"exportedAt"`
	Members    []models.Member `yaml:"members,omitempty"`
	Columns    []yamlColumn    `yaml:"columns"`
}

type yamlColumn struct {
	models.Column `yaml:",inline"`
	Tasks         []models.Task `yaml:"tasks"`
}

// WriteYAML writes the whole board as one YAML document. Assignee and column
// names are resolved the same way the board view shows them.
func WriteYAML(w io.Writer, v board.View, projectName string, exportedAt time.Time) error {
	doc := yamlBoard{
		ProjectID:  v.ProjectID(),
		Project:    projectName,
		ExportedAt: exportedAt.UTC().Format(time.RFC3339),
		Members:    v.Members(),
	}
	for _, col := range v.Columns() {
		yc := yamlColumn{Column: col, Tasks: []models.Task{}}
		for _, task := range v.Tasks(col.ID) {
			task.AssigneeName = v.AssigneeName(task)
			task.ColumnName = v.ColumnName(task)
			yc.Tasks = append(yc.Tasks, task)
		}
		doc.Columns = append(doc.Columns, yc)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
