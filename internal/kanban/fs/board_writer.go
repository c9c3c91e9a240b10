package fs

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"wyboard/internal/kanban/board"
	"wyboard/internal/kanban/models"
)

const (
	// BoardFile is the index file of an export directory
	BoardFile = "board.md"

	cardsDir = "cards"
)

type boardFrontmatter struct {
	ProjectID  int64           `yaml:"projectId"`
	ExportedAt string          `yaml:"exportedAt,omitempty"`
	Columns    []models.Column `yaml:"columns"`
}

// ExportDir writes the board to dir as board.md plus one markdown file per
// task under cards/. board.md lists the columns as level-2 headings with a
// link to every task in display order.
func ExportDir(dir string, v board.View, projectName string, exportedAt time.Time) error {
	cardsPath := filepath.Join(dir, cardsDir)
	if err := os.MkdirAll(cardsPath, 0755); err != nil {
		return err
	}

	fm := boardFrontmatter{
		ProjectID:  v.ProjectID(),
		ExportedAt: exportedAt.UTC().Format(time.RFC3339),
		Columns:    v.Columns(),
	}
	yamlBytes, err := yaml.Marshal(fm)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(yamlBytes)
	buf.WriteString("---\n\n")

	buf.WriteString("# ")
	buf.WriteString(projectName)
	buf.WriteString("\n\n")

	taken := make(map[string]bool)
	for _, column := range v.Columns() {
		buf.WriteString("## ")
		buf.WriteString(column.Name)
		buf.WriteString("\n\n")

		for _, task := range v.Tasks(column.ID) {
			filename := UniqueFilename(ToSnakeCase(task.Title), taken)
			path := filepath.Join(cardsPath, filename)
			if err := WriteCard(task, v.AssigneeName(task), column.Name, path); err != nil {
				return fmt.Errorf("writing task %d: %w", task.ID, err)
			}

			buf.WriteString("[")
			buf.WriteString(task.Title)
			buf.WriteString("](./cards/")
			buf.WriteString(filename)
			buf.WriteString(")\n\n")
		}
	}

	return os.WriteFile(filepath.Join(dir, BoardFile), buf.Bytes(), 0644)
}
