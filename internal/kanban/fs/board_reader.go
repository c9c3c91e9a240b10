package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"wyboard/internal/kanban/models"
)

// Export is a board read back from an export directory
type Export struct {
	Name       string
	ExportedAt string
	Board      models.Board
}

// ReadExport reads board.md from an export directory. Column order and task
// order follow the headings and links of board.md; column details come from
// its frontmatter and task details from the linked files.
func ReadExport(dir string) (Export, error) {
	content, err := os.ReadFile(filepath.Join(dir, BoardFile))
	if err != nil {
		return Export{}, err
	}

	fmBytes, body := splitFrontmatter(content)
	var fm boardFrontmatter
	if fmBytes != nil {
		if err := yaml.Unmarshal(fmBytes, &fm); err != nil {
			return Export{}, fmt.Errorf("parsing %s frontmatter: %w", BoardFile, err)
		}
	}
	byName := make(map[string]models.Column, len(fm.Columns))
	for _, col := range fm.Columns {
		byName[col.Name] = col
	}

	export := Export{
		ExportedAt: fm.ExportedAt,
		Board: models.Board{
			ProjectID: fm.ProjectID,
			Tasks:     make(map[int64][]models.Task),
		},
	}

	doc := goldmark.DefaultParser().Parse(text.NewReader(body))

	var (
		currentID int64
		inColumn  bool
		walkErr   error
	)
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			headingText := string(node.Text(body))

			if node.Level == 1 {
				export.Name = headingText
			} else if node.Level == 2 {
				col, ok := byName[headingText]
				if !ok {
					col = models.Column{Name: headingText}
				}
				col.DisplayOrder = len(export.Board.Columns)
				export.Board.Columns = append(export.Board.Columns, col)
				export.Board.Tasks[col.ID] = []models.Task{}
				currentID, inColumn = col.ID, true
			}

		case *ast.Link:
			dest := string(node.Destination)
			if !inColumn || !(strings.HasPrefix(dest, "./cards/") || strings.HasPrefix(dest, "cards/")) {
				return ast.WalkContinue, nil
			}
			task, err := ReadCard(filepath.Join(dir, dest))
			if err != nil {
				walkErr = fmt.Errorf("reading %s: %w", dest, err)
				return ast.WalkStop, nil
			}
			task.ColumnID = currentID
			task.DisplayOrder = len(export.Board.Tasks[currentID])
			export.Board.Tasks[currentID] = append(export.Board.Tasks[currentID], task)
		}

		return ast.WalkContinue, nil
	})
	if walkErr != nil {
		return Export{}, walkErr
	}

	return export, nil
}
