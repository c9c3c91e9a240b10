package fs

import (
	"bytes"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"wyboard/internal/kanban/models"
)

// ReadCard reads an exported task file back into a task. The column and
// assignee names come back as ColumnName and AssigneeName.
func ReadCard(cardPath string) (models.Task, error) {
	content, err := os.ReadFile(cardPath)
	if err != nil {
		return models.Task{}, err
	}

	fmBytes, body := splitFrontmatter(content)
	var fm cardFrontmatter
	if fmBytes != nil {
		if err := yaml.Unmarshal(fmBytes, &fm); err != nil {
			return models.Task{}, err
		}
	}

	title, description := extractTitle(body)

	return models.Task{
		ID:                 fm.TaskID,
		Title:              title,
		Description:        description,
		Priority:           fm.Priority,
		DueDate:            fm.Due,
		EstimatedHours:     fm.EstimatedHours,
		ActualHours:        fm.ActualHours,
		ProgressPercentage: fm.Progress,
		Dependencies:       fm.Dependencies,
		AssigneeID:         fm.AssigneeID,
		AssigneeName:       fm.Assignee,
		ParentTaskID:       fm.ParentTaskID,
		ColumnID:           fm.ColumnID,
		ColumnName:         fm.Column,
		DisplayOrder:       fm.DisplayOrder,
	}, nil
}

// splitFrontmatter separates a leading "---" YAML block from the body.
// fm is nil when there is no complete block.
func splitFrontmatter(content []byte) (fm []byte, body []byte) {
	lines := bytes.Split(content, []byte("\n"))

	if len(lines) == 0 || !bytes.Equal(bytes.TrimSpace(lines[0]), []byte("---")) {
		return nil, content
	}

	var frontmatterEnd int
	for i := 1; i < len(lines); i++ {
		if bytes.Equal(bytes.TrimSpace(lines[i]), []byte("---")) {
			frontmatterEnd = i
			break
		}
	}

	if frontmatterEnd == 0 {
		return nil, content
	}

	fm = bytes.Join(lines[1:frontmatterEnd], []byte("\n"))
	body = bytes.TrimLeft(bytes.Join(lines[frontmatterEnd+1:], []byte("\n")), "\n")
	return fm, body
}

// extractTitle returns the first level-1 heading and the markdown after it
func extractTitle(markdown []byte) (title, rest string) {
	doc := goldmark.DefaultParser().Parse(text.NewReader(markdown))

	end := -1
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == ast.KindHeading {
			heading := n.(*ast.Heading)
			if heading.Level == 1 {
				title = string(n.Text(markdown))
				if lines := heading.Lines(); lines.Len() > 0 {
					end = lines.At(lines.Len() - 1).Stop
				}
				return ast.WalkStop, nil
			}
		}
		return ast.WalkContinue, nil
	})

	if title == "" {
		return "Untitled", strings.TrimSpace(string(markdown))
	}
	if end < 0 || end > len(markdown) {
		return title, ""
	}
	return title, strings.TrimSpace(string(markdown[end:]))
}
