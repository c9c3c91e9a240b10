package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"wyboard/internal/kanban/models"
	"wyboard/internal/kanban/operations"
)

func newTaskCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Create, edit, move, reorder and delete tasks",
	}
	cmd.AddCommand(
		newTaskCreateCommand(a),
		newTaskEditCommand(a),
		newTaskMoveCommand(a),
		newTaskReorderCommand(a),
		newTaskDeleteCommand(a),
	)
	return cmd
}

// taskFlags binds the editable task fields to a command
func taskFlags(cmd *cobra.Command, f *operations.TaskForm) {
	cmd.Flags().StringVarP(&f.Title, "title", "t", "", "Title")
	cmd.Flags().StringVar(&f.Description, "description", "", "Description (markdown)")
	cmd.Flags().StringVar(&f.Priority, "priority", "", priorityUsage())
	cmd.Flags().StringVar(&f.DueDate, "due", "", "Due date YYYY-MM-DD (default today)")
	cmd.Flags().Int64Var(&f.AssigneeID, "assignee", 0, "Assignee user id")
	cmd.Flags().IntVar(&f.ProgressPercentage, "progress", 0, "Progress percentage 0-100")
	cmd.Flags().Float64Var(&f.EstimatedHours, "estimate", 0, "Estimated hours")
	cmd.Flags().StringVar(&f.Dependencies, "depends", "", "Comma-separated ids of tasks this one depends on")
}

// priorityUsage lists the accepted priorities, e.g. "LOW, MEDIUM, HIGH or CRITICAL"
func priorityUsage() string {
	names := make([]string, len(models.Priorities))
	for i, p := range models.Priorities {
		names[i] = string(p)
	}
	last := len(names) - 1
	return strings.Join(names[:last], ", ") + " or " + names[last] + " (default " + string(models.PriorityMedium) + ")"
}

func newTaskCreateCommand(a *app) *cobra.Command {
	var form operations.TaskForm
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task at the end of a column",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}
			p, err := eng.CreateTask(form)
			if err != nil {
				return err
			}
			return do(cmd, eng, p, fmt.Sprintf("Created task %q", form.Title))
		},
	}
	taskFlags(cmd, &form)
	cmd.Flags().Int64Var(&form.ColumnID, "column", 0, "Column id")
	return cmd
}

func newTaskEditCommand(a *app) *cobra.Command {
	var edits operations.TaskForm
	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Change the fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			eng, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}
			task, ok := eng.View().Task(taskID)
			if !ok {
				return fmt.Errorf("task %d: %w", taskID, operations.ErrUnknownTask)
			}

			form := operations.FormFromTask(task)
			changed := cmd.Flags().Changed
			if changed("title") {
				form.Title = edits.Title
			}
			if changed("description") {
				form.Description = edits.Description
			}
			if changed("priority") {
				form.Priority = edits.Priority
			}
			if changed("due") {
				form.DueDate = edits.DueDate
			}
			if changed("assignee") {
				form.AssigneeID = edits.AssigneeID
			}
			if changed("progress") {
				form.ProgressPercentage = edits.ProgressPercentage
			}
			if changed("estimate") {
				form.EstimatedHours = edits.EstimatedHours
			}
			if changed("depends") {
				form.Dependencies = edits.Dependencies
			}

			p, err := eng.UpdateTask(form)
			if err != nil {
				return err
			}
			return do(cmd, eng, p, fmt.Sprintf("Updated task %d", taskID))
		},
	}
	taskFlags(cmd, &edits)
	return cmd
}

func newTaskMoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move <task-id> <column-id> <position>",
		Short: "Move a task to a zero-based position in another column",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			columnID, err := parseID(args[1], "column")
			if err != nil {
				return err
			}
			pos, err := parseIndex(args[2], "position")
			if err != nil {
				return err
			}
			return a.dropTask(cmd, taskID, columnID, pos)
		},
	}
}

func newTaskReorderCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <task-id> <position>",
		Short: "Move a task to a zero-based position within its column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			pos, err := parseIndex(args[1], "position")
			if err != nil {
				return err
			}
			return a.dropTask(cmd, taskID, 0, pos)
		},
	}
}

// dropTask replays a drag of the task to columnID at pos. A zero columnID
// keeps the task in its column.
func (a *app) dropTask(cmd *cobra.Command, taskID, columnID int64, pos int) error {
	eng, err := a.engine(cmd.Context())
	if err != nil {
		return err
	}
	source, index, err := taskPosition(eng.View(), taskID)
	if err != nil {
		return err
	}
	if columnID == 0 {
		columnID = source
	}

	if err := eng.StartDrag(operations.DragTask); err != nil {
		return err
	}
	p, err := eng.DropTask(operations.DropEvent{
		SourceColumnID: source,
		DestColumnID:   columnID,
		SourceIndex:    index,
		DestIndex:      pos,
	})
	if err != nil {
		return err
	}
	return do(cmd, eng, p, fmt.Sprintf("Moved task %d", taskID))
}

func newTaskDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			eng, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}
			p, err := eng.DeleteTask(taskID, 0)
			if err != nil {
				return err
			}
			return do(cmd, eng, p, fmt.Sprintf("Deleted task %d", taskID))
		},
	}
}
