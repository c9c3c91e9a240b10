package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"wyboard/internal/kanban/models"
	"wyboard/internal/kanban/operations"
)

func newColumnCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "column",
		Aliases: []string{"col"},
		Short:   "Create, edit, delete and reorder columns",
	}
	cmd.AddCommand(
		newColumnCreateCommand(a),
		newColumnEditCommand(a),
		newColumnDeleteCommand(a),
		newColumnReorderCommand(a),
	)
	return cmd
}

func newColumnCreateCommand(a *app) *cobra.Command {
	var (
		color     string
		wip       int
		isDefault bool
	)
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Append a column to the board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}
			form := operations.ColumnForm{Name: args[0], Color: color, IsDefault: isDefault}
			if cmd.Flags().Changed("wip") {
				form.WIPLimit = models.IntPtr(wip)
			}
			p, err := eng.CreateColumn(form)
			if err != nil {
				return err
			}
			return do(cmd, eng, p, fmt.Sprintf("Created column %q", form.Name))
		},
	}
	cmd.Flags().StringVar(&color, "color", "", "Column color (default from config)")
	cmd.Flags().IntVar(&wip, "wip", 0, "WIP limit")
	cmd.Flags().BoolVar(&isDefault, "default", false, "Mark as the default column")
	return cmd
}

func newColumnEditCommand(a *app) *cobra.Command {
	var (
		name, color string
		wip         int
	)
	cmd := &cobra.Command{
		Use:   "edit <column-id>",
		Short: "Rename a column or change its color or WIP limit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			columnID, err := parseID(args[0], "column")
			if err != nil {
				return err
			}
			var upd models.ColumnUpdate
			if cmd.Flags().Changed("name") {
				upd.Name = models.StringPtr(name)
			}
			if cmd.Flags().Changed("color") {
				upd.Color = models.StringPtr(color)
			}
			if cmd.Flags().Changed("wip") {
				upd.WIPLimit = models.IntPtr(wip)
			}
			if upd.Name == nil && upd.Color == nil && upd.WIPLimit == nil {
				return fmt.Errorf("nothing to change: pass --name, --color or --wip")
			}

			eng, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}
			p, err := eng.EditColumn(columnID, upd)
			if err != nil {
				return err
			}
			return do(cmd, eng, p, fmt.Sprintf("Updated column %d", columnID))
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&color, "color", "", "New color")
	cmd.Flags().IntVar(&wip, "wip", 0, "New WIP limit (at least 1)")
	return cmd
}

func newColumnDeleteCommand(a *app) *cobra.Command {
	var target int64
	cmd := &cobra.Command{
		Use:   "delete <column-id>",
		Short: "Delete a column, moving its tasks to --target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			columnID, err := parseID(args[0], "column")
			if err != nil {
				return err
			}
			eng, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}
			p, err := eng.DeleteColumn(columnID, target)
			if err != nil {
				return err
			}
			return do(cmd, eng, p, fmt.Sprintf("Deleted column %d, tasks moved to %d", columnID, target))
		},
	}
	cmd.Flags().Int64Var(&target, "target", 0, "Column receiving the deleted column's tasks")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func newColumnReorderCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <from> <to>",
		Short: "Move the column at zero-based position from to position to",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseIndex(args[0], "position")
			if err != nil {
				return err
			}
			to, err := parseIndex(args[1], "position")
			if err != nil {
				return err
			}
			eng, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}
			if err := eng.StartDrag(operations.DragColumn); err != nil {
				return err
			}
			p, err := eng.DropColumn(from, to)
			if err != nil {
				return err
			}
			return do(cmd, eng, p, fmt.Sprintf("Moved column from %d to %d", from, to))
		},
	}
}
