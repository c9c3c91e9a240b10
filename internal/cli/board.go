package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"wyboard/internal/kanban/board"
	"wyboard/internal/kanban/fs"
	"wyboard/internal/kanban/models"
	"wyboard/internal/kanban/render"
)

const summaryWidth = 60

func newBoardCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show, export and compare the board",
	}
	cmd.AddCommand(newBoardShowCommand(a), newBoardExportCommand(a), newBoardDiffCommand(a))
	return cmd
}

func newBoardShowCommand(a *app) *cobra.Command {
	var descriptions bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print columns and their tasks in board order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}
			printBoard(cmd.OutOrStdout(), eng.View(), descriptions)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&descriptions, "descriptions", "d", false, "Show the first line of each description")
	return cmd
}

func newBoardExportCommand(a *app) *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the board as markdown or YAML",
		Long: `Export the board.

  --format md    writes board.md and one file per task under cards/ into
                 the directory given by -o (default ./<project>)
  --format yaml  writes one YAML document to -o, or stdout`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}
			v := eng.View()
			name := projectName(v)
			now := time.Now()

			switch format {
			case "md", "markdown":
				dir := output
				if dir == "" {
					dir = fs.ToSnakeCase(name)
				}
				if err := fs.ExportDir(dir, v, name, now); err != nil {
					return fmt.Errorf("exporting to %s: %w", dir, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d task(s) to %s\n", v.Snapshot().TaskCount(), dir)
				return nil
			case "yaml", "yml":
				if output == "" {
					return fs.WriteYAML(cmd.OutOrStdout(), v, name, now)
				}
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer closeQuietly(f)
				if err := fs.WriteYAML(f, v, name, now); err != nil {
					return fmt.Errorf("exporting to %s: %w", output, err)
				}
				return f.Close()
			default:
				return fmt.Errorf("unknown format %q (want md or yaml)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "md", "Export format: md, yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (md) or file (yaml)")
	return cmd
}

func newBoardDiffCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <export-dir>",
		Short: "Compare the live board against a markdown export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			export, err := fs.ReadExport(args[0])
			if err != nil {
				return fmt.Errorf("reading export: %w", err)
			}
			eng, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			changes := fs.Diff(export.Board, eng.View().Snapshot())
			if len(changes) == 0 {
				fmt.Fprintf(out, "No changes since %s.\n", export.ExportedAt)
				return nil
			}
			for _, c := range changes {
				printChange(out, c)
			}
			fmt.Fprintf(out, "\n%d change(s) since %s\n", len(changes), export.ExportedAt)
			return nil
		},
	}
}

func printBoard(w io.Writer, v board.View, descriptions bool) {
	cols := v.Columns()
	if len(cols) == 0 {
		fmt.Fprintln(w, "No columns.")
		return
	}
	for i, col := range cols {
		if i > 0 {
			fmt.Fprintln(w)
		}
		count := v.WIPCount(col.ID)
		wip := fmt.Sprintf("%d", count)
		if col.HasWIPLimit() {
			wip = fmt.Sprintf("%d/%d", count, *col.WIPLimit)
			if v.IsWIPLimitReached(col) {
				wip += " full"
			}
		}
		def := ""
		if col.IsDefault {
			def = " default"
		}
		fmt.Fprintf(w, "[%d] %s (%s)%s\n", col.ID, col.Name, wip, def)

		for _, t := range v.Tasks(col.ID) {
			printTask(w, v, t, descriptions)
		}
	}
}

func printTask(w io.Writer, v board.View, t models.Task, descriptions bool) {
	var meta []string
	if t.Priority != "" {
		meta = append(meta, string(t.Priority))
	}
	if due, ok := t.Due(); ok {
		meta = append(meta, "due "+due.Format(models.DateLayout))
	}
	if t.ProgressPercentage > 0 {
		meta = append(meta, fmt.Sprintf("%d%%", t.ProgressPercentage))
	}
	meta = append(meta, "@"+v.AssigneeName(t))

	fmt.Fprintf(w, "  %4d  %s  (%s)\n", t.ID, t.Title, strings.Join(meta, ", "))
	if descriptions {
		if s := render.Summary(t.Description, summaryWidth); s != "" {
			fmt.Fprintf(w, "        %s\n", s)
		}
	}
}

func printChange(w io.Writer, c fs.Change) {
	switch c.Kind {
	case fs.ChangeAdded:
		fmt.Fprintf(w, "+ %4d  %s  (in %s)\n", c.TaskID, c.Title, c.To)
	case fs.ChangeRemoved:
		fmt.Fprintf(w, "- %4d  %s  (was in %s)\n", c.TaskID, c.Title, c.From)
	case fs.ChangeMoved:
		fmt.Fprintf(w, "> %4d  %s  (%s -> %s)\n", c.TaskID, c.Title, c.From, c.To)
	case fs.ChangeRenamed:
		fmt.Fprintf(w, "~ %4d  %s  (was %q)\n", c.TaskID, c.Title, c.From)
	}
}
