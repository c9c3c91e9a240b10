// Package cli is the wyboard command tree. Running wyboard without a
// subcommand opens the interactive board.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"wyboard/internal/config"
	"wyboard/internal/kanban/board"
	"wyboard/internal/kanban/operations"
	"wyboard/internal/kanban/remote"
	"wyboard/internal/logs"
	"wyboard/internal/tui"
)

// app carries what every command needs once the root has parsed its flags
type app struct {
	flags config.CLIFlags
	cfg   *config.Config

	// runBoard opens the interactive board; swapped out in tests
	runBoard func(ctx context.Context, eng *operations.Engine, cfg *config.Config) error
}

// NewRootCommand builds the full command tree
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{runBoard: runTUI})
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "wyboard",
		Short: "Kanban board client for the project-management backend",
		Long: `wyboard shows and edits the kanban board of one project.

Running wyboard without arguments launches the interactive board.
Configuration is read from ~/.config/wyboard/config.yaml, WYBOARD_*
environment variables and the flags below, later sources winning.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			logs.Close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}
			return a.runBoard(cmd.Context(), eng, a.cfg)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.APIURL, "api", "", "Backend base URL (default "+config.DefaultAPIURL+")")
	pf.StringVar(&a.flags.Token, "token", "", "Bearer token")
	pf.Int64VarP(&a.flags.ProjectID, "project", "p", 0, "Project id")
	pf.StringVar(&a.flags.ConfigFile, "config", "", "Config file (default ~/.config/wyboard/config.yaml)")

	root.AddCommand(
		newBoardCommand(a),
		newColumnCommand(a),
		newTaskCommand(a),
		newServeDevCommand(a),
	)
	return root
}

// Execute runs the command tree against os.Args and returns the exit code
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.flags)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	if a.flags.ConfigFile == "" {
		if err := config.EnsureConfigFile(""); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not create config file: %v\n", err)
		}
	}
	if err := logs.Initialize(cfg.LogDir, cfg.LogLevel); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not initialize logger: %v\n", err)
	}
	logs.Logger.WithField("command", cmd.CommandPath()).Debug("starting")
	return nil
}

// engine connects to the backend and loads the configured project's board
func (a *app) engine(ctx context.Context) (*operations.Engine, error) {
	if err := a.cfg.RequireProject(); err != nil {
		return nil, err
	}
	client, err := remote.New(ctx, remote.Options{
		BaseURL: a.cfg.APIURL,
		Token:   a.cfg.Token,
		Timeout: a.cfg.RequestTimeout,
		Logger:  logs.Logger,
	})
	if err != nil {
		return nil, err
	}

	eng := operations.NewEngine(client, a.cfg.ProjectID, operations.Options{
		DefaultColor: a.cfg.DefaultColor,
	})
	if err := eng.Reload(ctx); err != nil {
		if remote.IsNotFound(err) {
			return nil, fmt.Errorf("project %d not found on %s: %w", a.cfg.ProjectID, a.cfg.APIURL, err)
		}
		return nil, fmt.Errorf("loading board of project %d: %w", a.cfg.ProjectID, err)
	}
	return eng, nil
}

func runTUI(ctx context.Context, eng *operations.Engine, cfg *config.Config) error {
	logs.Logger.Info("starting app in TUI mode")
	return tui.Run(ctx, eng, tui.Options{APIURL: cfg.APIURL})
}

// do runs a pending operation and reports the outcome
func do(cmd *cobra.Command, eng *operations.Engine, p *operations.Pending, done string) error {
	if p == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to do.")
		return nil
	}
	logs.Logger.WithField("op", p.Op()).Debug("confirming")
	if err := eng.Do(cmd.Context(), p); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), done)
	return nil
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, s)
	}
	return id, nil
}

func parseIndex(s, what string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return n, nil
}

// projectName picks the project name the backend attaches to tasks
func projectName(v board.View) string {
	for _, col := range v.Columns() {
		for _, t := range v.Tasks(col.ID) {
			if t.ProjectName != "" {
				return t.ProjectName
			}
		}
	}
	return fmt.Sprintf("Project %d", v.ProjectID())
}

// taskPosition finds the column and index of a task on the loaded board
func taskPosition(v board.View, taskID int64) (columnID int64, index int, err error) {
	task, ok := v.Task(taskID)
	if !ok {
		return 0, 0, fmt.Errorf("task %d: %w", taskID, operations.ErrUnknownTask)
	}
	for i, t := range v.Tasks(task.ColumnID) {
		if t.ID == taskID {
			return task.ColumnID, i, nil
		}
	}
	return 0, 0, fmt.Errorf("task %d: %w", taskID, operations.ErrUnknownTask)
}

func closeQuietly(c io.Closer) {
	if err := c.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		logs.Logger.WithError(err).Warn("close failed")
	}
}
