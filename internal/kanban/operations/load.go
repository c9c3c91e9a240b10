package operations

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"wyboard/internal/kanban/models"
	"wyboard/internal/kanban/remote"
)

// maxParallelFetches bounds the per-column task fetches of one load
const maxParallelFetches = 8

// Loaded is a fetched board ready to be installed with Engine.FinishReload
type Loaded struct {
	Board   models.Board
	Members []models.Member
	Err     error
}

// FetchBoard loads a project's columns, then every column's tasks in
// parallel. A column whose tasks cannot be fetched is shown empty; a failed
// member fetch leaves the member list empty. Only a failed column fetch
// fails the load.
func FetchBoard(ctx context.Context, svc remote.Service, projectID int64, logger log.FieldLogger) Loaded {
	cols, err := svc.ListColumns(ctx, projectID)
	if err != nil {
		return Loaded{Err: fmt.Errorf("loading columns of project %d: %w", projectID, err)}
	}

	lists := make([][]models.Task, len(cols))
	var members []models.Member

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetches)
	for i, col := range cols {
		g.Go(func() error {
			tasks, err := svc.ListTasks(gctx, col.ID)
			if err != nil {
				logger.WithFields(log.Fields{"project_id": projectID, "column_id": col.ID}).
					WithError(err).Warn("failed to load column tasks")
				tasks = []models.Task{}
			}
			lists[i] = tasks
			return nil
		})
	}
	g.Go(func() error {
		m, err := svc.ListMembers(gctx, projectID)
		if err != nil {
			logger.WithField("project_id", projectID).WithError(err).Warn("failed to load project members")
			return nil
		}
		members = m
		return nil
	})
	_ = g.Wait() // fetch failures are isolated above

	b := models.Board{
		ProjectID: projectID,
		Columns:   cols,
		Tasks:     make(map[int64][]models.Task, len(cols)),
	}
	for i, col := range cols {
		b.Tasks[col.ID] = lists[i]
	}
	return Loaded{Board: b, Members: members}
}
