// Package operations holds the controllers that change a kanban board.
//
// Every operation is split in two phases. The first phase validates the
// input and applies the local mutation on the goroutine that owns the board,
// returning a Pending. The second phase (Pending.Confirm) talks to the
// backend and may run anywhere. Its Result goes back to Engine.Settle on the
// owning goroutine, which reconciles the board or requests a reload.
package operations

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"wyboard/internal/kanban/board"
	"wyboard/internal/kanban/models"
	"wyboard/internal/kanban/remote"
	"wyboard/internal/logs"
)

// Options configures an Engine
type Options struct {
	Logger       log.FieldLogger
	DefaultColor string           // color of new columns created without one
	Now          func() time.Time // default due date source
}

// Engine owns one project's board and the controllers that mutate it.
// It is not safe for concurrent use; only Pending.Confirm may run on
// another goroutine.
type Engine struct {
	svc          remote.Service
	store        *board.Store
	log          log.FieldLogger
	defaultColor string
	now          func() time.Time

	loading bool
	drag    dragState
}

// NewEngine creates an engine for a project. The board starts empty; call
// Reload to fetch it.
func NewEngine(svc remote.Service, projectID int64, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = logs.Logger
	}
	color := opts.DefaultColor
	if color == "" {
		color = models.DefaultColumnColor
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		svc:          svc,
		store:        board.New(projectID),
		log:          logger.WithField("project_id", projectID),
		defaultColor: color,
		now:          now,
	}
}

// View returns the read-only board
func (e *Engine) View() board.View {
	return e.store
}

// ProjectID returns the project the engine manages
func (e *Engine) ProjectID() int64 {
	return e.store.ProjectID()
}

// Loading reports whether a reload is in flight
func (e *Engine) Loading() bool {
	return e.loading
}

// BeginReload marks a reload as in flight and cancels any drag. Mutating
// entry points return ErrBusy until FinishReload.
func (e *Engine) BeginReload() error {
	if e.loading {
		return ErrBusy
	}
	e.loading = true
	e.drag = dragState{}
	return nil
}

// Fetch loads the board from the backend without touching local state
func (e *Engine) Fetch(ctx context.Context) Loaded {
	return FetchBoard(ctx, e.svc, e.store.ProjectID(), e.log)
}

// FinishReload installs a fetched board and clears the loading flag. On a
// failed fetch the previous board is kept.
func (e *Engine) FinishReload(l Loaded) error {
	e.loading = false
	if l.Err != nil {
		e.log.WithError(l.Err).Error("board reload failed")
		return l.Err
	}
	e.store.Replace(l.Board)
	e.store.SetMembers(l.Members)
	e.log.WithFields(log.Fields{
		"columns": len(l.Board.Columns),
		"tasks":   l.Board.TaskCount(),
	}).Debug("board loaded")
	return nil
}

// Reload fetches and installs the board synchronously
func (e *Engine) Reload(ctx context.Context) error {
	if err := e.BeginReload(); err != nil {
		return err
	}
	return e.FinishReload(e.Fetch(ctx))
}

// Settle applies a confirmation result to the board. It returns true when
// the caller must reload the board.
func (e *Engine) Settle(r Result) bool {
	if r.Op == "" {
		return false
	}
	if r.Err != nil {
		entry := e.log.WithFields(log.Fields{"op": r.Op, "policy": r.Policy}).WithError(r.Err)
		if r.Policy == PolicyLogOnly {
			entry.Warn("remote update failed, keeping local order")
			return false
		}
		entry.Error("remote update failed, reloading board")
		return true
	}
	if r.settle == nil {
		return false
	}
	return r.settle(e.store)
}

// Do confirms a pending operation, settles it and reloads when needed.
// Failures of log-only operations are not returned.
func (e *Engine) Do(ctx context.Context, p *Pending) error {
	if p == nil {
		return nil
	}
	res := p.Confirm(ctx)
	var err error
	if res.Err != nil && res.Policy == PolicyReload {
		err = res.Err
	}
	if e.Settle(res) {
		if rerr := e.Reload(ctx); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}
	return err
}

func (e *Engine) guard() error {
	if e.loading {
		return ErrBusy
	}
	return nil
}

func (e *Engine) snapshotColumns() *models.Board {
	return &models.Board{ProjectID: e.store.ProjectID(), Columns: e.store.Columns()}
}
