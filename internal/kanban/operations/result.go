package operations

import (
	"context"

	"wyboard/internal/kanban/board"
)

// Op names a board operation in logs and results
type Op string

const (
	OpReorderTask   Op = "task.reorder"
	OpMoveTask      Op = "task.move"
	OpReorderColumn Op = "column.reorder"
	OpCreateColumn  Op = "column.create"
	OpEditColumn    Op = "column.edit"
	OpDeleteColumn  Op = "column.delete"
	OpCreateTask    Op = "task.create"
	OpUpdateTask    Op = "task.update"
	OpDeleteTask    Op = "task.delete"
)

// FailurePolicy decides what Settle does with a failed confirmation
type FailurePolicy int

const (
	// PolicyReload discards local state by reloading the board
	PolicyReload FailurePolicy = iota
	// PolicyLogOnly keeps the optimistic state and only logs
	PolicyLogOnly
)

func (p FailurePolicy) String() string {
	if p == PolicyLogOnly {
		return "log-only"
	}
	return "reload"
}

// settleFunc reconciles the board with a successful confirmation. It
// returns true when the board must be reloaded afterwards.
type settleFunc func(board.Mutator) bool

// confirmFunc performs the remote calls of an operation
type confirmFunc func(ctx context.Context) (settleFunc, error)

// Pending is an operation whose local mutation has been applied and whose
// remote calls have not run yet. A nil Pending is a no-op.
type Pending struct {
	op      Op
	policy  FailurePolicy
	confirm confirmFunc
}

func newPending(op Op, policy FailurePolicy, confirm confirmFunc) *Pending {
	return &Pending{op: op, policy: policy, confirm: confirm}
}

// Op returns the operation name
func (p *Pending) Op() Op {
	if p == nil {
		return ""
	}
	return p.op
}

// Confirm performs the remote calls. It never touches the board, so it may
// run on any goroutine.
func (p *Pending) Confirm(ctx context.Context) Result {
	if p == nil {
		return Result{}
	}
	settle, err := p.confirm(ctx)
	return Result{Op: p.op, Err: err, Policy: p.policy, settle: settle}
}

// Result is the outcome of Pending.Confirm, handed to Engine.Settle on the
// goroutine that owns the board.
type Result struct {
	Op     Op
	Err    error
	Policy FailurePolicy
	settle settleFunc
}

// Failed reports whether the remote side rejected the operation
func (r Result) Failed() bool {
	return r.Err != nil
}
