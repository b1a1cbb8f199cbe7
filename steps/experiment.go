package steps

import (
	"context"
	"errors"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/casualjim/crucible"
	"github.com/casualjim/crucible/ledger"
	"github.com/casualjim/crucible/pool"
	"github.com/casualjim/crucible/signals"
	"github.com/segmentio/ksuid"
)

// ExperimentOpt represents a configuration option for an experiment
type ExperimentOpt func(*Experiment)

// RecordTo makes the experiment persist its transaction in the given ledger
func RecordTo(l ledger.Ledger) ExperimentOpt {
	return func(e *Experiment) { e.ledger = l }
}

// InterruptWith binds the experiment to a shutdown-hook registry so an
// external termination signal still closes the transaction
func InterruptWith(r *signals.Registry) ExperimentOpt {
	return func(e *Experiment) { e.registry = r }
}

// NewExperiment creates the top-level composite that brackets its children
// with a persisted transaction. The supplied children get wrapped between a
// start and a completed notification step.
func NewExperiment(name string, children []Step, opts ...ExperimentOpt) *Experiment {
	e := &Experiment{
		base: base{
			name:        "EXPERIMENT",
			description: "Run an experiment, wrapped in a db transaction",
		},
		experiment: name,
		runID:      ksuid.New(),
	}
	e.children = make([]Step, 0, len(children)+2)
	e.children = append(e.children, NewEcho("Start experiment: "+name))
	e.children = append(e.children, children...)
	e.children = append(e.children, NewEcho("Completed experiment: "+name))

	for _, opt := range opts {
		opt(e)
	}
	if e.ledger == nil {
		e.ledger = ledger.NewMem()
	}
	if e.registry == nil {
		e.registry = signals.Default()
	}
	return e
}

// Experiment executes its top-level children concurrently on a bounded
// worker pool, bracketed by a ledger transaction that closes on every exit
// path, interrupts included.
type Experiment struct {
	base
	children   []Step
	experiment string
	runID      ksuid.KSUID
	ledger     ledger.Ledger
	registry   *signals.Registry
}

// RunID identifies this experiment instance in logs and diagnostics
func (e *Experiment) RunID() string {
	return e.runID.String()
}

// Len counts all transitively owned steps plus this composite itself
func (e *Experiment) Len() int {
	return NumSteps(e.children) + 1
}

// Execute the experiment inside its transaction
func (e *Experiment) Execute(ctx context.Context) ([]Result, error) {
	return run(ctx, e, e.execute)
}

func (e *Experiment) execute(ctx context.Context) ([]Result, error) {
	endTx, hook, err := e.beginTransaction(ctx)
	if err != nil {
		return []Result{Error}, err
	}

	defer func() {
		endTx()
		hook.Deregister()
	}()

	results := e.runChildren(ctx)
	e.SetStatus(Aggregate(results))
	return results, nil
}

// beginTransaction opens the persisted record for this experiment. The
// begin timestamp merges with min semantics so a record surviving from a
// prior run keeps its earliest begin time. The returned closer is
// idempotent and also registered as a shutdown hook.
func (e *Experiment) beginTransaction(ctx context.Context) (func(), *signals.Handle, error) {
	log := crucible.ContextLogger(ctx)
	log.Debugf("[%s] opening transaction for experiment %s", e.runID, e.experiment)

	rec, err := e.ledger.CreateOrFetch(ctx, e.experiment)
	if err != nil {
		return nil, nil, err
	}
	rec.MergeBegin(time.Now())
	if err := e.ledger.Commit(ctx, rec); err != nil {
		if !errors.Is(err, ledger.ErrConsistency) {
			return nil, nil, err
		}
		log.Errorf("transaction isolation level caused a consistency error")
	}

	// closing must still work when the run context was canceled
	bg := context.WithoutCancel(ctx)
	var once sync.Once
	endTx := func() {
		once.Do(func() { e.endTransaction(bg, rec) })
	}
	hook := e.registry.Register(endTx)
	return endTx, hook, nil
}

// endTransaction merges the end timestamp with max semantics and commits.
// Ledger failures at this point are logged and swallowed, never escalated.
func (e *Experiment) endTransaction(ctx context.Context, rec *ledger.Record) {
	log := crucible.ContextLogger(ctx)
	log.Debugf("[%s] closing transaction for experiment %s", e.runID, e.experiment)

	rec.MergeEnd(time.Now())
	if err := e.ledger.Commit(ctx, rec); err != nil {
		log.Errorf("closing experiment transaction: %v", err)
	}
}

func (e *Experiment) runChildren(ctx context.Context) []Result {
	cctx := SetParentName(ctx, e.Name())
	workers := GetConfig(ctx).Parallel

	jobs := make([]interface{}, len(e.children))
	for i, child := range e.children {
		jobs[i] = child
	}
	collected := pool.Map(workers, jobs, func(job interface{}) interface{} {
		return e.runChild(cctx, job.(Step))
	})

	var results []Result
	for _, v := range collected {
		results = append(results, v.([]Result)...)
	}
	return results
}

// runChild executes exactly one top-level child on a pool worker. An
// interrupt or a panic is converted to a single Error entry, it never
// propagates and skips transaction closure.
func (e *Experiment) runChild(ctx context.Context, child Step) (results []Result) {
	log := crucible.ContextLogger(ctx)
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("experiment terminates because we got a panic: %v\n%s", r, debug.Stack())
			results = append(results, Error)
		}
	}()

	results, err := child.Execute(ctx)
	if err != nil {
		if IsCanceled(err) {
			log.Infof("experiment aborting by user request")
		} else {
			log.Errorf("experiment child %s failed: %v", child.Name(), err)
		}
		results = append(results, Error)
	}
	return results
}

// Describe this experiment and all its children
func (e *Experiment) Describe(indent int) string {
	return prependStatus(e, indented("\nExperiment: "+e.experiment+"\n"+e.describeChildren(indent+1), indent))
}

func (e *Experiment) describeChildren(indent int) string {
	descriptions := make([]string, 0, len(e.children))
	for _, child := range e.children {
		descriptions = append(descriptions, child.Describe(indent))
	}
	return strings.Join(descriptions, "\n")
}
