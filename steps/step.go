package steps

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/casualjim/crucible"
	"github.com/rcrowley/go-metrics"
)

// Callback is the unit of work a leaf step performs
type Callback func(context.Context) error

// A Step encapsulates a retryable unit of work in an experiment workflow.
//
// Execute always returns a non-empty result sequence, a leaf normally
// returns exactly one element. The error return carries the failure cause
// so enclosing composites can classify it; recovered failures still show
// up as Error results. Cancellation is the only cause composites propagate
// to their own caller.
type Step interface {
	Name() string
	Description() string
	Execute(context.Context) ([]Result, error)
	Describe(indent int) string
	OnError(context.Context)
	Status() Result
	SetStatus(Result)
	Len() int
}

// run executes the body of a step bracketed by lifecycle notifications and
// before/after logging. Every Execute implementation in this package routes
// through it, so the bookkeeping is applied uniformly.
func run(ctx context.Context, s Step, body func(context.Context) ([]Result, error)) ([]Result, error) {
	PublishBeginEvent(ctx, s)

	log := crucible.ContextLogger(ctx)
	log.Infof("%s - %s", s.Name(), s.Description())

	start := time.Now()
	results, err := body(ctx)
	metrics.GetOrRegisterTimer("steps.execute", metrics.DefaultRegistry).UpdateSince(start)

	if len(results) == 0 {
		results = []Result{OK}
	}
	if Contains(results, Error) {
		log.Errorf("%s - ERROR", s.Name())
	} else {
		log.Infof("%s - OK", s.Name())
	}

	PublishEndEvent(ctx, s, err)
	return results, err
}

// prependStatus prefixes the text with the settled status of the step.
// Before the first execution the text is returned unchanged.
func prependStatus(s Step, text string) string {
	if st := s.Status(); st != Unset {
		return "[" + st.String() + "]" + text
	}
	return text
}

// indented prefixes every non-empty line of text with indent spaces
func indented(text string, indent int) string {
	if indent <= 0 {
		return text
	}
	prefix := strings.Repeat(" ", indent)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// base carries the attributes shared by all step types
type base struct {
	name        string
	description string
	project     Project
	callback    Callback

	mu     sync.Mutex
	status Result
}

func (b *base) Name() string        { return b.name }
func (b *base) Description() string { return b.description }
func (b *base) Len() int            { return 1 }

func (b *base) Status() Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

func (b *base) SetStatus(status Result) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = status
}

// OnError is the default recovery hook, it cleans the build directory
// of the step's project
func (b *base) OnError(ctx context.Context) {
	if b.project == nil {
		return
	}
	NewClean(b.project).Execute(ctx) //nolint:errcheck
}

// invoke performs the configured callback, this is the execution body
// shared by all simple leaves
func (b *base) invoke(ctx context.Context) ([]Result, error) {
	if b.callback == nil {
		return []Result{Error}, ErrNoCallback
	}
	if err := b.callback(ctx); err != nil {
		return []Result{Error}, err
	}
	b.SetStatus(OK)
	return []Result{OK}, nil
}

func (b *base) projectName() string {
	if b.project == nil {
		return "<none>"
	}
	return b.project.Name()
}

// NewCall creates a leaf step around the given callback
func NewCall(name, description string, p Project, callback Callback) *Call {
	return &Call{base: base{
		name:        name,
		description: description,
		project:     p,
		callback:    callback,
	}}
}

// Call is the basic leaf step, it executes whatever callback it was
// configured with
type Call struct {
	base
}

// Execute the configured callback
func (s *Call) Execute(ctx context.Context) ([]Result, error) {
	return run(ctx, s, s.invoke)
}

// Describe this step
func (s *Call) Describe(indent int) string {
	return prependStatus(s, indented("* "+s.projectName()+": Execute configured action.", indent))
}
