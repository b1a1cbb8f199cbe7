package steps_test

import (
	"context"
	"errors"
	"sync"

	"github.com/casualjim/crucible/steps"
)

var errExpected = errors.New("expected")

// project is the minimal domain object, it has no capabilities
type project struct {
	name string
	dir  string
}

func (p *project) Name() string     { return p.name }
func (p *project) BuildDir() string { return p.dir }

// buildable implements every project capability through configurable funcs,
// a nil func succeeds
type buildable struct {
	project
	onCompile   func(context.Context) error
	onConfigure func(context.Context) error
	onDownload  func(context.Context) error
	onRun       func(context.Context, steps.RunWrapper) error
}

func (p *buildable) Compile(ctx context.Context) error {
	if p.onCompile == nil {
		return nil
	}
	return p.onCompile(ctx)
}

func (p *buildable) Configure(ctx context.Context) error {
	if p.onConfigure == nil {
		return nil
	}
	return p.onConfigure(ctx)
}

func (p *buildable) Download(ctx context.Context) error {
	if p.onDownload == nil {
		return nil
	}
	return p.onDownload(ctx)
}

func (p *buildable) Run(ctx context.Context, wrap steps.RunWrapper) error {
	if p.onRun == nil {
		return wrap(ctx, func(context.Context) error { return nil })
	}
	return p.onRun(ctx, wrap)
}

// containerized declares an image and records redirects
type containerized struct {
	project
	image     string
	mu        sync.Mutex
	redirects int
}

func (p *containerized) Image() string { return p.image }

func (p *containerized) Redirect(context.Context) error {
	p.mu.Lock()
	p.redirects++
	p.mu.Unlock()
	return nil
}

func (p *containerized) Redirects() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.redirects
}

// fakeStep records executions and recovery-hook invocations
type fakeStep struct {
	name string
	fn   func(context.Context) ([]steps.Result, error)

	mu       sync.Mutex
	status   steps.Result
	runs     int
	onErrors int
}

func passStep(name string) *fakeStep {
	return &fakeStep{name: name}
}

func failStep(name string) *fakeStep {
	return &fakeStep{
		name: name,
		fn: func(context.Context) ([]steps.Result, error) {
			return []steps.Result{steps.Error}, errExpected
		},
	}
}

func (f *fakeStep) Name() string        { return f.name }
func (f *fakeStep) Description() string { return "fake step" }
func (f *fakeStep) Len() int            { return 1 }

func (f *fakeStep) Execute(ctx context.Context) ([]steps.Result, error) {
	f.mu.Lock()
	f.runs++
	f.mu.Unlock()

	if f.fn != nil {
		return f.fn(ctx)
	}
	f.SetStatus(steps.OK)
	return []steps.Result{steps.OK}, nil
}

func (f *fakeStep) Describe(indent int) string { return "* fake: " + f.name }

func (f *fakeStep) OnError(context.Context) {
	f.mu.Lock()
	f.onErrors++
	f.mu.Unlock()
}

func (f *fakeStep) Status() steps.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeStep) SetStatus(status steps.Result) {
	f.mu.Lock()
	f.status = status
	f.mu.Unlock()
}

func (f *fakeStep) Runs() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs
}

func (f *fakeStep) OnErrors() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.onErrors
}
