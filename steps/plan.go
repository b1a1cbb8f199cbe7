package steps

import (
	"context"

	"github.com/casualjim/crucible"
	"github.com/casualjim/crucible/config"
	"github.com/casualjim/crucible/eventbus"
)

// PlanOpt represents a configuration option for the step execution context
type PlanOpt func(*Plan)

// ParentContext adds a parent context to the plan
func ParentContext(ctx context.Context) PlanOpt {
	return func(p *Plan) { p.ctx = ctx }
}

// PublishTo adds an existing event bus to the execution context
func PublishTo(bus eventbus.EventBus) PlanOpt {
	return func(p *Plan) { p.bus = bus }
}

// LogWith sets the logger steps write to during execution
func LogWith(log crucible.Logger) PlanOpt {
	return func(p *Plan) { p.log = log }
}

// ConfigureWith sets the engine configuration for this plan
func ConfigureWith(cfg *config.Config) PlanOpt {
	return func(p *Plan) { p.cfg = cfg }
}

// Run sets the root step the plan executes
func Run(step Step) PlanOpt {
	return func(p *Plan) { p.step = step }
}

// NewPlan creates an execution context for a step tree. The context
// carries the bus, logger and configuration so every step in the tree
// sees the same environment.
func NewPlan(opts ...PlanOpt) *Plan {
	p := &Plan{
		ctx: context.Background(),
		log: crucible.NopLogger,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bus == nil {
		p.bus = eventbus.NopBus
	}
	if p.cfg == nil {
		p.cfg = config.Default()
	}
	if p.step == nil {
		p.step = NewEcho("")
	}

	ctx := crucible.SetLogger(p.ctx, p.log)
	ctx = SetPublisher(ctx, p.bus)
	ctx = SetConfig(ctx, p.cfg)
	p.ctx, p.cancel = context.WithCancel(ctx)
	return p
}

// Plan executes a step tree in a prepared context
type Plan struct {
	ctx    context.Context
	cancel context.CancelFunc
	bus    eventbus.EventBus
	log    crucible.Logger
	cfg    *config.Config
	step   Step
}

// Execute the root step
func (p *Plan) Execute() ([]Result, error) {
	return p.step.Execute(p.ctx)
}

// Cancel the execution of the plan
func (p *Plan) Cancel() {
	if p.cancel == nil {
		return
	}
	p.cancel()
}

// Context of the plan
func (p *Plan) Context() context.Context { return p.ctx }

// ExitCode maps an aggregated result sequence to a process exit status.
// Any Error present is a failed run, CanContinue is a successful exit
// with warnings recorded.
func ExitCode(results []Result) int {
	if Contains(results, Error) {
		return 1
	}
	return 0
}
