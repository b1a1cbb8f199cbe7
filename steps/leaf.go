package steps

import (
	"context"

	"github.com/casualjim/crucible"
)

// NewCompile creates the step that builds a project
func NewCompile(p Project) *Compile {
	s := &Compile{base: base{
		name:        "COMPILE",
		description: "Compile the project",
		project:     p,
	}}
	if c, ok := p.(Compiler); ok {
		s.callback = c.Compile
	}
	return s
}

// Compile invokes the compile action of its project
type Compile struct {
	base
}

// Execute the compile action
func (s *Compile) Execute(ctx context.Context) ([]Result, error) {
	return run(ctx, s, s.invoke)
}

// Describe this step
func (s *Compile) Describe(indent int) string {
	return prependStatus(s, indented("* "+s.projectName()+": Compile", indent))
}

// RunOpt configures a run step
type RunOpt func(*RunStep)

// WrapWith installs the wrapper every binary invocation is routed through
func WrapWith(wrap RunWrapper) RunOpt {
	return func(s *RunStep) { s.wrap = wrap }
}

// NewRun creates the step that executes the run-time tests of a project
func NewRun(p Project, opts ...RunOpt) *RunStep {
	s := &RunStep{
		base: base{
			name:        "RUN",
			description: "Execute the run action",
			project:     p,
		},
		wrap: func(ctx context.Context, invoke func(context.Context) error) error {
			return invoke(ctx)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if r, ok := p.(Runner); ok {
		s.callback = func(ctx context.Context) error {
			return r.Run(ctx, s.wrap)
		}
	}
	return s
}

// RunStep invokes the run action of its project
type RunStep struct {
	base
	wrap RunWrapper
}

// Execute the run action
func (s *RunStep) Execute(ctx context.Context) ([]Result, error) {
	return run(ctx, s, s.execute)
}

func (s *RunStep) execute(ctx context.Context) ([]Result, error) {
	if s.project == nil {
		return []Result{Error}, ErrNoProject
	}
	return s.invoke(ctx)
}

// Describe this step
func (s *RunStep) Describe(indent int) string {
	return prependStatus(s, indented("* "+s.projectName()+": Execute run-time tests.", indent))
}

// NewConfigure creates the step that configures a project before compilation
func NewConfigure(p Project) *Configure {
	s := &Configure{base: base{
		name:        "CONFIGURE",
		description: "Configure the project",
		project:     p,
	}}
	if c, ok := p.(Configurer); ok {
		s.callback = c.Configure
	}
	return s
}

// Configure invokes the configure action of its project
type Configure struct {
	base
}

// Execute the configure action
func (s *Configure) Execute(ctx context.Context) ([]Result, error) {
	return run(ctx, s, s.invoke)
}

// Describe this step
func (s *Configure) Describe(indent int) string {
	return prependStatus(s, indented("* "+s.projectName()+": Configure", indent))
}

// NewDownload creates the step that fetches the sources of a project
func NewDownload(p Project) *Download {
	s := &Download{base: base{
		name:        "DOWNLOAD",
		description: "Download the project sources",
		project:     p,
	}}
	if d, ok := p.(Downloader); ok {
		s.callback = d.Download
	}
	return s
}

// Download invokes the download action of its project
type Download struct {
	base
}

// Execute the download action
func (s *Download) Execute(ctx context.Context) ([]Result, error) {
	return run(ctx, s, s.invoke)
}

// Describe this step
func (s *Download) Describe(indent int) string {
	return prependStatus(s, indented("* "+s.projectName()+": Download", indent))
}

// NewEcho creates a step that emits a message on the logging channel
func NewEcho(message string) *Echo {
	return &Echo{
		base: base{
			name:        "ECHO",
			description: "Print a message",
		},
		message: message,
	}
}

// Echo emits its message through the logger, it always succeeds
type Echo struct {
	base
	message string
}

// Execute emits the message
func (s *Echo) Execute(ctx context.Context) ([]Result, error) {
	return run(ctx, s, s.execute)
}

func (s *Echo) execute(ctx context.Context) ([]Result, error) {
	crucible.ContextLogger(ctx).Infof("%s", s.message)
	s.SetStatus(OK)
	return []Result{OK}, nil
}

// Describe this step
func (s *Echo) Describe(indent int) string {
	return prependStatus(s, indented("* echo: "+s.message, indent))
}
