package steps

import "context"

// NewContainerize creates a fail-fast composite that redirects the whole
// run into an isolated container environment when its project asks for one
func NewContainerize(p Project, children ...Step) *Containerize {
	s := &Containerize{RequireAll: RequireAll{
		base: base{
			name:        "CONTAINERIZE",
			description: "Redirect into container",
			project:     p,
		},
		children: children,
	}}
	return s
}

// Containerize behaves like RequireAll unless the current process runs
// outside a container and the project declares an image, in which case the
// remainder of the workflow is delegated into that environment instead of
// executing the children directly.
type Containerize struct {
	RequireAll
}

func (s *Containerize) requiresRedirect() (Containerized, bool) {
	c, ok := s.project.(Containerized)
	if !ok || InContainer() || c.Image() == "" {
		return nil, false
	}
	return c, true
}

// Execute redirects into the container or falls through to the
// fail-fast behavior
func (s *Containerize) Execute(ctx context.Context) ([]Result, error) {
	return run(ctx, s, s.execute)
}

func (s *Containerize) execute(ctx context.Context) ([]Result, error) {
	if c, ok := s.requiresRedirect(); ok {
		if err := c.Redirect(ctx); err != nil {
			return []Result{Error}, err
		}
		s.SetStatus(OK)
		return []Result{OK}, nil
	}
	return s.RequireAll.execute(ctx)
}

// Describe this composite, distinguishing whether it runs natively, is
// already inside the container, or is about to redirect into one
func (s *Containerize) Describe(indent int) string {
	children := s.describeChildren(indent + 1)

	if InContainer() {
		return prependStatus(s, indented("* Running inside container:\n"+children, indent))
	}
	if _, ok := s.requiresRedirect(); ok {
		return prependStatus(s, indented("* Continue inside container:\n"+children, indent))
	}
	return prependStatus(s, indented("* Running without container:\n"+children, indent))
}
