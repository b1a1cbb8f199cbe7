package steps

import (
	"context"
	"strings"

	"github.com/casualjim/crucible"
)

// NewAny creates a best-effort composite: every child runs regardless of
// prior failures
func NewAny(p Project, children ...Step) *Any {
	return &Any{
		base: base{
			name:        "ANY",
			description: "Just run all actions, no questions asked",
			project:     p,
		},
		children: children,
	}
}

// Any runs its children unconditionally and collects all their results.
// A child failure never stops the siblings, it only demotes the settled
// status to CanContinue.
type Any struct {
	base
	children []Step
}

// Len counts all transitively owned steps plus this composite itself
func (s *Any) Len() int {
	return NumSteps(s.children) + 1
}

// Execute all children in order
func (s *Any) Execute(ctx context.Context) ([]Result, error) {
	return run(ctx, s, s.execute)
}

func (s *Any) execute(ctx context.Context) ([]Result, error) {
	log := crucible.ContextLogger(ctx)
	cctx := SetParentName(ctx, s.Name())

	length := len(s.children)
	results := []Result{OK}
	for cnt, child := range s.children {
		res, err := child.Execute(cctx)
		results = append(results, res...)

		if err != nil && IsCanceled(err) {
			s.SetStatus(CanContinue)
			return results, err
		}
		if Contains(res, Error) {
			log.Warnf("%d actions left in queue", length-cnt-1)
		}
	}

	s.SetStatus(OK)
	if Contains(results, Error) {
		s.SetStatus(CanContinue)
	}
	return results, nil
}

// Describe this composite and all its children
func (s *Any) Describe(indent int) string {
	return prependStatus(s, indented("* Execute all of:\n"+s.describeChildren(indent+1), indent))
}

func (s *Any) describeChildren(indent int) string {
	descriptions := make([]string, 0, len(s.children))
	for _, child := range s.children {
		descriptions = append(descriptions, child.Describe(indent))
	}
	return strings.Join(descriptions, "\n")
}
