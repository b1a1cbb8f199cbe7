package steps

import (
	"context"
	"strings"

	"github.com/casualjim/crucible"
)

// NewRequireAll creates a fail-fast composite: children run in order and
// the first failure aborts the remainder
func NewRequireAll(p Project, children ...Step) *RequireAll {
	return &RequireAll{
		base: base{
			name:        "REQUIRE ALL",
			description: "All child steps need to succeed",
			project:     p,
		},
		children: children,
	}
}

// RequireAll runs its children in declared order and stops at the first
// failure. The failing child gets its status marked and its recovery hook
// invoked before the composite settles to Error.
type RequireAll struct {
	base
	children []Step
}

// Len counts all transitively owned steps plus this composite itself
func (s *RequireAll) Len() int {
	return NumSteps(s.children) + 1
}

// Execute the children until the first failure
func (s *RequireAll) Execute(ctx context.Context) ([]Result, error) {
	return run(ctx, s, s.execute)
}

func (s *RequireAll) execute(ctx context.Context) ([]Result, error) {
	log := crucible.ContextLogger(ctx)
	cctx := SetParentName(ctx, s.Name())

	var results []Result
	for i, child := range s.children {
		res, err := child.Execute(cctx)
		results = append(results, res...)

		switch {
		case err == nil:
		case IsCanceled(err):
			// an abort signal, not an ordinary failure: mark state, clean up
			// and hand the interruption to our own caller
			log.Infof("user requested termination.")
			child.SetStatus(Error)
			child.OnError(cctx)
			if !Contains(results, Error) {
				results = append(results, Error)
			}
			s.SetStatus(Error)
			return results, err
		case IsExecError(err):
			log.Errorf("\n==== ERROR ====")
			log.Errorf("execution of a binary failed in step: %s", child.Describe(0))
			log.Errorf("%v", err)
			log.Errorf("==== ERROR ====\n")
		default:
			log.Errorf("exception in step #%d: %s: %v", i, child.Describe(0), err)
		}

		if Contains(results, Error) {
			log.Errorf("execution of #%d: '%s' failed.", i, child.Describe(0))
			log.Errorf("'%s' cannot continue.", s.Name())
			child.SetStatus(Error)
			child.OnError(cctx)
			s.SetStatus(Error)
			return results, nil
		}
	}

	s.SetStatus(OK)
	return results, nil
}

// Describe this composite and all its children
func (s *RequireAll) Describe(indent int) string {
	return prependStatus(s, indented("* All required:\n"+s.describeChildren(indent+1), indent))
}

func (s *RequireAll) describeChildren(indent int) string {
	descriptions := make([]string, 0, len(s.children))
	for _, child := range s.children {
		descriptions = append(descriptions, child.Describe(indent))
	}
	return strings.Join(descriptions, "\n")
}
