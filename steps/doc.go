// Package steps contains the building blocks for experiment workflows.
//
// A step is a unit of work with an identity, a settled outcome and a
// recovery hook. Leaves perform a single action against a project (clean,
// create the build directory, compile, run), composites aggregate child
// steps under a policy: Any runs everything and tolerates failures,
// RequireAll stops at the first failure, Containerize redirects the run
// into an isolated environment, and Experiment brackets its children with
// a persisted transaction while fanning them out to a worker pool.
//
//	exp := steps.NewExperiment("compilestats", []steps.Step{
//		steps.NewRequireAll(prj,
//			steps.NewClean(prj),
//			steps.NewMakeBuildDir(prj),
//			steps.NewDownload(prj),
//			steps.NewConfigure(prj),
//			steps.NewCompile(prj),
//			steps.NewRun(prj),
//		),
//	}, steps.RecordTo(led))
//
//	results, err := steps.NewPlan(
//		steps.Run(exp),
//		steps.PublishTo(eventbus.New(nil)),
//		steps.LogWith(crucible.GoLog(os.Stderr, "", 0)),
//	).Execute()
//
// Outcomes are ordinal: aggregation over a result sequence takes the worst
// observed severity. The event bus on the context receives a begin and an
// end notification for every step invocation, it observes progress but can
// never affect control flow.
package steps
