package steps

import (
	"context"
	"os"
	"strings"
)

// A Project is the domain object a step acts on. Steps only rely on this
// narrow contract, richer behavior is discovered through the capability
// interfaces below.
type Project interface {
	Name() string
	BuildDir() string
}

// A Compiler knows how to build itself
type Compiler interface {
	Compile(context.Context) error
}

// A Configurer knows how to configure itself before compilation
type Configurer interface {
	Configure(context.Context) error
}

// A Downloader knows how to fetch its own sources
type Downloader interface {
	Download(context.Context) error
}

// RunWrapper decorates the invocation of a project binary. Experiments use
// it to attach bookkeeping to every run without the project knowing about it.
type RunWrapper func(ctx context.Context, invoke func(context.Context) error) error

// A Runner knows how to execute its run-time tests, invoking every binary
// through the provided wrapper
type Runner interface {
	Run(ctx context.Context, wrap RunWrapper) error
}

// Containerized projects declare a container image to run under and know
// how to redirect the remainder of the workflow into it
type Containerized interface {
	Image() string
	Redirect(context.Context) error
}

// InContainer reports whether we are already executing inside an isolated
// container environment. The CRUCIBLE_CONTAINER environment variable
// overrides the file probes either way.
func InContainer() bool {
	if v, ok := os.LookupEnv("CRUCIBLE_CONTAINER"); ok {
		return v == "1" || strings.EqualFold(v, "true")
	}
	for _, p := range []string{"/.dockerenv", "/run/.containerenv"} {
		if _, err := os.Stat(p); err == nil {
			return true
		}
	}
	return false
}
