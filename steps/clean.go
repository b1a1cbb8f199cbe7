package steps

import (
	"bufio"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/casualjim/crucible"
	multierror "github.com/hashicorp/go-multierror"
)

// CleanOpt configures a clean step
type CleanOpt func(*Clean)

// CheckEmpty makes the clean step remove the build directory only when
// it is empty
func CheckEmpty() CleanOpt {
	return func(s *Clean) { s.checkEmpty = true }
}

// NewClean creates the step that removes the build directory of a project
func NewClean(p Project, opts ...CleanOpt) *Clean {
	s := &Clean{base: base{
		name:        "CLEAN",
		description: "Clean the build directory",
		project:     p,
	}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Clean removes the build directory of its project. Nested isolation
// mountpoints under the directory are unmounted first.
type Clean struct {
	base
	checkEmpty bool
}

// Execute the cleanup
func (s *Clean) Execute(ctx context.Context) ([]Result, error) {
	return run(ctx, s, s.execute)
}

func (s *Clean) execute(ctx context.Context) ([]Result, error) {
	log := crucible.ContextLogger(ctx)
	if !GetConfig(ctx).Clean {
		log.Warnf("clean disabled by config")
		s.SetStatus(OK)
		return []Result{OK}, nil
	}
	if s.project == nil {
		log.Warnf("no project assigned to this step")
		return []Result{Error}, ErrNoProject
	}

	builddir, err := filepath.Abs(s.project.BuildDir())
	if err != nil {
		return []Result{Error}, err
	}
	if _, err := os.Stat(builddir); err != nil {
		log.Debugf("path %s did not exist anymore", builddir)
		s.SetStatus(OK)
		return []Result{OK}, nil
	}

	log.Debugf("path %s exists", builddir)
	if err := unmountBelow(ctx, builddir); err != nil {
		return []Result{Error}, err
	}
	if s.checkEmpty {
		// only removes when empty, a populated directory is left alone
		os.Remove(builddir) //nolint:errcheck
	} else if err := os.RemoveAll(builddir); err != nil {
		return []Result{Error}, err
	}
	s.SetStatus(OK)
	return []Result{OK}, nil
}

// Describe this step
func (s *Clean) Describe(indent int) string {
	dir := ""
	if s.project != nil {
		dir = s.project.BuildDir()
	}
	return prependStatus(s, indented("* "+s.projectName()+": Clean the directory: "+dir, indent))
}

// unmountBelow unmounts any fuse mountpoints nested under root.
// Mountpoints of other filesystem types are reported but left alone.
func unmountBelow(ctx context.Context, root string) error {
	real, err := filepath.EvalSymlinks(root)
	if err != nil {
		real = root
	}
	points, err := mountpointsBelow(real)
	if err != nil {
		// no mount table to inspect on this platform
		return nil
	}

	log := crucible.ContextLogger(ctx)
	var merr *multierror.Error
	for _, mp := range points {
		if !strings.HasPrefix(mp.fstype, "fuse") {
			log.Errorf("non-FUSE mountpoint found under %s", root)
			continue
		}
		out, err := exec.CommandContext(ctx, "umount", mp.path).CombinedOutput()
		if err != nil {
			retcode := -1
			if ee, ok := err.(*exec.ExitError); ok {
				retcode = ee.ExitCode()
			}
			merr = multierror.Append(merr, ExecErr([]string{"umount", mp.path}, retcode, "", string(out)))
		}
	}
	return merr.ErrorOrNil()
}

type mountpoint struct {
	path   string
	fstype string
}

func mountpointsBelow(root string) ([]mountpoint, error) {
	f, err := os.Open("/proc/self/mounts")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var points []mountpoint
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		target, fstype := fields[1], fields[2]
		if target == root || strings.HasPrefix(target, root+string(filepath.Separator)) {
			points = append(points, mountpoint{path: target, fstype: fstype})
		}
	}
	return points, scanner.Err()
}

// NewMakeBuildDir creates the step that creates the build directory of a project
func NewMakeBuildDir(p Project) *MakeBuildDir {
	return &MakeBuildDir{base: base{
		name:        "MKDIR",
		description: "Create the build directory",
		project:     p,
	}}
}

// MakeBuildDir creates the build directory of its project, including parents
type MakeBuildDir struct {
	base
}

// Execute the directory creation
func (s *MakeBuildDir) Execute(ctx context.Context) ([]Result, error) {
	return run(ctx, s, s.execute)
}

func (s *MakeBuildDir) execute(ctx context.Context) ([]Result, error) {
	if s.project == nil {
		return []Result{Error}, ErrNoProject
	}
	if err := os.MkdirAll(s.project.BuildDir(), 0o755); err != nil {
		return []Result{Error}, err
	}
	s.SetStatus(OK)
	return []Result{OK}, nil
}

// Describe this step
func (s *MakeBuildDir) Describe(indent int) string {
	return prependStatus(s, indented("* "+s.projectName()+": Create the build directory", indent))
}

// NewCleanExtra creates the step that removes the configured extra
// cleanup paths
func NewCleanExtra() *CleanExtra {
	return &CleanExtra{base: base{
		name:        "CLEAN EXTRA",
		description: "Clean the extra directories",
	}}
}

// CleanExtra removes the cleanup paths from the configuration
type CleanExtra struct {
	base
}

// Execute the cleanup
func (s *CleanExtra) Execute(ctx context.Context) ([]Result, error) {
	return run(ctx, s, s.execute)
}

func (s *CleanExtra) execute(ctx context.Context) ([]Result, error) {
	cfg := GetConfig(ctx)
	if !cfg.Clean {
		s.SetStatus(OK)
		return []Result{OK}, nil
	}
	for _, p := range cfg.CleanupPaths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := os.RemoveAll(p); err != nil {
			return []Result{Error}, err
		}
	}
	s.SetStatus(OK)
	return []Result{OK}, nil
}

// Describe this step
func (s *CleanExtra) Describe(indent int) string {
	return prependStatus(s, indented("* Clean the extra directories", indent))
}
