package steps_test

import (
	"context"
	"testing"

	"github.com/casualjim/crucible/steps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan_Defaults(t *testing.T) {
	plan := steps.NewPlan()

	res, err := plan.Execute()
	require.NoError(t, err)
	assert.Equal(t, []steps.Result{steps.OK}, res)
}

func TestPlan_CarriesConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Parallel = 11

	var seen int
	probe := steps.NewCall("PROBE", "read the config", nil, func(ctx context.Context) error {
		seen = steps.GetConfig(ctx).Parallel
		return nil
	})
	plan := steps.NewPlan(steps.ConfigureWith(cfg), steps.Run(probe))

	_, err := plan.Execute()
	require.NoError(t, err)
	assert.Equal(t, 11, seen)
}

func TestPlan_Cancel(t *testing.T) {
	started := make(chan struct{})
	blocker := steps.NewCall("BLOCK", "wait for cancellation", nil, func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	plan := steps.NewPlan(steps.Run(blocker))

	go func() {
		<-started
		plan.Cancel()
	}()

	res, err := plan.Execute()
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []steps.Result{steps.Error}, res)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, steps.ExitCode(nil))
	assert.Equal(t, 0, steps.ExitCode([]steps.Result{steps.OK, steps.CanContinue}))
	assert.Equal(t, 1, steps.ExitCode([]steps.Result{steps.OK, steps.Error}))
}
