package steps_test

import (
	"testing"

	"github.com/casualjim/crucible/steps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_Ordering(t *testing.T) {
	assert.True(t, steps.Unset < steps.OK)
	assert.True(t, steps.OK < steps.CanContinue)
	assert.True(t, steps.CanContinue < steps.Error)
}

func TestResult_Aggregate(t *testing.T) {
	assert.Equal(t, steps.Unset, steps.Aggregate(nil))
	assert.Equal(t, steps.OK, steps.Aggregate([]steps.Result{steps.OK, steps.OK}))
	assert.Equal(t, steps.CanContinue, steps.Aggregate([]steps.Result{steps.OK, steps.CanContinue}))
	assert.Equal(t, steps.Error, steps.Aggregate([]steps.Result{steps.OK, steps.Error, steps.CanContinue}))
}

func TestResult_Contains(t *testing.T) {
	results := []steps.Result{steps.OK, steps.Error}
	assert.True(t, steps.Contains(results, steps.Error))
	assert.False(t, steps.Contains(results, steps.CanContinue))
	assert.False(t, steps.Contains(nil, steps.OK))
}

func TestResult_AnyFailed(t *testing.T) {
	assert.False(t, steps.AnyFailed([]steps.Result{steps.OK, steps.OK}))
	assert.True(t, steps.AnyFailed([]steps.Result{steps.OK, steps.CanContinue}))
	assert.True(t, steps.AnyFailed([]steps.Result{steps.Error}))
	assert.False(t, steps.AnyFailed([]steps.Result{steps.CanContinue}, steps.Error))
}

func TestResult_Text(t *testing.T) {
	assert.Equal(t, "CAN_CONTINUE", steps.CanContinue.String())

	text, err := steps.Error.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "ERROR", string(text))

	var r steps.Result
	require.NoError(t, r.UnmarshalText([]byte("OK")))
	assert.Equal(t, steps.OK, r)

	assert.Error(t, r.UnmarshalText([]byte("NOT_A_RESULT")))

	_, err = steps.ResultFromString("bogus")
	assert.Error(t, err)
}

func TestNumSteps(t *testing.T) {
	inner := steps.NewRequireAll(nil, passStep("a"), passStep("b"))
	all := []steps.Step{passStep("c"), inner}
	assert.Equal(t, 4, steps.NumSteps(all))
}
