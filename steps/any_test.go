package steps_test

import (
	"context"
	"strings"
	"testing"

	"github.com/casualjim/crucible/steps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAny_AllPass(t *testing.T) {
	a, b := passStep("a"), passStep("b")
	any := steps.NewAny(nil, a, b)

	res, err := any.Execute(testCtx())
	require.NoError(t, err)
	assert.Equal(t, 1, a.Runs())
	assert.Equal(t, 1, b.Runs())
	assert.Equal(t, steps.OK, any.Status())
	assert.False(t, steps.Contains(res, steps.Error))
}

func TestAny_BestEffort(t *testing.T) {
	a, b, c := passStep("a"), failStep("b"), passStep("c")
	any := steps.NewAny(nil, a, b, c)

	res, err := any.Execute(testCtx())
	require.NoError(t, err)

	// every child ran despite the failure in the middle
	assert.Equal(t, 1, a.Runs())
	assert.Equal(t, 1, b.Runs())
	assert.Equal(t, 1, c.Runs())
	assert.True(t, steps.Contains(res, steps.Error))
	assert.Equal(t, steps.CanContinue, any.Status())
}

func TestAny_Len(t *testing.T) {
	any := steps.NewAny(nil, passStep("a"), steps.NewRequireAll(nil, passStep("b"), passStep("c")))
	assert.Equal(t, 5, any.Len())
}

func TestAny_Canceled(t *testing.T) {
	a := passStep("a")
	interrupted := &fakeStep{name: "int", fn: func(ctx context.Context) ([]steps.Result, error) {
		return []steps.Result{steps.Error}, context.Canceled
	}}
	c := passStep("c")
	any := steps.NewAny(nil, a, interrupted, c)

	_, err := any.Execute(testCtx())
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, c.Runs())
}

func TestAny_Describe(t *testing.T) {
	any := steps.NewAny(nil, steps.NewEcho("one"), steps.NewEcho("two"))
	desc := any.Describe(0)
	assert.True(t, strings.HasPrefix(desc, "* Execute all of:"))
	assert.Contains(t, desc, "* echo: one")
	assert.Contains(t, desc, "* echo: two")
}
