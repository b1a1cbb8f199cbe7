package steps_test

import (
	"testing"
	"time"

	"github.com/casualjim/crucible/eventbus"
	"github.com/casualjim/crucible/steps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectLifecycle(bus eventbus.EventBus, phase steps.Phase) <-chan steps.LifecycleEvent {
	seen := make(chan steps.LifecycleEvent, 10)
	bus.Subscribe(eventbus.Filtered(
		steps.LifecycleEventFilter(phase),
		eventbus.Handler(func(evt eventbus.Event) error {
			seen <- evt.Args.(steps.LifecycleEvent)
			return nil
		}),
	))
	return seen
}

func waitLifecycle(t testing.TB, seen <-chan steps.LifecycleEvent) steps.LifecycleEvent {
	t.Helper()
	select {
	case evt := <-seen:
		return evt
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for lifecycle event")
		return steps.LifecycleEvent{}
	}
}

func TestLifecycleEvents_BracketExecution(t *testing.T) {
	bus := eventbus.New(nil)
	defer bus.Close()

	begins := collectLifecycle(bus, steps.PhaseBegin)
	ends := collectLifecycle(bus, steps.PhaseEnd)

	plan := steps.NewPlan(
		steps.PublishTo(bus),
		steps.Run(steps.NewEcho("hello")),
	)
	_, err := plan.Execute()
	require.NoError(t, err)

	begin := waitLifecycle(t, begins)
	assert.Equal(t, "ECHO", begin.Name)
	assert.Equal(t, steps.Unset, begin.Status)
	assert.NoError(t, begin.Reason)

	end := waitLifecycle(t, ends)
	assert.Equal(t, "ECHO", end.Name)
	assert.Equal(t, steps.OK, end.Status)
	assert.NoError(t, end.Reason)
}

func TestLifecycleEvents_CarryFailureReason(t *testing.T) {
	bus := eventbus.New(nil)
	defer bus.Close()

	ends := collectLifecycle(bus, steps.PhaseEnd)

	plan := steps.NewPlan(
		steps.PublishTo(bus),
		steps.Run(steps.NewCall("NOOP", "does nothing", &project{name: "prj"}, nil)),
	)
	_, err := plan.Execute()
	require.ErrorIs(t, err, steps.ErrNoCallback)

	end := waitLifecycle(t, ends)
	assert.Equal(t, "NOOP", end.Name)
	assert.ErrorIs(t, end.Reason, steps.ErrNoCallback)
}

func TestLifecycleEvents_CarryParentName(t *testing.T) {
	bus := eventbus.New(nil)
	defer bus.Close()

	begins := collectLifecycle(bus, steps.PhaseBegin)

	child := steps.NewEcho("inner")
	plan := steps.NewPlan(
		steps.PublishTo(bus),
		steps.Run(steps.NewRequireAll(nil, child)),
	)
	_, err := plan.Execute()
	require.NoError(t, err)

	// delivery order between events is not guaranteed, collect both
	byName := make(map[string]steps.LifecycleEvent, 2)
	for i := 0; i < 2; i++ {
		evt := waitLifecycle(t, begins)
		byName[evt.Name] = evt
	}
	assert.Empty(t, byName["REQUIRE ALL"].Parent)
	assert.Equal(t, "REQUIRE ALL", byName["ECHO"].Parent)
}

func TestPhase_Text(t *testing.T) {
	assert.Equal(t, "begin", steps.PhaseBegin.String())
	assert.Equal(t, "end", steps.PhaseEnd.String())

	ph, err := steps.PhaseFromString("end")
	require.NoError(t, err)
	assert.Equal(t, steps.PhaseEnd, ph)

	_, err = steps.PhaseFromString("sideways")
	assert.Error(t, err)
}

func TestIsLifecycleEvent(t *testing.T) {
	evt := eventbus.Event{Name: steps.TopicLifecycle, Args: steps.LifecycleEvent{Phase: steps.PhaseEnd}}
	assert.True(t, steps.IsLifecycleEvent(evt, steps.PhaseEnd))
	assert.False(t, steps.IsLifecycleEvent(evt, steps.PhaseBegin))
	assert.False(t, steps.IsLifecycleEvent(eventbus.Event{Name: "other"}, steps.PhaseEnd))
}
