package steps

import (
	"context"
	"fmt"

	"github.com/casualjim/crucible/eventbus"
	"github.com/casualjim/crucible/steps/internal"
)

var phaseNames map[Phase]string
var namedPhases map[string]Phase

func init() {
	phaseNames = map[Phase]string{
		PhaseBegin: "begin",
		PhaseEnd:   "end",
	}

	namedPhases = make(map[string]Phase, len(phaseNames))
	for k, v := range phaseNames {
		namedPhases[v] = k
	}
}

// PhaseFromString creates a lifecycle phase from a string
func PhaseFromString(name string) (Phase, error) {
	if v, ok := namedPhases[name]; ok {
		return v, nil
	}
	return PhaseBegin, fmt.Errorf("invalid lifecycle phase %q", name)
}

// Phase indicates whether a lifecycle event was emitted before or after
// the unit of work ran
type Phase uint8

const (
	// PhaseBegin is emitted right before a step executes
	PhaseBegin Phase = iota
	// PhaseEnd is emitted after a step executed, regardless of outcome
	PhaseEnd
)

func (p Phase) String() string {
	return phaseNames[p]
}

// MarshalText renders this phase to text
func (p Phase) MarshalText() (text []byte, err error) {
	return []byte(phaseNames[p]), nil
}

// UnmarshalText parses this phase from text
func (p *Phase) UnmarshalText(text []byte) error {
	ph, err := PhaseFromString(string(text))
	if err != nil {
		return err
	}
	*p = ph
	return nil
}

// TopicLifecycle is the event topic for step lifecycle events
const TopicLifecycle = "lifecycle"

// A LifecycleEvent brackets the execution of a single step. It is purely
// observational: subscribers learn about progress through these events but
// can never affect control flow or results.
type LifecycleEvent struct {
	Phase  Phase
	Name   string
	Parent string
	Status Result
	Reason error
}

// PublishBeginEvent notifies all registered listeners that the step is
// about to execute
func PublishBeginEvent(ctx context.Context, s Step) {
	internal.PublishEvent(ctx, TopicLifecycle, LifecycleEvent{
		Phase:  PhaseBegin,
		Name:   s.Name(),
		Parent: GetParentName(ctx),
		Status: s.Status(),
	})
}

// PublishEndEvent notifies all registered listeners that the step finished,
// successfully or not
func PublishEndEvent(ctx context.Context, s Step, reason error) {
	internal.PublishEvent(ctx, TopicLifecycle, LifecycleEvent{
		Phase:  PhaseEnd,
		Name:   s.Name(),
		Parent: GetParentName(ctx),
		Status: s.Status(),
		Reason: reason,
	})
}

// IsLifecycleEvent returns true if this is a lifecycle event for the given phase
func IsLifecycleEvent(evt eventbus.Event, phase Phase) bool {
	return LifecycleEventFilter(phase)(evt)
}

// LifecycleEventFilter is an event filter that matches lifecycle events
// for a specific phase
func LifecycleEventFilter(phase Phase) eventbus.EventPredicate {
	return func(evt eventbus.Event) bool {
		if evt.Name != TopicLifecycle {
			return false
		}
		lce, ok := evt.Args.(LifecycleEvent)
		return ok && lce.Phase == phase
	}
}
