package internal

import (
	"context"
	"time"

	"github.com/casualjim/crucible/eventbus"
)

// StepKey are keys used in step execution contexts
type StepKey uint8

const (
	// PublisherKey for the publisher in the context
	PublisherKey StepKey = iota
	// ConfigKey for the engine configuration in the context
	ConfigKey
	// ParentNameKey for the name of the parent step
	ParentNameKey
)

// SetPublisher on the context
func SetPublisher(ctx context.Context, pub eventbus.EventBus) context.Context {
	return context.WithValue(ctx, PublisherKey, pub)
}

// GetPublisher from the context
func GetPublisher(ctx context.Context) eventbus.EventBus {
	bus, ok := ctx.Value(PublisherKey).(eventbus.EventBus)
	if !ok {
		return eventbus.NopBus
	}
	return bus
}

// PublishEvent publishes an event to the bus on the context
func PublishEvent(ctx context.Context, name string, args interface{}) {
	pub := GetPublisher(ctx)
	pub.Publish(eventbus.Event{
		Name: name,
		At:   time.Now(),
		Args: args,
	})
}
