package steps

import (
	"context"

	"github.com/casualjim/crucible/config"
	"github.com/casualjim/crucible/eventbus"
	"github.com/casualjim/crucible/steps/internal"
)

// SetPublisher stores the event bus steps publish their lifecycle
// notifications to on the context
func SetPublisher(ctx context.Context, bus eventbus.EventBus) context.Context {
	return internal.SetPublisher(ctx, bus)
}

// GetPublisher returns the event bus from the context, or the nop bus
// when none was configured
func GetPublisher(ctx context.Context) eventbus.EventBus {
	return internal.GetPublisher(ctx)
}

// SetConfig stores the engine configuration on the context
func SetConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, internal.ConfigKey, cfg)
}

// GetConfig returns the engine configuration from the context,
// falling back to the defaults
func GetConfig(ctx context.Context) *config.Config {
	cfg, ok := ctx.Value(internal.ConfigKey).(*config.Config)
	if !ok {
		return config.Default()
	}
	return cfg
}

// SetParentName records the name of the enclosing composite on the context
func SetParentName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, internal.ParentNameKey, name)
}

// GetParentName returns the name of the enclosing composite, if any
func GetParentName(ctx context.Context) string {
	name, ok := ctx.Value(internal.ParentNameKey).(string)
	if !ok {
		return ""
	}
	return name
}
