package core

import "context"

// Context keys for activation options
type contextKey string

const triggerKey contextKey = "trigger"

// Activation triggers used in logs.
const (
	TriggerCLI     = "cli"
	TriggerStartup = "startup"
	TriggerAdmin   = "admin"
	TriggerMCP     = "mcp"
)

// WithTrigger records what asked for an activation.
func WithTrigger(ctx context.Context, trigger string) context.Context {
	return context.WithValue(ctx, triggerKey, trigger)
}

// triggerFrom returns the activation trigger from context
func triggerFrom(ctx context.Context) string {
	val, ok := ctx.Value(triggerKey).(string)
	if !ok || val == "" {
		return "unknown" // default: caller did not say
	}
	return val
}
