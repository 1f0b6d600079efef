// Package notify delivers push notifications for activity transitions.
package notify

import "context"

// Notifier delivers a short message to the user's devices. Implementations
// must be safe to call from the update loop; slow transports should be
// dispatched on a goroutine by the caller.
type Notifier interface {
	Notify(ctx context.Context, title, message string, priority int) error
}

// Nop is the notifier used when no push transport is configured.
type Nop struct{}

func (Nop) Notify(context.Context, string, string, int) error { return nil }
