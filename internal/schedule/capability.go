// Package schedule abstracts the host's notification scheduling surface.
//
// A Capability is whatever the process runs on top of: an in-process timer
// wheel, an OS notification center, or a scripted fake in tests. The reminder
// engine treats every implementation identically, and host-level failures are
// reported as boolean results, never as errors.
package schedule

import (
	"context"

	"github.com/eventlife/eventlife/internal/model"
)

// Capability is the host scheduling and permission contract. Every operation
// takes a context because any of them may suspend on host I/O or user
// interaction, and all of them must abort promptly when the context is
// cancelled.
type Capability interface {
	// Schedule requests the host to fire at the reminder's scheduled time.
	// It returns false on any host-level failure and must replace, not
	// duplicate, a prior registration with the same reminder ID.
	Schedule(ctx context.Context, r model.Reminder) bool

	// Cancel removes a registration by reminder ID. Best effort: unknown or
	// already-fired IDs are not an error.
	Cancel(ctx context.Context, id string)

	// CancelAll removes every registration made through this capability.
	CancelAll(ctx context.Context)

	// HasPermission returns the current permission snapshot without side
	// effects.
	HasPermission(ctx context.Context) bool

	// RequestPermission may prompt the user and returns the resulting grant
	// state. It is safe to call when permission is already granted.
	RequestPermission(ctx context.Context) bool
}
