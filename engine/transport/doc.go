// Package transport implements the cross-context event bridge: a bounded
// SPSC queue with a drop-oldest overflow policy, counted rather than
// reported as an error, so the render context can never be blocked by a
// fast or stalled control context.
package transport
