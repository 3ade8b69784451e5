// Package poller owns the timing and lifecycle of refresh cycles.
//
// A refresh cycle disables the manual trigger, resets every indicator to
// Checking, issues exactly one status request and renders the outcome. Cycles
// are started on startup, on manual activation and on a fixed ticker. They are
// never retried; the next attempt is the next trigger.
//
// Cycles may overlap. Each one takes a generation number when it starts and
// only the newest generation may render its outcome, so a slow stale response
// cannot overwrite a newer one.
package poller
