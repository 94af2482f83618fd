// Package clock provides the background time source for warptimer.
//
// A Source is a single goroutine owning the set of active countdowns. It is
// reachable only through its command methods and its event channel; nothing
// inside it is shared with the caller. On every internal tick it applies the
// wall-clock time elapsed since each countdown's last whole second, carrying
// the sub-second residue forward, and emits an update or a completion event.
//
// The tick cadence is a two-state machine: fast while a viewer is looking,
// slow while hidden. Cadence only affects how promptly elapsed seconds are
// observed, never how many are counted.
//
// The Source knows nothing about chains, sounds or persistence. A completed
// countdown is dropped from the active set and never restarts on its own.
package clock
