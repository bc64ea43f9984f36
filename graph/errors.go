package graph

import "errors"

// ErrCycle is returned by Prepare when the graph, with send/return bus
// edges added, contains a dependency cycle.
var ErrCycle = errors.New("graph contains a cycle")

// ErrZeroChannels is returned by Prepare when a node claims to produce
// audio with zero channels.
var ErrZeroChannels = errors.New("node claims audio with zero channels")

// ErrConfig is returned by Prepare on a non-positive sample rate or
// block size.
var ErrConfig = errors.New("invalid configuration")

// ErrStalled is latched to the status channel if the scheduler cannot
// find a ready node before the root has processed. It cannot happen on
// a graph that passed preparation.
var ErrStalled = errors.New("scheduler stalled")
