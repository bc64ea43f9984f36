/*
Package audiograph defines the node contract of an audio processing
graph runtime: a directed acyclic graph of processing units that
produce and consume blocks of audio samples and MIDI events at a fixed
sample rate, with sample-accurate latency compensation where branches
converge.

Concept

A graph is built bottom-up: every node owns its direct upstreams and
the resulting root is handed to the runtime:

    sin := generate.NewSin(220, 1)
    delayed := graph.NewLatency(sin, 64)
    g, err := graph.New(graph.NewSum(delayed, generate.NewSin(220, 1)))

Preparation walks the graph once, derives node properties, installs
compensating delays where converging branches carry unequal latency,
and allocates every buffer the processing path will ever need:

    err = g.Prepare(audiograph.Config{SampleRate: 44100, MaxBlockSize: 512})

Processing then runs block by block on the driver's realtime thread.
The processing path does not allocate, does not lock and does not
block:

    out := block.New(2, 512)
    events := midi.NewBuffer(64)
    g.Process(out, events, 512)

Send and return nodes couple otherwise-disjoint subgraphs through
integer bus ids without an explicit graph edge. The scheduler treats
the bus as a true dependency: a return processes only after every send
on its bus has produced the current block, so delivery happens within
the block, not one block late.
*/
package audiograph
