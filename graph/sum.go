package graph

import (
	"github.com/dudk/audiograph"
)

// Sum combines multiple upstreams into one output. When the graph is
// prepared, a compensating Latency node is installed on every upstream
// whose declared latency is below the maximum among its peers, so that
// samples originating from the same source frame land on the same
// output frame. NewBasicSum skips that installation and mixes the
// upstreams as they are.
type Sum struct {
	audiograph.UID
	audiograph.Slot

	inputs     []audiograph.Node
	compensate bool
}

// NewSum returns a latency-compensating summing node.
func NewSum(inputs ...audiograph.Node) *Sum {
	return &Sum{UID: audiograph.NewUID(), inputs: inputs, compensate: true}
}

// NewBasicSum returns a summing node which does not align the latencies
// of its upstreams. A deliberately delayed branch stays delayed.
func NewBasicSum(inputs ...audiograph.Node) *Sum {
	return &Sum{UID: audiograph.NewUID(), inputs: inputs}
}

// Properties disjoins audio and MIDI presence and takes channel and
// latency maxima across the upstreams.
func (s *Sum) Properties() audiograph.Properties {
	var p audiograph.Properties
	for _, in := range s.inputs {
		ip := in.Properties()
		p.HasAudio = p.HasAudio || ip.HasAudio
		p.HasMidi = p.HasMidi || ip.HasMidi
		if ip.NumChannels > p.NumChannels {
			p.NumChannels = ip.NumChannels
		}
		if ip.Latency > p.Latency {
			p.Latency = ip.Latency
		}
	}
	return p
}

// Upstreams returns the direct upstreams.
func (s *Sum) Upstreams() []audiograph.Node {
	return s.inputs
}

// Ready reports whether every upstream has processed the current block.
func (s *Sum) Ready() bool {
	for _, in := range s.inputs {
		if !in.Processed() {
			return false
		}
	}
	return true
}

// balance wraps every upstream short of the junction maximum in a
// compensating latency node. Called by the graph during preparation,
// in topological order.
func (s *Sum) balance() {
	if !s.compensate {
		return
	}
	max := s.Properties().Latency
	for i, in := range s.inputs {
		if d := max - in.Properties().Latency; d > 0 {
			s.inputs[i] = newCompensator(in, d)
		}
	}
}

// Prepare allocates the output slot.
func (s *Sum) Prepare(cfg audiograph.Config) error {
	s.Allocate(s.Properties().NumChannels, cfg)
	return nil
}

// Process zeroes the output slot and adds every upstream into it.
// Upstream channels beyond the slot's channel count are clipped,
// missing ones contribute silence.
func (s *Sum) Process(numFrames int) {
	out := s.Out()
	audio := s.Audio(numFrames)
	audio.Clear()
	out.Midi.Clear()
	for _, in := range s.inputs {
		u := in.Out()
		audio.Add(u.Audio)
		out.Midi.Merge(u.Midi)
	}
	out.Midi.Sort()
}
