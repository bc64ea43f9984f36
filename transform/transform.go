// Package transform provides per-sample and channel-layout transforms:
// function nodes, gain and channel mapping.
package transform

import (
	"github.com/dudk/audiograph"
)

// Function applies fn to every sample of its upstream. It is an audio
// transform: MIDI stops here.
type Function struct {
	audiograph.Slot

	input audiograph.Node
	fn    func(float32) float32
}

// NewFunction returns a node applying fn to the upstream signal.
func NewFunction(input audiograph.Node, fn func(float32) float32) *Function {
	return &Function{input: input, fn: fn}
}

// Gain returns a function node scaling the upstream signal by k.
func Gain(input audiograph.Node, k float32) *Function {
	return NewFunction(input, func(s float32) float32 { return s * k })
}

// Properties returns the input audio properties. The node emits no
// MIDI.
func (f *Function) Properties() audiograph.Properties {
	p := f.input.Properties()
	p.HasMidi = false
	return p
}

// Upstreams returns the direct upstream.
func (f *Function) Upstreams() []audiograph.Node {
	return []audiograph.Node{f.input}
}

// Ready reports whether the input has processed the current block.
func (f *Function) Ready() bool {
	return f.input.Processed()
}

// Prepare allocates the output slot.
func (f *Function) Prepare(cfg audiograph.Config) error {
	f.Allocate(f.Properties().NumChannels, cfg)
	return nil
}

// Process maps the input block sample by sample.
func (f *Function) Process(numFrames int) {
	in := f.input.Out()
	audio := f.Audio(numFrames)
	for c := range audio {
		d, s := audio[c], in.Audio[c]
		for i := 0; i < numFrames; i++ {
			d[i] = f.fn(s[i])
		}
	}
	f.Out().Midi.Clear()
}

// ChannelMap rebuilds the channel layout of its upstream from a list of
// source-to-destination pairs. A source may feed several destinations
// (duplication) and several sources may feed one destination (their
// samples sum). Unmapped destination channels stay silent.
type ChannelMap struct {
	audiograph.Slot

	input audiograph.Node
	pairs [][2]int
}

// NewChannelMap returns a node remapping input channels. Each pair is
// {source, destination}.
func NewChannelMap(input audiograph.Node, pairs ...[2]int) *ChannelMap {
	return &ChannelMap{input: input, pairs: pairs}
}

// Properties derives the channel count from the highest destination
// index in the map.
func (m *ChannelMap) Properties() audiograph.Properties {
	p := m.input.Properties()
	channels := 0
	for _, pair := range m.pairs {
		if pair[1]+1 > channels {
			channels = pair[1] + 1
		}
	}
	p.NumChannels = channels
	return p
}

// Upstreams returns the direct upstream.
func (m *ChannelMap) Upstreams() []audiograph.Node {
	return []audiograph.Node{m.input}
}

// Ready reports whether the input has processed the current block.
func (m *ChannelMap) Ready() bool {
	return m.input.Processed()
}

// Prepare allocates the output slot.
func (m *ChannelMap) Prepare(cfg audiograph.Config) error {
	m.Allocate(m.Properties().NumChannels, cfg)
	return nil
}

// Process accumulates every mapped source channel into its destination.
func (m *ChannelMap) Process(numFrames int) {
	in := m.input.Out()
	audio := m.Audio(numFrames)
	audio.Clear()
	inChannels := in.Audio.NumChannels()
	for _, pair := range m.pairs {
		src, dst := pair[0], pair[1]
		if src >= inChannels {
			continue
		}
		d, s := audio[dst], in.Audio[src]
		for i := 0; i < numFrames; i++ {
			d[i] += s[i]
		}
	}
	out := m.Out()
	out.Midi.Clear()
	out.Midi.Merge(in.Midi)
}
