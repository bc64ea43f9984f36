package graph

import (
	"github.com/dudk/audiograph"
	"github.com/dudk/audiograph/ring"
)

// Send passes its upstream through unchanged and publishes the same
// block on a numbered bus. It does not gate its own downstream on the
// existence of a matching Return: without one the published data is
// discarded.
type Send struct {
	audiograph.UID
	audiograph.Slot

	input audiograph.Node
	bus   int
}

// NewSend returns a pass-through tap on the given bus. Bus ids are
// non-negative integers; two nodes refer to the same bus iff they
// carry the same id.
func NewSend(input audiograph.Node, bus int) *Send {
	return &Send{UID: audiograph.NewUID(), input: input, bus: bus}
}

// Bus returns the bus id.
func (s *Send) Bus() int {
	return s.bus
}

// Properties returns the input properties unchanged.
func (s *Send) Properties() audiograph.Properties {
	return s.input.Properties()
}

// Upstreams returns the direct upstream.
func (s *Send) Upstreams() []audiograph.Node {
	return []audiograph.Node{s.input}
}

// Ready reports whether the input has processed the current block.
func (s *Send) Ready() bool {
	return s.input.Processed()
}

// Prepare allocates the output slot.
func (s *Send) Prepare(cfg audiograph.Config) error {
	s.Allocate(s.Properties().NumChannels, cfg)
	return nil
}

// Process copies the input block into the output slot. Returns on the
// same bus read the slot after this call completed.
func (s *Send) Process(numFrames int) {
	in := s.input.Out()
	audio := s.Audio(numFrames)
	audio.Copy(in.Audio)
	out := s.Out()
	out.Midi.Clear()
	out.Midi.Merge(in.Midi)
}

// Return merges its direct upstream with every Send on the same bus.
// The bus edge is a lookup relation resolved at preparation, never
// ownership: the graph binds the matching sends, and the scheduler
// treats each of them as an upstream of the return.
type Return struct {
	audiograph.UID
	audiograph.Slot

	input audiograph.Node
	bus   int

	// bound at preparation
	senders []*Send
	comps   []*ring.Ring
	midis   []*midiDelay
}

// NewReturn returns a node which mixes the bus into its direct
// upstream.
func NewReturn(input audiograph.Node, bus int) *Return {
	return &Return{UID: audiograph.NewUID(), input: input, bus: bus}
}

// Bus returns the bus id.
func (r *Return) Bus() int {
	return r.bus
}

// Properties takes channel and latency maxima and disjoins audio/MIDI
// presence across the direct upstream and every bound sender.
func (r *Return) Properties() audiograph.Properties {
	p := r.input.Properties()
	for _, s := range r.senders {
		sp := s.Properties()
		p.HasAudio = p.HasAudio || sp.HasAudio
		p.HasMidi = p.HasMidi || sp.HasMidi
		if sp.NumChannels > p.NumChannels {
			p.NumChannels = sp.NumChannels
		}
		if sp.Latency > p.Latency {
			p.Latency = sp.Latency
		}
	}
	return p
}

// Upstreams returns the direct upstream. Bus dependencies are virtual:
// the graph schedules them through the registry, and Ready checks them
// directly.
func (r *Return) Upstreams() []audiograph.Node {
	return []audiograph.Node{r.input}
}

// Ready reports whether the direct upstream and every send sharing the
// bus have processed the current block.
func (r *Return) Ready() bool {
	if !r.input.Processed() {
		return false
	}
	for _, s := range r.senders {
		if !s.Processed() {
			return false
		}
	}
	return true
}

// bind attaches the sends sharing the bus. Called by the graph before
// the topological sort.
func (r *Return) bind(senders []*Send) {
	r.senders = senders
}

// balance aligns the latencies converging at the return. The direct
// upstream can be wrapped in an owned compensator; senders are owned
// elsewhere, so each short sender path is compensated by an internal
// delay ring instead.
func (r *Return) balance() {
	max := r.Properties().Latency
	if d := max - r.input.Properties().Latency; d > 0 {
		r.input = newCompensator(r.input, d)
	}
}

// compensation reports the sender-side delay stages of the return:
// how many bus paths are compensated and with how many frames in
// total.
func (r *Return) compensation() (stages, frames int) {
	p := r.Properties()
	for _, s := range r.senders {
		if d := p.Latency - s.Properties().Latency; d > 0 {
			stages++
			frames += d
		}
	}
	return
}

// Prepare allocates the output slot and the per-sender compensation
// rings, primed with the sender's latency shortfall.
func (r *Return) Prepare(cfg audiograph.Config) error {
	p := r.Properties()
	r.Allocate(p.NumChannels, cfg)
	r.comps = make([]*ring.Ring, len(r.senders))
	r.midis = make([]*midiDelay, len(r.senders))
	for i, s := range r.senders {
		sp := s.Properties()
		d := p.Latency - sp.Latency
		if d > 0 && sp.NumChannels > 0 {
			r.comps[i] = ring.New(sp.NumChannels, d+cfg.MaxBlockSize+1)
			r.comps[i].WriteSilence(d)
		}
		if d > 0 {
			md := &midiDelay{}
			md.reset(d)
			r.midis[i] = md
		}
	}
	return nil
}

// Process adds the direct upstream and every sender block into the
// output slot. Compensated sender paths route through their ring.
func (r *Return) Process(numFrames int) {
	out := r.Out()
	audio := r.Audio(numFrames)
	audio.Clear()
	out.Midi.Clear()

	in := r.input.Out()
	audio.Add(in.Audio)
	out.Midi.Merge(in.Midi)

	for i, s := range r.senders {
		su := s.Out()
		if rg := r.comps[i]; rg != nil {
			rg.Write(su.Audio, numFrames)
			rg.ReadAdding(audio)
		} else {
			audio.Add(su.Audio)
		}
		if md := r.midis[i]; md != nil {
			md.push(su.Midi)
			md.pop(out.Midi, numFrames)
		} else {
			out.Midi.Merge(su.Midi)
		}
	}
	out.Midi.Sort()
}
