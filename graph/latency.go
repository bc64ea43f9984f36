package graph

import (
	"github.com/dudk/audiograph"
	"github.com/dudk/audiograph/midi"
	"github.com/dudk/audiograph/ring"
)

// Latency delays its input by a fixed number of samples. Audio goes
// through a silence-primed ring, MIDI events are re-stamped by the same
// amount.
type Latency struct {
	audiograph.UID
	audiograph.Slot

	input audiograph.Node
	delay int
	// installed marks compensators inserted by latency balancing, as
	// opposed to deliberate delays built by the graph owner.
	installed bool

	ring *ring.Ring
	midi midiDelay
}

// NewLatency returns a node which delays input by delay samples. Zero
// delay is legal and acts as a copy.
func NewLatency(input audiograph.Node, delay int) *Latency {
	return &Latency{UID: audiograph.NewUID(), input: input, delay: delay}
}

// newCompensator returns a latency node installed by balancing.
func newCompensator(input audiograph.Node, delay int) *Latency {
	l := NewLatency(input, delay)
	l.installed = true
	return l
}

// Properties returns the input properties with the configured delay
// added on top of the upstream latency.
func (l *Latency) Properties() audiograph.Properties {
	p := l.input.Properties()
	p.Latency += l.delay
	return p
}

// Upstreams returns the direct upstream.
func (l *Latency) Upstreams() []audiograph.Node {
	return []audiograph.Node{l.input}
}

// Ready reports whether the input has processed the current block.
func (l *Latency) Ready() bool {
	return l.input.Processed()
}

// Prepare sizes the ring to delay + MaxBlockSize + 1 frames and primes
// it with delay frames of silence.
func (l *Latency) Prepare(cfg audiograph.Config) error {
	p := l.Properties()
	l.Allocate(p.NumChannels, cfg)
	if p.NumChannels > 0 {
		l.ring = ring.New(p.NumChannels, l.delay+cfg.MaxBlockSize+1)
		l.ring.WriteSilence(l.delay)
	}
	l.midi.reset(l.delay)
	return nil
}

// Process writes one block: input frames enter the ring, delayed
// frames leave it into the output slot.
func (l *Latency) Process(numFrames int) {
	in := l.input.Out()
	if l.ring != nil {
		l.ring.Write(in.Audio, numFrames)
		audio := l.Audio(numFrames)
		audio.Clear()
		l.ring.ReadAdding(audio)
	}

	out := l.Out()
	out.Midi.Clear()
	l.midi.push(in.Midi)
	l.midi.pop(out.Midi, numFrames)
}

// midiDelay shifts MIDI events by a fixed number of samples. Events are
// held with their absolute sample time and released in the block that
// contains it.
type midiDelay struct {
	delay   int
	pending []timedEvent
	pos     int64
}

type timedEvent struct {
	at int64
	ev midi.Event
}

func (d *midiDelay) reset(delay int) {
	d.delay = delay
	d.pending = make([]timedEvent, 0, 256)
	d.pos = 0
}

// push enqueues the events of the current input block.
func (d *midiDelay) push(src *midi.Buffer) {
	for _, ev := range src.Events() {
		d.pending = append(d.pending, timedEvent{
			at: d.pos + int64(ev.Offset) + int64(d.delay),
			ev: ev,
		})
	}
}

// pop emits every pending event falling into the current block and
// advances the block position.
func (d *midiDelay) pop(dst *midi.Buffer, numFrames int) {
	end := d.pos + int64(numFrames)
	kept := d.pending[:0]
	for _, te := range d.pending {
		if te.at < end {
			dst.Append(midi.Event{Offset: int(te.at - d.pos), Message: te.ev.Message})
		} else {
			kept = append(kept, te)
		}
	}
	d.pending = kept
	d.pos = end
}
