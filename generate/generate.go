// Package generate provides the signal and MIDI sources of a graph:
// sine oscillators, silence and timed MIDI sequences.
package generate

import (
	"cmp"
	"math"
	"slices"

	"github.com/dudk/audiograph"
	"github.com/dudk/audiograph/midi"
)

// Sin is a fixed-frequency sine source. All channels carry the same
// signal with amplitude 1.
type Sin struct {
	audiograph.Slot

	freq        float64
	numChannels int

	sampleRate int
	phase      float64
}

// NewSin returns a sine source of the given frequency.
func NewSin(freq float64, numChannels int) *Sin {
	return &Sin{freq: freq, numChannels: numChannels}
}

// Properties declares audio with the configured channel count and no
// latency.
func (s *Sin) Properties() audiograph.Properties {
	return audiograph.Properties{NumChannels: s.numChannels, HasAudio: true}
}

// Upstreams returns nil, the source is a leaf.
func (s *Sin) Upstreams() []audiograph.Node {
	return nil
}

// Ready always reports true.
func (s *Sin) Ready() bool {
	return true
}

// Prepare allocates the output slot and resets the oscillator phase.
func (s *Sin) Prepare(cfg audiograph.Config) error {
	s.Allocate(s.numChannels, cfg)
	s.sampleRate = cfg.SampleRate
	s.phase = 0
	return nil
}

// Process writes one block of the oscillation, continuing the phase of
// the previous block.
func (s *Sin) Process(numFrames int) {
	audio := s.Audio(numFrames)
	step := 2 * math.Pi * s.freq / float64(s.sampleRate)
	phase := s.phase
	for i := 0; i < numFrames; i++ {
		v := float32(math.Sin(phase))
		for c := range audio {
			audio[c][i] = v
		}
		phase += step
		if phase >= 2*math.Pi {
			phase -= 2 * math.Pi
		}
	}
	s.phase = phase
	s.Out().Midi.Clear()
}

// Silence is an audio source producing zero frames.
type Silence struct {
	audiograph.Slot
	numChannels int
}

// NewSilence returns a silent source with the given channel count.
func NewSilence(numChannels int) *Silence {
	return &Silence{numChannels: numChannels}
}

// Properties declares audio with the configured channel count.
func (s *Silence) Properties() audiograph.Properties {
	return audiograph.Properties{NumChannels: s.numChannels, HasAudio: true}
}

// Upstreams returns nil, the source is a leaf.
func (s *Silence) Upstreams() []audiograph.Node {
	return nil
}

// Ready always reports true.
func (s *Silence) Ready() bool {
	return true
}

// Prepare allocates the output slot.
func (s *Silence) Prepare(cfg audiograph.Config) error {
	s.Allocate(s.numChannels, cfg)
	return nil
}

// Process writes zero frames.
func (s *Silence) Process(numFrames int) {
	s.Audio(numFrames).Clear()
	s.Out().Midi.Clear()
}

// Sequence is a MIDI source replaying a fixed list of timed events.
type Sequence struct {
	audiograph.Slot

	events []TimedEvent
	next   int
	pos    int64
}

// TimedEvent is a raw MIDI message at an absolute sample position.
type TimedEvent struct {
	At      int64
	Message midi.Message
}

// NewSequence returns a MIDI source replaying events. The slice is
// copied and sorted by position.
func NewSequence(events []TimedEvent) *Sequence {
	evs := append([]TimedEvent{}, events...)
	slices.SortStableFunc(evs, func(x, y TimedEvent) int { return cmp.Compare(x.At, y.At) })
	return &Sequence{events: evs}
}

// Properties declares MIDI only.
func (s *Sequence) Properties() audiograph.Properties {
	return audiograph.Properties{HasMidi: true}
}

// Upstreams returns nil, the source is a leaf.
func (s *Sequence) Upstreams() []audiograph.Node {
	return nil
}

// Ready always reports true.
func (s *Sequence) Ready() bool {
	return true
}

// Prepare allocates the output slot and rewinds the sequence.
func (s *Sequence) Prepare(cfg audiograph.Config) error {
	s.Allocate(0, cfg)
	s.next = 0
	s.pos = 0
	return nil
}

// Process emits the events falling into the current block with their
// in-block offsets.
func (s *Sequence) Process(numFrames int) {
	out := s.Out()
	out.Midi.Clear()
	end := s.pos + int64(numFrames)
	for s.next < len(s.events) && s.events[s.next].At < end {
		e := s.events[s.next]
		if e.At >= s.pos {
			out.Midi.Append(midi.Event{Offset: int(e.At - s.pos), Message: e.Message})
		}
		s.next++
	}
	s.pos = end
}
