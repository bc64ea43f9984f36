package audiograph

import (
	"github.com/rs/xid"

	"github.com/dudk/audiograph/block"
	"github.com/dudk/audiograph/midi"
)

// midiCapacity is the number of events an output slot can hold per block
// without growing.
const midiCapacity = 256

// Properties describe the output of a node. They are derived from the
// node's direct upstreams and are final once the graph is prepared.
type Properties struct {
	NumChannels int
	HasAudio    bool
	HasMidi     bool
	// Latency is the sample delay between an ideal zero-latency
	// equivalent of the node and what it actually emits.
	Latency int
}

// Config carries the preparation parameters shared by all nodes of a
// graph. Block sizes passed to Process may vary per call but never
// exceed MaxBlockSize.
type Config struct {
	SampleRate   int
	MaxBlockSize int
}

// Output is the reusable per-node output area. It is allocated during
// preparation and written by exactly one node; downstreams borrow
// read-only views of it for the duration of one block.
type Output struct {
	Audio block.Buffer
	Midi  *midi.Buffer
}

// Node is a single audio/MIDI processing unit of a graph.
//
// Properties, Upstreams and Ready are used by the graph during
// preparation and scheduling. Process writes exactly numFrames frames
// of audio and the block's MIDI into the node's own output slot,
// clearing any residue of the previous block. It must not allocate and
// must not read from downstream nodes.
//
// Out, Processed, BeginBlock, MarkProcessed and Release are provided by
// an embedded Slot.
type Node interface {
	Properties() Properties
	Upstreams() []Node
	Ready() bool
	Prepare(Config) error
	Process(numFrames int)

	Out() *Output
	Processed() bool
	BeginBlock()
	MarkProcessed()
	Release()
}

// Slot holds the output area of a node and its per-block processed
// flag. Node implementations embed it.
type Slot struct {
	out       Output
	view      block.Buffer // reused window over out.Audio
	processed bool
}

// Allocate sizes the slot for numChannels x MaxBlockSize frames of
// audio plus a MIDI scratch buffer. Called from Node.Prepare.
func (s *Slot) Allocate(numChannels int, cfg Config) {
	s.out.Audio = block.New(numChannels, cfg.MaxBlockSize)
	s.view = make(block.Buffer, numChannels)
	s.out.Midi = midi.NewBuffer(midiCapacity)
}

// Audio returns a view over the first numFrames frames of the slot
// audio. The view is reused between calls, so it must not outlive the
// current block.
func (s *Slot) Audio(numFrames int) block.Buffer {
	for i := range s.out.Audio {
		s.view[i] = s.out.Audio[i][:numFrames]
	}
	return s.view
}

// Out returns the slot output. Readers must not mutate it.
func (s *Slot) Out() *Output {
	return &s.out
}

// Processed reports whether the node has processed the current block.
func (s *Slot) Processed() bool {
	return s.processed
}

// BeginBlock clears the processed flag. Called by the graph at the
// start of every block.
func (s *Slot) BeginBlock() {
	s.processed = false
}

// MarkProcessed is called by the graph after Process returns.
func (s *Slot) MarkProcessed() {
	s.processed = true
}

// Release drops the slot buffers.
func (s *Slot) Release() {
	s.out = Output{}
	s.view = nil
}

// UID is a unique identifier of a graph component.
type UID struct {
	value string
}

// NewUID returns a new unique id value.
func NewUID() UID {
	return UID{value: xid.New().String()}
}

// ID returns id value.
func (u UID) ID() string {
	return u.value
}
