package generate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/dudk/audiograph"
	"github.com/dudk/audiograph/block"
	"github.com/dudk/audiograph/generate"
)

const (
	sampleRate = 44100
	blockSize  = 512
)

var cfg = audiograph.Config{SampleRate: sampleRate, MaxBlockSize: blockSize}

// run drives a source node for numFrames frames and returns its
// concatenated audio output.
func run(t *testing.T, n audiograph.Node, numFrames int) block.Buffer {
	t.Helper()
	assert.NoError(t, n.Prepare(cfg))
	out := block.New(n.Properties().NumChannels, numFrames)
	for pos := 0; pos < numFrames; {
		frames := blockSize
		if pos+frames > numFrames {
			frames = numFrames - pos
		}
		n.Process(frames)
		out.Slice(pos, pos+frames).Copy(n.Out().Audio)
		pos += frames
	}
	return out
}

func TestSin(t *testing.T) {
	sin := generate.NewSin(220, 2)
	props := sin.Properties()
	assert.True(t, props.HasAudio)
	assert.False(t, props.HasMidi)
	assert.Equal(t, 2, props.NumChannels)
	assert.Equal(t, 0, props.Latency)

	out := run(t, sin, 2*sampleRate)
	for c := 0; c < 2; c++ {
		assert.InDelta(t, 1.0, out.Magnitude(c), 1e-3)
		assert.InDelta(t, 0.707, out.RMS(c), 1e-3)
	}
}

func TestSinPhaseIsContinuous(t *testing.T) {
	// the period at sr/100 Hz is 100 frames; 700 frames take two
	// blocks, so frames past the block boundary at 512 repeat the
	// first period only if the phase carries over
	sin := generate.NewSin(sampleRate/100, 1)
	out := run(t, sin, 700)
	assert.InDelta(t, out[0][0], out[0][600], 1e-6)
	assert.InDelta(t, out[0][1], out[0][601], 1e-6)
}

func TestSilence(t *testing.T) {
	out := run(t, generate.NewSilence(1), sampleRate)
	assert.InDelta(t, 0, out.Magnitude(0), 1e-9)
	assert.InDelta(t, 0, out.RMS(0), 1e-9)
}

func TestSequence(t *testing.T) {
	events := []generate.TimedEvent{
		{At: 5, Message: gomidi.NoteOn(0, 60, 100)},
		{At: 511, Message: gomidi.NoteOff(0, 60)},
		{At: 512, Message: gomidi.NoteOn(0, 64, 90)},
		{At: 1023, Message: gomidi.NoteOn(0, 67, 80)},
	}
	seq := generate.NewSequence(events)
	props := seq.Properties()
	assert.True(t, props.HasMidi)
	assert.False(t, props.HasAudio)

	assert.NoError(t, seq.Prepare(cfg))
	var got []generate.TimedEvent
	for pos := int64(0); pos < 2048; pos += blockSize {
		seq.Process(blockSize)
		for _, e := range seq.Out().Midi.Events() {
			got = append(got, generate.TimedEvent{At: pos + int64(e.Offset), Message: e.Message})
		}
	}

	assert.Equal(t, len(events), len(got))
	for i := range events {
		assert.Equal(t, events[i].At, got[i].At)
		assert.Equal(t, events[i].Message, got[i].Message)
	}
}

func TestSequenceOrdersEvents(t *testing.T) {
	seq := generate.NewSequence([]generate.TimedEvent{
		{At: 100, Message: gomidi.NoteOn(0, 64, 90)},
		{At: 10, Message: gomidi.NoteOn(0, 60, 100)},
	})
	assert.NoError(t, seq.Prepare(cfg))
	seq.Process(blockSize)
	events := seq.Out().Midi.Events()
	assert.Equal(t, 2, len(events))
	assert.Equal(t, 10, events[0].Offset)
	assert.Equal(t, 100, events[1].Offset)
}
