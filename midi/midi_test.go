package midi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/dudk/audiograph/midi"
)

func TestBuffer(t *testing.T) {
	b := midi.NewBuffer(8)
	assert.Equal(t, 0, b.Len())

	b.Append(midi.Event{Offset: 3, Message: gomidi.NoteOn(0, 60, 100)})
	b.Append(midi.Event{Offset: 5, Message: gomidi.NoteOff(0, 60)})
	assert.Equal(t, 2, b.Len())

	b.Clear()
	assert.Equal(t, 0, b.Len())
}

func TestMergeSort(t *testing.T) {
	a := midi.NewBuffer(8)
	a.Append(midi.Event{Offset: 0, Message: gomidi.NoteOn(0, 60, 100)})
	a.Append(midi.Event{Offset: 7, Message: gomidi.NoteOff(0, 60)})

	b := midi.NewBuffer(8)
	b.Append(midi.Event{Offset: 3, Message: gomidi.NoteOn(1, 64, 90)})

	a.Merge(b)
	a.Sort()

	offsets := make([]int, 0, a.Len())
	for _, e := range a.Events() {
		offsets = append(offsets, e.Offset)
	}
	assert.Equal(t, []int{0, 3, 7}, offsets)
}

func TestSortIsStable(t *testing.T) {
	b := midi.NewBuffer(8)
	on := gomidi.NoteOn(0, 60, 100)
	off := gomidi.NoteOff(0, 60)
	b.Append(midi.Event{Offset: 2, Message: on})
	b.Append(midi.Event{Offset: 2, Message: off})
	b.Sort()

	events := b.Events()
	assert.Equal(t, midi.Message(on), events[0].Message)
	assert.Equal(t, midi.Message(off), events[1].Message)
}
