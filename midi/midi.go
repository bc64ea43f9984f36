// Package midi provides block-aligned MIDI event buffers for the graph
// runtime. Events carry raw gomidi messages stamped with a sample
// offset inside the current block.
package midi

import (
	"cmp"
	"slices"

	"gitlab.com/gomidi/midi/v2"
)

// Message is a raw MIDI message, an alias of the gomidi message type.
type Message = midi.Message

// Event is a raw MIDI message with its sample offset within a block.
// Offset is in [0, numFrames) of the block the event belongs to.
type Event struct {
	Offset  int
	Message Message
}

// Buffer accumulates the events of one block in non-decreasing offset
// order. It is allocated once and reused every block.
type Buffer struct {
	events []Event
}

// NewBuffer returns a buffer with room for capacity events.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{events: make([]Event, 0, capacity)}
}

// Len returns the number of events in the buffer.
func (b *Buffer) Len() int {
	return len(b.events)
}

// Clear drops all events keeping the storage.
func (b *Buffer) Clear() {
	b.events = b.events[:0]
}

// Append adds a single event. The caller is responsible for keeping
// offsets non-decreasing, or for calling Sort before handing the
// buffer downstream.
func (b *Buffer) Append(e Event) {
	b.events = append(b.events, e)
}

// Merge appends all events of src.
func (b *Buffer) Merge(src *Buffer) {
	b.events = append(b.events, src.events...)
}

// Sort restores non-decreasing offset order. The sort is stable, so
// events sharing an offset keep their relative order.
func (b *Buffer) Sort() {
	slices.SortStableFunc(b.events, func(x, y Event) int {
		return cmp.Compare(x.Offset, y.Offset)
	})
}

// Events returns the events of the current block. The returned slice
// is only valid until the buffer is cleared.
func (b *Buffer) Events() []Event {
	return b.events
}
