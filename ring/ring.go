// Package ring provides a fixed-capacity multi-channel FIFO of audio
// frames. It backs the delay stage of latency compensation: frames go
// in with Write, come out with ReadAdding, and a silence prime sets the
// constant distance between the two.
package ring

import (
	"github.com/viterin/vek/vek32"

	"github.com/dudk/audiograph/block"
)

// Ring is a multi-channel sample FIFO. All channels share the same
// read and write positions.
type Ring struct {
	data     [][]float32
	capacity int
	read     int
	write    int
	ready    int
}

// New returns a ring of numChannels channels holding up to capacity
// frames.
func New(numChannels, capacity int) *Ring {
	data := make([][]float32, numChannels)
	for i := range data {
		data[i] = make([]float32, capacity)
	}
	return &Ring{data: data, capacity: capacity}
}

// NumChannels returns number of channels in the ring.
func (r *Ring) NumChannels() int {
	return len(r.data)
}

// Ready returns the number of frames available for reading.
func (r *Ring) Ready() int {
	return r.ready
}

// WriteSilence appends numFrames zero frames.
func (r *Ring) WriteSilence(numFrames int) {
	if numFrames > r.capacity-r.ready {
		numFrames = r.capacity - r.ready
	}
	n1 := numFrames
	if n1 > r.capacity-r.write {
		n1 = r.capacity - r.write
	}
	for _, c := range r.data {
		zero(c[r.write : r.write+n1])
		zero(c[:numFrames-n1])
	}
	r.advanceWrite(numFrames)
}

// Write appends the first numFrames frames of src. Channel counts of
// src and ring must match.
func (r *Ring) Write(src block.Buffer, numFrames int) {
	if numFrames > r.capacity-r.ready {
		numFrames = r.capacity - r.ready
	}
	n1 := numFrames
	if n1 > r.capacity-r.write {
		n1 = r.capacity - r.write
	}
	for i, c := range r.data {
		s := src[i]
		copy(c[r.write:r.write+n1], s[:n1])
		copy(c[:numFrames-n1], s[n1:numFrames])
	}
	r.advanceWrite(numFrames)
}

// ReadAdding consumes dst.NumFrames() frames from the head of the ring
// and adds them into dst.
func (r *Ring) ReadAdding(dst block.Buffer) {
	numFrames := dst.NumFrames()
	if numFrames > r.ready {
		// underrun, the missing tail stays silent
		numFrames = r.ready
	}
	n1 := numFrames
	if n1 > r.capacity-r.read {
		n1 = r.capacity - r.read
	}
	for i, c := range r.data {
		d := dst[i]
		if n1 > 0 {
			vek32.Add_Inplace(d[:n1], c[r.read:r.read+n1])
		}
		if numFrames > n1 {
			vek32.Add_Inplace(d[n1:numFrames], c[:numFrames-n1])
		}
	}
	r.read = (r.read + numFrames) % r.capacity
	r.ready -= numFrames
}

func (r *Ring) advanceWrite(numFrames int) {
	r.write = (r.write + numFrames) % r.capacity
	r.ready += numFrames
}

func zero(s []float32) {
	for i := range s {
		s[i] = 0
	}
}
