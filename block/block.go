// Package block provides non-interleaved float32 audio blocks and the
// arithmetic the graph runtime performs on them.
package block

import (
	"github.com/chewxy/math32"
	"github.com/viterin/vek/vek32"
)

// Buffer is a non-interleaved float32 audio block. First dimension is
// for channels, all channels have the same number of frames. A Buffer
// obtained with Slice is a borrowing view: it shares sample memory
// with its origin.
type Buffer [][]float32

// New returns a zeroed buffer of numChannels x numFrames.
func New(numChannels, numFrames int) Buffer {
	b := make(Buffer, numChannels)
	for i := range b {
		b[i] = make([]float32, numFrames)
	}
	return b
}

// NumChannels returns number of channels in the buffer.
func (b Buffer) NumChannels() int {
	return len(b)
}

// NumFrames returns number of frames per channel.
func (b Buffer) NumFrames() int {
	if len(b) == 0 || b[0] == nil {
		return 0
	}
	return len(b[0])
}

// Slice returns a view over frames [lo, hi) of all channels. The view
// shares memory with b.
func (b Buffer) Slice(lo, hi int) Buffer {
	s := make(Buffer, len(b))
	for i := range b {
		s[i] = b[i][lo:hi]
	}
	return s
}

// Clear zeroes all frames.
func (b Buffer) Clear() {
	for _, c := range b {
		for i := range c {
			c[i] = 0
		}
	}
}

// Copy copies src into b. Channel counts must match, the shorter frame
// run wins.
func (b Buffer) Copy(src Buffer) {
	for i := range b {
		if i >= len(src) {
			return
		}
		copy(b[i], src[i])
	}
}

// Add adds src into b. Channels of src which do not exist in b are
// clipped, channels of b without a counterpart in src are left as is.
func (b Buffer) Add(src Buffer) {
	n := len(b)
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		d, s := b[i], src[i]
		if len(s) < len(d) {
			d = d[:len(s)]
		}
		if len(d) == 0 {
			continue
		}
		vek32.Add_Inplace(d, s[:len(d)])
	}
}

// Gain multiplies all samples by k.
func (b Buffer) Gain(k float32) {
	for _, c := range b {
		if len(c) == 0 {
			continue
		}
		vek32.MulNumber_Inplace(c, k)
	}
}

// Magnitude returns the maximum absolute sample value of the channel.
func (b Buffer) Magnitude(channel int) float32 {
	var m float32
	for _, v := range b[channel] {
		if a := math32.Abs(v); a > m {
			m = a
		}
	}
	return m
}

// RMS returns the root mean square of the channel.
func (b Buffer) RMS(channel int) float32 {
	c := b[channel]
	if len(c) == 0 {
		return 0
	}
	return math32.Sqrt(vek32.Dot(c, c) / float32(len(c)))
}
