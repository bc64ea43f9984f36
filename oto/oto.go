// Package oto plays prepared graphs through an ebitengine/oto player.
// The graph is exposed to the player as an io.Reader of interleaved
// 16-bit little-endian PCM. Unlike the portaudio sink it needs no cgo
// on macOS and Windows; on Linux the oto ALSA driver uses cgo.
package oto

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/dudk/audiograph/block"
	"github.com/dudk/audiograph/graph"
)

// Reader pulls blocks from a prepared graph and serves them as
// interleaved 16-bit little-endian PCM.
type Reader struct {
	g         *graph.Graph
	buf       block.Buffer
	blockSize int
	channels  int
	remaining int64

	bytes []byte
	head  int
	tail  int
}

// NewReader returns a reader streaming numFrames frames of the graph
// output in blocks of blockSize.
func NewReader(g *graph.Graph, blockSize int, numFrames int64) *Reader {
	cfg := g.Config()
	props := g.Properties()
	if blockSize > cfg.MaxBlockSize {
		blockSize = cfg.MaxBlockSize
	}
	return &Reader{
		g:         g,
		buf:       block.New(props.NumChannels, blockSize),
		blockSize: blockSize,
		channels:  props.NumChannels,
		remaining: numFrames,
		bytes:     make([]byte, blockSize*props.NumChannels*2),
	}
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	if r.head == r.tail {
		if r.remaining <= 0 {
			return 0, io.EOF
		}
		n := r.blockSize
		if int64(n) > r.remaining {
			n = int(r.remaining)
		}
		b := r.buf.Slice(0, n)
		r.g.Process(b, nil, n)
		r.head, r.tail = 0, encode16BitLE(b, r.bytes)
		r.remaining -= int64(n)
	}
	n := copy(p, r.bytes[r.head:r.tail])
	r.head += n
	return n, nil
}

// encode16BitLE interleaves the block into dst as 16-bit little-endian
// samples and returns the number of bytes written.
func encode16BitLE(b block.Buffer, dst []byte) int {
	pos := 0
	for i := 0; i < b.NumFrames(); i++ {
		for c := 0; c < b.NumChannels(); c++ {
			v := b[c][i]
			if v > 1 {
				v = 1
			} else if v < -1 {
				v = -1
			}
			s := int16(v * 32767)
			dst[pos] = byte(s)
			dst[pos+1] = byte(s >> 8)
			pos += 2
		}
	}
	return pos
}

// ErrNoAudio is returned when the graph root produces no audio.
var ErrNoAudio = errors.New("graph produces no audio")

// Play streams numFrames frames of the prepared graph to the default
// audio device and blocks until playback is done.
func Play(g *graph.Graph, blockSize int, numFrames int64) error {
	cfg := g.Config()
	props := g.Properties()
	if !props.HasAudio || props.NumChannels == 0 {
		return ErrNoAudio
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: props.NumChannels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(NewReader(g, blockSize, numFrames))
	player.Play()
	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
	return player.Close()
}
