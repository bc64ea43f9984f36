// Package wav renders prepared graphs to wav files.
package wav

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/dudk/audiograph/block"
	"github.com/dudk/audiograph/graph"
)

const wavFormatPCM = 1

// Sink renders graph output to a wav file.
type Sink struct {
	path     string
	bitDepth int
}

// ErrUnsupportedBitDepth is returned when unsupported bit depth is used.
var ErrUnsupportedBitDepth = errors.New("only 16 and 32 bit depth is supported")

// ErrNoAudio is returned when the graph root produces no audio.
var ErrNoAudio = errors.New("graph produces no audio")

// NewSink creates a new wav sink writing to path with the given bit
// depth.
func NewSink(path string, bitDepth int) *Sink {
	return &Sink{path: path, bitDepth: bitDepth}
}

// Render pulls numFrames frames from the prepared graph in blocks of
// blockSize and writes them to the file.
func (s *Sink) Render(g *graph.Graph, blockSize int, numFrames int64) error {
	if s.bitDepth != 16 && s.bitDepth != 32 {
		return ErrUnsupportedBitDepth
	}
	cfg := g.Config()
	props := g.Properties()
	if !props.HasAudio || props.NumChannels == 0 {
		return ErrNoAudio
	}
	if blockSize > cfg.MaxBlockSize {
		blockSize = cfg.MaxBlockSize
	}

	file, err := os.Create(s.path)
	if err != nil {
		return err
	}
	encoder := wav.NewEncoder(file, cfg.SampleRate, s.bitDepth, props.NumChannels, wavFormatPCM)

	buf := block.New(props.NumChannels, blockSize)
	ints := make([]int, blockSize*props.NumChannels)
	multiplier := float32(int(1)<<(s.bitDepth-1) - 1)
	ib := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: props.NumChannels,
			SampleRate:  cfg.SampleRate,
		},
		SourceBitDepth: s.bitDepth,
	}

	for numFrames > 0 {
		n := blockSize
		if int64(n) > numFrames {
			n = int(numFrames)
		}
		b := buf.Slice(0, n)
		g.Process(b, nil, n)
		for i := 0; i < n; i++ {
			for c := 0; c < props.NumChannels; c++ {
				v := b[c][i]
				if v > 1 {
					v = 1
				} else if v < -1 {
					v = -1
				}
				ints[i*props.NumChannels+c] = int(v * multiplier)
			}
		}
		ib.Data = ints[:n*props.NumChannels]
		if err := encoder.Write(ib); err != nil {
			file.Close()
			return fmt.Errorf("failed to write block: %w", err)
		}
		numFrames -= int64(n)
	}

	if err := encoder.Close(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
