// Package portaudio plays prepared graphs through the default
// portaudio device.
package portaudio

import (
	"github.com/gordonklaus/portaudio"

	"github.com/dudk/audiograph"
	"github.com/dudk/audiograph/block"
	"github.com/dudk/audiograph/graph"
)

// Sink represents portaudio sink which allows to play graph output
// using default device.
type Sink struct {
	audiograph.UID
	buf    []float32
	stream *portaudio.Stream
}

// NewSink returns new initialized sink which allows to play a graph.
func NewSink() *Sink {
	return &Sink{UID: audiograph.NewUID()}
}

// Play pulls numFrames frames from the prepared graph in blocks of
// blockSize and writes them to the default portaudio stream. It also
// initializes the portaudio api and terminates it when done.
func (s *Sink) Play(g *graph.Graph, blockSize int, numFrames int64) error {
	cfg := g.Config()
	props := g.Properties()
	if blockSize > cfg.MaxBlockSize {
		blockSize = cfg.MaxBlockSize
	}
	if err := portaudio.Initialize(); err != nil {
		return err
	}
	s.buf = make([]float32, blockSize*props.NumChannels)
	stream, err := portaudio.OpenDefaultStream(0, props.NumChannels, float64(cfg.SampleRate), blockSize, &s.buf)
	if err != nil {
		return err
	}
	s.stream = stream
	if err = stream.Start(); err != nil {
		return err
	}

	buf := block.New(props.NumChannels, blockSize)
	for numFrames > 0 {
		n := blockSize
		if int64(n) > numFrames {
			n = int(numFrames)
		}
		b := buf.Slice(0, n)
		g.Process(b, nil, n)
		for i := range s.buf {
			s.buf[i] = 0
		}
		for i := 0; i < n; i++ {
			for c := 0; c < props.NumChannels; c++ {
				s.buf[i*props.NumChannels+c] = b[c][i]
			}
		}
		if err = stream.Write(); err != nil {
			break
		}
		numFrames -= int64(n)
	}

	if stopErr := s.flush(); err == nil {
		err = stopErr
	}
	return err
}

// flush terminates portaudio structures.
func (s *Sink) flush() error {
	if err := s.stream.Stop(); err != nil {
		return err
	}
	if err := s.stream.Close(); err != nil {
		return err
	}
	return portaudio.Terminate()
}
