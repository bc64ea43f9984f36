// Command demo builds a small send/return graph and either renders it
// to a wav file or plays it back.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dudk/audiograph"
	"github.com/dudk/audiograph/generate"
	"github.com/dudk/audiograph/graph"
	"github.com/dudk/audiograph/oto"
	"github.com/dudk/audiograph/portaudio"
	"github.com/dudk/audiograph/transform"
	"github.com/dudk/audiograph/wav"
)

func main() {
	var (
		out        = flag.String("wav", "", "render to wav file instead of playing")
		driver     = flag.String("driver", "oto", "playback driver: oto or portaudio")
		seconds    = flag.Float64("seconds", 5, "output duration")
		sampleRate = flag.Int("rate", 44100, "sample rate")
		blockSize  = flag.Int("block", 512, "block size")
	)
	flag.Parse()

	g, err := buildGraph()
	if err == nil {
		err = g.Prepare(audiograph.Config{SampleRate: *sampleRate, MaxBlockSize: *blockSize})
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build graph: %v\n", err)
		os.Exit(1)
	}
	defer g.Release()

	numFrames := int64(*seconds * float64(*sampleRate))
	switch {
	case *out != "":
		err = wav.NewSink(*out, 16).Render(g, *blockSize, numFrames)
	case *driver == "portaudio":
		err = portaudio.NewSink().Play(g, *blockSize, numFrames)
	default:
		err = oto.Play(g, *blockSize, numFrames)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "playback failed: %v\n", err)
		os.Exit(1)
	}
}

// buildGraph wires two tracks: the first sends a delayed tone to bus 1
// and mutes itself, the second mixes the bus into its own tone. The
// return compensates the send latency, so both tones stay aligned.
func buildGraph() (*graph.Graph, error) {
	var track1 audiograph.Node = generate.NewSin(220, 2)
	track1 = graph.NewLatency(track1, 2048)
	track1 = transform.Gain(track1, 0.5)
	track1 = graph.NewSend(track1, 1)
	track1 = transform.Gain(track1, 0)

	var track2 audiograph.Node = generate.NewSin(330, 2)
	track2 = transform.Gain(track2, 0.5)
	track2 = graph.NewReturn(track2, 1)

	return graph.New(graph.NewSum(track1, track2), graph.WithName("demo"))
}
