// Package graph executes audio node graphs block by block, with
// automatic sample-accurate latency compensation at summing junctions
// and across send/return buses.
package graph

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dudk/audiograph"
	"github.com/dudk/audiograph/block"
	"github.com/dudk/audiograph/log"
	"github.com/dudk/audiograph/metric"
	"github.com/dudk/audiograph/midi"
)

// Graph is a prepared node graph with its bus registry and schedule.
// The graph is immutable between Prepare and Release: processing
// mutates only node output slots and delay rings.
type Graph struct {
	audiograph.UID
	name   string
	logger *logrus.Logger

	root audiograph.Node
	cfg  audiograph.Config

	// nodes in topological order, leaves first. The preferred driving
	// order of the scheduler.
	nodes []audiograph.Node
	reg   *registry

	meter   bool
	m       *metric.Meter
	measure metric.MeasureFunc

	errc     chan error
	prepared bool
}

// Option provides a way to set functional parameters to the graph.
type Option func(*Graph) error

// New creates a graph around the root node and applies provided
// options. The graph still needs to be prepared before processing.
func New(root audiograph.Node, options ...Option) (*Graph, error) {
	g := &Graph{
		UID:    audiograph.NewUID(),
		logger: log.GetLogger(),
		root:   root,
		errc:   make(chan error, 8),
	}
	for _, option := range options {
		if err := option(g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// WithLogger sets the logger used at preparation time. The processing
// path never logs.
func WithLogger(l *logrus.Logger) Option {
	return func(g *Graph) error {
		g.logger = l
		return nil
	}
}

// WithName sets a name to the graph, used in log fields.
func WithName(n string) Option {
	return func(g *Graph) error {
		g.name = n
		return nil
	}
}

// WithMetric publishes expvar metrics for this graph, keyed by its id:
// throughput, call intervals, latched faults and the compensation
// installed at preparation.
func WithMetric() Option {
	return func(g *Graph) error {
		g.meter = true
		return nil
	}
}

// Prepare walks the graph, checks it for cycles, derives node
// properties, installs compensating delays and allocates every buffer
// processing will use. It must be called once before the first
// Process.
func (g *Graph) Prepare(cfg audiograph.Config) error {
	if cfg.SampleRate <= 0 || cfg.MaxBlockSize <= 0 {
		return fmt.Errorf("%w: sample rate %d, max block size %d", ErrConfig, cfg.SampleRate, cfg.MaxBlockSize)
	}
	g.cfg = cfg

	// enumerate reachable nodes and resolve the buses
	nodes := collect(g.root)
	g.reg = newRegistry(nodes)
	g.reg.bind(g.logger)

	// topological order over direct and bus edges
	order, err := g.sort(nodes)
	if err != nil {
		return err
	}

	// install compensating delays, junction by junction, upstream
	// junctions first
	for _, n := range order {
		if b, ok := n.(interface{ balance() }); ok {
			b.balance()
		}
	}

	// balancing inserted nodes, redo the walk and the sort
	nodes = collect(g.root)
	if order, err = g.sort(nodes); err != nil {
		return err
	}

	for _, n := range order {
		p := n.Properties()
		if p.HasAudio && p.NumChannels == 0 {
			return fmt.Errorf("%w: %+v", ErrZeroChannels, p)
		}
		if err := n.Prepare(cfg); err != nil {
			return err
		}
		log.Node(g.logger, n).Debug("node prepared")
	}

	g.nodes = order
	g.prepared = true
	if g.meter {
		if g.m == nil {
			g.m = metric.NewMeter(g.ID(), cfg.SampleRate)
		}
		stages, frames := compensationStats(order)
		g.m.SetGraph(len(order), stages, frames, g.Latency())
		g.measure = g.m.Measure()
	}
	log.Graph(g.logger, g).WithFields(logrus.Fields{
		"nodes":   len(order),
		"latency": g.Latency(),
	}).Debug("graph prepared")
	return nil
}

// Process produces one block of numFrames frames into audio and
// events, if not nil. The frame count may vary between calls but must
// not exceed the prepared MaxBlockSize. It runs on the driver's
// realtime thread: no allocation, no locks, no logging.
func (g *Graph) Process(audio block.Buffer, events *midi.Buffer, numFrames int) {
	if !g.prepared || numFrames <= 0 || numFrames > g.cfg.MaxBlockSize ||
		(audio.NumChannels() > 0 && audio.NumFrames() != numFrames) {
		g.latch(ErrConfig)
		audio.Clear()
		if events != nil {
			events.Clear()
		}
		return
	}

	for _, n := range g.nodes {
		n.BeginBlock()
	}

	// The topological order is the preferred driving order. Readiness
	// is still checked per node so independent branches could be
	// handed to parallel workers without changing the contract.
	for !g.root.Processed() {
		progressed := false
		for _, n := range g.nodes {
			if n.Processed() || !n.Ready() {
				continue
			}
			n.Process(numFrames)
			n.MarkProcessed()
			progressed = true
		}
		if !progressed {
			g.latch(ErrStalled)
			audio.Clear()
			if events != nil {
				events.Clear()
			}
			return
		}
	}

	// drain the root slot
	out := g.root.Out()
	audio.Clear()
	audio.Add(out.Audio)
	if events != nil {
		events.Clear()
		events.Merge(out.Midi)
	}
	if g.measure != nil {
		g.measure(int64(numFrames))
	}
}

// Release drops all node buffers. The graph cannot process afterwards.
func (g *Graph) Release() {
	for _, n := range g.nodes {
		n.Release()
	}
	g.nodes = nil
	g.prepared = false
}

// Latency returns the declared latency of the root node in samples.
func (g *Graph) Latency() int {
	return g.root.Properties().Latency
}

// Properties returns the derived properties of the root node.
func (g *Graph) Properties() audiograph.Properties {
	return g.root.Properties()
}

// Config returns the preparation config.
func (g *Graph) Config() audiograph.Config {
	return g.cfg
}

// Errors returns the non-realtime status channel. Invariant violations
// on the processing path degrade to silence and latch here.
func (g *Graph) Errors() <-chan error {
	return g.errc
}

// String returns graph name with id, or id if name is empty.
func (g *Graph) String() string {
	if g.name == "" {
		return g.ID()
	}
	return fmt.Sprintf("%v %v", g.name, g.ID())
}

func (g *Graph) latch(err error) {
	if g.m != nil {
		g.m.Fault()
	}
	select {
	case g.errc <- err:
	default:
	}
}

// compensationStats sums up the delay stages installed by latency
// balancing: wrapper nodes and sender-side rings inside returns.
func compensationStats(nodes []audiograph.Node) (stages, frames int) {
	for _, n := range nodes {
		switch t := n.(type) {
		case *Latency:
			if t.installed {
				stages++
				frames += t.delay
			}
		case *Return:
			s, f := t.compensation()
			stages += s
			frames += f
		}
	}
	return
}

// collect enumerates the node set reachable from root through direct
// upstreams. Buses never extend reachability: a send participates in a
// graph by being owned somewhere under its root, the bus only adds a
// scheduling edge between nodes already present.
func collect(root audiograph.Node) []audiograph.Node {
	seen := make(map[audiograph.Node]bool)
	var nodes []audiograph.Node
	var walk func(n audiograph.Node)
	walk = func(n audiograph.Node) {
		if seen[n] {
			return
		}
		seen[n] = true
		nodes = append(nodes, n)
		for _, u := range n.Upstreams() {
			walk(u)
		}
	}
	walk(root)
	return nodes
}

// sort produces a topological order of the node set over direct and
// bus edges, leaves first. A cycle is a preparation failure.
func (g *Graph) sort(nodes []audiograph.Node) ([]audiograph.Node, error) {
	deps := make(map[audiograph.Node][]audiograph.Node, len(nodes))
	for _, n := range nodes {
		d := append([]audiograph.Node{}, n.Upstreams()...)
		for _, s := range g.reg.senders(n) {
			d = append(d, s)
		}
		deps[n] = d
	}

	order := make([]audiograph.Node, 0, len(nodes))
	done := make(map[audiograph.Node]bool, len(nodes))
	for len(order) < len(nodes) {
		progressed := false
		for _, n := range nodes {
			if done[n] {
				continue
			}
			ready := true
			for _, d := range deps[n] {
				if !done[d] {
					ready = false
					break
				}
			}
			if ready {
				done[n] = true
				order = append(order, n)
				progressed = true
			}
		}
		if !progressed {
			return nil, fmt.Errorf("%w: %d nodes unordered", ErrCycle, len(nodes)-len(order))
		}
	}
	return order, nil
}
