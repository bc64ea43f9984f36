// Package metric publishes graph runtime telemetry through expvar.
// Every prepared graph gets its own meter keyed by graph id: block and
// sample throughput, produced signal duration, the gap between process
// calls, the shape of the latency compensation preparation installed,
// and the number of faults latched on the processing path.
package metric

import (
	"expvar"
	"fmt"
	"sync/atomic"
	"time"
)

const graphsLabel = "audiograph.graphs"

const (
	// BlockCounter counts processed blocks.
	BlockCounter = "Blocks"
	// SampleCounter counts produced frames.
	SampleCounter = "Samples"
	// DurationCounter accumulates the duration of the produced signal.
	DurationCounter = "Duration"
	// IntervalCounter holds the time between the two most recent
	// process calls.
	IntervalCounter = "Interval"
	// FaultCounter counts faults latched on the processing path.
	FaultCounter = "Faults"
	// NodeGauge holds the number of scheduled nodes.
	NodeGauge = "Nodes"
	// CompensatorGauge holds the number of delay stages installed by
	// latency balancing, including sender-side rings inside returns.
	CompensatorGauge = "Compensators"
	// CompensationGauge holds the total silence the compensators were
	// primed with, in frames.
	CompensationGauge = "CompensationFrames"
	// LatencyGauge holds the declared root latency in samples.
	LatencyGauge = "Latency"
)

var counters = []string{
	BlockCounter,
	SampleCounter,
	DurationCounter,
	IntervalCounter,
	FaultCounter,
	NodeGauge,
	CompensatorGauge,
	CompensationGauge,
	LatencyGauge,
}

// MeasureFunc captures throughput when a block is processed.
type MeasureFunc func(numFrames int64)

// Meter publishes the counters of one graph.
type Meter struct {
	key        string
	sampleRate int

	blocks       *expvar.Int
	samples      *expvar.Int
	duration     *duration
	interval     *duration
	faults       *expvar.Int
	nodes        *expvar.Int
	compensators *expvar.Int
	compensation *expvar.Int
	latency      *expvar.Int
}

// NewMeter publishes a meter for the graph identified by key. Keys
// must be unique for the process lifetime, graph ids are.
func NewMeter(key string, sampleRate int) *Meter {
	m := &Meter{
		key:          key,
		sampleRate:   sampleRate,
		blocks:       expvar.NewInt(counterKey(key, BlockCounter)),
		samples:      expvar.NewInt(counterKey(key, SampleCounter)),
		duration:     &duration{},
		interval:     &duration{},
		faults:       expvar.NewInt(counterKey(key, FaultCounter)),
		nodes:        expvar.NewInt(counterKey(key, NodeGauge)),
		compensators: expvar.NewInt(counterKey(key, CompensatorGauge)),
		compensation: expvar.NewInt(counterKey(key, CompensationGauge)),
		latency:      expvar.NewInt(counterKey(key, LatencyGauge)),
	}
	expvar.Publish(counterKey(key, DurationCounter), m.duration)
	expvar.Publish(counterKey(key, IntervalCounter), m.interval)
	return m
}

// SetGraph records what preparation installed: scheduled node count,
// compensating delay stages, the silence they were primed with and the
// declared root latency.
func (m *Meter) SetGraph(nodes, compensators, compensationFrames, latency int) {
	m.nodes.Set(int64(nodes))
	m.compensators.Set(int64(compensators))
	m.compensation.Set(int64(compensationFrames))
	m.latency.Set(int64(latency))
}

// Measure returns a closure capturing throughput per processed block.
// The closure is safe for the realtime thread: counter updates are
// atomic and allocation free.
func (m *Meter) Measure() MeasureFunc {
	calledAt := time.Now()
	var (
		blockSize     int64
		blockDuration time.Duration
	)
	return func(s int64) {
		m.interval.set(time.Since(calledAt))
		m.blocks.Add(1)
		m.samples.Add(s)
		// recalculate block duration only when block size has changed
		if blockSize != s {
			blockSize = s
			blockDuration = durationOf(m.sampleRate, s)
		}
		m.duration.add(blockDuration)
		calledAt = time.Now()
	}
}

// Fault counts a latched processing fault. Safe for the realtime
// thread.
func (m *Meter) Fault() {
	m.faults.Add(1)
}

// Get returns the current counter values of the graph identified by
// key.
func Get(key string) map[string]string {
	m := make(map[string]string)
	for _, counter := range counters {
		if v := expvar.Get(counterKey(key, counter)); v != nil {
			m[counter] = v.String()
		}
	}
	return m
}

func counterKey(key, counter string) string {
	return fmt.Sprintf("%s.%s.%s", graphsLabel, key, counter)
}

// durationOf returns time duration of samples at this sample rate.
func durationOf(sampleRate int, samples int64) time.Duration {
	return time.Duration(float64(samples) / float64(sampleRate) * float64(time.Second))
}

// duration allows to format time.Duration metric values.
type duration struct {
	d int64
}

func (v *duration) String() string {
	return fmt.Sprintf("%v", time.Duration(atomic.LoadInt64(&v.d)))
}

func (v *duration) add(delta time.Duration) {
	atomic.AddInt64(&v.d, int64(delta))
}

func (v *duration) set(value time.Duration) {
	atomic.StoreInt64(&v.d, int64(value))
}
