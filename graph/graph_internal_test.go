package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dudk/audiograph"
	"github.com/dudk/audiograph/block"
	"github.com/dudk/audiograph/generate"
	"github.com/dudk/audiograph/transform"
)

var testConfig = audiograph.Config{SampleRate: 44100, MaxBlockSize: 512}

func sendReturnGraph() (audiograph.Node, *Send, *Return) {
	var track1 audiograph.Node = generate.NewSin(441, 1)
	track1 = NewLatency(track1, 50)
	track1 = transform.Gain(track1, 0.5)
	send := NewSend(track1, 1)
	track1 = transform.Gain(send, 0)

	ret := NewReturn(transform.Gain(generate.NewSin(441, 1), 0.5), 1)
	return NewSum(track1, ret), send, ret
}

func TestScheduleOrder(t *testing.T) {
	root, send, ret := sendReturnGraph()
	g, err := New(root)
	assert.NoError(t, err)
	assert.NoError(t, g.Prepare(testConfig))
	defer g.Release()

	pos := make(map[audiograph.Node]int, len(g.nodes))
	for i, n := range g.nodes {
		pos[n] = i
	}

	// every node appears after its direct upstreams and, for returns,
	// after every send on its bus
	for i, n := range g.nodes {
		for _, u := range n.Upstreams() {
			assert.Less(t, pos[u], i)
		}
		for _, s := range g.reg.senders(n) {
			assert.Less(t, pos[s], i)
		}
	}
	assert.Less(t, pos[send], pos[ret])
}

func TestProcessMarksEveryNode(t *testing.T) {
	root, _, _ := sendReturnGraph()
	g, err := New(root)
	assert.NoError(t, err)
	assert.NoError(t, g.Prepare(testConfig))
	defer g.Release()

	g.Process(block.New(1, 512), nil, 512)
	for _, n := range g.nodes {
		assert.True(t, n.Processed())
	}
}

func TestBalanceInstallsCompensators(t *testing.T) {
	live := transform.Gain(generate.NewSin(441, 1), 0.5)
	delayed := NewLatency(transform.Gain(generate.NewSin(441, 1), 0.5), 50)
	sum := NewSum(live, delayed)

	g, err := New(sum)
	assert.NoError(t, err)
	assert.NoError(t, g.Prepare(testConfig))
	defer g.Release()

	// the live branch got wrapped, the delayed one was left alone
	comp, ok := sum.inputs[0].(*Latency)
	assert.True(t, ok)
	assert.Equal(t, 50, comp.delay)
	assert.Same(t, delayed, sum.inputs[1])
}

func TestBasicSumSkipsBalancing(t *testing.T) {
	live := generate.NewSin(441, 1)
	delayed := NewLatency(generate.NewSin(441, 1), 50)
	sum := NewBasicSum(live, delayed)

	g, err := New(sum)
	assert.NoError(t, err)
	assert.NoError(t, g.Prepare(testConfig))
	defer g.Release()

	assert.Same(t, live, sum.inputs[0])
	// an uncompensated junction still reports the longest path
	assert.Equal(t, 50, g.Latency())
}

func TestReturnCompensatesSenders(t *testing.T) {
	var track1 audiograph.Node = generate.NewSin(441, 1)
	track1 = NewLatency(track1, 50)
	send1 := NewSend(track1, 1)

	var track2 audiograph.Node = generate.NewSin(441, 1)
	track2 = NewLatency(track2, 100)
	send2 := NewSend(track2, 1)

	ret := NewReturn(generate.NewSilence(1), 1)
	root := NewSum(transform.Gain(send1, 0), transform.Gain(send2, 0), ret)

	g, err := New(root)
	assert.NoError(t, err)
	assert.NoError(t, g.Prepare(testConfig))
	defer g.Release()

	assert.Equal(t, 100, ret.Properties().Latency)
	// the shorter sender path is compensated by an internal ring,
	// the aligned one reads the sender slot directly
	assert.NotNil(t, ret.comps[0])
	assert.Nil(t, ret.comps[1])
	assert.Equal(t, 50, ret.comps[0].Ready())

	stages, frames := ret.compensation()
	assert.Equal(t, 1, stages)
	assert.Equal(t, 50, frames)
}
