package graph

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/dudk/audiograph"
	"github.com/dudk/audiograph/log"
)

// registry is the process-local bus table of one graph. Membership is
// collected from the reachable node set at preparation and frozen for
// the graph's lifetime. It holds node handles, never ownership.
type registry struct {
	buses map[int]*bus
}

type bus struct {
	sends   []*Send
	returns []*Return
}

// newRegistry scans the node set for sends and returns and groups them
// by bus id.
func newRegistry(nodes []audiograph.Node) *registry {
	reg := &registry{buses: make(map[int]*bus)}
	for _, n := range nodes {
		switch t := n.(type) {
		case *Send:
			reg.at(t.bus).sends = append(reg.at(t.bus).sends, t)
		case *Return:
			reg.at(t.bus).returns = append(reg.at(t.bus).returns, t)
		}
	}
	return reg
}

func (r *registry) at(id int) *bus {
	b, ok := r.buses[id]
	if !ok {
		b = &bus{}
		r.buses[id] = b
	}
	return b
}

// bind wires every return to the sends sharing its bus. Unmatched bus
// ids are not fatal: a senderless return observes its direct upstream
// only, a returnless send stays a plain pass-through. Both are worth a
// warning.
func (r *registry) bind(logger *logrus.Logger) {
	for _, id := range r.ids() {
		b := r.buses[id]
		switch {
		case len(b.returns) == 0:
			log.Bus(logger, id).Warn("send bus has no return, sent data is discarded")
		case len(b.sends) == 0:
			log.Bus(logger, id).Warn("return bus has no send")
		}
		for _, ret := range b.returns {
			ret.bind(b.sends)
		}
	}
}

// senders returns the sends bound to the bus of n, if n is a return.
func (r *registry) senders(n audiograph.Node) []*Send {
	ret, ok := n.(*Return)
	if !ok {
		return nil
	}
	return ret.senders
}

func (r *registry) ids() []int {
	ids := make([]int, 0, len(r.buses))
	for id := range r.buses {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
