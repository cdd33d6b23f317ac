package kafkalink

import "math/rand"

// brokerRegistry holds three coordinated indices over the live broker set.
// It is only ever touched by the coordinator's agent goroutine (plus the
// constructor and the final teardown, which happen strictly before and after
// the agent runs), so it needs no locking.
//
// Invariants:
//   - for every (node, meta) in nodes: byAddr[meta.Addr()] == node, and if
//     meta.ID is known then byID[meta.ID] == node
//   - byID and byAddr contain no keys absent from nodes
//   - no two entries share an address or an id
type brokerRegistry struct {
	nodes  map[Node]*BrokerMeta
	byID   map[int32]Node
	byAddr map[string]Node
}

func newBrokerRegistry() *brokerRegistry {
	return &brokerRegistry{
		nodes:  make(map[Node]*BrokerMeta),
		byID:   make(map[int32]Node),
		byAddr: make(map[string]Node),
	}
}

func (r *brokerRegistry) register(n Node, meta *BrokerMeta) {
	r.nodes[n] = meta
	r.byAddr[meta.Addr()] = n
	if meta.ID != unknownBrokerID {
		r.byID[meta.ID] = n
	}
}

func (r *brokerRegistry) deregister(n Node) {
	meta, ok := r.nodes[n]
	if !ok {
		return
	}
	delete(r.nodes, n)
	delete(r.byAddr, meta.Addr())
	if meta.ID != unknownBrokerID && r.byID[meta.ID] == n {
		delete(r.byID, meta.ID)
	}
}

func (r *brokerRegistry) leaderByID(id int32) Node {
	return r.byID[id]
}

func (r *brokerRegistry) size() int {
	return len(r.nodes)
}

// random returns one node chosen uniformly at random, or nil if the registry
// is empty. Any broker can answer a metadata request; picking at random
// spreads the load.
func (r *brokerRegistry) random(rng *rand.Rand) Node {
	if len(r.nodes) == 0 {
		return nil
	}
	i := rng.Intn(len(r.nodes))
	for n := range r.nodes {
		if i == 0 {
			return n
		}
		i--
	}
	return nil
}

// reconcile mutates the registry in place to match the advertised broker
// list, preserving existing node handles wherever the (host, port) survives so
// open connections are reused. It returns the node handles dropped from the
// topology; stopping them is the caller's concern.
func (r *brokerRegistry) reconcile(advertised []*BrokerMeta, materialize func(*BrokerMeta) Node) []Node {
	addrs := make(map[string]none, len(advertised))
	ids := make(map[int32]none, len(advertised))

	for _, b := range advertised {
		addr := b.Addr()
		addrs[addr] = none{}
		ids[b.ID] = none{}

		n, ok := r.byAddr[addr]
		if !ok {
			n = materialize(b)
			r.register(n, &BrokerMeta{ID: b.ID, Host: b.Host, Port: b.Port})
		}
		r.nodes[n].ID = b.ID
		r.byID[b.ID] = n
	}

	for id := range r.byID {
		if _, ok := ids[id]; !ok {
			delete(r.byID, id)
		}
	}

	var dropped []Node
	for addr, n := range r.byAddr {
		if _, ok := addrs[addr]; !ok {
			delete(r.byAddr, addr)
			delete(r.nodes, n)
			dropped = append(dropped, n)
		}
	}

	return dropped
}
