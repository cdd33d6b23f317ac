package kafkalink

import "sort"

// Partition is one routable shard of a topic: its id and the node currently
// leading it.
type Partition struct {
	ID     int32
	Leader Node
}

// RoutingTable is an immutable snapshot mapping each topic to its partitions
// and their current leaders. A table is built atomically by the coordinator's
// agent, published wholesale on every successful metadata refresh, and never
// mutated afterwards; observers may hold on to it for as long as they like.
type RoutingTable struct {
	topics map[string][]Partition
}

// Topics returns the names of all topics present in the table.
func (t *RoutingTable) Topics() []string {
	names := make([]string, 0, len(t.topics))
	for name := range t.topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Partitions returns the partitions of the given topic, ordered by id
// ascending. The returned slice is a copy and may be retained or modified by
// the caller.
func (t *RoutingTable) Partitions(topic string) []Partition {
	partitions := t.topics[topic]
	if partitions == nil {
		return nil
	}
	ret := make([]Partition, len(partitions))
	copy(ret, partitions)
	return ret
}

// PartitionIDs returns the partition ids of the given topic, ordered
// ascending.
func (t *RoutingTable) PartitionIDs(topic string) []int32 {
	partitions := t.topics[topic]
	if partitions == nil {
		return nil
	}
	ids := make([]int32, len(partitions))
	for i, p := range partitions {
		ids[i] = p.ID
	}
	return ids
}

// Leader returns the node leading the given partition, or nil if the topic or
// partition is not routable in this snapshot.
func (t *RoutingTable) Leader(topic string, partition int32) Node {
	for _, p := range t.topics[topic] {
		if p.ID == partition {
			return p.Leader
		}
	}
	return nil
}

// buildRoutingTable transforms a metadata response into a fresh routing
// table, resolving leader ids against the (already reconciled) registry.
//
// A topic is included iff its error code is ok for clients. A partition is
// included iff its error code is ok for clients, its leader id is >= 0, and
// the leader resolves in the registry. A topic left with no routable
// partitions is omitted entirely.
func buildRoutingTable(response *MetadataResponse, registry *brokerRegistry) *RoutingTable {
	topics := make(map[string][]Partition, len(response.Topics))

	for _, tm := range response.Topics {
		if !tm.Err.okForClients() {
			continue
		}
		partitions := make([]Partition, 0, len(tm.Partitions))
		for _, pm := range tm.Partitions {
			if !pm.Err.okForClients() || pm.Leader < 0 {
				continue
			}
			leader := registry.leaderByID(pm.Leader)
			if leader == nil {
				continue
			}
			partitions = append(partitions, Partition{ID: pm.ID, Leader: leader})
		}
		if len(partitions) == 0 {
			continue
		}
		sort.Slice(partitions, func(i, j int) bool { return partitions[i].ID < partitions[j].ID })
		topics[tm.Name] = partitions
	}

	return &RoutingTable{topics: topics}
}
