package kafkalink

import (
	"net"
	"strconv"
)

// PartitionMetadata describes one partition of a topic as advertised by the
// cluster.
type PartitionMetadata struct {
	Err      KError
	ID       int32
	Leader   int32
	Replicas []int32
	Isr      []int32
}

func (pm *PartitionMetadata) decode(pd packetDecoder) (err error) {
	tmp, err := pd.getInt16()
	if err != nil {
		return err
	}
	pm.Err = KError(tmp)

	pm.ID, err = pd.getInt32()
	if err != nil {
		return err
	}

	pm.Leader, err = pd.getInt32()
	if err != nil {
		return err
	}

	pm.Replicas, err = pd.getInt32Array()
	if err != nil {
		return err
	}

	pm.Isr, err = pd.getInt32Array()
	return err
}

func (pm *PartitionMetadata) encode(pe packetEncoder) (err error) {
	pe.putInt16(int16(pm.Err))
	pe.putInt32(pm.ID)
	pe.putInt32(pm.Leader)

	err = pe.putInt32Array(pm.Replicas)
	if err != nil {
		return err
	}

	return pe.putInt32Array(pm.Isr)
}

// TopicMetadata describes one topic as advertised by the cluster.
type TopicMetadata struct {
	Err        KError
	Name       string
	Partitions []*PartitionMetadata
}

func (tm *TopicMetadata) decode(pd packetDecoder) (err error) {
	tmp, err := pd.getInt16()
	if err != nil {
		return err
	}
	tm.Err = KError(tmp)

	tm.Name, err = pd.getString()
	if err != nil {
		return err
	}

	n, err := pd.getArrayLength()
	if err != nil {
		return err
	}
	tm.Partitions = make([]*PartitionMetadata, n)
	for i := 0; i < n; i++ {
		tm.Partitions[i] = new(PartitionMetadata)
		err = tm.Partitions[i].decode(pd)
		if err != nil {
			return err
		}
	}

	return nil
}

func (tm *TopicMetadata) encode(pe packetEncoder) (err error) {
	pe.putInt16(int16(tm.Err))

	err = pe.putString(tm.Name)
	if err != nil {
		return err
	}

	err = pe.putArrayLength(len(tm.Partitions))
	if err != nil {
		return err
	}

	for _, pm := range tm.Partitions {
		err = pm.encode(pe)
		if err != nil {
			return err
		}
	}

	return nil
}

// MetadataResponse carries the full list of brokers known to the cluster and
// the metadata of the requested topics.
type MetadataResponse struct {
	Brokers []*BrokerMeta
	Topics  []*TopicMetadata
}

func (r *MetadataResponse) decode(pd packetDecoder) (err error) {
	n, err := pd.getArrayLength()
	if err != nil {
		return err
	}

	r.Brokers = make([]*BrokerMeta, n)
	for i := 0; i < n; i++ {
		r.Brokers[i] = new(BrokerMeta)
		err = decodeBrokerMeta(r.Brokers[i], pd)
		if err != nil {
			return err
		}
	}

	n, err = pd.getArrayLength()
	if err != nil {
		return err
	}

	r.Topics = make([]*TopicMetadata, n)
	for i := 0; i < n; i++ {
		r.Topics[i] = new(TopicMetadata)
		err = r.Topics[i].decode(pd)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *MetadataResponse) encode(pe packetEncoder) (err error) {
	err = pe.putArrayLength(len(r.Brokers))
	if err != nil {
		return err
	}
	for _, broker := range r.Brokers {
		err = encodeBrokerMeta(broker, pe)
		if err != nil {
			return err
		}
	}

	err = pe.putArrayLength(len(r.Topics))
	if err != nil {
		return err
	}
	for _, tm := range r.Topics {
		err = tm.encode(pe)
		if err != nil {
			return err
		}
	}

	return nil
}

func decodeBrokerMeta(m *BrokerMeta, pd packetDecoder) (err error) {
	m.ID, err = pd.getInt32()
	if err != nil {
		return err
	}

	m.Host, err = pd.getString()
	if err != nil {
		return err
	}

	port, err := pd.getInt32()
	if err != nil {
		return err
	}
	m.Port = uint16(port)
	return nil
}

func encodeBrokerMeta(m *BrokerMeta, pe packetEncoder) (err error) {
	pe.putInt32(m.ID)

	err = pe.putString(m.Host)
	if err != nil {
		return err
	}

	pe.putInt32(int32(m.Port))
	return nil
}

// testing API

// AddBroker adds a broker with the given address and id to the response.
func (r *MetadataResponse) AddBroker(addr string, id int32) {
	host, portStr, _ := net.SplitHostPort(addr)
	port, _ := strconv.Atoi(portStr)
	r.Brokers = append(r.Brokers, &BrokerMeta{ID: id, Host: host, Port: uint16(port)})
}

// AddTopic adds (or returns the existing) topic entry with the given name and
// error code.
func (r *MetadataResponse) AddTopic(topic string, err KError) *TopicMetadata {
	var tm *TopicMetadata

	for _, t := range r.Topics {
		if t.Name == topic {
			tm = t
			goto foundTopic
		}
	}

	tm = new(TopicMetadata)
	tm.Name = topic
	r.Topics = append(r.Topics, tm)

foundTopic:

	tm.Err = err
	return tm
}

// AddTopicPartition adds a partition entry (creating the topic entry if
// needed) with the given leader, replica set and error code.
func (r *MetadataResponse) AddTopicPartition(topic string, partition, leader int32, replicas, isr []int32, err KError) {
	tm := r.AddTopic(topic, ErrNoError)
	var pm *PartitionMetadata

	for _, p := range tm.Partitions {
		if p.ID == partition {
			pm = p
			goto foundPartition
		}
	}

	pm = new(PartitionMetadata)
	pm.ID = partition
	tm.Partitions = append(tm.Partitions, pm)

foundPartition:

	pm.Leader = leader
	pm.Replicas = replicas
	pm.Isr = isr
	pm.Err = err
}
