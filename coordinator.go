package kafkalink

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/eapache/queue"
	multierror "github.com/hashicorp/go-multierror"
	metrics "github.com/rcrowley/go-metrics"
	"golang.org/x/sync/errgroup"
)

type coordinatorState int32

const (
	stateCreated coordinatorState = iota
	stateStarted
	stateStopped
)

type messageKind int8

const (
	fullMetadataMsg messageKind = iota
	topicMetadataMsg
	nodeActionMsg
)

// clusterMessage is the tagged union carried by the coordinator's mailbox:
// a full-metadata fetch (optionally with a routing-table waiter), a
// topic-metadata fetch with a partitions waiter, or a deferred node-event
// action to run on the agent goroutine. The kind field is authoritative; only
// the payload fields matching it are set.
type clusterMessage struct {
	kind       messageKind
	topic      string
	table      chan tableResult
	partitions chan partitionsResult
	action     func()
}

type tableResult struct {
	table *RoutingTable
	err   error
}

type partitionsResult struct {
	partitions []int32
	err        error
}

// Coordinator discovers and tracks the live topology of a broker cluster and
// publishes a routing table to its subscribers on every change.
//
// All topology mutations are serialized through a single agent goroutine fed
// by a mailbox: callers of RequireNewRoutingTable and
// RequireAllPartitionsForTopic, the periodic refresher, and node-event
// handlers all merely enqueue messages. While the agent is suspended awaiting
// a metadata RPC, further messages queue up behind it; nothing in the
// coordinator runs concurrently with anything else that touches the registry
// or the table.
type Coordinator struct {
	conf    *Config
	factory NodeFactory

	seedList string
	seeds    []*BrokerMeta

	registry *brokerRegistry
	rng      *rand.Rand // agent goroutine only

	input chan *clusterMessage
	work  chan *clusterMessage
	done  chan none

	lock          sync.Mutex // guards state, subscribers and timer
	state         coordinatorState
	refreshTimer  *time.Timer
	tableSubs     []func(*RoutingTable)
	errSubs       []func(error)
	produceRouter ProduceRouter
	consumeRouter ConsumeRouter

	stats *statsCollector
}

// NewCoordinator creates a coordinator over the given comma-separated
// host:port seed list. Each seed becomes a registered node with an unknown
// broker id; no connection is attempted until the first metadata fetch. A nil
// conf uses NewConfig(); a nil factory uses DefaultNodeFactory(conf).
func NewCoordinator(seeds string, conf *Config, factory NodeFactory) (*Coordinator, error) {
	if conf == nil {
		conf = NewConfig()
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	metas, err := parseSeeds(seeds)
	if err != nil {
		return nil, err
	}

	co := &Coordinator{
		conf:     conf,
		seedList: seeds,
		seeds:    metas,
		registry: newBrokerRegistry(),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		input:    make(chan *clusterMessage, conf.ChannelBufferSize),
		work:     make(chan *clusterMessage),
		done:     make(chan none),
		state:    stateCreated,
		stats:    newStatsCollector(),
	}

	if factory == nil {
		factory = DefaultNodeFactory(conf)
	}
	co.factory = factory

	for _, meta := range metas {
		co.registry.register(co.factory(meta, co), meta)
	}

	Logger.Printf("coordinator: created with %d seed broker(s) from %q\n", co.registry.size(), seeds)
	return co, nil
}

// UseRouters attaches the produce and consume routers. Their
// ChangeRoutingTable hooks are subscribed to routing-table publications and
// broker acknowledgements are forwarded to them. Must be called before Start.
func (co *Coordinator) UseRouters(produce ProduceRouter, consume ConsumeRouter) {
	co.lock.Lock()
	defer co.lock.Unlock()
	co.produceRouter = produce
	co.consumeRouter = consume
	if produce != nil {
		co.tableSubs = append(co.tableSubs, produce.ChangeRoutingTable)
	}
	if consume != nil {
		co.tableSubs = append(co.tableSubs, consume.ChangeRoutingTable)
	}
}

// SubscribeRoutingTableChange registers a hook invoked with every published
// routing table. Hooks run synchronously on the agent goroutine and must not
// block. Must be called before Start.
func (co *Coordinator) SubscribeRoutingTableChange(fn func(*RoutingTable)) {
	co.lock.Lock()
	defer co.lock.Unlock()
	co.tableSubs = append(co.tableSubs, fn)
}

// SubscribeInternalError registers a hook invoked with errors the coordinator
// swallowed on behalf of a waiter (the waiter itself only sees
// ErrOperationCanceled). Must be called before Start.
func (co *Coordinator) SubscribeInternalError(fn func(error)) {
	co.lock.Lock()
	defer co.lock.Unlock()
	co.errSubs = append(co.errSubs, fn)
}

// Start launches the agent, posts the initial full-metadata fetch and arms the
// periodic refresher.
func (co *Coordinator) Start() error {
	co.lock.Lock()
	if co.state != stateCreated {
		co.lock.Unlock()
		return ErrAlreadyStarted
	}
	co.state = stateStarted
	co.refreshTimer = time.AfterFunc(co.conf.Metadata.RefreshFrequency, co.refreshTick)
	co.lock.Unlock()

	go withRecover(co.dispatcher)
	go withRecover(co.agentLoop)

	co.post(&clusterMessage{kind: fullMetadataMsg})
	return nil
}

// Stop shuts the coordinator down: the refresh timer is cancelled, the
// routers are stopped (consume first, then produce), the mailbox is closed
// and drained by the agent, and finally every node is stopped. Stop returns
// once all of that has completed.
func (co *Coordinator) Stop() error {
	co.lock.Lock()
	if co.state != stateStarted {
		co.lock.Unlock()
		return ErrClosedCoordinator
	}
	co.state = stateStopped
	co.refreshTimer.Stop()
	consume, produce := co.consumeRouter, co.produceRouter
	co.lock.Unlock()

	var errs *multierror.Error
	if consume != nil {
		if err := consume.Stop(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if produce != nil {
		if err := produce.Stop(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	close(co.input)
	<-co.done

	// the agent has exited, so the registry is ours now
	var errsLock sync.Mutex
	var g errgroup.Group
	for n := range co.registry.nodes {
		n := n
		g.Go(func() error {
			if err := n.Stop(); err != nil {
				errsLock.Lock()
				errs = multierror.Append(errs, err)
				errsLock.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	Logger.Println("coordinator: stopped")
	return errs.ErrorOrNil()
}

// RequireNewRoutingTable enqueues a full metadata fetch and blocks until the
// routing table produced by that fetch is published, returning it. If the
// fetch fails the call returns ErrOperationCanceled and the cause is broadcast
// on the InternalError hook.
func (co *Coordinator) RequireNewRoutingTable() (*RoutingTable, error) {
	ch := make(chan tableResult, 1)
	if !co.post(&clusterMessage{kind: fullMetadataMsg, table: ch}) {
		return nil, ErrClosedCoordinator
	}
	res := <-ch
	return res.table, res.err
}

// RequireAllPartitionsForTopic enqueues a topic metadata fetch and blocks
// until the partition ids for the topic are known, returning them in the
// order the broker listed them. The failure policy matches
// RequireNewRoutingTable.
func (co *Coordinator) RequireAllPartitionsForTopic(topic string) ([]int32, error) {
	ch := make(chan partitionsResult, 1)
	if !co.post(&clusterMessage{kind: topicMetadataMsg, topic: topic, partitions: ch}) {
		return nil, ErrClosedCoordinator
	}
	res := <-ch
	return res.partitions, res.err
}

// Statistics returns a value snapshot of the coordinator's counters. It is
// safe to call from any goroutine and never blocks.
func (co *Coordinator) Statistics() Statistics {
	return co.stats.snapshot()
}

// MetricRegistry exposes the underlying metrics registry holding the
// coordinator's counters, for wiring into an external metrics pipeline.
func (co *Coordinator) MetricRegistry() metrics.Registry {
	return co.stats.registry
}

// post enqueues a message, returning false if the coordinator is not running.
func (co *Coordinator) post(msg *clusterMessage) bool {
	co.lock.Lock()
	defer co.lock.Unlock()
	if co.state != stateStarted {
		return false
	}
	co.input <- msg
	return true
}

func (co *Coordinator) postAction(fn func()) bool {
	return co.post(&clusterMessage{kind: nodeActionMsg, action: fn})
}

// refreshTick posts an unsolicited full-metadata refresh and rearms the
// timer. The fetch itself must not run here; only the agent fetches.
func (co *Coordinator) refreshTick() {
	DebugLogger.Println("coordinator: periodic metadata refresh")
	if !co.post(&clusterMessage{kind: fullMetadataMsg}) {
		return
	}
	co.lock.Lock()
	if co.state == stateStarted {
		co.refreshTimer.Reset(co.conf.Metadata.RefreshFrequency)
	}
	co.lock.Unlock()
}

// dispatcher bridges the bounded input channel to the agent through an
// unbounded queue, so that the agent can fall arbitrarily far behind a burst
// of node events without deadlocking the posters.
func (co *Coordinator) dispatcher() {
	buf := queue.New()
	input := co.input

	for input != nil || buf.Length() > 0 {
		var workChan chan *clusterMessage
		var next *clusterMessage
		if buf.Length() > 0 {
			workChan = co.work
			next = buf.Peek().(*clusterMessage)
		}

		select {
		case msg, ok := <-input:
			if !ok {
				input = nil
				continue
			}
			buf.Add(msg)
		case workChan <- next:
			buf.Remove()
		}
	}

	close(co.work)
}

// agentLoop is the coordinator's sole mutation domain. It consumes messages
// strictly in arrival order and never runs two in parallel; a metadata RPC
// blocks the loop until the broker responds, which is exactly what keeps the
// registry single-writer.
func (co *Coordinator) agentLoop() {
	for msg := range co.work {
		switch msg.kind {
		case fullMetadataMsg:
			co.fetchFullMetadata(msg)
		case topicMetadataMsg:
			co.fetchTopicMetadata(msg)
		case nodeActionMsg:
			msg.action()
		}
	}
	co.stats.exited.Inc(1)
	close(co.done)
}

func (co *Coordinator) fetchFullMetadata(msg *clusterMessage) {
	node := co.registry.random(co.rng)
	if node == nil {
		co.failWaiter(msg, ErrOutOfBrokers)
		co.checkNoMoreNodes()
		return
	}

	DebugLogger.Printf("coordinator: fetching full metadata from %s\n", node.Name())
	response, err := node.FetchMetadata()
	if err != nil {
		co.failWaiter(msg, err)
		return
	}

	co.reconcile(response)
	table := buildRoutingTable(response, co.registry)
	co.publishRoutingTable(table)
	if msg.table != nil {
		msg.table <- tableResult{table: table}
	}
	co.checkNoMoreNodes()
}

func (co *Coordinator) fetchTopicMetadata(msg *clusterMessage) {
	node := co.registry.random(co.rng)
	if node == nil {
		co.failWaiter(msg, ErrOutOfBrokers)
		co.checkNoMoreNodes()
		return
	}

	DebugLogger.Printf("coordinator: fetching metadata for topic %q from %s\n", msg.topic, node.Name())
	response, err := node.FetchMetadata(msg.topic)
	if err != nil {
		co.failWaiter(msg, err)
		return
	}

	for _, tm := range response.Topics {
		if tm.Name != msg.topic {
			continue
		}
		ids := make([]int32, 0, len(tm.Partitions))
		for _, pm := range tm.Partitions {
			ids = append(ids, pm.ID)
		}
		msg.partitions <- partitionsResult{partitions: ids}
		return
	}

	co.failWaiter(msg, ErrUnknownTopicOrPartition)
}

// failWaiter resolves the message's waiter (if any) as canceled. Unless the
// failure already was a cancellation, the original cause fans out on the
// InternalError hook so it is not silently lost.
func (co *Coordinator) failWaiter(msg *clusterMessage, err error) {
	if !errors.Is(err, ErrOperationCanceled) {
		Logger.Printf("coordinator: metadata fetch failed: %v\n", err)
		co.raiseInternalError(err)
	}
	switch msg.kind {
	case fullMetadataMsg:
		if msg.table != nil {
			msg.table <- tableResult{err: ErrOperationCanceled}
		}
	case topicMetadataMsg:
		msg.partitions <- partitionsResult{err: ErrOperationCanceled}
	}
}

func (co *Coordinator) reconcile(response *MetadataResponse) {
	dropped := co.registry.reconcile(response.Brokers, func(meta *BrokerMeta) Node {
		Logger.Printf("coordinator: discovered %s\n", meta.String())
		return co.factory(meta, co)
	})
	for _, n := range dropped {
		n := n
		Logger.Printf("coordinator: broker %s no longer advertised, dropping\n", n.Name())
		go withRecover(func() {
			if err := n.Stop(); err != nil {
				Logger.Printf("coordinator: error stopping dropped node %s: %v\n", n.Name(), err)
			}
		})
	}
}

func (co *Coordinator) publishRoutingTable(table *RoutingTable) {
	co.lock.Lock()
	subs := co.tableSubs
	co.lock.Unlock()
	for _, fn := range subs {
		fn(table)
	}
}

func (co *Coordinator) raiseInternalError(err error) {
	co.lock.Lock()
	subs := co.errSubs
	co.lock.Unlock()
	for _, fn := range subs {
		fn(err)
	}
}

// checkNoMoreNodes is the cluster's last-resort recovery: if the registry has
// emptied out, the seed nodes are re-materialized so the next metadata fetch
// has someone to talk to.
func (co *Coordinator) checkNoMoreNodes() {
	if co.registry.size() > 0 {
		return
	}
	Logger.Printf("coordinator: no live brokers remain, falling back to seeds %q\n", co.seedList)
	for _, seed := range co.seeds {
		meta := &BrokerMeta{ID: unknownBrokerID, Host: seed.Host, Port: seed.Port}
		co.registry.register(co.factory(meta, co), meta)
	}
}

// NodeObserver implementation. Registry-touching handlers go through the
// mailbox so they execute on the agent; pure counter taps bump their atomics
// in place.

// NodeDead removes the node from the registry, re-seeds if that emptied it,
// and triggers a full metadata refresh.
func (co *Coordinator) NodeDead(n Node) {
	co.postAction(func() {
		Logger.Printf("coordinator: node %s is dead\n", n.Name())
		co.registry.deregister(n)
		co.stats.nodeDead.Inc(1)
		co.checkNoMoreNodes()
		co.post(&clusterMessage{kind: fullMetadataMsg})
	})
}

// NodeConnectError counts the failure; the node keeps retrying on its own.
func (co *Coordinator) NodeConnectError(n Node, err error) {
	co.stats.errors.Inc(1)
	co.postAction(func() {
		Logger.Printf("coordinator: node %s failed to connect, retrying: %v\n", n.Name(), err)
	})
}

// NodeReadError counts the failure; the node emits NodeDead when it gives up.
func (co *Coordinator) NodeReadError(n Node, err error) {
	co.stats.errors.Inc(1)
	co.postAction(func() {
		Logger.Printf("coordinator: read error on node %s: %v\n", n.Name(), err)
	})
}

// NodeWriteError counts the failure; the node emits NodeDead when it gives up.
func (co *Coordinator) NodeWriteError(n Node, err error) {
	co.stats.errors.Inc(1)
	co.postAction(func() {
		Logger.Printf("coordinator: write error on node %s: %v\n", n.Name(), err)
	})
}

// NodeDecodeError counts the failure.
func (co *Coordinator) NodeDecodeError(n Node, err error) {
	co.stats.errors.Inc(1)
	co.postAction(func() {
		Logger.Printf("coordinator: failed to decode response from node %s: %v\n", n.Name(), err)
	})
}

// NodeConnected logs the resolved node name.
func (co *Coordinator) NodeConnected(n Node) {
	co.postAction(func() {
		Logger.Printf("coordinator: connected to node %s\n", n.Name())
	})
}

// NodeRequestSent bumps the request counter.
func (co *Coordinator) NodeRequestSent(n Node) {
	co.stats.requestsSent.Inc(1)
}

// NodeResponseReceived bumps the response counter.
func (co *Coordinator) NodeResponseReceived(n Node) {
	co.stats.responsesReceived.Inc(1)
}

// ProduceAck forwards the acknowledgement to the produce router.
func (co *Coordinator) ProduceAck(ack *ProduceAck) {
	if co.produceRouter != nil {
		co.produceRouter.Acknowledge(ack)
	}
}

// FetchAck forwards the acknowledgement to the consume router.
func (co *Coordinator) FetchAck(ack *FetchAck) {
	if co.consumeRouter != nil {
		co.consumeRouter.AcknowledgeFetch(ack)
	}
}

// OffsetAck forwards the acknowledgement to the consume router.
func (co *Coordinator) OffsetAck(ack *OffsetAck) {
	if co.consumeRouter != nil {
		co.consumeRouter.AcknowledgeOffsets(ack)
	}
}

// RouterEvents implementation: message-level taps from the routers.

// MessageExpired counts one produce message that expired unsent.
func (co *Coordinator) MessageExpired(topic string) {
	co.stats.expired.Inc(1)
}

// MessagesAcknowledged counts messages confirmed by a broker.
func (co *Coordinator) MessagesAcknowledged(topic string, count int) {
	co.stats.successfulSent.Inc(int64(count))
}

// MessagesDiscarded counts messages dropped after retries ran out.
func (co *Coordinator) MessagesDiscarded(topic string, count int) {
	co.stats.discarded.Inc(int64(count))
}

// MessageReceived counts one message handed to the application.
func (co *Coordinator) MessageReceived(topic string) {
	co.stats.received.Inc(1)
}
