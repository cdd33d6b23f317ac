package kafkalink

import "github.com/rcrowley/go-metrics"

// Statistics is a value snapshot of the coordinator's counters. Counters are
// monotonically non-decreasing over the life of a coordinator.
type Statistics struct {
	SuccessfulSent    int64 // messages acknowledged by brokers
	RequestsSent      int64 // requests put on the wire by nodes
	ResponsesReceived int64 // responses read off the wire by nodes
	Errors            int64 // transport, decode and connect errors
	NodeDead          int64 // nodes declared dead
	Expired           int64 // produce messages expired before send
	Discarded         int64 // produce messages discarded
	Exited            int64 // 1 once the agent loop has drained and exited
	Received          int64 // messages delivered by the consume router
}

// statsCollector owns the live counters behind Statistics. The counters are
// process-scoped atomics registered in a per-coordinator metrics registry, so
// they can be bumped from any goroutine and snapshot without locks. The same
// registry is exposed for users who want to wire the counters into their own
// metrics pipeline.
type statsCollector struct {
	registry metrics.Registry

	successfulSent    metrics.Counter
	requestsSent      metrics.Counter
	responsesReceived metrics.Counter
	errors            metrics.Counter
	nodeDead          metrics.Counter
	expired           metrics.Counter
	discarded         metrics.Counter
	exited            metrics.Counter
	received          metrics.Counter
}

func newStatsCollector() *statsCollector {
	r := metrics.NewRegistry()
	return &statsCollector{
		registry:          r,
		successfulSent:    metrics.GetOrRegisterCounter("successful-sent", r),
		requestsSent:      metrics.GetOrRegisterCounter("requests-sent", r),
		responsesReceived: metrics.GetOrRegisterCounter("responses-received", r),
		errors:            metrics.GetOrRegisterCounter("errors", r),
		nodeDead:          metrics.GetOrRegisterCounter("node-dead", r),
		expired:           metrics.GetOrRegisterCounter("expired", r),
		discarded:         metrics.GetOrRegisterCounter("discarded", r),
		exited:            metrics.GetOrRegisterCounter("exited", r),
		received:          metrics.GetOrRegisterCounter("received", r),
	}
}

func (s *statsCollector) snapshot() Statistics {
	return Statistics{
		SuccessfulSent:    s.successfulSent.Count(),
		RequestsSent:      s.requestsSent.Count(),
		ResponsesReceived: s.responsesReceived.Count(),
		Errors:            s.errors.Count(),
		NodeDead:          s.nodeDead.Count(),
		Expired:           s.expired.Count(),
		Discarded:         s.discarded.Count(),
		Exited:            s.exited.Count(),
		Received:          s.received.Count(),
	}
}
