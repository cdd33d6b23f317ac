/*
Package kafkalink provides the cluster coordinator of a client library for
Kafka-protocol log brokers. Given a comma-separated list of seed broker
addresses, a Coordinator continuously discovers the live topology (brokers,
topics, partitions, partition leaders) and publishes an immutable RoutingTable
that producer and consumer routers consult to dispatch every request to the
correct leader broker.

All topology state is owned by a single serializing agent: external callers and
node-event sources only enqueue messages into the coordinator's mailbox, so the
broker registry and routing table are mutated by exactly one goroutine and need
no locks. See the Coordinator type for the full contract.
*/
package kafkalink

import (
	"io"
	"log"
)

var (
	// Logger is the instance of a StdLogger interface that kafkalink writes
	// connection management events to. By default it is set to discard all log
	// messages, but you can set it to redirect wherever you want.
	Logger StdLogger = log.New(io.Discard, "[kafkalink] ", log.LstdFlags)

	// DebugLogger is the instance of a StdLogger interface that kafkalink
	// writes more verbose debug information to. By default it is set to
	// redirect all debug to the default Logger above, but you can set it to
	// redirect where you want.
	DebugLogger StdLogger = &debugLogger{}

	// PanicHandler is called for recovering from panics spawned internally to
	// the library (and drops them). If set to nil, panics are not recovered.
	PanicHandler func(interface{})

	// MaxRequestSize is the maximum size (in bytes) of any request that
	// kafkalink will attempt to send.
	MaxRequestSize int32 = 100 * 1024 * 1024

	// MaxResponseSize is the maximum size (in bytes) of any response that
	// kafkalink will attempt to parse. If a broker advertises a response
	// larger than this the decode fails rather than allocating the buffer.
	MaxResponseSize int32 = 100 * 1024 * 1024
)

// StdLogger is used to log error messages.
type StdLogger interface {
	Print(v ...interface{})
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

type debugLogger struct{}

func (d *debugLogger) Print(v ...interface{}) {
	Logger.Print(v...)
}

func (d *debugLogger) Printf(format string, v ...interface{}) {
	Logger.Printf(format, v...)
}

func (d *debugLogger) Println(v ...interface{}) {
	Logger.Println(v...)
}
