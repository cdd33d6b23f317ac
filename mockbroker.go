package kafkalink

import (
	"encoding/binary"
	"errors"
	"io"
	"net"
	"strconv"
	"time"
)

// TestState is a generic interface for a test state, implemented e.g. by
// *testing.T.
type TestState interface {
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
}

// MockBroker is a mock broker for use in unit tests: a TCP server on a
// kernel-selected localhost port that accepts a single connection, reads
// framed requests off it, and answers each one with the next queued
// expectation. Length prefix and correlation id are added to the response
// automatically.
//
// When running tests with one of these it is strongly recommended to specify
// a timeout to `go test` so that if the broker hangs waiting for a response,
// the test panics.
type MockBroker struct {
	brokerID     int32
	stopper      chan none
	expectations chan *brokerExpectation
	listener     net.Listener
	t            TestState
}

type brokerExpectation struct {
	response encoder
	latency  time.Duration
	before   func()
}

// BrokerID returns the id the mock broker advertises for itself.
func (b *MockBroker) BrokerID() int32 {
	return b.brokerID
}

// Addr returns the host:port the mock broker is listening on.
func (b *MockBroker) Addr() string {
	return b.listener.Addr().String()
}

// Meta returns the mock broker's address as seed-style broker metadata (id
// unknown).
func (b *MockBroker) Meta() *BrokerMeta {
	host, portStr, _ := net.SplitHostPort(b.Addr())
	port, _ := strconv.Atoi(portStr)
	return &BrokerMeta{ID: unknownBrokerID, Host: host, Port: uint16(port)}
}

// Returns queues a response to be sent for the next request received.
func (b *MockBroker) Returns(response encoder) {
	b.expectations <- &brokerExpectation{response: response}
}

// ReturnsWithLatency queues a response that is sent only after the given
// delay.
func (b *MockBroker) ReturnsWithLatency(response encoder, latency time.Duration) {
	b.expectations <- &brokerExpectation{response: response, latency: latency}
}

// ReturnsWithBefore queues a response and a callback invoked after the
// request is read but before the response is written.
func (b *MockBroker) ReturnsWithBefore(response encoder, before func()) {
	b.expectations <- &brokerExpectation{response: response, before: before}
}

// Close shuts the mock broker down, failing the test if expectations remain
// unconsumed.
func (b *MockBroker) Close() {
	if len(b.expectations) > 0 {
		b.t.Errorf("not all expectations were satisfied in mock broker with ID=%d, still waiting on %d requests", b.brokerID, len(b.expectations))
	}
	close(b.expectations)
	_ = b.listener.Close()
	<-b.stopper
}

func (b *MockBroker) serverLoop() {
	defer close(b.stopper)

	conn, err := b.listener.Accept()
	if err != nil {
		// closed by Close before anyone connected
		if !errors.Is(err, net.ErrClosed) {
			b.serverError(err, nil)
		}
		return
	}

	reqHeader := make([]byte, 4)
	resHeader := make([]byte, 8)
	for expectation := range b.expectations {
		if _, err = io.ReadFull(conn, reqHeader); err != nil {
			b.serverError(err, conn)
			return
		}

		body := make([]byte, binary.BigEndian.Uint32(reqHeader))
		if len(body) < 10 {
			b.serverError(errors.New("request too short"), conn)
			return
		}
		if _, err = io.ReadFull(conn, body); err != nil {
			b.serverError(err, conn)
			return
		}

		if expectation.before != nil {
			expectation.before()
		}
		if expectation.latency > 0 {
			time.Sleep(expectation.latency)
		}

		response, err := encode(expectation.response)
		if err != nil {
			b.serverError(err, conn)
			return
		}
		if len(response) == 0 {
			continue
		}

		binary.BigEndian.PutUint32(resHeader, uint32(len(response)+4))
		// echo the correlation id, which sits after the api key and version
		binary.BigEndian.PutUint32(resHeader[4:], binary.BigEndian.Uint32(body[4:]))
		if _, err = conn.Write(resHeader); err != nil {
			b.serverError(err, conn)
			return
		}
		if _, err = conn.Write(response); err != nil {
			b.serverError(err, conn)
			return
		}
	}

	if err = conn.Close(); err != nil {
		b.t.Error(err)
	}
}

func (b *MockBroker) serverError(err error, conn net.Conn) {
	b.t.Error(err)
	if conn != nil {
		_ = conn.Close()
	}
	_ = b.listener.Close()
}

// NewMockBroker launches a fake broker on a kernel-selected localhost port.
// It takes a TestState (e.g. *testing.T) as provided by the test framework;
// if an error occurs it is simply logged to the TestState and the broker
// exits.
func NewMockBroker(t TestState, brokerID int32) *MockBroker {
	broker := &MockBroker{
		stopper:      make(chan none),
		t:            t,
		brokerID:     brokerID,
		expectations: make(chan *brokerExpectation, 512),
	}

	var err error
	broker.listener, err = net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatal(err)
	}

	go broker.serverLoop()

	return broker
}
