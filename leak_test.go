package kafkalink

import (
	"testing"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/require"
)

func TestCoordinatorLifecycleDoesNotLeak(t *testing.T) {
	defer leaktest.Check(t)()

	ff := newFakeFactory()
	ff.setResponse(twoBrokerResponse())

	co, err := NewCoordinator("h1:9092,h2:9092", nil, ff.factory())
	require.NoError(t, err)
	require.NoError(t, co.Start())

	_, err = co.RequireNewRoutingTable()
	require.NoError(t, err)

	require.NoError(t, co.Stop())
}
