package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectIsSymmetric(t *testing.T) {
	a := newPeerLink(4)
	b := newPeerLink(4)
	connect(a, b)

	assert.Equal(t, b.recv, a.send, "connect must cross-link a.send to b.recv")
	assert.Equal(t, a.recv, b.send, "connect must cross-link b.send to a.recv")
}

func TestConnectIsIdempotent(t *testing.T) {
	a := newPeerLink(4)
	b := newPeerLink(4)
	c := newPeerLink(4)

	connect(a, b)
	connect(a, c) // must be a no-op: a is already linked

	assert.Equal(t, b.recv, a.send, "a second connect call must not rewire an already-connected peer")
	assert.Nil(t, c.send, "the rejected side of a second connect must remain unconnected")
}

func TestSendToPeerUnconnected(t *testing.T) {
	a := newPeerLink(4)
	err := a.sendToPeer(Line("x"), false)
	assert.Error(t, err, "expected an error sending on an unconnected peer link")

	err = a.sendToPeer(Line("x"), true)
	assert.NoError(t, err, "ignore=true must suppress the unconnected error")
}

func TestSendToPeerFullQueue(t *testing.T) {
	a := newPeerLink(1)
	b := newPeerLink(1)
	connect(a, b)

	require.NoError(t, a.sendToPeer(Line("first"), false))

	err := a.sendToPeer(Line("second"), false)
	assert.Error(t, err, "expected an error when the peer queue is full")

	err = a.sendToPeer(Line("third"), true)
	assert.NoError(t, err, "ignore=true must suppress the full-queue error")
}

func TestConnectedReportsState(t *testing.T) {
	a := newPeerLink(4)
	assert.False(t, a.connected(), "a fresh peer link must not be connected")

	b := newPeerLink(4)
	connect(a, b)
	assert.True(t, a.connected(), "a connected peer link must report connected")
}
