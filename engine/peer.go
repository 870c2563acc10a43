package engine

import "fmt"

// peerLink holds a Worker's cross-linking state: its own bounded
// peer-receive queue (populated by the peer), and a reference to the
// peer's peer-receive queue (for sending), per spec.md §3's invariant:
// "a Worker's peer-send reference is non-null iff cross-linked; when it
// is, the peer's peer-receive queue is the target."
type peerLink struct {
	recv chan Item // this Worker's peer-receive queue; created by newPeerLink
	send chan Item // the peer's peer-receive queue; nil until connected
}

func newPeerLink(capacity int) *peerLink {
	return &peerLink{recv: make(chan Item, capacity)}
}

// connect cross-links a and b symmetrically. Idempotent: the first call
// wins, and connecting a→b then b→a (or the reverse order) produces the
// same end state, per spec.md §4.3 step 3 and the commutativity law of
// spec.md §8.
func connect(a, b *peerLink) {
	if a.send != nil || b.send != nil {
		return
	}
	a.send = b.recv
	b.send = a.recv
}

// sendToPeer performs the non-blocking enqueue spec.md §5 requires for
// peer forwarding: if the peer's queue is full, it is an error unless
// ignore is set (used only during Worker teardown to unblock a peer
// that may be waiting, per spec.md §4.2 "Worker finish" step 2).
func (p *peerLink) sendToPeer(item Item, ignore bool) error {
	if p.send == nil {
		if ignore {
			return nil
		}
		return fmt.Errorf("no other program")
	}
	select {
	case p.send <- item:
		return nil
	default:
		if ignore {
			return nil
		}
		return fmt.Errorf("other program blocked")
	}
}

// connected reports whether this Worker has been cross-linked to a peer.
func (p *peerLink) connected() bool {
	return p.send != nil
}
