// Package pool implements the live-subscription registry: clients
// register a filter set under (peerID, subID) and receive newly
// admitted events that match it.
package pool

import (
	"context"

	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"

	"github.com/nostrcore/strtr/pkg/event"
	"github.com/nostrcore/strtr/pkg/filter"
	"github.com/nostrcore/strtr/pkg/metrics"
)

// key identifies one subscription within the pool.
type key struct {
	peerID string
	subID  string
}

// Sink receives events matched to a subscription. Implementations
// must not block indefinitely; a slow sink must not stall delivery to
// other subscriptions.
type Sink interface {
	Deliver(subID string, ev *event.Event) error
}

// Subscription is one client's standing query.
type Subscription struct {
	PeerID  string
	SubID   string
	Filters []*filter.Filter
	Sink    Sink
}

func (s *Subscription) matches(ev *event.Event) bool {
	for _, f := range s.Filters {
		if f.Match(ev) {
			return true
		}
	}
	return false
}

// maxConcurrentDeliveries bounds how many subscriptions Broadcast
// fans an event out to at once, so one slow sink cannot serialize
// behind another.
const maxConcurrentDeliveries = 64

// Pool is the registry of live subscriptions.
type Pool struct {
	subs *xsync.MapOf[key, *Subscription]
}

// New returns an empty pool.
func New() *Pool {
	return &Pool{subs: xsync.NewMapOf[key, *Subscription]()}
}

// Register stores sub under (sub.PeerID, sub.SubID), replacing any
// existing subscription under that key.
func (p *Pool) Register(sub *Subscription) {
	_, existed := p.subs.LoadAndStore(key{sub.PeerID, sub.SubID}, sub)
	if !existed {
		metrics.ActiveSubscriptions.Inc()
	}
}

// Unregister removes the subscription under (peerID, subID), if any.
func (p *Pool) Unregister(peerID, subID string) {
	if _, ok := p.subs.LoadAndDelete(key{peerID, subID}); ok {
		metrics.ActiveSubscriptions.Dec()
	}
}

// UnregisterPeer removes every subscription belonging to peerID, used
// on connection teardown.
func (p *Pool) UnregisterPeer(peerID string) {
	var dead []key
	p.subs.Range(func(k key, _ *Subscription) bool {
		if k.peerID == peerID {
			dead = append(dead, k)
		}
		return true
	})
	for _, k := range dead {
		if _, ok := p.subs.LoadAndDelete(k); ok {
			metrics.ActiveSubscriptions.Dec()
		}
	}
}

// Broadcast delivers ev to every subscription whose filters match it,
// bounded to maxConcurrentDeliveries concurrent sink calls.
func (p *Pool) Broadcast(ctx context.Context, ev *event.Event) {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDeliveries)
	p.subs.Range(func(_ key, sub *Subscription) bool {
		if !sub.matches(ev) {
			return true
		}
		s := sub
		g.Go(func() error {
			return s.Sink.Deliver(s.SubID, ev)
		})
		return true
	})
	_ = g.Wait()
}

// Size returns the number of live subscriptions, for metrics.
func (p *Pool) Size() int {
	return p.subs.Size()
}
