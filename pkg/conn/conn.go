// Package conn implements the per-connection coordinator: a set of
// active subscriptions on one peer, dispatching parsed inbound
// envelopes to the ingestor, repository, and subscription pool, and
// writing outbound envelopes back to the peer.
package conn

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/nostrcore/strtr/pkg/chk"
	"github.com/nostrcore/strtr/pkg/envelope"
	"github.com/nostrcore/strtr/pkg/event"
	"github.com/nostrcore/strtr/pkg/filter"
	"github.com/nostrcore/strtr/pkg/ingest"
	"github.com/nostrcore/strtr/pkg/pool"
	"github.com/nostrcore/strtr/pkg/store"
)

// Writer sends a single outbound frame to the peer. Implementations
// are provided by the transport layer (pkg/server).
type Writer interface {
	WriteFrame(p []byte) error
}

// Conn coordinates one accepted client connection.
type Conn struct {
	mu       sync.Mutex
	PeerID   string
	writer   Writer
	repo     *store.Repository
	pool     *pool.Pool
	ingestor *ingest.Ingestor
	subIDs   map[string]bool
	closed   atomic.Bool
}

// New returns a coordinator for a freshly accepted connection.
func New(writer Writer, repo *store.Repository, p *pool.Pool, ig *ingest.Ingestor) *Conn {
	return &Conn{
		PeerID:   uuid.NewString(),
		writer:   writer,
		repo:     repo,
		pool:     p,
		ingestor: ig,
		subIDs:   make(map[string]bool),
	}
}

// sink adapts Conn to pool.Sink, so broadcast delivery reuses the same
// envelope-writing path as REQ-time streaming.
type sink struct{ c *Conn }

func (s sink) Deliver(subID string, ev *event.Event) error {
	return s.c.writeEvent(subID, ev)
}

func (c *Conn) writeEvent(subID string, ev *event.Event) error {
	frame, err := envelope.Event(subID, ev)
	if chk.E(err) {
		return err
	}
	return c.writer.WriteFrame(frame)
}

// HandleFrame parses and dispatches a single inbound raw frame. Errors
// from malformed or unsupported messages are reported to the peer via
// NOTICE and otherwise ignored; the connection is never torn down by
// this method.
func (c *Conn) HandleFrame(ctx context.Context, raw []byte) {
	in, err := envelope.Parse(raw)
	if err != nil {
		c.notice(err.Error())
		return
	}
	switch in.Tag {
	case envelope.TagEvent:
		c.handleEvent(ctx, in.Event)
	case envelope.TagReq:
		c.handleReq(ctx, in.SubID, in.Filters)
	case envelope.TagClose:
		c.handleClose(in.SubID)
	}
}

func (c *Conn) handleEvent(ctx context.Context, ev *event.Event) {
	res := c.ingestor.Ingest(ctx, ev)
	frame, err := envelope.OK(ev.ID, res.Accepted, res.Message)
	if chk.E(err) {
		return
	}
	chk.E(c.writer.WriteFrame(frame))
}

func (c *Conn) handleReq(ctx context.Context, subID string, filters []*filter.Filter) {
	for _, ev := range c.repo.Query(filters) {
		if chk.E(c.writeEvent(subID, ev)) {
			return
		}
	}
	frame, err := envelope.EOSE(subID)
	if chk.E(err) {
		return
	}
	if chk.E(c.writer.WriteFrame(frame)) {
		return
	}

	live := effectiveFilters(filters)
	if len(live) == 0 {
		closed, err := envelope.Closed(subID, "error: no effective filter")
		if chk.E(err) {
			return
		}
		chk.E(c.writer.WriteFrame(closed))
		return
	}

	c.pool.Register(&pool.Subscription{
		PeerID:  c.PeerID,
		SubID:   subID,
		Filters: live,
		Sink:    sink{c: c},
	})
	c.mu.Lock()
	c.subIDs[subID] = true
	c.mu.Unlock()
}

func effectiveFilters(filters []*filter.Filter) []*filter.Filter {
	var live []*filter.Filter
	for _, f := range filters {
		if !f.TriviallyUnsatisfiable() {
			live = append(live, f)
		}
	}
	return live
}

func (c *Conn) handleClose(subID string) {
	c.pool.Unregister(c.PeerID, subID)
	c.mu.Lock()
	delete(c.subIDs, subID)
	c.mu.Unlock()
}

func (c *Conn) notice(msg string) {
	frame, err := envelope.Notice(msg)
	if chk.E(err) {
		return
	}
	chk.E(c.writer.WriteFrame(frame))
}

// Close unregisters every subscription this connection holds. Safe to
// call more than once.
func (c *Conn) Close() {
	if c.closed.Swap(true) {
		return
	}
	c.pool.UnregisterPeer(c.PeerID)
}
