// Package ingest provides the single entry point for admitting a
// parsed, signature-verified event: semantic validation, repository
// insertion, and live broadcast.
package ingest

import (
	"context"

	"github.com/nostrcore/strtr/pkg/event"
	"github.com/nostrcore/strtr/pkg/metrics"
	"github.com/nostrcore/strtr/pkg/pool"
	"github.com/nostrcore/strtr/pkg/store"
)

// Result is the outcome of Ingest, translated to the protocol's
// OK(accepted, message) shape.
type Result struct {
	Accepted bool
	Message  string
}

// Ingestor routes validated events into the repository and pool.
type Ingestor struct {
	Repo *store.Repository
	Pool *pool.Pool
}

// New returns an Ingestor over repo and p.
func New(repo *store.Repository, p *pool.Pool) *Ingestor {
	return &Ingestor{Repo: repo, Pool: p}
}

// Ingest admits ev. Signature verification is assumed to have already
// happened upstream of this call, per this repository's scope.
func (ig *Ingestor) Ingest(ctx context.Context, ev *event.Event) Result {
	if err := ev.Validate(); err != nil {
		metrics.EventsIngested.WithLabelValues(metrics.OutcomeRejected).Inc()
		return Result{false, "invalid: " + err.Error()}
	}

	if ev.Handling() == event.Parameterized && ev.DTag() == "" {
		metrics.EventsIngested.WithLabelValues(metrics.OutcomeRejected).Inc()
		return Result{false, "error: no d-tag in parametarized replaceable event"}
	}

	if ev.Handling() != event.Ephemeral {
		outcome, _ := ig.Repo.Insert(ev)
		switch outcome {
		case store.Duplicated:
			metrics.EventsIngested.WithLabelValues(metrics.OutcomeDuplicate).Inc()
			return Result{true, "duplicate: already have this event"}
		case store.PreviouslyDeleted:
			metrics.EventsIngested.WithLabelValues(metrics.OutcomeDeleted).Inc()
			return Result{false, "error: already deleted this event"}
		}
	}

	metrics.EventsIngested.WithLabelValues(metrics.OutcomeStored).Inc()
	ig.Pool.Broadcast(ctx, ev)
	return Result{true, ""}
}
