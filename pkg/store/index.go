package store

import (
	"strconv"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/nostrcore/strtr/pkg/event"
)

// Index maps an index key to the bucket holding every managed event
// that carries that key. Keys are computed per-event, possibly more
// than one per event for multi-valued indices (e and p tags).
type Index struct {
	buckets *xsync.MapOf[string, *Bucket]
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{buckets: xsync.NewMapOf[string, *Bucket]()}
}

// bucketFor returns the bucket for key, creating it on first use.
func (x *Index) bucketFor(key string) *Bucket {
	b, _ := x.buckets.LoadOrCompute(key, func() *Bucket { return NewBucket() })
	return b
}

// Insert inserts mev into the bucket for each of keys.
func (x *Index) Insert(mev *Managed, keys []string) {
	for _, k := range keys {
		x.bucketFor(k).Insert(mev)
	}
}

// Candidate is one index key together with its bucket; the repository's
// query planner sums Bucket.Size() over candidates to pick the smallest
// scan.
type Candidate struct {
	Key    string
	Bucket *Bucket
}

// CandidateBuckets returns, for each of keys that has a bucket, the key
// and its bucket. Missing keys are skipped.
func (x *Index) CandidateBuckets(keys []string) []Candidate {
	var out []Candidate
	for _, k := range keys {
		if b, ok := x.buckets.Load(k); ok {
			out = append(out, Candidate{Key: k, Bucket: b})
		}
	}
	return out
}

// AuthorKeys returns the author-index key for ev.
func AuthorKeys(ev *event.Event) []string { return []string{ev.Pubkey} }

// KindKeys returns the kind-index key for ev.
func KindKeys(ev *event.Event) []string { return []string{strconv.Itoa(ev.Kind)} }

// ETagKeys returns the eTag-index keys for ev (one per "e" tag value).
func ETagKeys(ev *event.Event) []string { return tagKeys(ev, "e") }

// PTagKeys returns the pTag-index keys for ev (one per "p" tag value).
func PTagKeys(ev *event.Event) []string { return tagKeys(ev, "p") }

func tagKeys(ev *event.Event, name string) []string {
	var out []string
	for _, t := range ev.Tags {
		if t.Name() == name && t.Value() != "" {
			out = append(out, t.Value())
		}
	}
	return out
}

func intKeys(kinds []int) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = strconv.Itoa(k)
	}
	return out
}
