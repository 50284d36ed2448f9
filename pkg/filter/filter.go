// Package filter implements the subscription filter predicate: a
// conjunction of optional constraints matched against a single event.
package filter

import (
	"strings"

	"github.com/nostrcore/strtr/pkg/event"
)

// DefaultLimit is the number of events a filter with no explicit limit
// returns. MaxLimit is the hard ceiling on any filter's limit; it
// defaults to 500 but is overridable at startup via pkg/config so an
// operator can tune it without a rebuild.
const DefaultLimit = 500

var MaxLimit = 500

// Filter is a single subscription predicate. Nil slice/map fields mean
// "unconstrained" on that dimension.
type Filter struct {
	IDs     []string
	Authors []string
	Kinds   []int
	Tags    map[string][]string // "#e" -> values, "#p" -> values, etc.
	Since   *int64
	Until   *int64
	Limit   *int
	Search  string
}

// EffectiveLimit returns the filter's limit, or DefaultLimit when
// unset, clamped to [0, MaxLimit].
func (f *Filter) EffectiveLimit() int {
	n := DefaultLimit
	if f.Limit != nil {
		n = *f.Limit
	}
	if n < 0 {
		n = 0
	}
	if n > MaxLimit {
		n = MaxLimit
	}
	return n
}

// TriviallyUnsatisfiable reports whether this filter can never match
// any event: an array-typed field present but empty, a since/until
// that excludes every timestamp, or an explicit limit of zero.
func (f *Filter) TriviallyUnsatisfiable() bool {
	if f.IDs != nil && len(f.IDs) == 0 {
		return true
	}
	if f.Authors != nil && len(f.Authors) == 0 {
		return true
	}
	if f.Kinds != nil && len(f.Kinds) == 0 {
		return true
	}
	for _, v := range f.Tags {
		if v != nil && len(v) == 0 {
			return true
		}
	}
	if f.Since != nil && f.Until != nil && *f.Since > *f.Until {
		return true
	}
	if f.Limit != nil && *f.Limit == 0 {
		return true
	}
	return false
}

// Match reports whether ev satisfies every constraint set on f.
func (f *Filter) Match(ev *event.Event) bool {
	if f.IDs != nil && !containsStr(f.IDs, ev.ID) {
		return false
	}
	if f.Authors != nil && !containsStr(f.Authors, ev.Pubkey) {
		return false
	}
	if f.Kinds != nil && !containsInt(f.Kinds, ev.Kind) {
		return false
	}
	if f.Since != nil && ev.CreatedAt < *f.Since {
		return false
	}
	if f.Until != nil && ev.CreatedAt > *f.Until {
		return false
	}
	for name, values := range f.Tags {
		if !matchesAnyTag(ev, name, values) {
			return false
		}
	}
	if f.Search != "" && !matchSearch(ev, f.Search) {
		return false
	}
	return true
}

// matchSearch implements this repository's resolution of the
// open-ended `search` field: a case-insensitive substring match
// against content.
func matchSearch(ev *event.Event, q string) bool {
	return strings.Contains(strings.ToLower(ev.Content), strings.ToLower(q))
}

func matchesAnyTag(ev *event.Event, name string, values []string) bool {
	tagName := strings.TrimPrefix(name, "#")
	for _, t := range ev.Tags {
		if t.Name() != tagName {
			continue
		}
		if containsStr(values, t.Value()) {
			return true
		}
	}
	return false
}

func containsStr(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsInt(set []int, v int) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
