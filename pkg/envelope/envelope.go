// Package envelope parses inbound client-to-relay frames and
// constructs outbound relay-to-client frames, per the protocol's
// JSON-array message framing.
package envelope

import (
	"encoding/json"
	"fmt"

	"github.com/nostrcore/strtr/pkg/event"
	"github.com/nostrcore/strtr/pkg/filter"
)

// Tag names understood on the client-to-relay direction.
const (
	TagEvent = "EVENT"
	TagReq   = "REQ"
	TagClose = "CLOSE"
)

// Inbound is a parsed client-to-relay message.
type Inbound struct {
	Tag     string
	Event   *event.Event
	SubID   string
	Filters []*filter.Filter
}

// ErrUnsupported indicates a structurally valid envelope whose tag
// this relay does not implement.
type ErrUnsupported struct{ Tag string }

func (e *ErrUnsupported) Error() string {
	return fmt.Sprintf("unsupported message type: %s", e.Tag)
}

// ErrMalformed indicates a frame that could not be parsed, either as a
// tagged JSON array at all (Raw holds the whole frame) or as the
// message its tag names (Raw holds only the tag).
type ErrMalformed struct{ Raw string }

func (e *ErrMalformed) Error() string {
	return fmt.Sprintf("malformed message: %s", e.Raw)
}

// Parse identifies and decodes a single raw client-to-relay frame.
func Parse(raw []byte) (*Inbound, error) {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil || len(arr) == 0 {
		return nil, &ErrMalformed{Raw: string(raw)}
	}
	var tag string
	if err := json.Unmarshal(arr[0], &tag); err != nil {
		return nil, &ErrMalformed{Raw: string(raw)}
	}
	switch tag {
	case TagEvent:
		return parseEvent(arr)
	case TagReq:
		return parseReq(arr)
	case TagClose:
		return parseClose(arr)
	default:
		return nil, &ErrUnsupported{Tag: tag}
	}
}

func parseEvent(arr []json.RawMessage) (*Inbound, error) {
	if len(arr) != 2 {
		return nil, &ErrMalformed{Raw: "EVENT"}
	}
	var ev event.Event
	if err := json.Unmarshal(arr[1], &ev); err != nil {
		return nil, &ErrMalformed{Raw: "EVENT"}
	}
	return &Inbound{Tag: TagEvent, Event: &ev}, nil
}

func parseReq(arr []json.RawMessage) (*Inbound, error) {
	if len(arr) < 3 {
		return nil, &ErrMalformed{Raw: "REQ"}
	}
	var subID string
	if err := json.Unmarshal(arr[1], &subID); err != nil {
		return nil, &ErrMalformed{Raw: "REQ"}
	}
	filters := make([]*filter.Filter, 0, len(arr)-2)
	for _, raw := range arr[2:] {
		var wf wireFilter
		if err := json.Unmarshal(raw, &wf); err != nil {
			return nil, &ErrMalformed{Raw: "REQ"}
		}
		filters = append(filters, wf.toFilter())
	}
	return &Inbound{Tag: TagReq, SubID: subID, Filters: filters}, nil
}

func parseClose(arr []json.RawMessage) (*Inbound, error) {
	if len(arr) != 2 {
		return nil, &ErrMalformed{Raw: "CLOSE"}
	}
	var subID string
	if err := json.Unmarshal(arr[1], &subID); err != nil {
		return nil, &ErrMalformed{Raw: "CLOSE"}
	}
	return &Inbound{Tag: TagClose, SubID: subID}, nil
}

// wireFilter mirrors the JSON shape of a filter, including the
// dynamic "#x" tag-filter keys, before it is turned into filter.Filter.
type wireFilter struct {
	IDs     []string            `json:"ids,omitempty"`
	Authors []string            `json:"authors,omitempty"`
	Kinds   []int               `json:"kinds,omitempty"`
	Since   *int64              `json:"since,omitempty"`
	Until   *int64              `json:"until,omitempty"`
	Limit   *int                `json:"limit,omitempty"`
	Search  string              `json:"search,omitempty"`
	Extra   map[string][]string `json:"-"`
}

// UnmarshalJSON decodes the fixed fields plus any "#x" tag-filter key
// into Extra.
func (w *wireFilter) UnmarshalJSON(data []byte) error {
	type alias wireFilter
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*w = wireFilter(a)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	w.Extra = make(map[string][]string)
	for k, v := range raw {
		if len(k) < 2 || k[0] != '#' {
			continue
		}
		var vals []string
		if err := json.Unmarshal(v, &vals); err != nil {
			return fmt.Errorf("envelope: tag filter %q must be an array of strings", k)
		}
		w.Extra[k] = vals
	}
	return nil
}

func (w *wireFilter) toFilter() *filter.Filter {
	return &filter.Filter{
		IDs:     w.IDs,
		Authors: w.Authors,
		Kinds:   w.Kinds,
		Tags:    w.Extra,
		Since:   w.Since,
		Until:   w.Until,
		Limit:   w.Limit,
		Search:  w.Search,
	}
}

// Outbound constructors for relay-to-client frames.

// Event builds an ["EVENT", subId, event] frame.
func Event(subID string, ev *event.Event) ([]byte, error) {
	return json.Marshal([]any{"EVENT", subID, ev})
}

// OK builds an ["OK", eventId, accepted, message] frame.
func OK(eventID string, accepted bool, message string) ([]byte, error) {
	return json.Marshal([]any{"OK", eventID, accepted, message})
}

// EOSE builds an ["EOSE", subId] frame.
func EOSE(subID string) ([]byte, error) {
	return json.Marshal([]any{"EOSE", subID})
}

// Closed builds a ["CLOSED", subId, message] frame.
func Closed(subID, message string) ([]byte, error) {
	return json.Marshal([]any{"CLOSED", subID, message})
}

// Notice builds a ["NOTICE", message] frame.
func Notice(message string) ([]byte, error) {
	return json.Marshal([]any{"NOTICE", message})
}
