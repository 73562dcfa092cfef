// Package store defines the abstract view of the document store every
// scanner reads through (spec.md §4.2), grounded on the teacher's
// "Interfaces are defined here to allow swapping implementations" pattern
// (internal/signaling/store/repository.go's CDRRepository /
// ProfileRepository / SessionRepository): a narrow interface with a
// filtered lookup, currently served by the in-memory implementation
// (internal/store/memdoc).
package store

import (
	"context"

	"github.com/sebas/callsearch/internal/callerr"
	"github.com/sebas/callsearch/internal/seq"
	"github.com/sebas/callsearch/internal/session"
)

// Logical collection names referenced by the search (spec.md §6).
const (
	CollSIPCallIndex = "sip_call_index"
	CollRTPRIndex    = "rtpr_rtp_index"
	CollRTCPRIndex   = "rtpr_rtcp_index"
	CollAttributes   = "attributes"
)

// TimeRange is a closed interval in milliseconds since epoch.
type TimeRange struct {
	Start int64
	End   int64
}

// Contains reports whether ts falls within [Start, End].
func (r TimeRange) Contains(ts int64) bool {
	return ts >= r.Start && ts <= r.End
}

// Document is an opaque key-value record as stored at rest. The core never
// holds onto a Document past decoding it into a session.LegDoc or
// session.RTPRDoc through the narrow accessors below (spec.md's
// "dynamic-to-static typing" design note).
type Document map[string]any

// Adapter is the abstract document store. Implementations may shard a
// logical collection across time-prefixed physical collections; Find picks
// the shards overlapping tr and concatenates their results in ascending
// insertion order per shard. It is purely pull-based: no results are
// buffered beyond a small read-ahead, and a failure is surfaced as a
// terminal error on the returned sequence rather than a silent partial
// result (spec.md §4.2).
type Adapter interface {
	// Find returns documents in collection (or its time-sharded physical
	// collections) matching tr and every predicate in filter.
	Find(ctx context.Context, collection string, tr TimeRange, filter []session.Predicate) *seq.Sequence[Document]

	// ListCollectionNames enumerates the physical collections whose name
	// starts with prefix.
	ListCollectionNames(ctx context.Context, prefix string) ([]string, error)
}

// DecodeLeg narrows a raw sip_call_index Document to a session.LegDoc.
// Missing required fields make ok false (spec.md §7: malformed documents
// are skipped, not fatal).
func DecodeLeg(d Document) (session.LegDoc, bool) {
	callID, ok := str(d, "call_id")
	if !ok || callID == "" {
		return session.LegDoc{}, false
	}
	caller, ok := str(d, "caller")
	if !ok {
		return session.LegDoc{}, false
	}
	callee, ok := str(d, "callee")
	if !ok {
		return session.LegDoc{}, false
	}
	createdAt, ok := i64(d, "created_at")
	if !ok {
		return session.LegDoc{}, false
	}
	srcAddr, _ := str(d, "src_addr")
	dstAddr, _ := str(d, "dst_addr")
	state, _ := str(d, "state")

	leg := session.LegDoc{
		CallID:    callID,
		Caller:    caller,
		Callee:    callee,
		CreatedAt: createdAt,
		SrcAddr:   srcAddr,
		DstAddr:   dstAddr,
		State:     state,
	}
	if v, ok := str(d, "x_call_id"); ok {
		leg.XCallID = v
	}
	if v, ok := str(d, "error_code"); ok {
		leg.ErrorCode = v
	}
	if v, ok := str(d, "src_host"); ok {
		leg.SrcHost = v
	}
	if v, ok := str(d, "dst_host"); ok {
		leg.DstHost = v
	}
	if v, ok := i64(d, "terminated_at"); ok {
		leg.TerminatedAt = &v
	}
	if v, ok := d["duration"]; ok {
		if n, ok := toInt(v); ok {
			leg.Duration = &n
		}
	}
	return leg, true
}

// DecodeRTPR narrows a raw rtpr_rtp_index / rtpr_rtcp_index Document to a
// session.RTPRDoc.
func DecodeRTPR(d Document) (session.RTPRDoc, bool) {
	startedAt, ok := i64(d, "started_at")
	if !ok {
		return session.RTPRDoc{}, false
	}
	r := session.RTPRDoc{StartedAt: startedAt}
	if v, ok := str(d, "call_id"); ok {
		r.CallID = v
	}
	return r, true
}

func str(d Document, key string) (string, bool) {
	v, ok := d[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func i64(d Document, key string) (int64, bool) {
	v, ok := d[key]
	if !ok || v == nil {
		return 0, false
	}
	return toInt64(v)
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func toInt(v any) (int, bool) {
	n, ok := toInt64(v)
	return int(n), ok
}

// NewUnavailableError wraps callerr.ErrStoreUnavailable with adapter-level
// detail, for use by implementations under internal/store/*.
func NewUnavailableError(detail string) error {
	return &storeError{detail: detail}
}

type storeError struct{ detail string }

func (e *storeError) Error() string { return "store: " + e.detail + ": " + callerr.ErrStoreUnavailable.Error() }
func (e *storeError) Unwrap() error { return callerr.ErrStoreUnavailable }
