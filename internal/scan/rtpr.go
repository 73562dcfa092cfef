package scan

import (
	"context"
	"time"

	"github.com/sebas/callsearch/internal/seq"
	"github.com/sebas/callsearch/internal/session"
	"github.com/sebas/callsearch/internal/store"
)

// RTPRScanner resolves media-metric queries (rtp.*/rtcp.* predicates) to
// sip_call_index documents by first finding matching RTPR report
// documents, then joining each back to its SIP leg via call_id (spec.md
// §4.4).
type RTPRScanner struct {
	Store              store.Adapter
	AggregationTimeout time.Duration
}

// NewRTPRScanner returns an RTPRScanner reading from adapter, using
// aggregationTimeout as the join window's lower-bound padding.
func NewRTPRScanner(adapter store.Adapter, aggregationTimeout time.Duration) *RTPRScanner {
	return &RTPRScanner{Store: adapter, AggregationTimeout: aggregationTimeout}
}

// Scan determines which of rtpr_rtp_index / rtpr_rtcp_index to query from
// the presence of rtp.*/rtcp.* predicates, merges the two streams by
// started_at, and joins each RTPR document to its SIP leg.
func (s *RTPRScanner) Scan(ctx context.Context, createdAt, terminatedAt int64, query []session.Predicate) *seq.Sequence[session.LegDoc] {
	var hasRTP, hasRTCP bool
	for _, p := range query {
		switch p.Domain() {
		case session.DomainRTP:
			hasRTP = true
		case session.DomainRTCP:
			hasRTCP = true
		}
	}

	filter := rtprFilter(query)
	tr := store.TimeRange{Start: createdAt, End: terminatedAt}

	var sources []*seq.Sequence[session.RTPRDoc]
	if hasRTP {
		sources = append(sources, decodeRTPR(s.Store.Find(ctx, store.CollRTPRIndex, tr, filter)))
	}
	if hasRTCP {
		sources = append(sources, decodeRTPR(s.Store.Find(ctx, store.CollRTCPRIndex, tr, filter)))
	}
	if len(sources) == 0 {
		return seq.Empty[session.LegDoc]()
	}

	merged := seq.Merge(func(a, b session.RTPRDoc) bool { return a.StartedAt < b.StartedAt }, sources...)

	out := seq.New(func() (session.LegDoc, bool, error) {
		for {
			r, ok, err := merged.Next()
			if err != nil || !ok {
				return session.LegDoc{}, false, err
			}
			if r.CallID == "" {
				continue
			}
			leg, found, err := s.joinSIP(ctx, r)
			if err != nil {
				return session.LegDoc{}, false, err
			}
			if !found {
				continue
			}
			return leg, true, nil
		}
	})
	return out.WithClose(func() { merged.Close() })
}

// joinSIP looks up the SIP document matching call_id = r.CallID whose
// created_at falls in [r.StartedAt - aggregationTimeout, r.StartedAt],
// taking the first such document (spec.md §4.4 step 4).
func (s *RTPRScanner) joinSIP(ctx context.Context, r session.RTPRDoc) (session.LegDoc, bool, error) {
	tr := store.TimeRange{
		Start: r.StartedAt - s.AggregationTimeout.Milliseconds(),
		End:   r.StartedAt,
	}
	filter := []session.Predicate{{Path: "call_id", Op: session.OpEq, Value: r.CallID}}
	docs := s.Store.Find(ctx, store.CollSIPCallIndex, tr, filter)
	defer docs.Close()

	for {
		d, ok, err := docs.Next()
		if err != nil {
			return session.LegDoc{}, false, err
		}
		if !ok {
			return session.LegDoc{}, false, nil
		}
		leg, ok := store.DecodeLeg(d)
		if !ok {
			continue
		}
		return leg, true, nil
	}
}

// rtprFilter keeps every non-sip.* predicate (spec.md §4.4 step 2).
func rtprFilter(query []session.Predicate) []session.Predicate {
	out := make([]session.Predicate, 0, len(query))
	for _, p := range query {
		if p.Domain() == session.DomainSIP {
			continue
		}
		out = append(out, p)
	}
	return out
}

func decodeRTPR(docs *seq.Sequence[store.Document]) *seq.Sequence[session.RTPRDoc] {
	out := seq.New(func() (session.RTPRDoc, bool, error) {
		for {
			d, ok, err := docs.Next()
			if err != nil || !ok {
				return session.RTPRDoc{}, false, err
			}
			r, ok := store.DecodeRTPR(d)
			if !ok {
				continue
			}
			return r, true, nil
		}
	})
	return out.WithClose(func() { docs.Close() })
}
