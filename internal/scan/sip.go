// Package scan resolves a parsed query to a stream of sip_call_index
// documents: directly (SIPScanner, spec.md §4.3) or indirectly through a
// media-report join (RTPRScanner, spec.md §4.4).
package scan

import (
	"context"

	"github.com/sebas/callsearch/internal/seq"
	"github.com/sebas/callsearch/internal/session"
	"github.com/sebas/callsearch/internal/store"
)

// SIPScanner resolves SIP-only queries to a lazy stream of sip_call_index
// documents.
type SIPScanner struct {
	Store store.Adapter
}

// NewSIPScanner returns a SIPScanner reading from adapter.
func NewSIPScanner(adapter store.Adapter) *SIPScanner {
	return &SIPScanner{Store: adapter}
}

// Scan returns documents with created_at in [createdAt, terminatedAt]
// satisfying the conjunction of every non-rtp/rtcp/sip.method predicate.
// The sip.method axis is deliberately ignored here; it is applied
// downstream by the projector via the fixed INVITE label (spec.md §4.3).
func (s *SIPScanner) Scan(ctx context.Context, createdAt, terminatedAt int64, query []session.Predicate) *seq.Sequence[session.LegDoc] {
	filter := sipFilter(query)
	tr := store.TimeRange{Start: createdAt, End: terminatedAt}
	docs := s.Store.Find(ctx, store.CollSIPCallIndex, tr, filter)
	return decodeLegs(docs)
}

// sipFilter keeps predicates this layer is responsible for applying:
// everything except rtp.*, rtcp.* and the sip.method axis.
func sipFilter(query []session.Predicate) []session.Predicate {
	out := make([]session.Predicate, 0, len(query))
	for _, p := range query {
		switch p.Domain() {
		case session.DomainRTP, session.DomainRTCP:
			continue
		}
		if p.Path == "sip.method" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// decodeLegs narrows a raw document sequence to LegDoc, skipping malformed
// documents rather than failing the search (spec.md §7).
func decodeLegs(docs *seq.Sequence[store.Document]) *seq.Sequence[session.LegDoc] {
	out := seq.New(func() (session.LegDoc, bool, error) {
		for {
			d, ok, err := docs.Next()
			if err != nil || !ok {
				return session.LegDoc{}, false, err
			}
			leg, ok := store.DecodeLeg(d)
			if !ok {
				continue
			}
			return leg, true, nil
		}
	})
	return out.WithClose(func() { docs.Close() })
}
