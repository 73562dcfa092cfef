// Package search wires the pipeline end to end: Query → Parser →
// {SIP-Scanner | RTPR-Scanner} → Correlation Engine → Projector (spec.md
// §2's data-flow diagram). It is the one place that knows how the pieces
// compose; every other package only knows its own stage.
package search

import (
	"context"

	"github.com/sebas/callsearch/internal/attributes"
	"github.com/sebas/callsearch/internal/correlate"
	"github.com/sebas/callsearch/internal/project"
	"github.com/sebas/callsearch/internal/query"
	"github.com/sebas/callsearch/internal/scan"
	"github.com/sebas/callsearch/internal/seq"
	"github.com/sebas/callsearch/internal/session"
	"github.com/sebas/callsearch/internal/store"
)

// Engine is the assembled search pipeline.
type Engine struct {
	parser     *query.Parser
	sip        *scan.SIPScanner
	rtpr       *scan.RTPRScanner
	correlator *correlate.Engine
}

// New assembles an Engine over adapter, using catalog for query
// type-coercion and cfg for the correlation engine's tunables.
func New(adapter store.Adapter, catalog *attributes.Catalog, cfg correlate.Config) *Engine {
	return &Engine{
		parser:     query.NewParser(catalog),
		sip:        scan.NewSIPScanner(adapter),
		rtpr:       scan.NewRTPRScanner(adapter, cfg.AggregationTimeout),
		correlator: correlate.NewEngine(adapter, cfg),
	}
}

// Search runs req through the full pipeline, returning a lazy stream of
// projected results. The caller pulls; every stage is lazy (spec.md §2).
//
// A query that references rtp.*/rtcp.* is resolved through the RTPR
// scanner (which joins back to sip_call_index); every other query is
// resolved directly through the SIP scanner — the two branches of
// spec.md §2's `{SIP-Scanner | RTPR-Scanner→SIP-lookup}` are mutually
// exclusive, not merged.
func (e *Engine) Search(ctx context.Context, req session.SearchRequest) *seq.Sequence[session.SearchResult] {
	predicates := e.parser.Parse(ctx, req.Query)

	var matched *seq.Sequence[session.LegDoc]
	if referencesMedia(predicates) {
		matched = e.rtpr.Scan(ctx, req.CreatedAt, req.TerminatedAt, predicates)
	} else {
		matched = e.sip.Scan(ctx, req.CreatedAt, req.TerminatedAt, predicates)
	}

	calls := e.correlator.Run(ctx, req.CreatedAt, matched)

	out := seq.New(func() (session.SearchResult, bool, error) {
		for {
			c, ok, err := calls.Next()
			if err != nil || !ok {
				return session.SearchResult{}, false, err
			}
			r, ok := project.Call(c)
			if !ok {
				continue
			}
			return r, true, nil
		}
	})
	return out.WithClose(func() { calls.Close() })
}

func referencesMedia(predicates []session.Predicate) bool {
	for _, p := range predicates {
		switch p.Domain() {
		case session.DomainRTP, session.DomainRTCP:
			return true
		}
	}
	return false
}
