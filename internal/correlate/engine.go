// Package correlate implements the correlation engine: spec.md §4.7, the
// heart of the system. It consumes the matched SIP document stream and
// emits each logical call exactly once, expanding it transitively by three
// rules (pair discovery, second sighting, cross-call-id closure).
//
// The CorrelatedCall lifecycle (empty → building → frozen) is modeled on
// the teacher's explicit dialog state machine
// (internal/signaling/dialog/state.go's CallState/validTransitions), and
// the call-id-keyed dedup loop is grounded on
// SIfoxDevTeam-heplify/decoder/correlator.go's cache-keyed correlation
// lookups (there, an SSRC/IP:port key gates a correlation; here, a call-id
// does).
package correlate

import (
	"context"
	"time"

	"github.com/sebas/callsearch/internal/seq"
	"github.com/sebas/callsearch/internal/session"
	"github.com/sebas/callsearch/internal/store"
)

// Config holds the engine's tunables (spec.md §6).
type Config struct {
	AggregationTimeout    time.Duration
	TerminationTimeout    time.Duration
	MaxLegs               int
	UseXCorrelationHeader bool
}

// DefaultConfig returns spec.md §4.7's defaults.
func DefaultConfig() Config {
	return Config{
		AggregationTimeout:    60 * time.Second,
		TerminationTimeout:    10 * time.Second,
		MaxLegs:               10,
		UseXCorrelationHeader: true,
	}
}

// Engine is the correlation engine.
type Engine struct {
	Store  store.Adapter
	Config Config
}

// NewEngine returns an Engine reading candidate legs from adapter.
func NewEngine(adapter store.Adapter, cfg Config) *Engine {
	return &Engine{Store: adapter, Config: cfg}
}

// Run consumes matched (the SIP-index stream produced by a scanner) and
// returns a lazy stream of correlated calls, deduplicated by call-id and
// filtered to first-leg created_at >= requestedCreatedAt (spec.md §4.7's
// outer loop).
func (e *Engine) Run(ctx context.Context, requestedCreatedAt int64, matched *seq.Sequence[session.LegDoc]) *seq.Sequence[*session.CorrelatedCall] {
	processed := make(map[string]bool)

	out := seq.New(func() (*session.CorrelatedCall, bool, error) {
		for {
			l, ok, err := matched.Next()
			if err != nil {
				return nil, false, err
			}
			if !ok {
				return nil, false, nil
			}
			if processed[l.CallID] {
				continue
			}

			call := session.NewCorrelatedCall(e.Config.MaxLegs)
			if err := e.correlate(ctx, call, l); err != nil {
				return nil, false, err
			}
			for id := range call.CallIDs() {
				processed[id] = true
			}
			call.Freeze()

			first, ok := call.First()
			if !ok {
				continue
			}
			if first.CreatedAt < requestedCreatedAt {
				// Anchor from the aggregation window padding, below the
				// user's lower bound: discard (spec.md §4.7).
				continue
			}
			return call, true, nil
		}
	})
	return out.WithClose(func() { matched.Close() })
}

// correlate applies the three rules of spec.md §4.7 in order to L within
// call.
func (e *Engine) correlate(ctx context.Context, call *session.CorrelatedCall, l session.LegDoc) error {
	if !call.HasPair(l.Caller, l.Callee) {
		// Rule 1: pair discovery.
		call.MarkPair(l.Caller, l.Callee)
		candidates, err := e.fetchByIdentity(ctx, l)
		if err != nil {
			return err
		}
		e.extend(call, l, candidates)

		if e.Config.UseXCorrelationHeader {
			if err := e.applyCrossIDClosure(ctx, call); err != nil {
				return err
			}
		}
		return nil
	}

	// Rule 2: second sighting of the same pair.
	if call.Len() < e.Config.MaxLegs && !call.Has(l) {
		if call.Add(l) {
			if err := e.applyCrossIDClosure(ctx, call); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyCrossIDClosure runs rule 3 and recursively correlates every result.
func (e *Engine) applyCrossIDClosure(ctx context.Context, call *session.CorrelatedCall) error {
	results, err := e.fetchByCrossID(ctx, call)
	if err != nil {
		return err
	}
	for _, m := range results {
		if err := e.correlate(ctx, call, m); err != nil {
			return err
		}
	}
	return nil
}

// extend adds L to call (subject to the cap and dedup) then, for each
// candidate passing the time and topology predicates, recursively extends
// using the SAME candidate list — bounding the traversal to the single
// batch fetched by rule 1 (spec.md's design note on recursive correlation
// via a shared candidate list).
func (e *Engine) extend(call *session.CorrelatedCall, l session.LegDoc, candidates []session.LegDoc) {
	if !call.Add(l) {
		return
	}
	for _, m := range candidates {
		if timeOverlaps(l, m, e.Config.TerminationTimeout) && topologyMatches(l, m) {
			e.extend(call, m, candidates)
		}
	}
}

func timeOverlaps(l, m session.LegDoc, terminationTimeout time.Duration) bool {
	if l.TerminatedAt == nil || m.TerminatedAt == nil {
		delta := m.CreatedAt - l.CreatedAt
		if delta < 0 {
			delta = -delta
		}
		return delta <= terminationTimeout.Milliseconds()
	}
	return *l.TerminatedAt >= m.CreatedAt && l.CreatedAt <= *m.TerminatedAt
}

func topologyMatches(l, m session.LegDoc) bool {
	srcMatch := l.SrcAddr == m.DstAddr
	if l.SrcHost != "" {
		srcMatch = l.SrcHost == m.DstHost
	}
	dstMatch := l.DstAddr == m.SrcAddr
	if l.DstHost != "" {
		dstMatch = l.DstHost == m.SrcHost
	}
	return srcMatch || dstMatch
}

// fetchByIdentity fetches candidate legs sharing L's caller/callee pair
// within the aggregation window (spec.md §4.7 rule 1).
func (e *Engine) fetchByIdentity(ctx context.Context, l session.LegDoc) ([]session.LegDoc, error) {
	agg := e.Config.AggregationTimeout.Milliseconds()
	tr := store.TimeRange{Start: l.CreatedAt - agg, End: l.CreatedAt + agg}
	filter := []session.Predicate{
		{Path: "caller", Op: session.OpEq, Value: l.Caller},
		{Path: "callee", Op: session.OpEq, Value: l.Callee},
	}
	return drainLegs(e.Store.Find(ctx, store.CollSIPCallIndex, tr, filter))
}

// fetchByCrossID fetches legs whose identifiers touch the currently
// accumulated call-id / x-call-id set (spec.md §4.7 rule 3).
func (e *Engine) fetchByCrossID(ctx context.Context, call *session.CorrelatedCall) ([]session.LegDoc, error) {
	first, ok := call.First()
	if !ok {
		return nil, nil
	}
	ids := call.CallIDs()
	xids := call.XCallIDs()

	agg := e.Config.AggregationTimeout.Milliseconds()
	// If terminated_at is absent, the upper bound uses created_at — never
	// substitute "now" (spec.md design note).
	end := first.CreatedAt
	if first.TerminatedAt != nil {
		end = *first.TerminatedAt
	}
	tr := store.TimeRange{Start: first.CreatedAt - agg, End: end + agg}

	legs, err := drainLegs(e.Store.Find(ctx, store.CollSIPCallIndex, tr, nil))
	if err != nil {
		return nil, err
	}

	var out []session.LegDoc
	for _, m := range legs {
		if !tr.Contains(m.CreatedAt) {
			// Defense in depth: the store is expected to have already
			// restricted results to tr, but rule 3's window is the engine's
			// own invariant, not the adapter's to relax.
			continue
		}
		if crossIDMatches(m, ids, xids) {
			out = append(out, m)
		}
	}
	return out, nil
}

func crossIDMatches(m session.LegDoc, ids, xids map[string]bool) bool {
	if len(xids) > 0 {
		return (m.XCallID != "" && ids[m.XCallID]) || xids[m.CallID] || (m.XCallID != "" && xids[m.XCallID])
	}
	return m.XCallID != "" && ids[m.XCallID]
}

func drainLegs(docs *seq.Sequence[store.Document]) ([]session.LegDoc, error) {
	defer docs.Close()
	var out []session.LegDoc
	for {
		d, ok, err := docs.Next()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		leg, ok := store.DecodeLeg(d)
		if !ok {
			continue
		}
		out = append(out, leg)
	}
}
