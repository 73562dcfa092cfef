// Package project applies the fixed projection rules of spec.md §4.6,
// turning a frozen CorrelatedCall into the public SearchResult shape.
// Grounded on the teacher's own leg-to-response mapping in
// internal/signaling/b2bua/leg.go (a fixed set of fields copied off the
// first/anchor leg of a bridged call).
package project

import (
	"strings"

	"github.com/sebas/callsearch/internal/session"
)

// Call projects a frozen CorrelatedCall into a SearchResult using the
// first leg (the minimum under (created_at, dst_addr) order) as anchor.
// Ok is false if the call has no legs.
func Call(c *session.CorrelatedCall) (session.SearchResult, bool) {
	first, ok := c.First()
	if !ok {
		return session.SearchResult{}, false
	}

	legs := c.Legs()
	return session.SearchResult{
		CreatedAt:    first.CreatedAt,
		TerminatedAt: first.TerminatedAt,
		Method:       "INVITE",
		State:        first.State,
		Caller:       distinctJoin(legs, func(l session.LegDoc) string { return l.Caller }),
		Callee:       distinctJoin(legs, func(l session.LegDoc) string { return l.Callee }),
		CallID:       c.CallIDs(),
		Duration:     first.Duration,
		ErrorCode:    first.ErrorCode,
	}, true
}

// distinctJoin extracts field(l) for each leg in order, drops duplicates
// while preserving first-seen order, then joins with " - ".
func distinctJoin(legs []session.LegDoc, field func(session.LegDoc) string) string {
	seen := make(map[string]bool, len(legs))
	var parts []string
	for _, l := range legs {
		v := field(l)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		parts = append(parts, v)
	}
	return strings.Join(parts, " - ")
}
