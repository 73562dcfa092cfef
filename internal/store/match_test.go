package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sebas/callsearch/internal/session"
)

func TestMatchAllStripsDomainPrefix(t *testing.T) {
	d := Document{"caller": "alice"}
	require.True(t, MatchAll(d, []session.Predicate{{Path: "sip.caller", Op: session.OpEq, Value: "alice"}}))
	require.False(t, MatchAll(d, []session.Predicate{{Path: "sip.caller", Op: session.OpEq, Value: "bob"}}))
}

func TestMatchNumericComparison(t *testing.T) {
	d := Document{"mos": float64(3.5)}
	require.True(t, MatchAll(d, []session.Predicate{{Path: "rtp.mos", Op: session.OpLt, Value: float64(4)}}))
	require.False(t, MatchAll(d, []session.Predicate{{Path: "rtp.mos", Op: session.OpGt, Value: float64(4)}}))
}

func TestMatchMissingFieldFails(t *testing.T) {
	d := Document{"caller": "alice"}
	require.False(t, MatchAll(d, []session.Predicate{{Path: "sip.callee", Op: session.OpEq, Value: "bob"}}))
}

func TestMatchContains(t *testing.T) {
	d := Document{"user_agent": "FreeSWITCH-mod_sofia"}
	require.True(t, MatchAll(d, []session.Predicate{{Path: "user_agent", Op: session.OpContains, Value: "sofia"}}))
}

func TestMatchIn(t *testing.T) {
	d := Document{"state": "answered"}
	require.True(t, MatchAll(d, []session.Predicate{{Path: "sip.state", Op: session.OpIn, Value: []string{"answered", "ringing"}}}))
	require.False(t, MatchAll(d, []session.Predicate{{Path: "sip.state", Op: session.OpIn, Value: []string{"failed"}}}))
}

func TestMatchAllEmptyFilterAlwaysPasses(t *testing.T) {
	require.True(t, MatchAll(Document{}, nil))
}
