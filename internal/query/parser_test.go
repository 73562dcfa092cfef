package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sebas/callsearch/internal/attributes"
	"github.com/sebas/callsearch/internal/session"
)

func TestParseEmptyQuery(t *testing.T) {
	p := NewParser(nil)
	preds := p.Parse(context.Background(), "   ")
	require.Empty(t, preds)
}

func TestParseEquality(t *testing.T) {
	p := NewParser(nil)
	preds := p.Parse(context.Background(), "sip.caller=alice")
	require.Equal(t, []session.Predicate{{Path: "sip.caller", Op: session.OpEq, Value: "alice"}}, preds)
}

func TestParsePicksEarliestLongestOperator(t *testing.T) {
	p := NewParser(nil)
	preds := p.Parse(context.Background(), "rtp.mos>=4")
	require.Len(t, preds, 1)
	require.Equal(t, session.OpGte, preds[0].Op)
	require.Equal(t, "rtp.mos", preds[0].Path)
}

func TestParseNotEqual(t *testing.T) {
	p := NewParser(nil)
	preds := p.Parse(context.Background(), "sip.state!=failed")
	require.Equal(t, session.OpNeq, preds[0].Op)
}

func TestParseMalformedTokenDegradesToEquality(t *testing.T) {
	p := NewParser(nil)
	preds := p.Parse(context.Background(), "notanoperator")
	require.Equal(t, []session.Predicate{{Path: "notanoperator", Op: session.OpEq, Value: "notanoperator"}}, preds)
}

func TestParseLeadingOperatorDegrades(t *testing.T) {
	// No path before the operator: splitToken requires bestIdx > 0.
	p := NewParser(nil)
	preds := p.Parse(context.Background(), "=alice")
	require.Equal(t, session.OpEq, preds[0].Op)
	require.Equal(t, "=alice", preds[0].Path)
}

func TestParseGlobBecomesContains(t *testing.T) {
	p := NewParser(nil)
	preds := p.Parse(context.Background(), "sip.caller=ali*")
	require.Equal(t, session.OpContains, preds[0].Op)
	require.Equal(t, "ali", preds[0].Value)
}

func TestParseMultipleTokens(t *testing.T) {
	p := NewParser(nil)
	preds := p.Parse(context.Background(), "sip.caller=alice sip.callee=bob")
	require.Len(t, preds, 2)
}

func TestParseCoercesViaCatalog(t *testing.T) {
	catalog := attributes.NewCatalog(attributes.StaticSource{Descriptors: []attributes.Descriptor{
		{Name: "rtp.mos", Type: attributes.TypeFloat},
	}})
	p := NewParser(catalog)
	preds := p.Parse(context.Background(), "rtp.mos<4.5")
	require.Len(t, preds, 1)
	require.Equal(t, 4.5, preds[0].Value)
}

func TestParseUnknownPathStaysString(t *testing.T) {
	catalog := attributes.NewCatalog(attributes.StaticSource{Descriptors: nil})
	p := NewParser(catalog)
	preds := p.Parse(context.Background(), "rtp.mos<4.5")
	require.Equal(t, "4.5", preds[0].Value)
}
