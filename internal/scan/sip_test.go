package scan

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sebas/callsearch/internal/seq"
	"github.com/sebas/callsearch/internal/session"
	"github.com/sebas/callsearch/internal/store"
	"github.com/sebas/callsearch/internal/store/memdoc"
)

func newAdapter() *memdoc.Store {
	return memdoc.New(map[string]string{
		store.CollSIPCallIndex: "created_at",
		store.CollRTPRIndex:    "started_at",
		store.CollRTCPRIndex:   "started_at",
	})
}

func TestSIPScannerFiltersOutRTPAndMethodPredicates(t *testing.T) {
	adapter := newAdapter()
	adapter.Put(store.CollSIPCallIndex, store.Document{
		"call_id": "a", "caller": "x", "callee": "y", "created_at": int64(1000),
	})

	s := NewSIPScanner(adapter)
	query := []session.Predicate{
		{Path: "rtp.mos", Op: session.OpLt, Value: 4.0},
		{Path: "sip.method", Op: session.OpEq, Value: "INVITE"},
	}
	got, err := seq.Collect(s.Scan(context.Background(), 0, 2000, query))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "a", got[0].CallID)
}

func TestSIPScannerSkipsMalformedDocuments(t *testing.T) {
	adapter := newAdapter()
	adapter.Put(store.CollSIPCallIndex, store.Document{"call_id": "", "caller": "x", "callee": "y", "created_at": int64(1000)})
	adapter.Put(store.CollSIPCallIndex, store.Document{"call_id": "b", "caller": "x", "callee": "y", "created_at": int64(1500)})

	s := NewSIPScanner(adapter)
	got, err := seq.Collect(s.Scan(context.Background(), 0, 2000, nil))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "b", got[0].CallID)
}

func TestRTPRScannerJoinsToSIPDocument(t *testing.T) {
	adapter := newAdapter()
	adapter.Put(store.CollSIPCallIndex, store.Document{
		"call_id": "a", "caller": "x", "callee": "y", "created_at": int64(4990),
	})
	adapter.Put(store.CollRTPRIndex, store.Document{"call_id": "a", "started_at": int64(5000), "mos": 3.5})

	s := NewRTPRScanner(adapter, 60000*time.Millisecond)
	query := []session.Predicate{{Path: "rtp.mos", Op: session.OpLt, Value: 4.0}}
	got, err := seq.Collect(s.Scan(context.Background(), 0, 10000, query))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "a", got[0].CallID)
}

func TestRTPRScannerNoResultWithoutSIPMatch(t *testing.T) {
	adapter := newAdapter()
	adapter.Put(store.CollRTPRIndex, store.Document{"call_id": "a", "started_at": int64(5000), "mos": 3.5})

	s := NewRTPRScanner(adapter, 60000*time.Millisecond)
	query := []session.Predicate{{Path: "rtp.mos", Op: session.OpLt, Value: 4.0}}
	got, err := seq.Collect(s.Scan(context.Background(), 0, 10000, query))
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestRTPRScannerMergesRTPAndRTCPByStartedAt(t *testing.T) {
	// Scanning both collections means every non-sip.* predicate in the
	// query applies to each (spec.md §4.4 step 2), so a mixed rtp+rtcp
	// query only matches documents carrying both metrics.
	adapter := newAdapter()
	adapter.Put(store.CollSIPCallIndex, store.Document{"call_id": "a", "caller": "x", "callee": "y", "created_at": int64(990)})
	adapter.Put(store.CollSIPCallIndex, store.Document{"call_id": "b", "caller": "x", "callee": "y", "created_at": int64(1990)})
	adapter.Put(store.CollRTPRIndex, store.Document{"call_id": "b", "started_at": int64(2000), "mos": 3.0, "jitter": 1.0})
	adapter.Put(store.CollRTCPRIndex, store.Document{"call_id": "a", "started_at": int64(1000), "mos": 3.0, "jitter": 1.0})

	s := NewRTPRScanner(adapter, 60000*time.Millisecond)
	query := []session.Predicate{
		{Path: "rtp.mos", Op: session.OpLt, Value: 4.0},
		{Path: "rtcp.jitter", Op: session.OpGt, Value: 0.0},
	}
	got, err := seq.Collect(s.Scan(context.Background(), 0, 10000, query))
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "a", got[0].CallID)
	require.Equal(t, "b", got[1].CallID)
}
