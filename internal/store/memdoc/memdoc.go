// Package memdoc is a reference store.Adapter backed by process memory,
// used by tests and the callsearch demo command. It shards each logical
// collection by day the way a real time-series document store would
// shard a collection across physical, time-prefixed tables, and hands out
// a synthetic per-shard id with google/uuid the way the teacher's event
// builder mints per-event ids (internal/signaling/events/builder.go).
package memdoc

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sebas/callsearch/internal/seq"
	"github.com/sebas/callsearch/internal/session"
	"github.com/sebas/callsearch/internal/store"
)

const shardSpan = 24 * time.Hour

// shard is one time-prefixed physical collection: an append-only, ordered
// list of documents.
type shard struct {
	id    string
	name  string
	start int64 // ms epoch, inclusive lower bound of the shard's span
	docs  []store.Document
}

// Store is an in-memory, time-sharded document store.
type Store struct {
	mu      sync.RWMutex
	shards  map[string][]*shard // logical collection -> shards, in insertion order
	timeKey map[string]string   // logical collection -> field used to bucket documents
}

// New returns an empty Store. timeKey tells the store which document field
// to bucket by for each logical collection (e.g. "created_at" for
// sip_call_index, "started_at" for the rtpr indices); collections not
// listed default to "created_at".
func New(timeKey map[string]string) *Store {
	return &Store{
		shards:  make(map[string][]*shard),
		timeKey: timeKey,
	}
}

// Put inserts doc into the logical collection's appropriate time shard,
// creating the shard if needed.
func (s *Store) Put(collection string, doc store.Document) {
	key := s.timeKey[collection]
	if key == "" {
		key = "created_at"
	}
	ts, _ := doc[key].(int64)

	s.mu.Lock()
	defer s.mu.Unlock()

	bucketStart := (ts / int64(shardSpan/time.Millisecond)) * int64(shardSpan/time.Millisecond)
	for _, sh := range s.shards[collection] {
		if sh.start == bucketStart {
			sh.docs = append(sh.docs, doc)
			return
		}
	}
	sh := &shard{
		id:    uuid.NewString(),
		name:  fmt.Sprintf("%s.%d", collection, bucketStart),
		start: bucketStart,
	}
	sh.docs = append(sh.docs, doc)
	s.shards[collection] = append(s.shards[collection], sh)
	sort.Slice(s.shards[collection], func(i, j int) bool {
		return s.shards[collection][i].start < s.shards[collection][j].start
	})
}

// Find implements store.Adapter. Shard overlap narrows which physical
// shards are scanned; within a shard, every document's own time-key field
// is still checked against tr before MatchAll, so a window narrower than
// shardSpan excludes documents the shard merely happens to also hold
// (spec.md §4.2: Find's results must match tr, not just overlap its shard).
func (s *Store) Find(ctx context.Context, collection string, tr store.TimeRange, filter []session.Predicate) *seq.Sequence[store.Document] {
	key := s.timeKey[collection]
	if key == "" {
		key = "created_at"
	}

	s.mu.RLock()
	shards := append([]*shard(nil), s.shards[collection]...)
	s.mu.RUnlock()

	var overlapping []*shard
	for _, sh := range shards {
		if int64(sh.start)+int64(shardSpan/time.Millisecond) < tr.Start || sh.start > tr.End {
			continue
		}
		overlapping = append(overlapping, sh)
	}

	shardIdx, docIdx := 0, 0
	return seq.New(func() (store.Document, bool, error) {
		select {
		case <-ctx.Done():
			return nil, false, store.NewUnavailableError(ctx.Err().Error())
		default:
		}
		for shardIdx < len(overlapping) {
			sh := overlapping[shardIdx]
			for docIdx < len(sh.docs) {
				d := sh.docs[docIdx]
				docIdx++
				ts, ok := d[key].(int64)
				if !ok || !tr.Contains(ts) {
					continue
				}
				if !store.MatchAll(d, filter) {
					continue
				}
				return d, true, nil
			}
			shardIdx++
			docIdx = 0
		}
		return nil, false, nil
	})
}

// ListCollectionNames implements store.Adapter.
func (s *Store) ListCollectionNames(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	for logical, shards := range s.shards {
		if !strings.HasPrefix(logical, prefix) {
			continue
		}
		for _, sh := range shards {
			names = append(names, sh.name)
		}
	}
	sort.Strings(names)
	return names, nil
}
