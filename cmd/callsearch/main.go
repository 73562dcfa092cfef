package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sebas/callsearch/internal/attributes"
	"github.com/sebas/callsearch/internal/config"
	"github.com/sebas/callsearch/internal/correlate"
	"github.com/sebas/callsearch/internal/logger"
	"github.com/sebas/callsearch/internal/search"
	"github.com/sebas/callsearch/internal/session"
	"github.com/sebas/callsearch/internal/store"
	"github.com/sebas/callsearch/internal/store/memdoc"
)

func main() {
	cfg := config.Load()
	logger.Init(os.Stdout)
	logger.SetLevel(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("[callsearch] received signal, shutting down", "signal", sig)
		cancel()
	}()

	run(ctx, cfg)
}

func run(ctx context.Context, cfg *config.Config) {
	if cfg.StoreAddr != "" {
		slog.Warn("[callsearch] store-addr set but no remote store adapter is wired, falling back to in-memory demo store", "addr", cfg.StoreAddr)
	}

	adapter := memdoc.New(map[string]string{
		store.CollSIPCallIndex: "created_at",
		store.CollRTPRIndex:    "started_at",
		store.CollRTCPRIndex:   "started_at",
	})
	seedDemoData(adapter)

	catalog := attributes.NewCatalog(attributes.StaticSource{Descriptors: []attributes.Descriptor{
		{Name: "sip.caller", Type: attributes.TypeString},
		{Name: "sip.callee", Type: attributes.TypeString},
		{Name: "rtp.mos", Type: attributes.TypeFloat},
	}})

	engineCfg := correlate.Config{
		AggregationTimeout:    cfg.AggregationTimeout,
		TerminationTimeout:    cfg.TerminationTimeout,
		MaxLegs:               cfg.MaxLegs,
		UseXCorrelationHeader: cfg.UseXCorrelationHeader,
	}
	engine := search.New(adapter, catalog, engineCfg)

	query := flag.Arg(0)
	req := session.SearchRequest{
		CreatedAt:    0,
		TerminatedAt: time.Now().UnixMilli(),
		Query:        query,
	}

	slog.Info("[callsearch] running search", "query", req.Query, "window", []int64{req.CreatedAt, req.TerminatedAt})

	results := engine.Search(ctx, req)
	defer results.Close()

	count := 0
	for {
		r, ok, err := results.Next()
		if err != nil {
			slog.Error("[callsearch] search failed", "error", err)
			os.Exit(1)
		}
		if !ok {
			break
		}
		count++
		fmt.Printf("%d. createdAt=%d caller=%q callee=%q callId=%s state=%q\n",
			count, r.CreatedAt, r.Caller, r.Callee, callIDList(r.CallID), r.State)
	}

	slog.Info("[callsearch] search complete", "results", count)
}

func callIDList(ids map[string]bool) string {
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	return "{" + strings.Join(out, ",") + "}"
}

// seedDemoData loads two demo legs (alice→bob, alice→carol) so a fresh
// checkout has something to search. They share no caller/callee pair and no
// x_call_id, so a search returns them as two separate calls.
func seedDemoData(adapter *memdoc.Store) {
	now := time.Now().UnixMilli()

	adapter.Put(store.CollSIPCallIndex, store.Document{
		"call_id": "demo-a", "caller": "alice", "callee": "bob",
		"created_at": now - 60000, "terminated_at": now - 30000,
		"state": "answered", "src_addr": "10.0.0.1", "dst_addr": "10.0.0.2",
	})
	adapter.Put(store.CollSIPCallIndex, store.Document{
		"call_id": "demo-b", "caller": "alice", "callee": "carol",
		"created_at": now - 58000, "terminated_at": now - 29000,
		"state": "answered", "src_addr": "10.0.0.2", "dst_addr": "10.0.0.3",
	})
}
