// Package query implements the free-text query parser (spec.md §4.1):
// whitespace-separated tokens of the shape "path OP value", coerced to a
// typed predicate using the attribute catalog.
//
// Grounded on LumenPrima-tr-engine/internal/database/query.go's
// queryBuilder, which accumulates parameterized SQL clauses one token at a
// time; here the accumulation target is a typed session.Predicate slice
// instead of a WHERE clause, but the token-at-a-time, degrade-don't-reject
// error handling is the same idea.
package query

import (
	"context"
	"strconv"
	"strings"

	"github.com/sebas/callsearch/internal/attributes"
	"github.com/sebas/callsearch/internal/session"
)

// operators, longest first so "!=" isn't mistaken for "=".
var operators = []session.Op{
	session.OpGte,
	session.OpLte,
	session.OpNeq,
	session.OpEq,
	session.OpGt,
	session.OpLt,
}

// Parser tokenizes and type-coerces a free-text query against an attribute
// catalog.
type Parser struct {
	catalog *attributes.Catalog
}

// NewParser returns a Parser that coerces predicate values using catalog.
// catalog may be nil, in which case every predicate is kept in string
// space (spec.md: "Unknown paths yield an equality filter in string
// space").
func NewParser(catalog *attributes.Catalog) *Parser {
	return &Parser{catalog: catalog}
}

// Parse splits query on whitespace (dropping empty tokens) and parses each
// token into a Predicate. A token that doesn't match "path OP value"
// degrades to a string equality filter rather than rejecting the whole
// query (spec.md §7).
func (p *Parser) Parse(ctx context.Context, query string) []session.Predicate {
	tokens := strings.Fields(query)
	preds := make([]session.Predicate, 0, len(tokens))
	for _, tok := range tokens {
		preds = append(preds, p.parseToken(ctx, tok))
	}
	return preds
}

func (p *Parser) parseToken(ctx context.Context, tok string) session.Predicate {
	path, op, rawValue, ok := splitToken(tok)
	if !ok {
		// Malformed token: degrade to a string equality filter instead of
		// rejecting the query (spec.md §7).
		return session.Predicate{Path: tok, Op: session.OpEq, Value: tok}
	}

	if strings.Contains(rawValue, "*") {
		op = session.OpContains
		rawValue = strings.ReplaceAll(rawValue, "*", "")
	}

	return session.Predicate{Path: path, Op: op, Value: p.coerce(ctx, path, rawValue)}
}

// splitToken locates the earliest operator occurrence in tok and splits it
// into path/op/value. ok is false if no operator is present.
func splitToken(tok string) (path string, op session.Op, value string, ok bool) {
	bestIdx := -1
	var bestOp session.Op
	for _, o := range operators {
		if idx := strings.Index(tok, string(o)); idx >= 0 {
			if bestIdx == -1 || idx < bestIdx {
				bestIdx = idx
				bestOp = o
			}
		}
	}
	if bestIdx <= 0 {
		return "", "", "", false
	}
	return tok[:bestIdx], bestOp, tok[bestIdx+len(bestOp):], true
}

// coerce type-converts a raw literal according to the attribute catalog's
// descriptor for path, if known and non-string (spec.md §4.1).
func (p *Parser) coerce(ctx context.Context, path, raw string) any {
	if p.catalog == nil {
		return raw
	}
	desc, known, err := p.catalog.Lookup(ctx, path)
	if err != nil || !known {
		return raw
	}
	switch desc.Type {
	case attributes.TypeInt:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n
		}
	case attributes.TypeFloat:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	case attributes.TypeBool:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	}
	return raw
}
