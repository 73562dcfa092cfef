package store

import (
	"strconv"
	"strings"

	"github.com/sebas/callsearch/internal/session"
)

// field maps a predicate's dotted path to the document field it constrains:
// the domain prefix (sip./rtp./rtcp.) is stripped; a path with no known
// domain prefix is used as the field name verbatim (spec.md §4.1: unknown
// paths still yield a filter, just in string space).
func field(path string) string {
	for _, prefix := range []string{"sip.", "rtp.", "rtcp."} {
		if strings.HasPrefix(path, prefix) {
			return path[len(prefix):]
		}
	}
	return path
}

// MatchAll reports whether d satisfies every predicate in filter. This is
// the reference evaluator used by the in-memory adapter (internal/store/memdoc);
// a remote adapter would instead translate predicates into a server-side
// query, but the semantics here are the contract both must honor.
func MatchAll(d Document, filter []session.Predicate) bool {
	for _, p := range filter {
		if !match(d, p) {
			return false
		}
	}
	return true
}

func match(d Document, p session.Predicate) bool {
	v, present := d[field(p.Path)]
	switch p.Op {
	case session.OpIn:
		values, ok := p.Value.([]string)
		if !ok || !present {
			return false
		}
		s := toString(v)
		for _, want := range values {
			if s == want {
				return true
			}
		}
		return false
	case session.OpContains:
		if !present {
			return false
		}
		return strings.Contains(toString(v), toString(p.Value))
	}

	if !present {
		return false
	}

	// Numeric comparisons if both sides can be parsed as numbers.
	if lf, lok := toFloat(v); lok {
		if rf, rok := toFloat(p.Value); rok {
			switch p.Op {
			case session.OpEq:
				return lf == rf
			case session.OpNeq:
				return lf != rf
			case session.OpGt:
				return lf > rf
			case session.OpLt:
				return lf < rf
			case session.OpGte:
				return lf >= rf
			case session.OpLte:
				return lf <= rf
			}
		}
	}

	ls, rs := toString(v), toString(p.Value)
	switch p.Op {
	case session.OpEq:
		return ls == rs
	case session.OpNeq:
		return ls != rs
	case session.OpGt:
		return ls > rs
	case session.OpLt:
		return ls < rs
	case session.OpGte:
		return ls >= rs
	case session.OpLte:
		return ls <= rs
	default:
		return false
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
