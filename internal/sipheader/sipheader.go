// Package sipheader is the narrow SIP-header-field extraction utility
// spec.md places out of scope beyond its interface ("a small utility for
// extracting SIP header fields... only the interfaces the core consumes
// from them are specified"). No other package in this repository imports
// it; the correlation core reads already-decoded fields off
// session.LegDoc.
//
// Grounded on the teacher's own header access idiom
// (internal/signaling/dialog/dialog.go's req.CallID(), b2bua/originator.go's
// sip.CallIDHeader conversions, and registration/handler.go's
// req.GetHeader(name).Value()).
package sipheader

import "github.com/emiago/sipgo/sip"

// CallID extracts the Call-ID header from a request, mirroring the typed
// value sipgo itself hands back from a parsed message.
func CallID(req *sip.Request) (sip.CallIDHeader, bool) {
	if req == nil {
		return "", false
	}
	h := req.CallID()
	if h == nil {
		return "", false
	}
	return *h, true
}

// XCorrelationID extracts the operator-inserted cross-correlation header
// (spec.md glossary: "X-call-id... links legs across B2BUAs"), if present.
func XCorrelationID(req *sip.Request) (string, bool) {
	if req == nil {
		return "", false
	}
	h := req.GetHeader("X-CID")
	if h == nil {
		h = req.GetHeader("X-Call-ID")
	}
	if h == nil {
		return "", false
	}
	return h.Value(), true
}

// Caller extracts the From URI's user part.
func Caller(req *sip.Request) (string, bool) {
	if req == nil {
		return "", false
	}
	from := req.From()
	if from == nil {
		return "", false
	}
	return from.Address.User, true
}

// Callee extracts the To URI's user part.
func Callee(req *sip.Request) (string, bool) {
	if req == nil {
		return "", false
	}
	to := req.To()
	if to == nil {
		return "", false
	}
	return to.Address.User, true
}
