// Package callerr defines the error kinds of a search as sentinels a caller
// can classify with errors.Is. Only ErrStoreUnavailable is returned today,
// wrapped by store.NewUnavailableError; the scanners and the correlation
// engine pass store errors through unchanged.
package callerr

import "errors"

var (
	// ErrStoreUnavailable indicates a connectivity or timeout failure talking
	// to the document store. It surfaces as a terminal error on the result
	// iterator; results already emitted remain valid.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrMalformedDocument indicates a document is missing a field the core
	// requires. The offending document is skipped, not fatal.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrInvalidQuery names an unparseable time window. No package returns
	// it: search.Engine.Search does not validate the window and has no
	// synchronous error result.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrCancelled names a search the caller abandoned. No package returns
	// it: a cancelled context surfaces from internal/store/memdoc as an
	// ErrStoreUnavailable error on the next read, not as a silent end.
	ErrCancelled = errors.New("search cancelled")
)
