// Package handler executes built requests and composes cross-cutting
// behaviour around that execution.
//
// A Handler sends one request. Decorators wrap a handler and return a new one
// with the same contract, so they stack without limit:
//
//	h := handler.Wrap(handler.Transport(http.DefaultClient, gate),
//		handler.RejectStatus(handler.ServerErrors),
//		handler.RetriesOf(3),
//	)
//
// Wrap applies decorators inside-out: the last one listed is the outermost and
// is the one the caller invokes.
package handler
