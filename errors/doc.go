// Package errors provides the error taxonomy shared by every apikit package.
// Each failure carries a machine-readable Kind so callers can tell a request
// that was never sent (template, capability, build) from one that was sent
// and failed (handler, transport) or one that succeeded but could not be
// interpreted (process, refine).
package errors
