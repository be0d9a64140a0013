// Package request provides the mutable Builder that capabilities edit and the
// immutable Request that handlers execute.
//
// A Builder records the first error it encounters (for example an unparsable
// URL) and reports it from Build, so capability code can chain calls without
// checking each one.
package request
