// Package capability defines request transforms that are applied in order to a
// request.Builder before it is built.
//
// A capability either edits the builder or fails. Chains run strictly in
// sequence and stop at the first failure; edits made by earlier capabilities
// are kept on the builder but the request is never built or sent.
//
// Capabilities that read secrets or dynamic values do so through a
// resource.Registry, usually via a format.String:
//
//	auth := capability.BearerToken(format.MustParse("<github_token>"), reg)
//	body := capability.JSON(payload)
package capability
