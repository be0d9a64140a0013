// Package endpoint describes API endpoints declaratively and runs the full
// call pipeline: URL resolution, verb and body selection, capability chain,
// request build, handler execution, then caller-chosen process and refine
// steps.
//
//	var github = &endpoint.Record{
//	    Name:         "github",
//	    BaseURL:      "https://api.github.com",
//	    Capabilities: capability.Chain{capability.BearerToken(format.MustParse("<gh_token>"), reg)},
//	}
//
//	type listRepos struct{ Page int }
//
//	var ListRepos = &endpoint.Endpoint[listRepos]{
//	    Name:   "list_repos",
//	    Record: github,
//	    Path:   "/users/<gh_user>/repos",
//	    ModifyURL: endpoint.QueryFrom(func(c *listRepos) []endpoint.QueryParam {
//	        return []endpoint.QueryParam{endpoint.KV("page", strconv.Itoa(c.Page))}
//	    }),
//	}
//
//	repos, err := endpoint.Call(ctx, ListRepos.Prepare(c, listRepos{Page: 2}), endpoint.JSON[listRepos, []Repo]())
//
// Capabilities run in a fixed order: the verb's body first, then the
// record's capabilities, then the endpoint's. Failures are reported as
// *Error with the stage that failed, so callers can tell a request that was
// never sent from one that was sent but could not be interpreted.
package endpoint
