// Package apitest provides a scripted upstream HTTP server for tests of
// clients, handlers and endpoints.
//
//	srv := apitest.New(t)
//	srv.Script(http.MethodGet, "/flaky", 503, 503, 200)
//	// ... call srv.URL + "/flaky" three times ...
//	if srv.Hits(http.MethodGet, "/flaky") != 3 { ... }
package apitest
