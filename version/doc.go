// Package version reports the apikit library version and the build
// information of the binary that embeds it. The values feed the default
// User-Agent sent by clients.
//
// Version may be pinned at link time:
//
//	go build -ldflags "-X github.com/kbukum/apikit/version.Version=v1.2.0"
package version
