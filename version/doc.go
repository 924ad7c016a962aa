// Package version reports the liquidkit build. The release tooling sets the
// variables at link time:
//
//	go build -ldflags "-X github.com/kbukum/liquidkit/version.Version=0.4.0 \
//	    -X github.com/kbukum/liquidkit/version.Commit=$(git rev-parse --short HEAD)" \
//	    ./cmd/liquidkit
//
// Anything left unset is filled from the module's embedded VCS settings.
package version
