// Command mcp-kubectl is an alternative entry point for installations that
// build from cmd/mcp-kubectl instead of the repository root. Both binaries
// are identical.
package main

import (
	"github.com/giantswarm/mcp-kubectl/cmd"
)

// version is the application version, injected at build time via ldflags:
//
//	go build -ldflags "-X main.version=v1.2.3"
var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
