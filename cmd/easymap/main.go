// Command easymap is an interactive guide to common nmap scan options.
package main

import "github.com/anstrom/easymap/cmd/cli"

// Build information, set with -ldflags "-X main.version=...".
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildTime)
	cli.Execute()
}
