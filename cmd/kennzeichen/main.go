package main

import "github.com/pfrederiksen/kennzeichen/internal/cli"

// version is injected at build time: -ldflags "-X main.version=v1.2.3"
var version = "dev"

func main() {
	cli.Version = version
	cli.Execute()
}
