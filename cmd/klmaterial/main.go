package main

import "github.com/noah-isme/klmaterial-hub/internal/cli"

// version is set via ldflags at release time.
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.Execute()
}
