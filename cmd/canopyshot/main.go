// Command canopyshot renders canopy scene files to PNG, optionally replaying
// a scripted interaction first.
//
//	canopyshot render scene.yaml -o out.png --script taps.json
//	canopyshot tree scene.yaml
package main

import (
	"fmt"
	"os"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "canopyshot:", err)
		os.Exit(1)
	}
}
