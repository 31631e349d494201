package main

import (
	"flag"
	"fmt"
	"os"

	replayinspector "drivesim/engine/tools/replay_inspector"
)

func main() {
	flag.Parse()
	dir := flag.Arg(0)
	if dir == "" {
		fmt.Fprintln(os.Stderr, "usage: replay_inspector <session-dir>")
		os.Exit(2)
	}
	summary, err := replayinspector.Summarise(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "inspect %s: %v\n", dir, err)
		os.Exit(1)
	}
	replayinspector.Render(os.Stdout, dir, summary)
}
