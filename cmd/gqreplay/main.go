// Command gqreplay records and replays game-server query traffic: capture
// sniffs one query's traffic and saves it as a replay record, replay re-serves
// a saved record to a query backend and reports whether its response matches
// what was recorded.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
