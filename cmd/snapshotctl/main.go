// Command snapshotctl reads and writes screen snapshots in the configured backend.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(openFromEnv).Execute(); err != nil {
		os.Exit(1)
	}
}
