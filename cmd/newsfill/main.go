// Command newsfill backfills monthly news article datasets from search APIs.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
