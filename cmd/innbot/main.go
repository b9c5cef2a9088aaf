// Command innbot answers organization registry lookups over HTTP and Telegram.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
