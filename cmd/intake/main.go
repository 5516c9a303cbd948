// Command intake runs imports and posting queries against the engine's store
// without going through HTTP.
package main

import (
	"os"

	"jobintake-engine/internal/config"
)

func main() {
	config.LoadDotEnv(".env")
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
