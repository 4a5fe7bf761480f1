// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for skm.
//
// Usage:
//
//	go run . [flags]
//	./skm [flags]
//
// This launches the skm CLI. See --help for options.
package main

import (
	"log"
	"os"

	"github.com/gphunter1004/skm/ui/cli"
)

// main is the entrypoint for the skm CLI.
func main() {
	if err := cli.Execute(); err != nil {
		log.Printf("skm: %v", err)
		os.Exit(1)
	}
}
