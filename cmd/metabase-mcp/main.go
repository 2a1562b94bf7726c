// Package main is the entry point for the metabase-mcp CLI.
package main

import (
	"os"

	"github.com/CognitionAI/metabase-mcp-server/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
