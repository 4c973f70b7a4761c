// Package main provides the leapmeta CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/leapmeta/internal/cli"

	// Register database adapters via init()
	_ "github.com/leapstack-labs/leapmeta/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/leapmeta/pkg/adapters/mysql"
	_ "github.com/leapstack-labs/leapmeta/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/leapmeta/pkg/adapters/sqlite"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
