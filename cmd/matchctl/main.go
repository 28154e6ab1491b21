// Command matchctl is the operator CLI for eventmatch: offline ranking of a
// fixture, schema and seed management for Postgres, and clients for a running
// server.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
