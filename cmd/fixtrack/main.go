// ABOUTME: Entry point for the fixtrack CLI
// ABOUTME: Executes the root command and maps failures to exit status

package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
