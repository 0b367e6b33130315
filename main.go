// Package main is the entry point for the Cardline CLI application.
// It provides access to cards, transactions and recommendations from the terminal.
package main

import (
	"cardline/cli/cmd"
)

// main is the entry point for the Cardline CLI application.
// It initializes and executes the command-line interface.
func main() {
	cmd.Execute()
}
