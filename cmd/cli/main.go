package main

import (
	"os"

	"github.com/itarutakasaka-glitch/rental-crm-sub000/cmd/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
